package instrumentation

import "strings"

// Google API operation label values.
const (
	OperationList     = "list"
	OperationGet      = "get"
	OperationInsert   = "insert"
	OperationUpdate   = "update"
	OperationDelete   = "delete"
	OperationFreeBusy = "freebusy"
	OperationRevoke   = "revoke"
)

// ExtractUserDomain returns the domain of an account address, or "unknown"
// when account is not a single-@ address. Labels and general logs carry the
// domain only.
func ExtractUserDomain(account string) string {
	local, domain, ok := strings.Cut(account, "@")
	if !ok || local == "" || domain == "" || strings.Contains(domain, "@") {
		return "unknown"
	}
	return domain
}
