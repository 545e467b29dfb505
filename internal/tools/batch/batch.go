package batch

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Result statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
	StatusSkipped = "skipped"
)

// Result represents the result of a single operation in a batch
type Result struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Result string `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// BatchResult represents the aggregated results of a batch operation
type BatchResult struct {
	Total      int      `json:"total"`
	Successful int      `json:"successful"`
	Failed     int      `json:"failed"`
	Skipped    int      `json:"skipped,omitempty"`
	Results    []Result `json:"results"`
}

// ParseStringOrArray parses a required parameter that can be either a single
// string or an array of strings.
func ParseStringOrArray(param interface{}, paramName string) ([]string, error) {
	if param == nil {
		return nil, fmt.Errorf("%s is required", paramName)
	}

	var result []string

	switch v := param.(type) {
	case string:
		if v == "" {
			return nil, fmt.Errorf("%s cannot be empty", paramName)
		}
		if items, ok := jsonStringArray(v); ok {
			if len(items) == 0 {
				return nil, fmt.Errorf("%s cannot be empty", paramName)
			}
			return items, nil
		}
		result = []string{v}
	case []interface{}:
		if len(v) == 0 {
			return nil, fmt.Errorf("%s cannot be empty", paramName)
		}
		for i, item := range v {
			str, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%s[%d] must be a string", paramName, i)
			}
			if str == "" {
				return nil, fmt.Errorf("%s[%d] cannot be empty", paramName, i)
			}
			result = append(result, str)
		}
	default:
		return nil, fmt.Errorf("%s must be a string or array of strings", paramName)
	}

	return result, nil
}

// ParseList parses an optional list given either as an array of strings or
// as one comma-separated string. Blank entries are dropped.
func ParseList(param interface{}, paramName string) ([]string, error) {
	switch v := param.(type) {
	case nil:
		return nil, nil
	case string:
		if items, ok := jsonStringArray(v); ok {
			return items, nil
		}
		var out []string
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out, nil
	case []interface{}:
		out := make([]string, 0, len(v))
		for i, item := range v {
			str, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%s[%d] must be a string", paramName, i)
			}
			if str = strings.TrimSpace(str); str != "" {
				out = append(out, str)
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%s must be a string or array of strings", paramName)
	}
}

// jsonStringArray decodes s when it is a JSON array of strings. Some MCP
// clients send array arguments serialized.
func jsonStringArray(s string) ([]string, bool) {
	if !strings.HasPrefix(strings.TrimSpace(s), "[") {
		return nil, false
	}
	var items []string
	if err := json.Unmarshal([]byte(s), &items); err != nil {
		return nil, false
	}
	return items, true
}

// FormatResults creates a formatted JSON string from batch results
func FormatResults(results []Result) string {
	br := BatchResult{
		Total:   len(results),
		Results: results,
	}

	for _, r := range results {
		switch r.Status {
		case StatusSuccess:
			br.Successful++
		case StatusSkipped:
			br.Skipped++
		default:
			br.Failed++
		}
	}

	jsonBytes, _ := json.MarshalIndent(br, "", "  ")
	return string(jsonBytes)
}

// Process runs fn on each id in order and collects the results. Once stop
// reports true for an error, the remaining ids are reported as skipped
// without calling fn. A nil stop never stops.
func Process(ctx context.Context, ids []string, fn func(ctx context.Context, id string) (string, error), stop func(error) bool) []Result {
	results := make([]Result, 0, len(ids))

	var halted error
	for _, id := range ids {
		if halted == nil {
			halted = ctx.Err()
		}
		if halted != nil {
			results = append(results, Result{ID: id, Status: StatusSkipped, Error: halted.Error()})
			continue
		}

		res, err := fn(ctx, id)
		if err != nil {
			results = append(results, NewErrorResult(id, err))
			if stop != nil && stop(err) {
				halted = err
			}
			continue
		}
		results = append(results, NewSuccessResult(id, res))
	}

	return results
}

// NewSuccessResult creates a success result
func NewSuccessResult(id, message string) Result {
	return Result{
		ID:     id,
		Status: StatusSuccess,
		Result: message,
	}
}

// NewErrorResult creates an error result
func NewErrorResult(id string, err error) Result {
	return Result{
		ID:     id,
		Status: StatusError,
		Error:  err.Error(),
	}
}
