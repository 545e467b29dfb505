package google_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/bookify/internal/booking"
	"github.com/teemow/bookify/internal/google"
	"github.com/teemow/bookify/internal/server"
	"github.com/teemow/bookify/internal/tools/common"
)

// RegisterGoogleTools registers the Google OAuth tools with the MCP server.
// google_revoke_access is only registered when readOnly is false.
func RegisterGoogleTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	accountOpt := mcp.WithString("account",
		mcp.Description("Account name (default: the server's default account). Used to manage multiple Google accounts."),
	)

	getAuthURLTool := mcp.NewTool("google_get_auth_url",
		mcp.WithDescription("Get the OAuth URL to authorize Google Calendar and room directory access for a specific account"),
		accountOpt,
	)

	s.AddTool(getAuthURLTool, common.InstrumentedToolHandler("google_get_auth_url", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleGetAuthURL(ctx, request, sc)
	}))

	saveAuthCodeTool := mcp.NewTool("google_save_auth_code",
		mcp.WithDescription("Save the OAuth authorization code to complete Google authentication for a specific account"),
		accountOpt,
		mcp.WithString("authCode",
			mcp.Required(),
			mcp.Description("The authorization code from Google OAuth"),
		),
	)

	s.AddTool(saveAuthCodeTool, common.InstrumentedToolHandler("google_save_auth_code", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleSaveAuthCode(ctx, request, sc)
	}))

	if readOnly {
		return nil
	}

	revokeTool := mcp.NewTool("google_revoke_access",
		mcp.WithDescription("Revoke the stored Google grant of an account and forget its token"),
		accountOpt,
	)

	s.AddTool(revokeTool, common.InstrumentedToolHandler("google_revoke_access", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleRevokeAccess(ctx, request, sc)
	}))

	return nil
}

func handleGetAuthURL(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	conf := sc.OAuthConfig()
	if conf == nil {
		return mcp.NewToolResultError("Google OAuth client is not configured (set GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET)"), nil
	}

	account := common.GetAccountFromArgs(ctx, request.GetArguments(), sc.DefaultAccount())
	authURL := google.AuthURL(conf, account)

	result := fmt.Sprintf(`To authorize Google Calendar access for account "%s":

1. Visit this URL in your browser:
   %s

2. Sign in with your Google account
3. Grant access to your calendar and the room directory
4. Copy the authorization code

5. Call the google_save_auth_code tool with the code and account name to complete authentication`, account, authURL)

	return mcp.NewToolResultText(result), nil
}

func handleSaveAuthCode(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	conf := sc.OAuthConfig()
	if conf == nil {
		return mcp.NewToolResultError("Google OAuth client is not configured (set GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET)"), nil
	}

	account := common.GetAccountFromArgs(ctx, request.GetArguments(), sc.DefaultAccount())

	authCode, err := request.RequireString("authCode")
	if err != nil || authCode == "" {
		return mcp.NewToolResultError("authCode is required"), nil
	}

	if err := google.Exchange(ctx, conf, sc.TokenStore(), account, authCode); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to save authorization code for account %s: %v", account, err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Authorization successful for account '%s'. Room and booking tools can now be used with this account.", account)), nil
}

func handleRevokeAccess(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	revoker := sc.Revoker()
	if revoker == nil {
		return mcp.NewToolResultError("token revocation is not configured"), nil
	}

	account := common.GetAccountFromArgs(ctx, request.GetArguments(), sc.DefaultAccount())
	if !sc.TokenStore().Has(ctx, account) {
		return mcp.NewToolResultError(fmt.Sprintf("no token stored for account %s", account)), nil
	}

	if err := revoker.Revoke(ctx, booking.NewCredential(account)); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to revoke access for account %s: %v", account, err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Access for account '%s' has been revoked.", account)), nil
}
