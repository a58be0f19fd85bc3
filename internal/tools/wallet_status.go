package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func NewWalletStatusTool(sess WalletSession, page WalletPage) (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("wallet_status",
		mcp.WithDescription("Show the wallet session: state, connected account, current chain and the expected chain. Does not prompt the user."),
	)

	handler := func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result := map[string]any{
			"session":        sess.Snapshot(),
			"expected_chain": sess.ExpectedChain(),
		}
		if page.Attached != nil {
			result["wallet_attached"] = page.Attached()
		}
		return jsonResult("Wallet status", page.fields(result)), nil
	}

	return tool, handler
}
