package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rxtech-lab/ignitus-mcp/internal/notify"
)

func NewConnectWalletTool(sess WalletSession, page WalletPage, notifier *notify.Notifier) (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("connect_wallet",
		mcp.WithDescription("Connect the user's wallet and make sure it is on the expected chain, switching or adding the chain when needed. The user approves the request in MetaMask. Contract reads and actions are only available after this succeeds."),
	)

	handler := func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if result := page.openPage(); result != nil {
			return result, nil
		}
		snap, err := sess.Connect(ctx)
		if err != nil {
			if notifier != nil {
				notifier.Error(err)
			}
			return errorResult(notifier, err), nil
		}
		return jsonResult("Wallet connected", page.fields(map[string]any{
			"session": snap,
		})), nil
	}

	return tool, handler
}
