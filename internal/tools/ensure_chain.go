package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rxtech-lab/ignitus-mcp/internal/notify"
)

func NewEnsureChainTool(sess WalletSession, page WalletPage, notifier *notify.Notifier) (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("ensure_chain",
		mcp.WithDescription("Check that the connected wallet is on the expected chain and ask it to switch (adding the chain once if MetaMask does not know it) otherwise. Requires a connected wallet."),
	)

	handler := func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if result := page.openPage(); result != nil {
			return result, nil
		}
		snap, err := sess.EnsureExpectedChain(ctx)
		if err != nil {
			if notifier != nil {
				notifier.Error(err)
			}
			return errorResult(notifier, err), nil
		}
		return jsonResult("Wallet is on the expected chain", page.fields(map[string]any{
			"session":        snap,
			"expected_chain": sess.ExpectedChain(),
		})), nil
	}

	return tool, handler
}
