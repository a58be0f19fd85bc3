package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func NewDisconnectWalletTool(sess WalletSession) (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("disconnect_wallet",
		mcp.WithDescription("Forget the connected account and drop the contract binding. The wallet itself is not contacted."),
	)

	handler := func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return jsonResult("Wallet disconnected", map[string]any{
			"session": sess.Disconnect(),
		}), nil
	}

	return tool, handler
}
