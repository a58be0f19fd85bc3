package tools

import (
	"context"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rxtech-lab/ignitus-mcp/internal/notify"
)

func NewListNotificationsTool(notifier *notify.Notifier) (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("list_notifications",
		mcp.WithDescription("List the most recent notifications (successes, infos and errors) raised by wallet and contract actions, newest first."),
		mcp.WithString("limit",
			mcp.Description("Maximum number of notifications to return (default: 10)"),
		),
	)

	handler := func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		limit, err := strconv.Atoi(request.GetString("limit", "10"))
		if err != nil || limit <= 0 {
			limit = 10
		}
		notifications := notifier.List(limit)
		return jsonResult("Notifications listed", map[string]any{
			"notifications": notifications,
			"count":         len(notifications),
		}), nil
	}

	return tool, handler
}
