package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rxtech-lab/ignitus-mcp/internal/notify"
	"github.com/rxtech-lab/ignitus-mcp/internal/services"
)

func NewWatchVideoTool(videos services.VideoService, page WalletPage, notifier *notify.Notifier) (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("watch_video",
		mcp.WithDescription("Pay the watch price of a video. The price is read from the contract at call time and the connected account signs the payment in MetaMask."),
		mcp.WithString("video_id",
			mcp.Required(),
			mcp.Description("ID of the video as returned by list_videos"),
		),
	)
	return tool, payHandler(func(ctx context.Context, id uint64) (*services.ActionResult, error) {
		return videos.WatchVideo(ctx, id)
	}, "Video payment confirmed", page, notifier)
}

func NewPremiumAccessTool(videos services.VideoService, page WalletPage, notifier *notify.Notifier) (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("premium_access",
		mcp.WithDescription("Pay the premium price of a video to get premium access while its premium window is open. The price is read from the contract at call time and the connected account signs the payment in MetaMask."),
		mcp.WithString("video_id",
			mcp.Required(),
			mcp.Description("ID of the video as returned by list_videos"),
		),
	)
	return tool, payHandler(func(ctx context.Context, id uint64) (*services.ActionResult, error) {
		return videos.PremiumAccess(ctx, id)
	}, "Premium access confirmed", page, notifier)
}

func payHandler(pay func(context.Context, uint64) (*services.ActionResult, error), prefix string, page WalletPage, notifier *notify.Notifier) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := requireID(request, "video_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if result := page.openPage(); result != nil {
			return result, nil
		}
		result, err := pay(ctx, id)
		if err != nil {
			return errorResult(notifier, err), nil
		}
		return jsonResult(prefix, page.fields(map[string]any{
			"video_id":    id,
			"transaction": result,
		})), nil
	}
}
