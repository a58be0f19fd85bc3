package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rxtech-lab/ignitus-mcp/internal/notify"
	"github.com/rxtech-lab/ignitus-mcp/internal/services"
)

func NewCreateVideoTool(videos services.VideoService, page WalletPage, notifier *notify.Notifier) (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("create_video",
		mcp.WithDescription("Publish a pay-per-view video on the Ignitus contract. The connected account becomes the owner and signs the transaction in MetaMask. Use upload_file first to get URLs for the video and thumbnail."),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Video title"),
		),
		mcp.WithString("description",
			mcp.Required(),
			mcp.Description("Video description"),
		),
		mcp.WithString("video_url",
			mcp.Required(),
			mcp.Description("URL of the video file"),
		),
		mcp.WithString("thumbnail_url",
			mcp.Required(),
			mcp.Description("URL of the thumbnail image"),
		),
		mcp.WithString("premium_price",
			mcp.Required(),
			mcp.Description("Price of premium access in the native currency, e.g. 0.5"),
		),
		mcp.WithString("watch_price",
			mcp.Required(),
			mcp.Description("Price to watch in the native currency, e.g. 0.01"),
		),
		mcp.WithString("deadline",
			mcp.Required(),
			mcp.Description("End of the premium window: unix seconds, RFC 3339 or YYYY-MM-DD"),
		),
	)

	handler := func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		deadline, err := parseDeadline(request.GetString("deadline", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		form := services.CreateVideoForm{
			Title:        request.GetString("title", ""),
			Description:  request.GetString("description", ""),
			VideoURL:     request.GetString("video_url", ""),
			ThumbnailURL: request.GetString("thumbnail_url", ""),
			PremiumPrice: request.GetString("premium_price", ""),
			WatchPrice:   request.GetString("watch_price", ""),
			Deadline:     deadline,
		}

		if result := page.openPage(); result != nil {
			return result, nil
		}
		result, err := videos.CreateVideo(ctx, form)
		if err != nil {
			return errorResult(notifier, err), nil
		}
		return jsonResult(fmt.Sprintf("Video created: %s", result.Message), page.fields(map[string]any{
			"transaction": result,
		})), nil
	}

	return tool, handler
}
