package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rxtech-lab/ignitus-mcp/internal/models"
	"github.com/rxtech-lab/ignitus-mcp/internal/notify"
	"github.com/rxtech-lab/ignitus-mcp/internal/services"
)

func NewListVideosTool(videos services.VideoService, notifier *notify.Notifier) (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("list_videos",
		mcp.WithDescription("List the active pay-per-view videos of the Ignitus contract with their watch and premium prices, premium deadline and whether the connected account has already paid. Requires a connected wallet on the expected chain."),
	)
	return tool, videoListHandler(func(ctx context.Context) ([]models.VideoListing, error) {
		return videos.ListVideos(ctx)
	}, "Videos listed", notifier)
}

func NewListClosedVideosTool(videos services.VideoService, notifier *notify.Notifier) (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("list_closed_videos",
		mcp.WithDescription("List active videos whose premium window has been closed on chain. Requires a connected wallet on the expected chain."),
	)
	return tool, videoListHandler(func(ctx context.Context) ([]models.VideoListing, error) {
		return videos.ListClosedVideos(ctx)
	}, "Closed videos listed", notifier)
}

func videoListHandler(list func(context.Context) ([]models.VideoListing, error), prefix string, notifier *notify.Notifier) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		videos, err := list(ctx)
		if err != nil {
			return errorResult(notifier, err), nil
		}
		if videos == nil {
			videos = []models.VideoListing{}
		}
		return jsonResult(prefix, map[string]any{
			"videos": videos,
			"count":  len(videos),
		}), nil
	}
}
