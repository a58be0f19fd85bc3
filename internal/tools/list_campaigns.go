package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rxtech-lab/ignitus-mcp/internal/models"
	"github.com/rxtech-lab/ignitus-mcp/internal/notify"
	"github.com/rxtech-lab/ignitus-mcp/internal/services"
)

func NewListCampaignsTool(campaigns services.CampaignService, notifier *notify.Notifier) (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("list_campaigns",
		mcp.WithDescription("List the crowdfunding campaigns of the Ignitus contract with target, amount collected, donators and days left. Requires a connected wallet on the expected chain."),
		mcp.WithBoolean("active_only",
			mcp.Description("Only return campaigns whose deadline has not passed (default: false)"),
		),
	)

	handler := func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		activeOnly := request.GetBool("active_only", false)

		all, err := campaigns.ListCampaigns(ctx)
		if err != nil {
			return errorResult(notifier, err), nil
		}
		list := make([]models.CampaignListing, 0, len(all))
		for _, campaign := range all {
			if activeOnly && !campaign.Active {
				continue
			}
			list = append(list, campaign)
		}
		return jsonResult("Campaigns listed", map[string]any{
			"campaigns": list,
			"count":     len(list),
		}), nil
	}

	return tool, handler
}
