package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rxtech-lab/ignitus-mcp/internal/notify"
	"github.com/rxtech-lab/ignitus-mcp/internal/services"
)

func NewDonateCampaignTool(campaigns services.CampaignService, page WalletPage, notifier *notify.Notifier) (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("donate_campaign",
		mcp.WithDescription("Donate to a crowdfunding campaign. The connected account signs the payment in MetaMask."),
		mcp.WithString("campaign_id",
			mcp.Required(),
			mcp.Description("ID of the campaign as returned by list_campaigns"),
		),
		mcp.WithString("amount",
			mcp.Required(),
			mcp.Description("Amount to donate in the native currency, e.g. 0.1"),
		),
	)

	handler := func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := requireID(request, "campaign_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		amount, err := request.RequireString("amount")
		if err != nil {
			return mcp.NewToolResultError("amount parameter is required"), nil
		}

		if result := page.openPage(); result != nil {
			return result, nil
		}
		result, err := campaigns.Donate(ctx, id, amount)
		if err != nil {
			return errorResult(notifier, err), nil
		}
		return jsonResult("Donation confirmed", page.fields(map[string]any{
			"campaign_id": id,
			"transaction": result,
		})), nil
	}

	return tool, handler
}
