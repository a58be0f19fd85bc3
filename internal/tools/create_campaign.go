package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rxtech-lab/ignitus-mcp/internal/notify"
	"github.com/rxtech-lab/ignitus-mcp/internal/services"
)

func NewCreateCampaignTool(campaigns services.CampaignService, page WalletPage, notifier *notify.Notifier) (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("create_campaign",
		mcp.WithDescription("Start a crowdfunding campaign on the Ignitus contract. The connected account becomes the owner and signs the transaction in MetaMask."),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Campaign title"),
		),
		mcp.WithString("description",
			mcp.Required(),
			mcp.Description("Campaign story"),
		),
		mcp.WithString("target",
			mcp.Required(),
			mcp.Description("Funding goal in the native currency, e.g. 10"),
		),
		mcp.WithString("deadline",
			mcp.Required(),
			mcp.Description("End of the campaign: unix seconds, RFC 3339 or YYYY-MM-DD"),
		),
		mcp.WithString("image",
			mcp.Required(),
			mcp.Description("URL of the campaign image"),
		),
	)

	handler := func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		deadline, err := parseDeadline(request.GetString("deadline", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		form := services.CreateCampaignForm{
			Title:       request.GetString("title", ""),
			Description: request.GetString("description", ""),
			Target:      request.GetString("target", ""),
			Deadline:    deadline,
			Image:       request.GetString("image", ""),
		}

		if result := page.openPage(); result != nil {
			return result, nil
		}
		result, err := campaigns.CreateCampaign(ctx, form)
		if err != nil {
			return errorResult(notifier, err), nil
		}
		return jsonResult("Campaign created", page.fields(map[string]any{
			"transaction": result,
		})), nil
	}

	return tool, handler
}
