package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rxtech-lab/ignitus-mcp/internal/notify"
	"github.com/rxtech-lab/ignitus-mcp/internal/services"
	"github.com/rxtech-lab/ignitus-mcp/internal/tools"
)

const (
	ServerName    = "Ignitus MCP Server"
	ServerVersion = "1.0.0"
)

// Dependencies are the services the tools are built on.
type Dependencies struct {
	Session   tools.WalletSession
	Videos    services.VideoService
	Campaigns services.CampaignService
	Uploads   services.UploadService
	Notifier  *notify.Notifier
	Page      tools.WalletPage
}

type MCPServer struct {
	server *server.MCPServer
}

func NewMCPServer(deps Dependencies) *MCPServer {
	mcpServer := &MCPServer{}
	mcpServer.InitializeTools(deps)
	return mcpServer
}

func (s *MCPServer) InitializeTools(deps Dependencies) {
	srv := server.NewMCPServer(
		ServerName,
		ServerVersion,
		server.WithToolCapabilities(true),
		server.WithPromptCapabilities(true),
	)

	srv.AddPrompt(mcp.NewPrompt("ignitus-mcp-usage",
		mcp.WithPromptDescription("Instructions and guidance for using Ignitus MCP tools"),
		mcp.WithArgument("tool_category",
			mcp.ArgumentDescription("Category of tools to get instructions for (wallet, videos, campaigns, uploads, or all)"),
			mcp.RequiredArgument(),
		),
	), func(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		category := request.Params.Arguments["tool_category"]
		if category == "" {
			return nil, fmt.Errorf("tool_category is required")
		}

		return mcp.NewGetPromptResult(
			fmt.Sprintf("Ignitus MCP Tools - %s", category),
			[]mcp.PromptMessage{
				mcp.NewPromptMessage(
					mcp.RoleUser,
					mcp.NewTextContent(getToolInstructions(category)),
				),
			},
		), nil
	})

	// Wallet Session Tools
	srv.AddTool(tools.NewConnectWalletTool(deps.Session, deps.Page, deps.Notifier))
	srv.AddTool(tools.NewDisconnectWalletTool(deps.Session))
	srv.AddTool(tools.NewWalletStatusTool(deps.Session, deps.Page))
	srv.AddTool(tools.NewEnsureChainTool(deps.Session, deps.Page, deps.Notifier))

	// Video Tools
	srv.AddTool(tools.NewListVideosTool(deps.Videos, deps.Notifier))
	srv.AddTool(tools.NewListClosedVideosTool(deps.Videos, deps.Notifier))
	srv.AddTool(tools.NewCreateVideoTool(deps.Videos, deps.Page, deps.Notifier))
	srv.AddTool(tools.NewWatchVideoTool(deps.Videos, deps.Page, deps.Notifier))
	srv.AddTool(tools.NewPremiumAccessTool(deps.Videos, deps.Page, deps.Notifier))

	// Campaign Tools
	srv.AddTool(tools.NewListCampaignsTool(deps.Campaigns, deps.Notifier))
	srv.AddTool(tools.NewCreateCampaignTool(deps.Campaigns, deps.Page, deps.Notifier))
	srv.AddTool(tools.NewDonateCampaignTool(deps.Campaigns, deps.Page, deps.Notifier))

	// Upload and Notification Tools
	srv.AddTool(tools.NewUploadFileTool(deps.Uploads, deps.Notifier))
	srv.AddTool(tools.NewListNotificationsTool(deps.Notifier))

	s.server = srv
}

func getToolInstructions(category string) string {
	switch category {
	case "wallet":
		return `Wallet Session Tools:

1. connect_wallet - Connect MetaMask and move it to the expected chain
   Usage: Call first. In browser mode the user must keep the wallet page open and approve the prompts

2. disconnect_wallet - Forget the connected account
   Usage: Drops the contract binding without contacting the wallet

3. wallet_status - Show state, account and chain
   Usage: Check whether the session is ready before calling contract tools

4. ensure_chain - Switch the wallet back to the expected chain
   Usage: Use when wallet_status reports connected_wrong_chain`

	case "videos":
		return `Video Tools:

1. list_videos - List active pay-per-view videos with prices and paid flag
2. list_closed_videos - List videos whose premium window was closed on chain
3. create_video - Publish a video (prices in the native currency, deadline as a date)
4. watch_video - Pay the watch price read from the contract
5. premium_access - Pay the premium price read from the contract

All video tools require wallet_status to report connected_ready.`

	case "campaigns":
		return `Campaign Tools:

1. list_campaigns - List campaigns, optionally only the active ones
2. create_campaign - Start a campaign with a target and deadline
3. donate_campaign - Donate an amount in the native currency`

	case "uploads":
		return `Upload Tools:

1. upload_file - Pin a file to IPFS and get its gateway URL
   Usage: Upload the video and thumbnail first, then pass the URLs to create_video

2. list_notifications - Show the latest success and error notifications`

	case "all":
		return `Ignitus MCP Tools Overview:

This MCP server provides 14 tools for the Ignitus pay-per-view and crowdfunding contract:

WALLET SESSION (4 tools):
- connect_wallet, disconnect_wallet, wallet_status, ensure_chain

VIDEOS (5 tools):
- list_videos, list_closed_videos, create_video, watch_video, premium_access

CAMPAIGNS (3 tools):
- list_campaigns, create_campaign, donate_campaign

UPLOADS AND NOTIFICATIONS (2 tools):
- upload_file, list_notifications

Transactions are signed by the user's wallet in the browser wallet page.
No private keys are handled by the server unless it runs in local wallet mode.`

	default:
		return `Invalid category. Available categories: wallet, videos, campaigns, uploads, all`
	}
}

// GetServer returns the underlying MCP server
func (s *MCPServer) GetServer() *server.MCPServer {
	return s.server
}

func (s *MCPServer) StartStdioServer() error {
	return server.ServeStdio(s.server)
}
