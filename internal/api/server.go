package api

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rxtech-lab/ignitus-mcp/internal/api/middleware"
	"github.com/rxtech-lab/ignitus-mcp/internal/mcp"
	"github.com/rxtech-lab/ignitus-mcp/internal/notify"
	"github.com/rxtech-lab/ignitus-mcp/internal/services"
	"github.com/rxtech-lab/ignitus-mcp/internal/session"
	"github.com/rxtech-lab/ignitus-mcp/internal/upload"
	"github.com/rxtech-lab/ignitus-mcp/internal/utils"
	"github.com/rxtech-lab/ignitus-mcp/internal/wallet"
)

const DefaultLongPoll = 25 * time.Second

// Dependencies are the services the HTTP surface is built on.
type Dependencies struct {
	Session *session.Manager
	// Bridge is nil when the server signs with a local key.
	Bridge    *wallet.Bridge
	Videos    services.VideoService
	Campaigns services.CampaignService
	Uploads   services.UploadService
	Notifier  *notify.Notifier
	// LongPoll bounds GET /api/wallet/requests. Defaults to DefaultLongPoll.
	LongPoll time.Duration
	// LogOutput receives the request log. Defaults to stderr.
	LogOutput io.Writer

	// Authenticator validates bearer tokens for /mcp, optional.
	Authenticator *utils.JwtAuthenticator
	ResourceID    string
	// AuthorizationServer is advertised in the protected resource metadata.
	AuthorizationServer string
	BaseURL             string
}

type APIServer struct {
	app       *fiber.App
	deps      Dependencies
	mcpServer *mcp.MCPServer
	port      int

	routesReady bool
	authEnabled bool
}

func NewAPIServer(deps Dependencies) *APIServer {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		BodyLimit:             upload.MaxFileSize + 1<<20,
	})

	if deps.LogOutput == nil {
		deps.LogOutput = os.Stderr
	}

	// Add middleware
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
		Output:     deps.LogOutput,
	}))

	if deps.LongPoll <= 0 {
		deps.LongPoll = DefaultLongPoll
	}

	return &APIServer{
		app:  app,
		deps: deps,
	}
}

// SetupRoutes registers the public routes. It is safe to call more than once.
func (s *APIServer) SetupRoutes() {
	if s.routesReady {
		return
	}
	s.routesReady = true

	// Wallet bridge page
	s.app.Get("/wallet", s.handleWalletPage)
	s.app.Get("/static/wallet.js", s.handleWalletJS)
	if s.deps.Bridge != nil {
		s.app.Post("/api/wallet/hello", s.handleWalletHello)
		s.app.Get("/api/wallet/requests", s.handleWalletNext)
		s.app.Post("/api/wallet/requests/:id", s.handleWalletResolve)
		s.app.Post("/api/wallet/events", s.handleWalletEvent)
	}

	// Session
	s.app.Get("/api/session", s.handleSession)
	s.app.Post("/api/session/connect", s.handleConnect)
	s.app.Post("/api/session/restore", s.handleRestore)
	s.app.Post("/api/session/disconnect", s.handleDisconnect)
	s.app.Post("/api/session/ensure-chain", s.handleEnsureChain)
	s.app.Get("/api/chain", s.handleChain)

	// Listings and actions
	s.app.Get("/api/videos", s.handleListVideos)
	s.app.Get("/api/videos/closed", s.handleListClosedVideos)
	s.app.Post("/api/videos", s.handleCreateVideo)
	s.app.Post("/api/videos/:id/watch", s.handleWatchVideo)
	s.app.Post("/api/videos/:id/premium", s.handlePremiumAccess)
	s.app.Get("/api/campaigns", s.handleListCampaigns)
	s.app.Post("/api/campaigns", s.handleCreateCampaign)
	s.app.Post("/api/campaigns/:id/donate", s.handleDonate)
	s.app.Post("/api/uploads", s.handleUpload)

	s.app.Get("/api/notifications", s.handleNotifications)

	s.app.Get("/.well-known/oauth-protected-resource", s.handleOAuthProtectedResource)
	s.app.Get("/.well-known/oauth-protected-resource/mcp", s.handleOAuthProtectedResource)

	s.app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Health check
	s.app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(map[string]string{"status": "ok"})
	})
}

// EnableAuthentication protects /mcp with bearer-token auth.
func (s *APIServer) EnableAuthentication() {
	if s.authEnabled {
		return
	}
	s.authEnabled = true
	s.app.Use("/mcp", middleware.AuthMiddleware(middleware.AuthConfig{
		ResourceID:       s.deps.ResourceID,
		JWTAuthenticator: s.deps.Authenticator,
		ResourceMetadata: s.resourceMetadataURL(),
		SkipWellKnown:    true,
	}))
}

// EnableStreamableHttp mounts the MCP server at /mcp.
func (s *APIServer) EnableStreamableHttp() {
	s.SetupRoutes()
	if s.mcpServer == nil {
		slog.Warn("MCP server not set, /mcp is not mounted")
		return
	}
	streamable := server.NewStreamableHTTPServer(
		s.mcpServer.GetServer(),
		server.WithHTTPContextFunc(s.mcpContext),
	)
	s.app.All("/mcp", adaptor.HTTPHandler(streamable))
}

// mcpContext carries the bearer token's user into tool handlers. The token was
// already checked by the auth middleware; the JWKS lookup hits the key cache.
func (s *APIServer) mcpContext(ctx context.Context, r *http.Request) context.Context {
	if s.deps.Authenticator == nil {
		return ctx
	}
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return ctx
	}
	user, err := s.deps.Authenticator.ValidateToken(strings.TrimSpace(token))
	if err != nil {
		return ctx
	}
	return utils.WithAuthenticatedUser(ctx, user)
}

// Start starts the server on port, or on a random available port when port is nil
func (s *APIServer) Start(port *int) (int, error) {
	s.SetupRoutes()

	listenPort := 0
	if port != nil {
		listenPort = *port
	}
	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", listenPort))
	if err != nil {
		return 0, fmt.Errorf("failed to listen on port %d: %w", listenPort, err)
	}

	s.port = listener.Addr().(*net.TCPAddr).Port

	go func() {
		if err := s.app.Listener(listener); err != nil {
			slog.Error("API server stopped", "error", err)
		}
	}()

	return s.port, nil
}

func (s *APIServer) Shutdown() error {
	return s.app.Shutdown()
}

func (s *APIServer) GetPort() int {
	return s.port
}

// GetFiberApp returns the underlying fiber app
func (s *APIServer) GetFiberApp() *fiber.App {
	return s.app
}

// SetMCPServer sets the MCP server instance for accessing MCP methods
func (s *APIServer) SetMCPServer(mcpServer *mcp.MCPServer) {
	s.mcpServer = mcpServer
}

// GetMCPServer returns the MCP server instance
func (s *APIServer) GetMCPServer() *mcp.MCPServer {
	return s.mcpServer
}

func (s *APIServer) resourceMetadataURL() string {
	if s.deps.BaseURL == "" {
		return ""
	}
	return strings.TrimRight(s.deps.BaseURL, "/") + "/.well-known/oauth-protected-resource/mcp"
}
