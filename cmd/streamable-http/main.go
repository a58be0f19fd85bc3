package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload" // Automatically load .env file if present
	"github.com/lmittmann/tint"
	"github.com/rxtech-lab/ignitus-mcp/internal/api"
	"github.com/rxtech-lab/ignitus-mcp/internal/config"
	"github.com/rxtech-lab/ignitus-mcp/internal/mcp"
	"github.com/rxtech-lab/ignitus-mcp/internal/server"
	"github.com/rxtech-lab/ignitus-mcp/internal/services"
	"github.com/rxtech-lab/ignitus-mcp/internal/tools"
	"github.com/rxtech-lab/ignitus-mcp/internal/utils"
)

const defaultPort = 8080

// configureAndStartServer wires the services behind an authenticated /mcp
// endpoint and starts listening.
func configureAndStartServer(cfg *config.Config, dbService services.DBService, port int, opts ...server.Option) (*api.APIServer, *server.Services, int, error) {
	svc, err := server.InitializeServices(cfg, dbService, opts...)
	if err != nil {
		return nil, nil, 0, err
	}

	var authenticator *utils.JwtAuthenticator
	if cfg.JwksURI != "" {
		authenticator = utils.NewJwtAuthenticator(cfg.JwksURI)
	}

	apiServer := api.NewAPIServer(api.Dependencies{
		Session:             svc.Session,
		Bridge:              svc.Bridge,
		Videos:              svc.Videos,
		Campaigns:           svc.Campaigns,
		Uploads:             svc.Uploads,
		Notifier:            svc.Notifier,
		Authenticator:       authenticator,
		ResourceID:          cfg.ResourceID,
		AuthorizationServer: cfg.AuthorizationServer,
		BaseURL:             cfg.BaseURL,
	})

	pageURL, err := utils.GetWalletBridgeUrl(cfg.BaseURL, port)
	if err != nil {
		return nil, nil, 0, err
	}
	page := tools.WalletPage{URL: pageURL}
	if svc.Bridge != nil {
		page.Attached = svc.Bridge.Attached
	}
	apiServer.SetMCPServer(mcp.NewMCPServer(mcp.Dependencies{
		Session:   svc.Session,
		Videos:    svc.Videos,
		Campaigns: svc.Campaigns,
		Uploads:   svc.Uploads,
		Notifier:  svc.Notifier,
		Page:      page,
	}))

	// Authentication must be registered before the /mcp handler
	apiServer.EnableAuthentication()
	apiServer.EnableStreamableHttp()

	var portPtr *int
	if port != 0 {
		portPtr = &port
	}
	startedPort, err := apiServer.Start(portPtr)
	if err != nil {
		return nil, nil, 0, err
	}

	if err := svc.Start(context.Background()); err != nil {
		_ = apiServer.Shutdown()
		return nil, nil, 0, err
	}
	return apiServer, svc, startedPort, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      cfg.LogLevel,
		TimeFormat: time.RFC3339,
	})))

	port := cfg.Port
	if port == 0 {
		port = defaultPort
	}

	// initialize postgres database
	dbService, err := services.NewPostgresDBService(cfg.PostgresURL)
	if err != nil {
		slog.Error("Failed to initialize database service", "error", err)
		os.Exit(1)
	}

	if cfg.JwksURI == "" {
		slog.Warn("JWKS_URI is not set, every /mcp request will be rejected")
	}

	apiServer, svc, startedPort, err := configureAndStartServer(cfg, dbService, port)
	if err != nil {
		_ = dbService.Close()
		slog.Error("Failed to start API server", "error", err)
		os.Exit(1)
	}
	defer svc.Close()

	slog.Info("API server started", "port", startedPort, "wallet_mode", cfg.WalletMode)

	// Set up graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	slog.Info("Shutting down server")

	if err := apiServer.Shutdown(); err != nil {
		slog.Error("Error shutting down API server", "error", err)
	}

	slog.Info("Server shut down successfully")
}
