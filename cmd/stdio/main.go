package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
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

// Build information (set via ldflags)
var (
	Version    = "dev"
	CommitHash = "unknown"
	BuildTime  = "unknown"
)

// configureAndStartServer wires the services, starts the wallet page server
// and builds the MCP server pointing at it.
func configureAndStartServer(cfg *config.Config, dbService services.DBService, port int, logOutput io.Writer, opts ...server.Option) (*api.APIServer, *server.Services, int, error) {
	svc, err := server.InitializeServices(cfg, dbService, opts...)
	if err != nil {
		return nil, nil, 0, err
	}

	// NO AUTHENTICATION: the wallet page and /api are only reachable from this machine
	apiServer := api.NewAPIServer(api.Dependencies{
		Session:   svc.Session,
		Bridge:    svc.Bridge,
		Videos:    svc.Videos,
		Campaigns: svc.Campaigns,
		Uploads:   svc.Uploads,
		Notifier:  svc.Notifier,
		LogOutput: logOutput,
	})
	apiServer.SetupRoutes()

	// Start API server first to get the actual port
	var portPtr *int
	if port != 0 {
		portPtr = &port
	}
	startedPort, err := apiServer.Start(portPtr)
	if err != nil {
		return nil, nil, 0, err
	}

	pageURL, err := utils.GetWalletBridgeUrl(cfg.BaseURL, startedPort)
	if err != nil {
		_ = apiServer.Shutdown()
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

	if err := svc.Start(context.Background()); err != nil {
		_ = apiServer.Shutdown()
		return nil, nil, 0, err
	}
	return apiServer, svc, startedPort, nil
}

func main() {
	// Command line flags
	var showVersion = flag.Bool("version", false, "Show version information")
	var showHelp = flag.Bool("help", false, "Show help information")
	var enableLog = flag.Bool("log", false, "Enable logging output")
	flag.Parse()

	// Show version information
	if *showVersion {
		fmt.Fprintf(os.Stderr, "Ignitus MCP Server\n")
		fmt.Fprintf(os.Stderr, "Version: %s\n", Version)
		fmt.Fprintf(os.Stderr, "Commit: %s\n", CommitHash)
		fmt.Fprintf(os.Stderr, "Built: %s\n", BuildTime)
		return
	}

	if *showHelp {
		fmt.Fprintf(os.Stderr, "Ignitus MCP Server\n\n")
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		fmt.Fprintf(os.Stderr, "  --version    Show version information\n")
		fmt.Fprintf(os.Stderr, "  --help       Show this help message\n")
		fmt.Fprintf(os.Stderr, "  --log        Enable logging output\n\n")
		fmt.Fprintf(os.Stderr, "Description:\n")
		fmt.Fprintf(os.Stderr, "  Pay-per-view videos and crowdfunding campaigns on the Ignitus contract.\n")
		fmt.Fprintf(os.Stderr, "  Provides 14 MCP tools; transactions are signed in the browser wallet page.\n\n")
		fmt.Fprintf(os.Stderr, "Database: ~/ignitus.db (SQLite)\n")
		fmt.Fprintf(os.Stderr, "Wallet page: http://localhost:[random-port]/wallet\n")
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to load configuration:", err)
		os.Exit(1)
	}

	// stdout carries the MCP protocol, logs go to stderr and only with --log
	logOutput := io.Discard
	if *enableLog {
		logOutput = os.Stderr
		slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
			Level:      cfg.LogLevel,
			TimeFormat: time.RFC3339,
		})))
	} else {
		slog.SetDefault(slog.New(slog.DiscardHandler))
		log.SetOutput(io.Discard)
	}

	// Get home directory for database
	homePath, err := os.UserHomeDir()
	if err != nil {
		slog.Error("Failed to get home directory", "error", err)
		os.Exit(1)
	}

	dbService, err := services.NewSqliteDBService(filepath.Join(homePath, "ignitus.db"))
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}

	// Configure and start server
	apiServer, svc, port, err := configureAndStartServer(cfg, dbService, cfg.Port, logOutput)
	if err != nil {
		_ = dbService.Close()
		slog.Error("Failed to start API server", "error", err)
		os.Exit(1)
	}
	defer svc.Close()

	slog.Info("API server started", "port", port, "wallet_mode", cfg.WalletMode)

	mcpServer := apiServer.GetMCPServer()
	if mcpServer == nil {
		slog.Error("MCP server not found")
		os.Exit(1)
	}

	// StartStdioServer MCP server in a goroutine
	go func() {
		if err := mcpServer.StartStdioServer(); err != nil {
			fmt.Fprintln(os.Stderr, "Failed to start MCP server:", err)
			os.Exit(1)
		}
	}()

	// Set up graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	slog.Info("Shutting down servers")

	if err := apiServer.Shutdown(); err != nil {
		fmt.Fprintln(os.Stderr, "Error shutting down API server:", err)
	}

	slog.Info("Servers shut down successfully")
}
