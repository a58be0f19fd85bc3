package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/rxtech-lab/ignitus-mcp/internal/api"
	"github.com/rxtech-lab/ignitus-mcp/internal/config"
	"github.com/rxtech-lab/ignitus-mcp/internal/server"
	"github.com/rxtech-lab/ignitus-mcp/internal/services"
)

var (
	apiServer *api.APIServer
	initOnce  sync.Once
	initErr   error
)

// Handler is the main Vercel function handler
func Handler(w http.ResponseWriter, r *http.Request) {
	initOnce.Do(func() {
		initErr = initializeAPIServer()
	})
	if initErr != nil {
		slog.Error("Failed to initialize API server", "error", initErr)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	adaptor.FiberApp(apiServer.GetFiberApp())(w, r)
}

// initializeAPIServer serves the read-only session and listing routes. The
// wallet bridge needs a long-lived process, so the function runs with a local
// key or reports the session as disconnected.
func initializeAPIServer() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	dbPath, err := getDatabasePath()
	if err != nil {
		return fmt.Errorf("failed to get database path: %w", err)
	}
	dbService, err := services.NewSqliteDBService(dbPath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	svc, err := server.InitializeServices(cfg, dbService)
	if err != nil {
		return err
	}

	apiServer = api.NewAPIServer(api.Dependencies{
		Session:   svc.Session,
		Videos:    svc.Videos,
		Campaigns: svc.Campaigns,
		Uploads:   svc.Uploads,
		Notifier:  svc.Notifier,
		BaseURL:   cfg.BaseURL,
	})
	apiServer.SetupRoutes()

	// Add a root route for Vercel
	apiServer.GetFiberApp().Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Ignitus MCP API",
			"status":  "running",
			"version": "1.0.0",
		})
	})

	return svc.Start(context.Background())
}

// getDatabasePath returns the appropriate database path for Vercel environment
func getDatabasePath() (string, error) {
	// In Vercel, we need to use /tmp for writable storage
	if os.Getenv("VERCEL") == "1" {
		return "/tmp/ignitus.db", nil
	}

	homePath, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homePath, "ignitus.db"), nil
}
