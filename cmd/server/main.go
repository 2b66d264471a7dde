// Agent Office Visualizer server
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ashureev/agent-office/internal/api"
	"github.com/ashureev/agent-office/internal/config"
	"github.com/ashureev/agent-office/internal/hub"
	"github.com/ashureev/agent-office/internal/middleware"
	"github.com/ashureev/agent-office/internal/office"
	"github.com/ashureev/agent-office/internal/watch"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting server", "port", cfg.Port, "agent_ttl", cfg.AgentTTL)

	// Initialize services.
	viewers := hub.New()
	svc := office.New(viewers, office.Options{TTL: cfg.AgentTTL})
	defer svc.Close()

	// Initialize handlers.
	apiHandler := api.NewHandler(svc)
	wsHandler := hub.NewHandler(viewers, svc)

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.CORS())

	apiHandler.RegisterRoutes(r)

	// WebSocket endpoint for viewers.
	r.Get("/ws", wsHandler.ServeHTTP)

	// Create server.
	// Note: viewer connections are long-lived, so no WriteTimeout.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start the filesystem producer if directories are configured.
	if cfg.WatcherEnabled() {
		watcher := watch.New(svc, watch.Options{
			Dirs:       cfg.WatchDirs,
			BrainDir:   cfg.BrainDir,
			BridgeFile: cfg.BridgeFile,
			Debounce:   cfg.DebounceWindow,
		})
		go func() {
			if err := watcher.Run(ctx); err != nil {
				slog.Error("Filesystem producer stopped", "error", err)
			}
		}()
	} else {
		slog.Info("Filesystem producer disabled (WATCH_DIRS not set)")
	}

	// Start server.
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}
