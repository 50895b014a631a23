package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/mikeboe/web-researcher/pkg/chat"
	"github.com/mikeboe/web-researcher/pkg/config"
	"github.com/mikeboe/web-researcher/pkg/research"
	"github.com/mikeboe/web-researcher/pkg/server"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, nil)))

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}
	cfg := config.Load()
	ctx := context.Background()

	base, err := cfg.NewEngine(ctx, slog.Default())
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	// Gateways are shared; each run gets its own engine value so its logger can be captured.
	svc := server.NewService(func(ctx context.Context, logger *slog.Logger) (*research.Engine, error) {
		e := *base
		e.Logger = logger
		return &e, nil
	}, slog.Default())
	tools := chat.NewResearchToolset(svc.Research)

	chatSvc, err := chat.NewService(ctx, cfg, tools)
	if err != nil {
		slog.Warn("Chat disabled", "error", err)
		chatSvc = nil
	}

	r := server.NewRouter(server.NewHandler(svc, chatSvc, tools))

	slog.Info("Server starting", "port", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		slog.Error("Failed to start server", "error", err)
		os.Exit(1)
	}
}
