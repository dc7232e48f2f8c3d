package main

import (
	"log/slog"
	"os"

	"github.com/event-mate/backend/internal/config"
	"github.com/event-mate/backend/internal/server"
)

func main() {
	environment, err := config.LoadEnv()
	if err != nil {
		slog.Error("Failed to load environment", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load(environment.ConfigPath)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	if err := server.StartUser(cfg); err != nil {
		os.Exit(1)
	}
}
