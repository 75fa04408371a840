package main

import (
	"context"

	"github.com/joho/godotenv"

	"github.com/EdnaValter/Tracknamic-AI-Lab/internal/app"
	"github.com/EdnaValter/Tracknamic-AI-Lab/pkg/config"
	"github.com/EdnaValter/Tracknamic-AI-Lab/pkg/shutdown"
)

// version is set via ldflags during release builds.
var version = "dev"

func main() {
	_ = godotenv.Load(".env")

	flags := config.ParseFlags()
	cfg, err := config.LoadEffective(flags)
	if err != nil {
		shutdown.Abort("failed to load config", err, "", 0)
	}

	ctx, cancel := shutdown.SetupSignalHandler(context.Background())
	defer cancel()

	a, err := app.New(ctx, cfg, version)
	if err != nil {
		shutdown.Abort("startup failed", err, cfg.Server.DBPath)
	}
	if err := a.Run(ctx); err != nil {
		shutdown.Abort("server exited", err, cfg.Server.DBPath)
	}
}
