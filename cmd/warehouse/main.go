package main

import (
	"context"
	"os"

	"github.com/solderinua-oss/solder-warehouse/internal/app"
	"github.com/solderinua-oss/solder-warehouse/internal/config"
	"github.com/solderinua-oss/solder-warehouse/pkg/logger"
)

func main() {
	cfg := config.Load()
	logger.Setup(os.Stderr, cfg.LogLevel, true)

	cliApp := newCLI(func(ctx context.Context) (*app.App, error) {
		return app.New(ctx, cfg)
	}, cfg.App.UploadDir)

	if err := cliApp.Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("warehouse command failed")
	}
}
