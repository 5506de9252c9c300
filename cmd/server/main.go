package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/solderinua-oss/solder-warehouse/internal/api"
	"github.com/solderinua-oss/solder-warehouse/internal/app"
	"github.com/solderinua-oss/solder-warehouse/internal/config"
	"github.com/solderinua-oss/solder-warehouse/pkg/logger"
)

func main() {
	cfg := config.Load()

	logger.Setup(os.Stderr, cfg.LogLevel, cfg.Server.Mode == "debug")
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	warehouse, err := app.New(ctx, cfg)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("failed to initialize warehouse")
	}
	defer func() {
		if err := warehouse.Close(); err != nil {
			logger.Log.Warn().Err(err).Msg("close failed")
		}
	}()

	router := api.NewRouter(&api.Services{
		Ingest:    warehouse.Ingest,
		Warehouse: warehouse.Warehouse,
		Drive:     warehouse.Drive,
	}, api.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		UploadDir:      cfg.App.UploadDir,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()
	logger.Log.Info().Msg("shutting down server")

	// An in-flight ingest gets the full ingest timeout to finish.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.IngestTimeout())
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error().Err(err).Msg("server forced to shutdown")
	}
	logger.Log.Info().Msg("server exiting")
}
