// Package app wires configuration into the stores and services shared by the
// HTTP server and the CLI.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/solderinua-oss/solder-warehouse/internal/analytics"
	"github.com/solderinua-oss/solder-warehouse/internal/cache"
	"github.com/solderinua-oss/solder-warehouse/internal/config"
	"github.com/solderinua-oss/solder-warehouse/internal/drive"
	"github.com/solderinua-oss/solder-warehouse/internal/normalize"
	"github.com/solderinua-oss/solder-warehouse/internal/repository"
	"github.com/solderinua-oss/solder-warehouse/internal/repository/memory"
	"github.com/solderinua-oss/solder-warehouse/internal/repository/postgres"
	"github.com/solderinua-oss/solder-warehouse/internal/service"
	"github.com/solderinua-oss/solder-warehouse/internal/storage"
)

// App holds the wired services. Close releases the store and the cache.
type App struct {
	Store     repository.Store
	Ingest    *service.IngestService
	Warehouse *service.WarehouseService
	// Objects is nil unless object storage is enabled.
	Objects storage.ObjectStorage
	// Drive is nil unless Google Drive credentials are configured.
	Drive http.Handler

	closers []func() error
}

// New builds every component cfg enables. Optional integrations that fail to
// start are logged and left out.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	store, err := openStore(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}
	a := &App{Store: store}
	if store.Close != nil {
		a.closers = append(a.closers, store.Close)
	}

	reportCache, err := cache.NewReportCache(ctx, cfg.Cache)
	if err != nil {
		log.Warn().Err(err).Msg("report cache unavailable, continuing without it")
		reportCache = cache.NewNoopReportCache()
	}
	if c, ok := reportCache.(interface{ Close() error }); ok {
		a.closers = append(a.closers, c.Close)
	}

	if cfg.Storage.Enabled {
		s3, err := storage.NewS3Client(cfg.Storage)
		if err != nil {
			log.Warn().Err(err).Msg("object storage unavailable, uploads will not be archived")
		} else {
			a.Objects = s3
		}
	}

	policy := analytics.DefaultPolicy().WithOverrides(cfg.Policy.HighTurnoverROI, cfg.Policy.FastConsumableMarkers)
	lock := &sync.RWMutex{}

	a.Ingest = service.NewIngestService(store, service.IngestOptions{
		Timeout:        cfg.IngestTimeout(),
		LedgerMode:     repository.ParseLedgerMode(cfg.App.LedgerMode),
		DeliveredTerms: cfg.Policy.DeliveredTerms,
		Owners:         normalize.NewOwnerResolver(cfg.Owners.MineMarkers, cfg.Owners.OtherMarkers),
		Cache:          reportCache,
		Archive:        a.Objects,
		Lock:           lock,
	})
	a.Warehouse = service.NewWarehouseService(store, service.WarehouseOptions{
		CountMode: analytics.ParseCountMode(cfg.App.CountMode),
		Policy:    policy,
		Cache:     reportCache,
		Lock:      lock,
	})

	if cfg.Drive.CredentialsJSON != "" {
		src, err := drive.NewService(ctx, cfg.Drive.CredentialsJSON)
		if err != nil {
			log.Warn().Err(err).Msg("google drive unavailable, drive routes disabled")
		} else {
			a.Drive = drive.NewHandler(src, drive.NewImporter(src, a.Ingest)).Router()
		}
	}

	log.Info().
		Str("db_driver", cfg.Database.Driver).
		Bool("cache", cfg.Cache.Enabled).
		Bool("archive", a.Objects != nil).
		Bool("drive", a.Drive != nil).
		Str("ledger_mode", string(repository.ParseLedgerMode(cfg.App.LedgerMode))).
		Str("count_mode", string(analytics.ParseCountMode(cfg.App.CountMode))).
		Msg("warehouse wired")

	return a, nil
}

func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func openStore(ctx context.Context, cfg *config.DatabaseConfig) (repository.Store, error) {
	switch cfg.Driver {
	case "", "memory":
		log.Warn().Msg("using in-memory store, data is lost on exit")
		return memory.NewStore(), nil
	case "postgres", "pgx":
		ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
		defer cancel()

		db, err := postgres.NewDB(ctx, cfg)
		if err != nil {
			return repository.Store{}, fmt.Errorf("open database: %w", err)
		}
		return postgres.NewStore(db), nil
	default:
		return repository.Store{}, fmt.Errorf("unknown DB_DRIVER %q", cfg.Driver)
	}
}
