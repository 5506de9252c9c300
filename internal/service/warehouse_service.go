package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/solderinua-oss/solder-warehouse/internal/analytics"
	"github.com/solderinua-oss/solder-warehouse/internal/cache"
	"github.com/solderinua-oss/solder-warehouse/internal/domain"
	"github.com/solderinua-oss/solder-warehouse/internal/repository"
)

// WarehouseOptions configures a WarehouseService.
type WarehouseOptions struct {
	CountMode analytics.CountMode
	Policy    analytics.Policy
	Cache     cache.ReportCache
	Lock      *sync.RWMutex
}

// WarehouseService serves the catalog, the ledger and the reports derived from them.
type WarehouseService struct {
	catalog   repository.CatalogRepository
	ledger    repository.LedgerRepository
	cache     cache.ReportCache
	countMode analytics.CountMode
	policy    analytics.Policy
	analyzer  *analytics.Analyzer
	lock      *sync.RWMutex
}

func NewWarehouseService(store repository.Store, opts WarehouseOptions) *WarehouseService {
	if opts.Cache == nil {
		opts.Cache = cache.NewNoopReportCache()
	}
	if opts.Lock == nil {
		opts.Lock = &sync.RWMutex{}
	}
	if opts.Policy.LookbackDays == 0 {
		opts.Policy = analytics.DefaultPolicy()
	}
	if opts.CountMode == "" {
		opts.CountMode = analytics.CountAuto
	}

	return &WarehouseService{
		catalog:   store.Catalog,
		ledger:    store.Ledger,
		cache:     opts.Cache,
		countMode: opts.CountMode,
		policy:    opts.Policy,
		analyzer:  analytics.NewAnalyzer(opts.Policy),
		lock:      opts.Lock,
	}
}

func (s *WarehouseService) ListProducts(ctx context.Context) ([]domain.Product, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	products, err := s.catalog.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	if products == nil {
		products = make([]domain.Product, 0)
	}
	return products, nil
}

// ListSales returns the ledger, newest first.
func (s *WarehouseService) ListSales(ctx context.Context) ([]domain.SaleEvent, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	events, err := s.ledger.FindSortedByDateDesc(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	if events == nil {
		events = make([]domain.SaleEvent, 0)
	}
	return events, nil
}

// GetStats attributes profit over the ledger. Reports are cached under the
// read lock so an ingest cannot slip between compute and store.
func (s *WarehouseService) GetStats(ctx context.Context) (*domain.Stats, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	if stats, ok, err := s.cache.GetStats(ctx, s.countMode); err == nil && ok {
		return stats, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("warehouse: cache get stats failed")
	}

	events, err := s.ledger.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}

	stats := analytics.ComputeStats(events, s.countMode)
	if err := s.cache.SetStats(ctx, s.countMode, stats); err != nil {
		log.Warn().Err(err).Msg("warehouse: cache set stats failed")
	}
	return &stats, nil
}

func (s *WarehouseService) GetCapitalSplit(ctx context.Context) (*domain.CapitalSplit, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	if split, ok, err := s.cache.GetCapital(ctx); err == nil && ok {
		return split, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("warehouse: cache get capital failed")
	}

	products, err := s.catalog.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	split := analytics.ComputeCapitalSplit(products)
	if err := s.cache.SetCapital(ctx, split); err != nil {
		log.Warn().Err(err).Msg("warehouse: cache set capital failed")
	}
	return &split, nil
}

// AnalyzeInventory runs the analyzer over one consistent catalog and ledger snapshot.
func (s *WarehouseService) AnalyzeInventory(ctx context.Context) (*analytics.Report, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	if report, ok, err := s.cache.GetAnalysis(ctx, s.policy); err == nil && ok {
		return report, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("warehouse: cache get analysis failed")
	}

	products, events, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	report := s.analyzer.Analyze(products, events)
	if err := s.cache.SetAnalysis(ctx, s.policy, report); err != nil {
		log.Warn().Err(err).Msg("warehouse: cache set analysis failed")
	}
	return &report, nil
}

// Alerts lists the items that need reordering.
func (s *WarehouseService) Alerts(ctx context.Context) ([]domain.AnalyzedItem, error) {
	report, err := s.AnalyzeInventory(ctx)
	if err != nil {
		return nil, err
	}
	return report.Alerts(), nil
}

// TopByPVS lists the n most capital-productive items.
func (s *WarehouseService) TopByPVS(ctx context.Context, n int) ([]domain.AnalyzedItem, error) {
	report, err := s.AnalyzeInventory(ctx)
	if err != nil {
		return nil, err
	}
	return report.TopByPVS(n), nil
}

// snapshot must be called with the read lock held.
func (s *WarehouseService) snapshot(ctx context.Context) ([]domain.Product, []domain.SaleEvent, error) {
	products, err := s.catalog.FindAll(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load catalog: %w", err)
	}
	events, err := s.ledger.FindAll(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load ledger: %w", err)
	}
	return products, events, nil
}
