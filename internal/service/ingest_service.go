package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/solderinua-oss/solder-warehouse/internal/cache"
	"github.com/solderinua-oss/solder-warehouse/internal/columns"
	"github.com/solderinua-oss/solder-warehouse/internal/domain"
	"github.com/solderinua-oss/solder-warehouse/internal/normalize"
	"github.com/solderinua-oss/solder-warehouse/internal/repository"
	"github.com/solderinua-oss/solder-warehouse/internal/sheet"
	"github.com/solderinua-oss/solder-warehouse/internal/storage"
)

const defaultIngestTimeout = 60 * time.Second

// IngestOptions configures an IngestService. Zero values fall back to defaults.
type IngestOptions struct {
	Timeout        time.Duration
	LedgerMode     repository.LedgerMode
	DeliveredTerms []string
	Owners         *normalize.OwnerResolver
	Cache          cache.ReportCache
	// Archive receives a copy of every successfully ingested file when set.
	Archive storage.ObjectStorage
	// Lock is shared with the read side so readers see whole ingests.
	Lock     *sync.RWMutex
	Location *time.Location
}

// IngestService turns stock and order exports into catalog and ledger state.
// Ingests are serialized.
type IngestService struct {
	catalog   repository.CatalogRepository
	ledger    repository.LedgerWriter
	cache     cache.ReportCache
	archive   storage.ObjectStorage
	owners    *normalize.OwnerResolver
	delivered deliveredPredicate
	timeout   time.Duration
	lock      *sync.RWMutex
	loc       *time.Location

	now   func() time.Time
	newID func() string
}

func NewIngestService(store repository.Store, opts IngestOptions) *IngestService {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultIngestTimeout
	}
	if opts.Owners == nil {
		opts.Owners = normalize.NewOwnerResolver(nil, nil)
	}
	if opts.Cache == nil {
		opts.Cache = cache.NewNoopReportCache()
	}
	if opts.Lock == nil {
		opts.Lock = &sync.RWMutex{}
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}

	return &IngestService{
		catalog:   store.Catalog,
		ledger:    repository.NewLedgerWriter(store.Ledger, opts.LedgerMode),
		cache:     opts.Cache,
		archive:   opts.Archive,
		owners:    opts.Owners,
		delivered: newDeliveredPredicate(opts.DeliveredTerms),
		timeout:   opts.Timeout,
		lock:      opts.Lock,
		loc:       opts.Location,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// IngestStock upserts every named row of the first sheet into the catalog.
func (s *IngestService) IngestStock(ctx context.Context, filename string, data []byte) (*domain.IngestResult, error) {
	return s.run(ctx, "stock", filename, data, s.ingestStock)
}

// IngestSales rebuilds the ledger from the line-item sheet of an order export.
func (s *IngestService) IngestSales(ctx context.Context, filename string, data []byte) (*domain.IngestResult, error) {
	return s.run(ctx, "sales", filename, data, s.ingestSales)
}

// IngestStockFile reads path and ingests it as a stock export.
func (s *IngestService) IngestStockFile(ctx context.Context, path string) (*domain.IngestResult, error) {
	data, err := readUpload(path)
	if err != nil {
		return nil, err
	}
	return s.IngestStock(ctx, filepath.Base(path), data)
}

// IngestSalesFile reads path and ingests it as an order export.
func (s *IngestService) IngestSalesFile(ctx context.Context, path string) (*domain.IngestResult, error) {
	data, err := readUpload(path)
	if err != nil {
		return nil, err
	}
	return s.IngestSales(ctx, filepath.Base(path), data)
}

// ClearCatalog deletes every product. The ledger keeps its captured costs and owners.
func (s *IngestService) ClearCatalog(ctx context.Context) (int, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	n, err := s.catalog.DeleteAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("clear catalog: %w", err)
	}
	s.invalidate(ctx)

	log.Info().Int("deleted", n).Msg("catalog cleared")
	return n, nil
}

type ingestFunc func(ctx context.Context, wb *sheet.Workbook) (*domain.IngestResult, error)

func (s *IngestService) run(ctx context.Context, kind, filename string, data []byte, fn ingestFunc) (*domain.IngestResult, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	started := s.now()
	logger := log.With().Str("kind", kind).Str("file", filename).Logger()

	// Decode fully before any store mutation.
	wb, err := sheet.Decode(filename, bytes.NewReader(data))
	if err != nil {
		logger.Warn().Err(err).Msg("ingest rejected")
		return nil, err
	}

	res, err := fn(ctx, wb)
	if err != nil {
		err = s.classify(ctx, kind, err)
		logger.Error().Err(err).Msg("ingest failed")
		return nil, err
	}

	res.BatchID = s.newID()
	res.ProcessedAt = started
	s.invalidate(ctx)
	s.archiveUpload(ctx, kind, res.BatchID, filename, data)

	logger.Info().
		Str("batch_id", res.BatchID).
		Str("sheet", res.Sheet).
		Int("updated", res.Updated).
		Int("processed", res.Processed).
		Int("skipped", res.Skipped).
		Int("dropped", res.Dropped).
		Float64("total_profit", res.TotalProfit).
		Dur("took", s.now().Sub(started)).
		Msg("ingest completed")

	return res, nil
}

func (s *IngestService) classify(ctx context.Context, kind string, err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		return fmt.Errorf("%w: %s ingest timed out after %s", domain.ErrProcessing, kind, s.timeout)
	case errors.Is(err, domain.ErrStoreUnavailable), errors.Is(err, domain.ErrDecode), errors.Is(err, domain.ErrProcessing):
		return err
	default:
		return fmt.Errorf("%w: %s ingest: %w", domain.ErrProcessing, kind, err)
	}
}

func (s *IngestService) invalidate(ctx context.Context) {
	if err := s.cache.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("report cache invalidation failed")
	}
}

func (s *IngestService) archiveUpload(ctx context.Context, kind, batchID, filename string, data []byte) {
	if s.archive == nil {
		return
	}
	key := storage.ArchiveKey(kind, batchID, filename, s.now())
	if err := s.archive.UploadObject(ctx, key, data); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("upload archive failed")
		return
	}
	log.Debug().Str("key", key).Msg("upload archived")
}

func (s *IngestService) ingestStock(ctx context.Context, wb *sheet.Workbook) (*domain.IngestResult, error) {
	sh, ok := wb.First()
	if !ok {
		return nil, fmt.Errorf("%w: %w", domain.ErrDecode, domain.ErrNoSheet)
	}
	if err := requireColumn(sh, columns.StockFields, columns.StockName); err != nil {
		return nil, err
	}

	res := &domain.IngestResult{Sheet: sh.Name}
	for _, row := range sh.Rows {
		p, ok := parseStockRow(row, s.owners)
		if !ok {
			res.Skipped++
			continue
		}
		if err := s.catalog.UpsertByName(ctx, &p); err != nil {
			return nil, fmt.Errorf("upsert %q: %w", p.Name, err)
		}
		res.Updated++
	}

	res.Message = fmt.Sprintf("Оновлено %d товарів. Ціни перераховано.", res.Updated)
	return res, nil
}

func (s *IngestService) ingestSales(ctx context.Context, wb *sheet.Workbook) (*domain.IngestResult, error) {
	sh, ok := wb.SelectItems()
	if !ok {
		return nil, fmt.Errorf("%w: %w", domain.ErrDecode, domain.ErrNoSheet)
	}
	// Without a product column every row would be skipped and the ledger emptied.
	if err := requireColumn(sh, columns.SalesFields, columns.SalesName); err != nil {
		return nil, err
	}

	ingestedAt := s.now()
	res := &domain.IngestResult{Sheet: sh.Name}
	events := make([]domain.SaleEvent, 0, len(sh.Rows))
	total := decimal.Zero

	for _, row := range sh.Rows {
		r, ok := parseSaleRow(row, s.loc)
		if !ok {
			res.Skipped++
			continue
		}
		if !s.delivered.match(r.status) {
			res.Dropped++
			continue
		}

		product, err := s.match(ctx, r.article, r.name)
		if err != nil {
			return nil, err
		}

		e := r.event(product, ingestedAt)
		e.ID = s.newID()
		events = append(events, e)
		total = total.Add(decimal.NewFromFloat(e.Profit))
	}

	// The ledger is only touched once every row has been matched.
	if err := s.ledger.Write(ctx, events); err != nil {
		return nil, err
	}

	res.Processed = len(events)
	res.TotalProfit = total.Round(2).InexactFloat64()
	res.Message = fmt.Sprintf("Оброблено %d позицій. Прибуток: %.2f ₴", res.Processed, res.TotalProfit)
	return res, nil
}

// requireColumn rejects a sheet whose headers do not resolve required.
func requireColumn(sh *sheet.Sheet, fields []columns.Field, required columns.Field) error {
	mapping := columns.Mapping(sh.Headers, fields)
	log.Debug().Str("sheet", sh.Name).Interface("columns", mapping).Msg("columns resolved")

	if _, ok := mapping[required.Name]; !ok {
		return fmt.Errorf("%w: sheet %q has no %s column", domain.ErrDecode, sh.Name, required.Name)
	}
	return nil
}

// match looks a sale up by article first and then by name. No match is not an error.
func (s *IngestService) match(ctx context.Context, article, name string) (*domain.Product, error) {
	if article != "" {
		p, err := s.catalog.FindByArticle(ctx, article)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("find article %q: %w", article, err)
		}
	}

	p, err := s.catalog.FindByName(ctx, name)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find product %q: %w", name, err)
	}
	return p, nil
}

func readUpload(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", domain.ErrDecode, path, err)
	}
	return data, nil
}
