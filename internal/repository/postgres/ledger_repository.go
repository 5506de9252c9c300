package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/solderinua-oss/solder-warehouse/internal/domain"
	"github.com/solderinua-oss/solder-warehouse/internal/repository"
)

const eventColumns = `id, order_id, product_name, article, quantity, sold_price, buying_price_at_sale, profit, owner, status, sold_at`

const insertEvent = `INSERT INTO sale_events (` + eventColumns + `) ` +
	`VALUES (:id, :order_id, :product_name, :article, :quantity, :sold_price, :buying_price_at_sale, :profit, :owner, :status, :sold_at)`

// insertBatchSize keeps a multi-row insert under the 65535 bind parameter limit.
const insertBatchSize = 1000

type ledgerRepository struct {
	db *DB
}

func NewLedgerRepository(db *DB) repository.LedgerRepository {
	return &ledgerRepository{db: db}
}

func (r *ledgerRepository) FindAll(ctx context.Context) ([]domain.SaleEvent, error) {
	return r.list(ctx, `SELECT `+eventColumns+` FROM sale_events`)
}

func (r *ledgerRepository) FindSortedByDateDesc(ctx context.Context) ([]domain.SaleEvent, error) {
	return r.list(ctx, `SELECT `+eventColumns+` FROM sale_events ORDER BY sold_at DESC`)
}

func (r *ledgerRepository) list(ctx context.Context, query string) ([]domain.SaleEvent, error) {
	var events []domain.SaleEvent
	if err := r.db.SelectContext(ctx, &events, query); err != nil {
		return nil, classify(fmt.Errorf("error listing sale events: %w", err))
	}
	return events, nil
}

func (r *ledgerRepository) Insert(ctx context.Context, events []domain.SaleEvent) error {
	if len(events) == 0 {
		return nil
	}
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		return insertEvents(ctx, tx, events)
	})
}

func (r *ledgerRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sale_events`); err != nil {
		return classify(fmt.Errorf("failed to delete sale events: %w", err))
	}
	return nil
}

func (r *ledgerRepository) ReplaceAll(ctx context.Context, events []domain.SaleEvent) error {
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM sale_events`); err != nil {
			return fmt.Errorf("failed to clear sale events: %w", err)
		}
		return insertEvents(ctx, tx, events)
	})
}

func insertEvents(ctx context.Context, tx *sqlx.Tx, events []domain.SaleEvent) error {
	for start := 0; start < len(events); start += insertBatchSize {
		end := start + insertBatchSize
		if end > len(events) {
			end = len(events)
		}
		if _, err := tx.NamedExecContext(ctx, insertEvent, events[start:end]); err != nil {
			return fmt.Errorf("failed to insert sale events: %w", err)
		}
	}
	return nil
}

// NewStore wires both repositories over one pool.
func NewStore(db *DB) repository.Store {
	return repository.Store{
		Catalog: NewCatalogRepository(db),
		Ledger:  NewLedgerRepository(db),
		Close:   db.Close,
	}
}
