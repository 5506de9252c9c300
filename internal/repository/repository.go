// internal/repository/repository.go
package repository

import (
	"context"

	"github.com/solderinua-oss/solder-warehouse/internal/domain"
)

// CatalogRepository persists products keyed by name.
type CatalogRepository interface {
	FindAll(ctx context.Context) ([]domain.Product, error)
	// FindByName and FindByArticle return domain.ErrNotFound when nothing matches.
	FindByName(ctx context.Context, name string) (*domain.Product, error)
	FindByArticle(ctx context.Context, article string) (*domain.Product, error)
	// UpsertByName overwrites every field of an existing product with the same
	// name, or inserts a new one.
	UpsertByName(ctx context.Context, p *domain.Product) error
	DeleteAll(ctx context.Context) (int, error)
}

// LedgerRepository persists sale events.
type LedgerRepository interface {
	FindAll(ctx context.Context) ([]domain.SaleEvent, error)
	FindSortedByDateDesc(ctx context.Context) ([]domain.SaleEvent, error)
	Insert(ctx context.Context, events []domain.SaleEvent) error
	DeleteAll(ctx context.Context) error
	// ReplaceAll drops every stored event and inserts events as one unit. On
	// error the previous ledger is left intact.
	ReplaceAll(ctx context.Context, events []domain.SaleEvent) error
}

// Store bundles the repositories a backend provides.
type Store struct {
	Catalog CatalogRepository
	Ledger  LedgerRepository
	// Close releases the backend; nil for backends without resources.
	Close func() error
}
