package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/solderinua-oss/solder-warehouse/internal/domain"
	"github.com/solderinua-oss/solder-warehouse/internal/repository"
)

const productColumns = `id, name, article, quantity, buying_price, selling_price, category, owner, updated_at`

type catalogRepository struct {
	db *DB
}

func NewCatalogRepository(db *DB) repository.CatalogRepository {
	return &catalogRepository{db: db}
}

func (r *catalogRepository) FindAll(ctx context.Context) ([]domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY name`

	var products []domain.Product
	if err := r.db.SelectContext(ctx, &products, query); err != nil {
		return nil, classify(fmt.Errorf("error listing products: %w", err))
	}
	return products, nil
}

func (r *catalogRepository) FindByName(ctx context.Context, name string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE name = $1`
	return r.get(ctx, query, name)
}

func (r *catalogRepository) FindByArticle(ctx context.Context, article string) (*domain.Product, error) {
	article = strings.TrimSpace(article)
	if article == "" {
		return nil, domain.ErrNotFound
	}
	query := `SELECT ` + productColumns + ` FROM products WHERE article = $1 ORDER BY id LIMIT 1`
	return r.get(ctx, query, article)
}

func (r *catalogRepository) get(ctx context.Context, query string, arg string) (*domain.Product, error) {
	var p domain.Product
	if err := r.db.GetContext(ctx, &p, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, classify(fmt.Errorf("error getting product: %w", err))
	}
	return &p, nil
}

func (r *catalogRepository) UpsertByName(ctx context.Context, p *domain.Product) error {
	query := `
		INSERT INTO products (name, article, quantity, buying_price, selling_price, category, owner, updated_at)
		VALUES (:name, :article, :quantity, :buying_price, :selling_price, :category, :owner, NOW())
		ON CONFLICT (name)
		DO UPDATE SET
			article = EXCLUDED.article,
			quantity = EXCLUDED.quantity,
			buying_price = EXCLUDED.buying_price,
			selling_price = EXCLUDED.selling_price,
			category = EXCLUDED.category,
			owner = EXCLUDED.owner,
			updated_at = NOW()
		RETURNING id, updated_at
	`

	rows, err := r.db.NamedQueryContext(ctx, query, p)
	if err != nil {
		return classify(fmt.Errorf("failed to upsert product %q: %w", p.Name, err))
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.Scan(&p.ID, &p.UpdatedAt); err != nil {
			return fmt.Errorf("failed to scan upserted product: %w", err)
		}
	}
	return classify(rows.Err())
}

func (r *catalogRepository) DeleteAll(ctx context.Context) (int, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products`)
	if err != nil {
		return 0, classify(fmt.Errorf("failed to delete products: %w", err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return int(n), nil
}
