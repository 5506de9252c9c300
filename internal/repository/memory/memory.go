package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/solderinua-oss/solder-warehouse/internal/domain"
	"github.com/solderinua-oss/solder-warehouse/internal/repository"
)

// Store keeps the catalog and the ledger in process memory. It implements both
// repository interfaces and is safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	products []domain.Product
	byName   map[string]int
	events   []domain.SaleEvent
	nextID   int64
	now      func() time.Time
}

func New() *Store {
	return &Store{
		byName: make(map[string]int),
		nextID: 1,
		now:    time.Now,
	}
}

// NewStore wires a fresh in-memory backend.
func NewStore() repository.Store {
	s := New()
	return repository.Store{Catalog: s.Catalog(), Ledger: s.Ledger()}
}

// Catalog exposes the product side of the store.
func (s *Store) Catalog() repository.CatalogRepository { return catalog{s} }

// Ledger exposes the sale-event side of the store.
func (s *Store) Ledger() repository.LedgerRepository { return ledger{s} }

type catalog struct{ s *Store }

func (c catalog) FindAll(ctx context.Context) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()

	out := make([]domain.Product, len(c.s.products))
	copy(out, c.s.products)
	return out, nil
}

func (c catalog) FindByName(ctx context.Context, name string) (*domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()

	i, ok := c.s.byName[name]
	if !ok {
		return nil, domain.ErrNotFound
	}
	p := c.s.products[i]
	return &p, nil
}

func (c catalog) FindByArticle(ctx context.Context, article string) (*domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	article = strings.TrimSpace(article)
	if article == "" {
		return nil, domain.ErrNotFound
	}

	c.s.mu.RLock()
	defer c.s.mu.RUnlock()

	for _, p := range c.s.products {
		if p.Article == article {
			p := p
			return &p, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (c catalog) UpsertByName(ctx context.Context, p *domain.Product) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	p.UpdatedAt = c.s.now()
	if i, ok := c.s.byName[p.Name]; ok {
		p.ID = c.s.products[i].ID
		c.s.products[i] = *p
		return nil
	}

	p.ID = c.s.nextID
	c.s.nextID++
	c.s.byName[p.Name] = len(c.s.products)
	c.s.products = append(c.s.products, *p)
	return nil
}

func (c catalog) DeleteAll(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	n := len(c.s.products)
	c.s.products = nil
	c.s.byName = make(map[string]int)
	return n, nil
}

type ledger struct{ s *Store }

func (l ledger) FindAll(ctx context.Context) ([]domain.SaleEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.s.mu.RLock()
	defer l.s.mu.RUnlock()

	out := make([]domain.SaleEvent, len(l.s.events))
	copy(out, l.s.events)
	return out, nil
}

func (l ledger) FindSortedByDateDesc(ctx context.Context) ([]domain.SaleEvent, error) {
	out, err := l.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out, nil
}

func (l ledger) Insert(ctx context.Context, events []domain.SaleEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l.s.mu.Lock()
	defer l.s.mu.Unlock()

	l.s.events = append(l.s.events, events...)
	return nil
}

func (l ledger) DeleteAll(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l.s.mu.Lock()
	defer l.s.mu.Unlock()

	l.s.events = nil
	return nil
}

func (l ledger) ReplaceAll(ctx context.Context, events []domain.SaleEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	next := make([]domain.SaleEvent, len(events))
	copy(next, events)

	l.s.mu.Lock()
	defer l.s.mu.Unlock()

	l.s.events = next
	return nil
}
