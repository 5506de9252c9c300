package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solderinua-oss/solder-warehouse/internal/domain"
	"github.com/solderinua-oss/solder-warehouse/internal/repository"
)

func TestCatalog_UpsertByNameOverwrites(t *testing.T) {
	ctx := context.Background()
	s := New()
	cat := s.Catalog()

	require.NoError(t, cat.UpsertByName(ctx, &domain.Product{Name: "Паяльник", Article: "HK-936", Quantity: 3, BuyingPrice: 900}))
	require.NoError(t, cat.UpsertByName(ctx, &domain.Product{Name: "Флюс", Quantity: 10}))
	require.NoError(t, cat.UpsertByName(ctx, &domain.Product{Name: "Паяльник", Quantity: 1, BuyingPrice: 950}))

	all, err := cat.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)

	p, err := cat.FindByName(ctx, "Паяльник")
	require.NoError(t, err)
	assert.Equal(t, int64(1), p.ID)
	assert.Equal(t, 1, p.Quantity)
	assert.Equal(t, 950.0, p.BuyingPrice)
	assert.Empty(t, p.Article)
	assert.False(t, p.UpdatedAt.IsZero())
}

func TestCatalog_FindByArticle(t *testing.T) {
	ctx := context.Background()
	cat := New().Catalog()
	require.NoError(t, cat.UpsertByName(ctx, &domain.Product{Name: "Жало", Article: "T12-BC2"}))

	p, err := cat.FindByArticle(ctx, " T12-BC2 ")
	require.NoError(t, err)
	assert.Equal(t, "Жало", p.Name)

	_, err = cat.FindByArticle(ctx, "")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = cat.FindByName(ctx, "жало")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCatalog_FindAllReturnsCopy(t *testing.T) {
	ctx := context.Background()
	cat := New().Catalog()
	require.NoError(t, cat.UpsertByName(ctx, &domain.Product{Name: "A", Quantity: 1}))

	all, _ := cat.FindAll(ctx)
	all[0].Quantity = 99

	p, _ := cat.FindByName(ctx, "A")
	assert.Equal(t, 1, p.Quantity)
}

func TestCatalog_DeleteAll(t *testing.T) {
	ctx := context.Background()
	cat := New().Catalog()
	require.NoError(t, cat.UpsertByName(ctx, &domain.Product{Name: "A"}))
	require.NoError(t, cat.UpsertByName(ctx, &domain.Product{Name: "B"}))

	n, err := cat.DeleteAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	all, _ := cat.FindAll(ctx)
	assert.Empty(t, all)

	require.NoError(t, cat.UpsertByName(ctx, &domain.Product{Name: "A"}))
	p, err := cat.FindByName(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, int64(3), p.ID)
}

func TestLedger_ReplaceAllAndSort(t *testing.T) {
	ctx := context.Background()
	led := New().Ledger()
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, led.Insert(ctx, []domain.SaleEvent{{ID: "old"}}))
	require.NoError(t, led.ReplaceAll(ctx, []domain.SaleEvent{
		{ID: "a", Date: day},
		{ID: "b", Date: day.AddDate(0, 0, 2)},
		{ID: "c", Date: day.AddDate(0, 0, 1)},
	}))

	sorted, err := led.FindSortedByDateDesc(ctx)
	require.NoError(t, err)
	ids := make([]string, len(sorted))
	for i, e := range sorted {
		ids[i] = e.ID
	}
	assert.Equal(t, []string{"b", "c", "a"}, ids)

	require.NoError(t, led.DeleteAll(ctx))
	all, _ := led.FindAll(ctx)
	assert.Empty(t, all)
}

func TestLedgerWriter_Modes(t *testing.T) {
	ctx := context.Background()
	led := New().Ledger()

	appendW := repository.NewLedgerWriter(led, repository.LedgerAppend)
	require.NoError(t, appendW.Write(ctx, []domain.SaleEvent{{ID: "1"}}))
	require.NoError(t, appendW.Write(ctx, []domain.SaleEvent{{ID: "2"}}))
	all, _ := led.FindAll(ctx)
	assert.Len(t, all, 2)

	replaceW := repository.NewLedgerWriter(led, repository.ParseLedgerMode("nonsense"))
	assert.Equal(t, repository.LedgerReplace, replaceW.Mode())
	require.NoError(t, replaceW.Write(ctx, []domain.SaleEvent{{ID: "3"}}))
	all, _ = led.FindAll(ctx)
	require.Len(t, all, 1)
	assert.Equal(t, "3", all[0].ID)
}

func TestStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := New()
	_, err := s.Catalog().FindAll(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, s.Ledger().ReplaceAll(ctx, nil), context.Canceled)
}

func TestStore_ConcurrentUpserts(t *testing.T) {
	ctx := context.Background()
	cat := New().Catalog()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = cat.UpsertByName(ctx, &domain.Product{Name: []string{"A", "B", "C"}[i%3], Quantity: i})
		}(i)
	}
	wg.Wait()

	all, err := cat.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
