package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/solderinua-oss/solder-warehouse/internal/domain"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		owner       domain.OwnerTag
		mine, other float64
	}{
		{owner: domain.OwnerMine, mine: 100, other: 0},
		{owner: domain.OwnerOther, mine: 0, other: 100},
		{owner: domain.OwnerShared, mine: 50, other: 50},
		{owner: "", mine: 50, other: 50},
		{owner: "unknown", mine: 50, other: 50},
	}

	for _, tt := range tests {
		mine, other := Split(100, tt.owner)
		assert.Equal(t, tt.mine, mine, "owner=%q", tt.owner)
		assert.Equal(t, tt.other, other, "owner=%q", tt.owner)
	}
}

func TestComputeStats(t *testing.T) {
	events := []domain.SaleEvent{
		{ProductName: "A", Quantity: 2, SoldPrice: 150, Profit: 100, Owner: domain.OwnerMine},
		{ProductName: "B", Quantity: 1, SoldPrice: 80.5, Profit: 30.5, Owner: domain.OwnerOther},
		{ProductName: "C", Quantity: 3, SoldPrice: 10, Profit: 0.33, Owner: domain.OwnerShared},
	}

	s := ComputeStats(events, CountAuto)

	assert.InDelta(t, 130.83, s.Profit, 1e-9)
	assert.InDelta(t, 410.5, s.Revenue, 1e-9)
	assert.Equal(t, 6, s.Count)
	assert.InDelta(t, 100.17, s.MineShare, 1e-9)
	assert.InDelta(t, 30.66, s.OtherShare, 1e-9)
	assert.InDelta(t, s.Profit, s.MineShare+s.OtherShare, 1e-9)
}

func TestComputeStats_CountModes(t *testing.T) {
	withOrders := []domain.SaleEvent{
		{OrderID: "1001", Quantity: 2},
		{OrderID: "1001", Quantity: 1},
		{OrderID: "1002", Quantity: 4},
	}
	assert.Equal(t, 2, ComputeStats(withOrders, CountAuto).Count)
	assert.Equal(t, 7, ComputeStats(withOrders, CountUnits).Count)
	assert.Equal(t, 2, ComputeStats(withOrders, CountOrders).Count)

	partial := append(withOrders, domain.SaleEvent{Quantity: 5})
	assert.Equal(t, 12, ComputeStats(partial, CountAuto).Count)
	assert.Equal(t, 2, ComputeStats(partial, CountOrders).Count)
}

func TestComputeStats_Empty(t *testing.T) {
	s := ComputeStats(nil, CountAuto)
	assert.Equal(t, domain.Stats{}, s)
}

func TestComputeCapitalSplit(t *testing.T) {
	products := []domain.Product{
		{Name: "Паяльная станция", Quantity: 2, BuyingPrice: 3000, SellingPrice: 4500, Owner: domain.OwnerOther},
		{Name: "Флюс", Quantity: 10, BuyingPrice: 40, SellingPrice: 90, Owner: domain.OwnerMine},
		{Name: "Припой", Quantity: 4, BuyingPrice: 100, SellingPrice: 150, Owner: domain.OwnerShared},
	}

	c := ComputeCapitalSplit(products)

	assert.InDelta(t, 6800, c.TotalCost, 1e-9)
	assert.InDelta(t, 600, c.MineCapital, 1e-9)
	assert.InDelta(t, 6200, c.OtherCapital, 1e-9)
	assert.InDelta(t, 8.82, c.MinePercent, 1e-9)
	assert.InDelta(t, 91.18, c.OtherPercent, 1e-9)
	assert.InDelta(t, 10500, c.RetailValue, 1e-9)
	assert.Equal(t, 3, c.ProductCount)
}

func TestComputeCapitalSplit_AllFather(t *testing.T) {
	c := ComputeCapitalSplit([]domain.Product{
		{Name: "Станция", Quantity: 1, BuyingPrice: 2000, Owner: domain.OwnerOther},
	})

	assert.Equal(t, 0.0, c.MineCapital)
	assert.Equal(t, 2000.0, c.OtherCapital)
	assert.Equal(t, 0.0, c.MinePercent)
	assert.Equal(t, 100.0, c.OtherPercent)
}

func TestComputeCapitalSplit_ZeroTotal(t *testing.T) {
	c := ComputeCapitalSplit([]domain.Product{{Name: "Пусто", Quantity: 0, BuyingPrice: 100}})

	assert.Equal(t, 0.0, c.TotalCost)
	assert.Equal(t, 0.0, c.MinePercent)
	assert.Equal(t, 0.0, c.OtherPercent)
}

func TestParseCountMode(t *testing.T) {
	assert.Equal(t, CountUnits, ParseCountMode(" Units "))
	assert.Equal(t, CountOrders, ParseCountMode("orders"))
	assert.Equal(t, CountAuto, ParseCountMode(""))
	assert.Equal(t, CountAuto, ParseCountMode("bogus"))
}
