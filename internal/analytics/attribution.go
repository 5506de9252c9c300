package analytics

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/solderinua-oss/solder-warehouse/internal/domain"
)

// CountMode selects what Stats.Count measures.
type CountMode string

const (
	// CountAuto counts orders when every event carries an order ID and units otherwise.
	CountAuto   CountMode = "auto"
	CountUnits  CountMode = "units"
	CountOrders CountMode = "orders"
)

// ParseCountMode defaults to CountAuto.
func ParseCountMode(s string) CountMode {
	switch m := CountMode(strings.ToLower(strings.TrimSpace(s))); m {
	case CountUnits, CountOrders:
		return m
	default:
		return CountAuto
	}
}

var (
	half    = decimal.NewFromFloat(0.5)
	hundred = decimal.NewFromInt(100)
)

// moneyPlaces is the rounding precision of reported amounts (kopecks).
const moneyPlaces = 2

// Split applies the ownership rule to amount: Mine and Other take everything,
// anything else is halved. mine + other always equals amount.
func Split(amount float64, owner domain.OwnerTag) (mine, other float64) {
	m, o := split(decimal.NewFromFloat(amount), owner)
	return m.InexactFloat64(), o.InexactFloat64()
}

func split(amount decimal.Decimal, owner domain.OwnerTag) (mine, other decimal.Decimal) {
	switch owner {
	case domain.OwnerMine:
		return amount, decimal.Zero
	case domain.OwnerOther:
		return decimal.Zero, amount
	default:
		mine = amount.Mul(half)
		return mine, amount.Sub(mine)
	}
}

// ComputeStats attributes the ledger in one pass.
func ComputeStats(events []domain.SaleEvent, mode CountMode) domain.Stats {
	profit, revenue := decimal.Zero, decimal.Zero
	mine := decimal.Zero
	units := 0
	orders := make(map[string]struct{})
	allHaveOrder := len(events) > 0

	for _, e := range events {
		p := decimal.NewFromFloat(e.Profit)
		profit = profit.Add(p)
		revenue = revenue.Add(decimal.NewFromFloat(e.Revenue()))

		m, _ := split(p, e.Owner)
		mine = mine.Add(m)

		units += e.Quantity
		if id := strings.TrimSpace(e.OrderID); id != "" {
			orders[id] = struct{}{}
		} else {
			allHaveOrder = false
		}
	}

	count := units
	switch mode {
	case CountOrders:
		count = len(orders)
	case CountAuto, "":
		if allHaveOrder {
			count = len(orders)
		}
	}

	profit = profit.Round(moneyPlaces)
	mine = mine.Round(moneyPlaces)

	return domain.Stats{
		Profit:     profit.InexactFloat64(),
		Revenue:    revenue.Round(moneyPlaces).InexactFloat64(),
		Count:      count,
		MineShare:  mine.InexactFloat64(),
		OtherShare: profit.Sub(mine).InexactFloat64(),
	}
}

// ComputeCapitalSplit attributes the cost of stock on hand.
func ComputeCapitalSplit(products []domain.Product) domain.CapitalSplit {
	total, mine := decimal.Zero, decimal.Zero
	retail := decimal.Zero

	for _, p := range products {
		qty := decimal.NewFromInt(int64(p.Quantity))
		cost := qty.Mul(decimal.NewFromFloat(p.BuyingPrice))
		total = total.Add(cost)

		m, _ := split(cost, p.Owner)
		mine = mine.Add(m)

		retail = retail.Add(qty.Mul(decimal.NewFromFloat(p.SellingPrice)))
	}

	total = total.Round(moneyPlaces)
	mine = mine.Round(moneyPlaces)
	other := total.Sub(mine)

	out := domain.CapitalSplit{
		MineCapital:  mine.InexactFloat64(),
		OtherCapital: other.InexactFloat64(),
		TotalCost:    total.InexactFloat64(),
		RetailValue:  retail.Round(moneyPlaces).InexactFloat64(),
		ProductCount: len(products),
	}
	if !total.IsZero() {
		out.MinePercent = mine.Div(total).Mul(hundred).Round(moneyPlaces).InexactFloat64()
		out.OtherPercent = other.Div(total).Mul(hundred).Round(moneyPlaces).InexactFloat64()
	}
	return out
}
