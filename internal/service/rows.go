package service

import (
	"strings"
	"time"

	"github.com/solderinua-oss/solder-warehouse/internal/columns"
	"github.com/solderinua-oss/solder-warehouse/internal/domain"
	"github.com/solderinua-oss/solder-warehouse/internal/normalize"
)

// DefaultDeliveredTerms are the order statuses that count as a completed sale.
var DefaultDeliveredTerms = []string{"доставлен", "выполнен", "виконано", "доставлено", "delivered", "completed"}

type deliveredPredicate []string

func newDeliveredPredicate(terms []string) deliveredPredicate {
	if len(terms) == 0 {
		terms = DefaultDeliveredTerms
	}
	out := make(deliveredPredicate, 0, len(terms))
	for _, t := range terms {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func (p deliveredPredicate) match(status string) bool {
	status = strings.ToLower(status)
	for _, t := range p {
		if strings.Contains(status, t) {
			return true
		}
	}
	return false
}

// parseStockRow maps one stock row onto a product. Rows without a name are rejected.
func parseStockRow(row columns.Row, owners *normalize.OwnerResolver) (domain.Product, bool) {
	name, ok := columns.StockName.Lookup(row)
	if !ok {
		return domain.Product{}, false
	}

	p := domain.Product{
		Name:     name,
		Category: domain.DefaultCategory,
		Owner:    domain.OwnerShared,
	}
	if v, ok := columns.StockArticle.Lookup(row); ok {
		p.Article = v
	}
	if v, ok := columns.StockQuantity.Lookup(row); ok {
		p.Quantity = normalize.ParseQuantity(v)
	}
	if v, ok := columns.StockBuyingPrice.Lookup(row); ok {
		p.BuyingPrice = nonNegative(normalize.ParseAmount(v))
	}
	if v, ok := columns.StockSellingPrice.Lookup(row); ok {
		p.SellingPrice = nonNegative(normalize.ParseAmount(v))
	}
	if v, ok := columns.StockCategory.Lookup(row); ok {
		p.Category = v
	}
	if v, ok := columns.StockOwner.Lookup(row); ok {
		p.Owner = owners.Resolve(v)
	}
	return p, true
}

// saleRow is an order line before catalog matching.
type saleRow struct {
	name    string
	status  string
	article string
	orderID string
	qty     int
	price   float64

	// Zero counts as not supplied for both.
	cost   float64
	profit float64

	date    time.Time
	hasDate bool
}

func parseSaleRow(row columns.Row, loc *time.Location) (saleRow, bool) {
	name, ok := columns.SalesName.Lookup(row)
	if !ok {
		return saleRow{}, false
	}

	r := saleRow{name: name}
	r.status, _ = columns.SalesStatus.Lookup(row)
	r.article, _ = columns.SalesArticle.Lookup(row)
	r.orderID, _ = columns.SalesOrderID.Lookup(row)

	if v, ok := columns.SalesQuantity.Lookup(row); ok {
		r.qty = normalize.ParseQuantity(v)
	}
	if v, ok := columns.SalesPrice.Lookup(row); ok {
		r.price = nonNegative(normalize.ParseAmount(v))
	}
	if v, ok := columns.SalesCost.Lookup(row); ok {
		r.cost = normalize.ParseAmount(v)
	}
	if v, ok := columns.SalesProfit.Lookup(row); ok {
		r.profit = normalize.ParseAmount(v)
	}
	if v, ok := columns.SalesDate.Lookup(row); ok {
		r.date, r.hasDate = normalize.ParseDate(v, loc)
	}
	return r, true
}

// event resolves cost, profit and owner against the matched product, which may be nil.
func (r saleRow) event(product *domain.Product, ingestedAt time.Time) domain.SaleEvent {
	e := domain.SaleEvent{
		OrderID:           r.orderID,
		ProductName:       r.name,
		Article:           r.article,
		Quantity:          r.qty,
		SoldPrice:         r.price,
		BuyingPriceAtSale: r.cost,
		Profit:            r.profit,
		Owner:             domain.OwnerShared,
		Status:            r.status,
		Date:              ingestedAt,
	}
	if r.hasDate {
		e.Date = r.date
	}

	if product != nil {
		if e.BuyingPriceAtSale == 0 {
			e.BuyingPriceAtSale = product.BuyingPrice
		}
		if product.Owner != "" {
			e.Owner = product.Owner
		}
		if e.Article == "" {
			e.Article = product.Article
		}
	}
	if e.Profit == 0 {
		e.Profit = (e.SoldPrice - e.BuyingPriceAtSale) * float64(e.Quantity)
	}
	return e
}

func nonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
