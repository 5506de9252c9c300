// internal/domain/models.go
package domain

import "time"

// OwnerTag says whose capital a product (and every sale of it) belongs to.
type OwnerTag string

const (
	OwnerMine   OwnerTag = "mine"
	OwnerOther  OwnerTag = "other"
	OwnerShared OwnerTag = "shared"
)

// DefaultCategory is assigned to stock rows that carry no category.
const DefaultCategory = "Склад"

// Product is a catalog entry. Name is the primary key, Article the secondary one.
type Product struct {
	ID           int64     `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Article      string    `json:"article" db:"article"`
	Quantity     int       `json:"quantity" db:"quantity"`
	BuyingPrice  float64   `json:"buying_price" db:"buying_price"`
	SellingPrice float64   `json:"selling_price" db:"selling_price"`
	Category     string    `json:"category" db:"category"`
	Owner        OwnerTag  `json:"owner" db:"owner"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// SaleEvent is one fulfilled order line. Cost and owner are captured at ingest
// time and never re-derived from the catalog afterwards.
type SaleEvent struct {
	ID                string    `json:"id" db:"id"`
	OrderID           string    `json:"order_id" db:"order_id"`
	ProductName       string    `json:"product_name" db:"product_name"`
	Article           string    `json:"article" db:"article"`
	Quantity          int       `json:"quantity" db:"quantity"`
	SoldPrice         float64   `json:"sold_price" db:"sold_price"`
	BuyingPriceAtSale float64   `json:"buying_price_at_sale" db:"buying_price_at_sale"`
	Profit            float64   `json:"profit" db:"profit"`
	Owner             OwnerTag  `json:"owner" db:"owner"`
	Status            string    `json:"status" db:"status"`
	Date              time.Time `json:"date" db:"sold_at"`
}

// Revenue is price × quantity for the line.
func (e SaleEvent) Revenue() float64 {
	return e.SoldPrice * float64(e.Quantity)
}

// IngestResult summarizes one stock or sales ingest.
type IngestResult struct {
	BatchID     string    `json:"batch_id"`
	Updated     int       `json:"updated,omitempty"`
	Processed   int       `json:"processed,omitempty"`
	Skipped     int       `json:"skipped"`
	Dropped     int       `json:"dropped,omitempty"`
	TotalProfit float64   `json:"total_profit,omitempty"`
	Sheet       string    `json:"sheet"`
	Message     string    `json:"message"`
	ProcessedAt time.Time `json:"processed_at"`
}

// Stats is the profit attribution over the sale ledger.
type Stats struct {
	Profit     float64 `json:"profit"`
	Revenue    float64 `json:"revenue"`
	Count      int     `json:"count"`
	MineShare  float64 `json:"mine_share"`
	OtherShare float64 `json:"other_share"`
}

// CapitalSplit is the capital-at-rest attribution over the catalog.
type CapitalSplit struct {
	MineCapital  float64 `json:"mine_capital"`
	OtherCapital float64 `json:"other_capital"`
	TotalCost    float64 `json:"total_cost"`
	MinePercent  float64 `json:"mine_percent"`
	OtherPercent float64 `json:"other_percent"`
	RetailValue  float64 `json:"retail_value"`
	ProductCount int     `json:"product_count"`
}

// StockStatus is the reorder alert state of an analyzed item.
type StockStatus string

const (
	StatusReorder   StockStatus = "reorder"
	StatusDeadStock StockStatus = "dead_stock"
	StatusOK        StockStatus = "ok"
)

// AnalyzedItem carries the inventory-control metrics computed for one product.
type AnalyzedItem struct {
	Product          Product     `json:"product"`
	SoldQuantity     int         `json:"sold_quantity"`
	Velocity         float64     `json:"velocity"`
	ROI              float64     `json:"roi"`
	HighTurnover     bool        `json:"high_turnover"`
	FastConsumable   bool        `json:"fast_consumable"`
	ProfitPerUnit    float64     `json:"profit_per_unit"`
	ReorderPoint     int         `json:"rop"`
	RecommendedOrder int         `json:"recommended_order"`
	PVS              float64     `json:"pvs"`
	Status           StockStatus `json:"status"`
}
