package columns

// Field is a canonical column together with the header fragments that may
// carry it.
type Field struct {
	Name       string
	Candidates []string
}

// Canonical stock file columns. Exports come from a Russian-language CRM, with
// Ukrainian and English variants seen in hand-made sheets.
var (
	StockName         = Field{"name", []string{"название", "наименование", "назва", "товар", "product name", "name"}}
	StockArticle      = Field{"article", []string{"артикул", "article", "sku"}}
	StockQuantity     = Field{"quantity", []string{"в наличии", "наличие", "в наявності", "остаток", "залишок", "количество", "кол-во", "quantity", "qty", "stock"}}
	StockBuyingPrice  = Field{"buying_price", []string{"цена закупки", "закупочная", "ціна закупівлі", "закупівля", "себестоимость", "buying price", "purchase price", "cost"}}
	StockSellingPrice = Field{"selling_price", []string{"цена продажи", "ціна продажу", "розничная", "роздрібна", "selling price", "retail price", "sale price"}}
	StockCategory     = Field{"category", []string{"категория", "категорія", "category", "группа", "group"}}
	StockOwner        = Field{"owner", []string{"доля", "частка", "владелец", "власник", "share", "owner"}}
)

// Canonical order file columns.
var (
	SalesName     = Field{"product_name", []string{"товар", "название", "наименование", "назва", "product", "item", "name"}}
	SalesStatus   = Field{"status", []string{"статус", "status"}}
	SalesQuantity = Field{"quantity", []string{"кол-во", "количество", "кількість", "quantity", "qty"}}
	SalesPrice    = Field{"sold_price", []string{"цена продажи", "ціна продажу", "sale price", "sold price", "цена", "ціна", "price"}}
	SalesArticle  = Field{"article", []string{"артикул", "article", "sku"}}
	SalesCost     = Field{"cost", []string{"себестоимость", "собівартість", "закупочная", "cost"}}
	SalesProfit   = Field{"profit", []string{"прибыль", "прибуток", "profit", "margin"}}
	SalesOrderID  = Field{"order_id", []string{"номер заказа", "№ заказа", "id заказа", "номер замовлення", "order number", "order id", "order no"}}
	SalesDate     = Field{"date", []string{"дата", "date", "created"}}
)

// StockFields lists the stock columns in resolution order.
var StockFields = []Field{StockName, StockArticle, StockQuantity, StockBuyingPrice, StockSellingPrice, StockCategory, StockOwner}

// SalesFields lists the order columns in resolution order.
var SalesFields = []Field{SalesName, SalesStatus, SalesQuantity, SalesPrice, SalesArticle, SalesCost, SalesProfit, SalesOrderID, SalesDate}

// Lookup resolves f against row.
func (f Field) Lookup(row Row) (string, bool) {
	return ResolveString(row, f.Candidates)
}

// Mapping reports which source header each field resolved to, for diagnostics.
func Mapping(headers []string, fields []Field) map[string]string {
	headerRow := make(Row, len(headers))
	for i, h := range headers {
		headerRow[i] = Cell{Header: h, Value: h}
	}

	out := make(map[string]string, len(fields))
	for _, f := range fields {
		if h, ok := Resolve(headerRow, f.Candidates); ok {
			out[f.Name] = h
		}
	}
	return out
}
