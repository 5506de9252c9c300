package analytics

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/solderinua-oss/solder-warehouse/internal/domain"
	"github.com/solderinua-oss/solder-warehouse/internal/normalize"
)

// DefaultFastConsumableMarkers identify soldering tips, which wear out and
// need a deeper reorder floor.
var DefaultFastConsumableMarkers = []string{"жало", "жала", "tip"}

// Policy holds the inventory-control constants.
type Policy struct {
	LookbackDays int
	LeadTimeDays int

	SafetyDaysHighTurnover int
	SafetyDaysStandard     int

	// HighTurnoverROI must be strictly exceeded.
	HighTurnoverROI float64

	HorizonHighTurnover int
	HorizonExpensive    int
	HorizonStandard     int
	// PriceThreshold is the buying price above which the shorter horizon applies.
	PriceThreshold float64

	FastConsumableMarkers []string
	FastConsumableMinROP  int

	DefaultOrderHighTurnover int
	DefaultOrderStandard     int
}

// DefaultPolicy returns the 90-day lookback policy used for the solder store.
func DefaultPolicy() Policy {
	return Policy{
		LookbackDays:             90,
		LeadTimeDays:             21,
		SafetyDaysHighTurnover:   14,
		SafetyDaysStandard:       7,
		HighTurnoverROI:          50,
		HorizonHighTurnover:      75,
		HorizonExpensive:         30,
		HorizonStandard:          45,
		PriceThreshold:           1500,
		FastConsumableMarkers:    DefaultFastConsumableMarkers,
		FastConsumableMinROP:     35,
		DefaultOrderHighTurnover: 20,
		DefaultOrderStandard:     5,
	}
}

// WithOverrides replaces configurable fields that are set.
func (p Policy) WithOverrides(highTurnoverROI float64, fastConsumableMarkers []string) Policy {
	if highTurnoverROI > 0 {
		p.HighTurnoverROI = highTurnoverROI
	}
	if len(fastConsumableMarkers) > 0 {
		p.FastConsumableMarkers = fastConsumableMarkers
	}
	return p
}

// Report is the analyzed catalog ordered by velocity, highest first.
type Report struct {
	Items []domain.AnalyzedItem `json:"items"`
}

// Alerts returns the items that need reordering, in report order.
func (r Report) Alerts() []domain.AnalyzedItem {
	return r.filter(domain.StatusReorder)
}

// DeadStock returns items with stock on hand and no sales in the lookback window.
func (r Report) DeadStock() []domain.AnalyzedItem {
	return r.filter(domain.StatusDeadStock)
}

func (r Report) filter(status domain.StockStatus) []domain.AnalyzedItem {
	out := make([]domain.AnalyzedItem, 0)
	for _, it := range r.Items {
		if it.Status == status {
			out = append(out, it)
		}
	}
	return out
}

// TopByPVS returns up to n items by productivity score, highest first. Items
// with equal scores keep report order.
func (r Report) TopByPVS(n int) []domain.AnalyzedItem {
	out := make([]domain.AnalyzedItem, len(r.Items))
	copy(out, r.Items)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PVS > out[j].PVS
	})
	if n >= 0 && n < len(out) {
		out = out[:n]
	}
	return out
}

// Analyzer computes inventory-control metrics for catalog items.
type Analyzer struct {
	policy  Policy
	markers []string
}

func NewAnalyzer(policy Policy) *Analyzer {
	markers := make([]string, 0, len(policy.FastConsumableMarkers))
	for _, m := range policy.FastConsumableMarkers {
		if m = strings.ToLower(strings.TrimSpace(m)); m != "" {
			markers = append(markers, m)
		}
	}
	if policy.LookbackDays <= 0 {
		policy.LookbackDays = DefaultPolicy().LookbackDays
	}
	return &Analyzer{policy: policy, markers: markers}
}

// soldIndex aggregates ledger quantities by normalized product name.
type soldIndex struct {
	byKey map[string]int
	keys  []string
}

func newSoldIndex(events []domain.SaleEvent) soldIndex {
	idx := soldIndex{byKey: make(map[string]int)}
	for _, e := range events {
		k := normalize.NormalizeKey(e.ProductName)
		if k == "" {
			continue
		}
		if _, seen := idx.byKey[k]; !seen {
			idx.keys = append(idx.keys, k)
		}
		idx.byKey[k] += e.Quantity
	}
	return idx
}

// sold matches by exact normalized name and falls back to article containment
// in either direction.
func (idx soldIndex) sold(p domain.Product) int {
	if n := idx.byKey[normalize.NormalizeKey(p.Name)]; n > 0 {
		return n
	}

	article := normalize.NormalizeKey(p.Article)
	if article == "" {
		return 0
	}
	total := 0
	for _, k := range idx.keys {
		if strings.Contains(k, article) || strings.Contains(article, k) {
			total += idx.byKey[k]
		}
	}
	return total
}

// Analyze computes metrics for every product against the whole ledger.
func (a *Analyzer) Analyze(products []domain.Product, events []domain.SaleEvent) Report {
	idx := newSoldIndex(events)

	items := make([]domain.AnalyzedItem, 0, len(products))
	for _, p := range products {
		items = append(items, a.Calculate(p, idx.sold(p)))
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Velocity > items[j].Velocity
	})
	return Report{Items: items}
}

// Calculate computes the metrics for one product given its sold quantity over
// the lookback window.
func (a *Analyzer) Calculate(p domain.Product, sold int) domain.AnalyzedItem {
	pol := a.policy
	if sold < 0 {
		sold = 0
	}
	item := domain.AnalyzedItem{Product: p, SoldQuantity: sold}

	// 1. Velocity in units per day
	item.Velocity = float64(sold) / float64(pol.LookbackDays)

	// 2. ROI%
	item.ProfitPerUnit = p.SellingPrice - p.BuyingPrice
	if p.BuyingPrice > 0 {
		item.ROI = item.ProfitPerUnit / p.BuyingPrice * 100
	}

	// 3. High-turnover and fast-consumable flags
	item.HighTurnover = item.ROI > pol.HighTurnoverROI
	item.FastConsumable = a.isFastConsumable(p)

	// 4. Reorder point over lead time plus safety buffer
	safety := pol.SafetyDaysStandard
	if item.HighTurnover {
		safety = pol.SafetyDaysHighTurnover
	}
	item.ReorderPoint = ceilDiv(sold*(pol.LeadTimeDays+safety), pol.LookbackDays)
	if sold > 0 {
		if item.ReorderPoint == 0 {
			item.ReorderPoint = 1
		}
		if item.FastConsumable && item.ReorderPoint < pol.FastConsumableMinROP {
			item.ReorderPoint = pol.FastConsumableMinROP
		}
	}

	// 5. Recommended order over the restock horizon
	horizon := pol.HorizonStandard
	switch {
	case item.HighTurnover:
		horizon = pol.HorizonHighTurnover
	case p.BuyingPrice > pol.PriceThreshold:
		horizon = pol.HorizonExpensive
	}
	item.RecommendedOrder = ceilDiv(sold*horizon, pol.LookbackDays)
	if item.RecommendedOrder == 0 {
		item.RecommendedOrder = pol.DefaultOrderStandard
		if item.HighTurnover {
			item.RecommendedOrder = pol.DefaultOrderHighTurnover
		}
	}

	// 6. Productivity score, for ranking only
	if p.BuyingPrice > 0 {
		item.PVS = item.Velocity * item.ProfitPerUnit / p.BuyingPrice
	}

	// 7. Alert status
	switch {
	case sold > 0 && p.Quantity <= item.ReorderPoint:
		item.Status = domain.StatusReorder
	case sold == 0 && p.Quantity > 0:
		item.Status = domain.StatusDeadStock
	default:
		item.Status = domain.StatusOK
	}

	return item
}

func (a *Analyzer) isFastConsumable(p domain.Product) bool {
	category := strings.ToLower(p.Category)
	name := strings.ToLower(p.Name)
	for _, m := range a.markers {
		if strings.Contains(category, m) || hasWordPrefix(name, m) {
			return true
		}
	}
	return false
}

// hasWordPrefix reports whether m occurs in s at the start of a word, so "tip"
// matches "Tip-B2" and "tips" but not "multiplexer".
func hasWordPrefix(s, m string) bool {
	if m == "" {
		return false
	}
	for offset := 0; offset < len(s); {
		i := strings.Index(s[offset:], m)
		if i < 0 {
			return false
		}
		i += offset
		if i == 0 {
			return true
		}
		if r, _ := utf8.DecodeLastRuneInString(s[:i]); !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return true
		}
		_, size := utf8.DecodeRuneInString(s[i:])
		offset = i + size
	}
	return false
}

// ceilDiv is ceil(num/den) for non-negative integers. Working in integers keeps
// ceil(velocity × days) exact where float64 would land just above a whole number.
func ceilDiv(num, den int) int {
	if num <= 0 || den <= 0 {
		return 0
	}
	return (num + den - 1) / den
}
