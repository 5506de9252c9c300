package sheet

import (
	"strings"

	"github.com/solderinua-oss/solder-warehouse/internal/columns"
)

// ItemsMarkers identify the line-item sheet of a multi-sheet order export.
var ItemsMarkers = []string{"позици", "позиці", "items"}

// Sheet is one decoded table. Rows hold data only; the header row is kept
// separately.
type Sheet struct {
	Name    string
	Headers []string
	Rows    []columns.Row
}

// Workbook is a decoded file with its sheets in source order.
type Workbook struct {
	Sheets []Sheet
}

// First returns the first sheet.
func (w *Workbook) First() (*Sheet, bool) {
	if w == nil || len(w.Sheets) == 0 {
		return nil, false
	}
	return &w.Sheets[0], true
}

// Select prefers a sheet whose name contains one of markers and falls back to
// the first sheet.
func (w *Workbook) Select(markers []string) (*Sheet, bool) {
	if w == nil || len(w.Sheets) == 0 {
		return nil, false
	}
	for i := range w.Sheets {
		name := strings.ToLower(w.Sheets[i].Name)
		for _, m := range markers {
			if m != "" && strings.Contains(name, strings.ToLower(m)) {
				return &w.Sheets[i], true
			}
		}
	}
	return &w.Sheets[0], true
}

// SelectItems is Select with ItemsMarkers.
func (w *Workbook) SelectItems() (*Sheet, bool) {
	return w.Select(ItemsMarkers)
}

// buildSheet turns raw records into a Sheet. The first record with any
// non-blank cell is the header row. Blank trailing records are dropped.
func buildSheet(name string, records [][]string) (Sheet, bool) {
	s := Sheet{Name: name}

	start := -1
	for i, rec := range records {
		if !isBlank(rec) {
			start = i
			break
		}
	}
	if start < 0 {
		return s, false
	}

	s.Headers = make([]string, len(records[start]))
	for i, h := range records[start] {
		s.Headers[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	for _, rec := range records[start+1:] {
		if isBlank(rec) {
			continue
		}
		row := make(columns.Row, 0, len(s.Headers))
		for i, h := range s.Headers {
			if h == "" {
				continue
			}
			var v string
			if i < len(rec) {
				v = rec[i]
			}
			row = append(row, columns.Cell{Header: h, Value: v})
		}
		s.Rows = append(s.Rows, row)
	}
	return s, true
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
