package columns

import "strings"

// Cell is one header/value pair of a decoded row.
type Cell struct {
	Header string
	Value  string
}

// Row keeps cells in source column order so that header matching is
// deterministic.
type Row []Cell

// Get returns the value under an exact header.
func (r Row) Get(header string) (string, bool) {
	for _, c := range r {
		if c.Header == header {
			return c.Value, true
		}
	}
	return "", false
}

// Resolve finds the first header containing a candidate fragment. Candidates
// are tried in order and, for each candidate, headers in column order, so the
// candidate list must go from most to least specific.
func Resolve(row Row, candidates []string) (string, bool) {
	if len(row) == 0 || len(candidates) == 0 {
		return "", false
	}

	headers := make([]string, len(row))
	for i, c := range row {
		headers[i] = normalizeHeader(c.Header)
	}

	for _, candidate := range candidates {
		candidate = normalizeHeader(candidate)
		if candidate == "" {
			continue
		}
		for i, h := range headers {
			if h != "" && strings.Contains(h, candidate) {
				return row[i].Value, true
			}
		}
	}
	return "", false
}

// ResolveString is Resolve with the value trimmed; a blank cell counts as absent.
func ResolveString(row Row, candidates []string) (string, bool) {
	v, ok := Resolve(row, candidates)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func normalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}
