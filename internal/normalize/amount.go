package normalize

import (
	"strconv"
	"strings"
	"unicode"
)

// ParseAmount turns a raw spreadsheet cell into a number. Malformed input
// degrades to 0 instead of failing the batch.
//
//	"1 200,50 ₴" => 1200.5
//	""           => 0
//	"abc"        => 0
func ParseAmount(raw string) float64 {
	v, _ := ParseAmountOK(raw)
	return v
}

// ParseAmountOK is ParseAmount that also reports whether a number was present.
// A cell holding "0" yields (0, true); an empty or garbage cell yields (0, false).
func ParseAmountOK(raw string) (float64, bool) {
	cleaned := cleanAmount(raw)
	if cleaned == "" {
		return 0, false
	}

	cleaned = strings.Replace(cleaned, ",", ".", 1)
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ParseQuantity parses a count cell, rounding to the nearest unit and clamping
// negatives to zero.
func ParseQuantity(raw string) int {
	v := ParseAmount(raw)
	if v <= 0 {
		return 0
	}
	return int(v + 0.5)
}

func cleanAmount(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		// NBSP and narrow NBSP are common thousands separators in exports.
		if unicode.IsSpace(r) {
			continue
		}
		if (r >= '0' && r <= '9') || r == '.' || r == ',' || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
