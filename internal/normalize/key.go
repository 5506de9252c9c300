package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// NormalizeKey reduces a product name or article to a comparison key: NFKC,
// case-folded, with everything except letters and digits removed.
// "Жало T12-BC2 " and "жало t12bc2" share the key "жалоt12bc2".
func NormalizeKey(s string) string {
	if s == "" {
		return ""
	}
	s = cases.Fold().String(norm.NFKC.String(s))

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
