package normalize

import (
	"strings"

	"github.com/solderinua-oss/solder-warehouse/internal/domain"
)

var (
	DefaultMineMarkers  = []string{"я", "богдан", "my", "mine"}
	DefaultOtherMarkers = []string{"отец", "папа", "батько", "father", "other"}
)

// OwnerResolver maps free-text owner cells onto an OwnerTag. Mine markers are
// checked before Other markers and the first match wins.
type OwnerResolver struct {
	mine  []string
	other []string
}

// NewOwnerResolver builds a resolver; empty marker lists fall back to the defaults.
func NewOwnerResolver(mine, other []string) *OwnerResolver {
	if len(mine) == 0 {
		mine = DefaultMineMarkers
	}
	if len(other) == 0 {
		other = DefaultOtherMarkers
	}
	return &OwnerResolver{
		mine:  lowerAll(mine),
		other: lowerAll(other),
	}
}

// Resolve returns the owner tag for raw. Unset or unrecognized text is Shared.
func (r *OwnerResolver) Resolve(raw string) domain.OwnerTag {
	v := strings.ToLower(strings.TrimSpace(raw))
	if v == "" {
		return domain.OwnerShared
	}
	if containsAny(v, r.mine) {
		return domain.OwnerMine
	}
	if containsAny(v, r.other) {
		return domain.OwnerOther
	}
	return domain.OwnerShared
}

var defaultOwnerResolver = NewOwnerResolver(nil, nil)

// ResolveOwnerTag resolves raw with the default marker sets.
func ResolveOwnerTag(raw string) domain.OwnerTag {
	return defaultOwnerResolver.Resolve(raw)
}

// ParseOwnerTag reads a stored tag back. Anything unknown is Shared, matching
// the split rule for unset owners.
func ParseOwnerTag(s string) domain.OwnerTag {
	switch domain.OwnerTag(strings.ToLower(strings.TrimSpace(s))) {
	case domain.OwnerMine:
		return domain.OwnerMine
	case domain.OwnerOther:
		return domain.OwnerOther
	default:
		return domain.OwnerShared
	}
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if m != "" && strings.Contains(s, m) {
			return true
		}
	}
	return false
}

func lowerAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
