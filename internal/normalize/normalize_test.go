package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/solderinua-oss/solder-warehouse/internal/domain"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want float64
	}{
		{name: "currency and spaces", raw: "1 200,50 ₴", want: 1200.50},
		{name: "nbsp separator", raw: "1\u00a0200", want: 1200},
		{name: "narrow nbsp separator", raw: "3\u202f450,5", want: 3450.5},
		{name: "plain integer", raw: "42", want: 42},
		{name: "dot decimal", raw: "19.99", want: 19.99},
		{name: "negative", raw: "-15,5", want: -15.5},
		{name: "trailing currency code", raw: "250 грн", want: 250},
		{name: "empty", raw: "", want: 0},
		{name: "letters only", raw: "abc", want: 0},
		{name: "two separators", raw: "1,200.50", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ParseAmount(tt.raw), 1e-9)
		})
	}
}

func TestParseAmountOK_DistinguishesZeroFromMissing(t *testing.T) {
	v, ok := ParseAmountOK("0")
	assert.True(t, ok)
	assert.Equal(t, 0.0, v)

	v, ok = ParseAmountOK("   ")
	assert.False(t, ok)
	assert.Equal(t, 0.0, v)

	_, ok = ParseAmountOK("n/a")
	assert.False(t, ok)
}

func TestParseQuantity(t *testing.T) {
	assert.Equal(t, 3, ParseQuantity("3"))
	assert.Equal(t, 3, ParseQuantity("2,6 шт"))
	assert.Equal(t, 0, ParseQuantity("-4"))
	assert.Equal(t, 0, ParseQuantity(""))
}

func TestResolveOwnerTag(t *testing.T) {
	tests := []struct {
		raw  string
		want domain.OwnerTag
	}{
		{raw: "Я", want: domain.OwnerMine},
		{raw: "  Богдан (склад 2) ", want: domain.OwnerMine},
		{raw: "my stock", want: domain.OwnerMine},
		{raw: "Father", want: domain.OwnerOther},
		{raw: "Отец", want: domain.OwnerOther},
		{raw: "батько", want: domain.OwnerOther},
		{raw: "50/50", want: domain.OwnerShared},
		{raw: "Shared", want: domain.OwnerShared},
		{raw: "", want: domain.OwnerShared},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ResolveOwnerTag(tt.raw), "raw=%q", tt.raw)
	}
}

func TestOwnerResolver_MineCheckedFirst(t *testing.T) {
	r := NewOwnerResolver([]string{"bohdan"}, []string{"dad"})

	assert.Equal(t, domain.OwnerMine, r.Resolve("Bohdan and dad"))
	assert.Equal(t, domain.OwnerOther, r.Resolve("DAD"))
	assert.Equal(t, domain.OwnerShared, r.Resolve("father"))
}

func TestParseOwnerTag(t *testing.T) {
	assert.Equal(t, domain.OwnerMine, ParseOwnerTag("Mine"))
	assert.Equal(t, domain.OwnerOther, ParseOwnerTag("other"))
	assert.Equal(t, domain.OwnerShared, ParseOwnerTag("Father"))
	assert.Equal(t, domain.OwnerShared, ParseOwnerTag(""))
}

func TestNormalizeKey(t *testing.T) {
	assert.Equal(t, "tipb2", NormalizeKey("Tip-B2"))
	assert.Equal(t, "жалоt12bc2", NormalizeKey(" Жало T12-BC2 "))
	assert.Equal(t, NormalizeKey("Паяльник «Hakko» 936"), NormalizeKey("паяльник hakko-936"))
	assert.Equal(t, "", NormalizeKey("--- / ---"))
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Time
	}{
		{raw: "15.03.2024", want: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
		{raw: "15.03.2024 14:05", want: time.Date(2024, 3, 15, 14, 5, 0, 0, time.UTC)},
		{raw: " 2024-03-15 ", want: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
		{raw: "03-15-24", want: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		got, ok := ParseDate(tt.raw, time.UTC)
		assert.True(t, ok, tt.raw)
		assert.True(t, tt.want.Equal(got), "raw=%q got=%s", tt.raw, got)
	}

	_, ok := ParseDate("", time.UTC)
	assert.False(t, ok)
	_, ok = ParseDate("вчера", time.UTC)
	assert.False(t, ok)
}
