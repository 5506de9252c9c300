package normalize

import (
	"strings"
	"time"
)

// dateLayouts covers CRM exports (day first) and excelize's default rendering
// of date-styled cells (month first).
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"02.01.2006 15:04:05",
	"02.01.2006 15:04",
	"02.01.2006",
	"02.01.06",
	"01-02-06",
	"1/2/06 15:04",
	"1/2/2006",
}

// ParseDate reads a timestamp cell in the given location. It reports false for
// blank or unrecognized input.
func ParseDate(raw string, loc *time.Location) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
