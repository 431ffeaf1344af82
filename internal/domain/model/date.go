package model

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the canonical date format written to artifacts.
const DateLayout = "2006-01-02"

var dateLayouts = []string{
	DateLayout,
	"Mon Jan 2, 2006, 3:04PM",
	"Mon Jan 2, 2006, 3:04 PM",
	"Jan 2, 2006, 3:04PM",
	"Jan 2, 2006",
	"01/02/2006",
	time.RFC3339,
}

// ParseDate accepts the canonical layout and the export formats seen in
// transaction logs.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// FormatDate renders t in the canonical layout.
func FormatDate(t time.Time) string { return t.Format(DateLayout) }
