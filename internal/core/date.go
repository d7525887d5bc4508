package core

import (
	"strings"
	"time"
)

// dateLayouts lists the accepted textual date forms, tried in order.
var dateLayouts = []string{
	DateLayout,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"02/01/2006",
	"02-01-2006",
}

// ParseDate parses a date cell. An empty cell yields a nil date (undated
// record); any other unparseable value returns ErrInvalidDate. Parsed values
// are truncated to midnight UTC.
func ParseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return &d, nil
		}
	}
	return nil, ErrInvalidDate
}
