package leitura

import (
	"fmt"
	"strings"
	"time"
)

// Accepted layouts for the datahora column, tried in order. Day, month and hour accept one or two
// digits; the minute-precision layout leaves seconds at zero.
const (
	LayoutSeconds = "2/1/2006 15:04:05"
	LayoutMinutes = "2/1/2006 15:04"
)

var timestampLayouts = []string{LayoutSeconds, LayoutMinutes}

// ParseTimestamp parses a datahora value in the local time zone.
func ParseTimestamp(s string) (time.Time, error) {
	return ParseTimestampIn(s, time.Local)
}

// ParseTimestampIn parses a datahora value in loc. Surrounding whitespace is ignored.
func ParseTimestampIn(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	v := strings.TrimSpace(s)
	var firstErr error
	for _, layout := range timestampLayouts {
		t, err := time.ParseInLocation(layout, v, loc)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, fmt.Errorf("parse datahora %q: %w", s, firstErr)
}
