// Package dateutil provides timestamp parsing and localized date formatting.
package dateutil

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidTimestamp indicates a value that matches none of the accepted layouts.
var ErrInvalidTimestamp = errors.New("invalid timestamp")

// MaxTimestampLength limits input length to prevent abuse.
const MaxTimestampLength = 64

// acceptedLayouts are tried in order by ParseTimestamp.
var acceptedLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// spanishMonths maps time.Month (1-12) to its lowercase Spanish name.
var spanishMonths = [...]string{
	"", "enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

// ParseTimestamp parses RFC 3339 values and a few common ISO-like layouts.
func ParseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("%w: value cannot be empty", ErrInvalidTimestamp)
	}
	if len(value) > MaxTimestampLength {
		return time.Time{}, fmt.Errorf("%w: value exceeds %d characters", ErrInvalidTimestamp, MaxTimestampLength)
	}
	for _, layout := range acceptedLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, value)
}

// FormatSpanishLong renders t as "19 de octubre de 2026, 14:05".
// The time is formatted in t's own location.
func FormatSpanishLong(t time.Time) string {
	return fmt.Sprintf("%d de %s de %d, %02d:%02d",
		t.Day(), spanishMonths[t.Month()], t.Year(), t.Hour(), t.Minute())
}
