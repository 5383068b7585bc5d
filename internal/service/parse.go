package service

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TimestampLayout is the wire format of posted-date filters.
const TimestampLayout = "2006-01-02T15:04:05"

// ParsePrice parses a decimal price string.
func ParsePrice(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.TrimSpace(s))
}

// ParseTimestamp parses a posted-date filter. Timestamps without a zone are
// read as UTC; RFC 3339 is accepted too.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(TimestampLayout, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
