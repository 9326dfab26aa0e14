package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

// ErrInvalidDate is returned when a transaction date matches none of the
// accepted layouts.
var ErrInvalidDate = errors.New("invalid transaction date")

// DateLayout is the canonical transaction date layout.
const DateLayout = "2006-01-02"

// Accepted layouts, tried in order. The bridge agent sends plain dates, the
// Firebird export sometimes appends a time and older terminals use dots.
var transactionDateLayouts = []string{
	DateLayout,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"02.01.2006",
	"02.01.2006 15:04:05",
	"02.01.2006 15:04",
	"2006.01.02",
	"02/01/2006",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
}

// ParseTransactionDate parses a raw transaction date into a civil date-time.
// Values with a zone offset are taken at their local wall clock.
func ParseTransactionDate(raw string) (civil.DateTime, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return civil.DateTime{}, fmt.Errorf("%w: empty value", ErrInvalidDate)
	}
	for _, layout := range transactionDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return civil.DateTimeOf(t), nil
		}
	}
	return civil.DateTime{}, fmt.Errorf("%w: %q", ErrInvalidDate, raw)
}

// ParseDate parses a YYYY-MM-DD date, as used by filter inputs.
func ParseDate(s string) (civil.Date, error) {
	d, err := civil.ParseDate(strings.TrimSpace(s))
	if err != nil {
		return civil.Date{}, fmt.Errorf("ParseDate: %w", err)
	}
	return d, nil
}
