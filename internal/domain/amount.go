package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrNonNumericAmount is returned when a numeric field was supplied but could
// not be read as a number.
var ErrNonNumericAmount = errors.New("non-numeric amount")

type amountState uint8

const (
	amountMissing amountState = iota
	amountValid
	amountInvalid
)

// Amount is a decimal quantity as it arrived from a record source. It keeps
// track of whether the value was absent (read as zero) or present but not a
// number (read as ErrNonNumericAmount).
type Amount struct {
	value decimal.Decimal
	raw   string
	state amountState
}

// NewAmount returns a present amount for v.
func NewAmount(v float64) Amount {
	return Amount{value: decimal.NewFromFloat(v), state: amountValid}
}

// AmountFromDecimal wraps an existing decimal.
func AmountFromDecimal(d decimal.Decimal) Amount {
	return Amount{value: d, state: amountValid}
}

// ParseAmount reads s as a decimal. Both "." and "," are accepted as the
// decimal separator, and "1.234,56" is read the Brazilian way. An empty
// string yields a missing amount. Anything that does not parse is kept as an
// invalid amount and surfaces during aggregation.
func ParseAmount(s string) Amount {
	s = strings.TrimSpace(s)
	if s == "" {
		return Amount{}
	}
	normalized := s
	comma, dot := strings.LastIndex(s, ","), strings.LastIndex(s, ".")
	switch {
	case comma >= 0 && dot < 0:
		normalized = strings.Replace(s, ",", ".", 1)
	case comma > dot:
		// 1.234,56
		normalized = strings.Replace(strings.ReplaceAll(s, ".", ""), ",", ".", 1)
	}
	d, err := decimal.NewFromString(normalized)
	if err != nil {
		return Amount{raw: s, state: amountInvalid}
	}
	return Amount{value: d, state: amountValid}
}

// Missing reports whether no value was supplied.
func (a Amount) Missing() bool { return a.state == amountMissing }

// Valid reports whether a numeric value was supplied.
func (a Amount) Valid() bool { return a.state == amountValid }

// Raw returns the original text of an invalid amount.
func (a Amount) Raw() string { return a.raw }

// Decimal returns the value, zero when missing, or ErrNonNumericAmount.
func (a Amount) Decimal() (decimal.Decimal, error) {
	switch a.state {
	case amountValid:
		return a.value, nil
	case amountInvalid:
		return decimal.Zero, fmt.Errorf("%w: %q", ErrNonNumericAmount, a.raw)
	default:
		return decimal.Zero, nil
	}
}

// OrZero returns the value, or zero when missing or invalid.
func (a Amount) OrZero() decimal.Decimal {
	if a.state == amountValid {
		return a.value
	}
	return decimal.Zero
}

// String renders the amount for logs.
func (a Amount) String() string {
	switch a.state {
	case amountValid:
		return a.value.String()
	case amountInvalid:
		return a.raw
	default:
		return ""
	}
}

// MarshalJSON writes valid amounts as JSON numbers, missing amounts as null
// and invalid amounts as their original string.
func (a Amount) MarshalJSON() ([]byte, error) {
	switch a.state {
	case amountValid:
		return []byte(a.value.String()), nil
	case amountInvalid:
		return json.Marshal(a.raw)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts numbers, numeric strings and null.
func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*a = Amount{}
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("Amount: %w", err)
		}
		*a = ParseAmount(s)
		return nil
	}
	*a = ParseAmount(string(b))
	return nil
}
