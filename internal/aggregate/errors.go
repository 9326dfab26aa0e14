package aggregate

import (
	"fmt"

	"github.com/dvloznov/posto-dashboard/internal/domain"
)

// NonNumericError reports a record whose total or volume was supplied but is
// not a number. It unwraps to domain.ErrNonNumericAmount.
type NonNumericError struct {
	Index int
	Field string
	Raw   string
}

func (e *NonNumericError) Error() string {
	return fmt.Sprintf("record %d: field %s: non-numeric value %q", e.Index, e.Field, e.Raw)
}

func (e *NonNumericError) Unwrap() error {
	return domain.ErrNonNumericAmount
}
