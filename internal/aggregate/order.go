package aggregate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dvloznov/posto-dashboard/internal/domain"
)

// SortKey selects how the sales inside an attendant group are ordered.
type SortKey string

const (
	SortNone   SortKey = ""
	SortNozzle SortKey = "nozzle"
	SortTotal  SortKey = "total"
)

// SalesOrder is the nested sort applied by GroupByAttendantDetailed.
type SalesOrder struct {
	Key        SortKey
	Descending bool
}

// ParseSalesOrder reads a key ("nozzle", "total" or "") and a direction
// ("asc", "desc" or "").
func ParseSalesOrder(key, direction string) (SalesOrder, error) {
	var o SalesOrder
	switch k := SortKey(strings.ToLower(strings.TrimSpace(key))); k {
	case SortNone, SortNozzle, SortTotal:
		o.Key = k
	default:
		return SalesOrder{}, fmt.Errorf("ParseSalesOrder: unknown sort key %q", key)
	}
	switch strings.ToLower(strings.TrimSpace(direction)) {
	case "", "asc":
	case "desc":
		o.Descending = true
	default:
		return SalesOrder{}, fmt.Errorf("ParseSalesOrder: unknown direction %q", direction)
	}
	return o, nil
}

// Sort returns a sorted copy of sales. Ties keep their input order. Totals
// that are missing or invalid sort as zero.
func (o SalesOrder) Sort(sales []domain.EnrichedRecord) []domain.EnrichedRecord {
	out := append([]domain.EnrichedRecord(nil), sales...)

	var less func(a, b domain.EnrichedRecord) bool
	switch o.Key {
	case SortNozzle:
		less = func(a, b domain.EnrichedRecord) bool { return a.NozzleCode < b.NozzleCode }
	case SortTotal:
		less = func(a, b domain.EnrichedRecord) bool { return a.TotalAmount.OrZero().LessThan(b.TotalAmount.OrZero()) }
	default:
		return out
	}

	sort.SliceStable(out, func(i, j int) bool {
		if o.Descending {
			return less(out[j], out[i])
		}
		return less(out[i], out[j])
	})
	return out
}
