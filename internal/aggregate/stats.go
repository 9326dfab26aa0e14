// Package aggregate turns filtered fueling records into dashboard figures.
//
// Every function is pure. Missing totals and volumes count as zero; a value
// that is present but not numeric fails the whole call with a
// *NonNumericError instead of corrupting the sums.
package aggregate

import (
	"github.com/dvloznov/posto-dashboard/internal/domain"
	"github.com/shopspring/decimal"
)

// DefaultOthersLabel groups records with an empty nickname or fuel type.
const DefaultOthersLabel = "OUTROS"

// Stats are the headline figures of the dashboard.
type Stats struct {
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	TotalVolume   decimal.Decimal `json:"total_volume"`
	AveragePrice  decimal.Decimal `json:"average_price"`
	AverageTicket decimal.Decimal `json:"average_ticket"`
	RecordCount   int             `json:"record_count"`
}

// ComputeStats sums revenue and volume over records.
func ComputeStats(records []domain.EnrichedRecord) (Stats, error) {
	var s Stats
	for i, r := range records {
		total, volume, err := amounts(i, r)
		if err != nil {
			return Stats{}, err
		}
		s.TotalRevenue = s.TotalRevenue.Add(total)
		s.TotalVolume = s.TotalVolume.Add(volume)
	}
	s.RecordCount = len(records)
	s.AveragePrice = averagePrice(s.TotalRevenue, s.TotalVolume)
	s.AverageTicket = averageTicket(s.TotalRevenue, s.RecordCount)
	return s, nil
}

// averagePrice is revenue per liter. With no volume the revenue is divided by
// one, so the "average" equals the revenue instead of being undefined.
func averagePrice(revenue, volume decimal.Decimal) decimal.Decimal {
	if volume.IsPositive() {
		return revenue.Div(volume)
	}
	return revenue.Div(decimal.NewFromInt(1))
}

// averageTicket is revenue per fueling. With no records the revenue is
// divided by one.
func averageTicket(revenue decimal.Decimal, count int) decimal.Decimal {
	if count == 0 {
		return revenue.Div(decimal.NewFromInt(1))
	}
	return revenue.Div(decimal.NewFromInt(int64(count)))
}

// amounts reads the total and volume of the record at index i.
func amounts(i int, r domain.EnrichedRecord) (total, volume decimal.Decimal, err error) {
	if total, err = r.TotalAmount.Decimal(); err != nil {
		return decimal.Zero, decimal.Zero, &NonNumericError{Index: i, Field: "total", Raw: r.TotalAmount.Raw()}
	}
	if volume, err = r.VolumeLiters.Decimal(); err != nil {
		return decimal.Zero, decimal.Zero, &NonNumericError{Index: i, Field: "litros", Raw: r.VolumeLiters.Raw()}
	}
	return total, volume, nil
}
