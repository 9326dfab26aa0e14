package aggregate

import (
	"sort"
	"strings"

	"github.com/dvloznov/posto-dashboard/internal/domain"
	"github.com/shopspring/decimal"
)

// AttendantTotal is one bar of the per-attendant chart.
type AttendantTotal struct {
	Name   string          `json:"name"`
	Total  decimal.Decimal `json:"total"`
	Volume decimal.Decimal `json:"litros"`
}

// FuelTotal is one slice of the fuel mix chart.
type FuelTotal struct {
	Name  string          `json:"name"`
	Value decimal.Decimal `json:"value"`
}

// AttendantDetail is an attendant group with its member sales.
type AttendantDetail struct {
	Name   string                  `json:"name"`
	Total  decimal.Decimal         `json:"total"`
	Volume decimal.Decimal         `json:"litros"`
	Count  int                     `json:"count"`
	Sales  []domain.EnrichedRecord `json:"sales"`
}

// groupKey returns the grouping label, or the others label when empty.
func groupKey(s string) string {
	if strings.TrimSpace(s) == "" {
		return DefaultOthersLabel
	}
	return s
}

// attendantGroups accumulates records per nickname in first-seen order.
func attendantGroups(records []domain.EnrichedRecord, keepSales bool) ([]*AttendantDetail, error) {
	index := make(map[string]int)
	var groups []*AttendantDetail

	for i, r := range records {
		total, volume, err := amounts(i, r)
		if err != nil {
			return nil, err
		}

		key := groupKey(r.AttendantNickname)
		pos, exists := index[key]
		if !exists {
			pos = len(groups)
			index[key] = pos
			groups = append(groups, &AttendantDetail{Name: key})
		}

		g := groups[pos]
		g.Total = g.Total.Add(total)
		g.Volume = g.Volume.Add(volume)
		g.Count++
		if keepSales {
			g.Sales = append(g.Sales, r)
		}
	}

	// Stable: equal totals keep first-seen order.
	sort.SliceStable(groups, func(a, b int) bool {
		return groups[a].Total.GreaterThan(groups[b].Total)
	})
	return groups, nil
}

// GroupByAttendant totals revenue and volume per attendant nickname, highest
// revenue first.
func GroupByAttendant(records []domain.EnrichedRecord) ([]AttendantTotal, error) {
	groups, err := attendantGroups(records, false)
	if err != nil {
		return nil, err
	}
	out := make([]AttendantTotal, 0, len(groups))
	for _, g := range groups {
		out = append(out, AttendantTotal{Name: g.Name, Total: g.Total, Volume: g.Volume})
	}
	return out, nil
}

// TopAttendant returns the first group's name.
func TopAttendant(groups []AttendantTotal) (string, bool) {
	if len(groups) == 0 {
		return "", false
	}
	return groups[0].Name, true
}

// GroupByFuelType totals revenue per fuel type in first-seen order.
func GroupByFuelType(records []domain.EnrichedRecord) ([]FuelTotal, error) {
	index := make(map[string]int)
	out := make([]FuelTotal, 0)

	for i, r := range records {
		total, _, err := amounts(i, r)
		if err != nil {
			return nil, err
		}
		key := groupKey(r.FuelType)
		pos, exists := index[key]
		if !exists {
			pos = len(out)
			index[key] = pos
			out = append(out, FuelTotal{Name: key})
		}
		out[pos].Value = out[pos].Value.Add(total)
	}
	return out, nil
}

// GroupByAttendantDetailed is GroupByAttendant keeping the member sales,
// which are ordered by order.
func GroupByAttendantDetailed(records []domain.EnrichedRecord, order SalesOrder) ([]AttendantDetail, error) {
	groups, err := attendantGroups(records, true)
	if err != nil {
		return nil, err
	}
	out := make([]AttendantDetail, 0, len(groups))
	for _, g := range groups {
		g.Sales = order.Sort(g.Sales)
		out = append(out, *g)
	}
	return out, nil
}
