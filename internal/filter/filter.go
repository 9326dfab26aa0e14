// Package filter selects the fueling records shown by the dashboard.
package filter

import (
	"strings"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/posto-dashboard/internal/domain"
)

// Field names a record field that free-text search looks at.
type Field string

const (
	FieldNickname Field = "apelido"
	FieldFuelType Field = "tipo_combustivel"
	FieldNozzle   Field = "cod_bico"
	FieldCardID   Field = "id_cartao_frentista"
)

// DefaultSearchFields are searched when Spec.SearchFields is empty.
var DefaultSearchFields = []Field{FieldNickname, FieldFuelType, FieldNozzle, FieldCardID}

// Spec describes one dashboard filter. Zero values mean no constraint.
type Spec struct {
	StartDate *civil.Date
	EndDate   *civil.Date
	Attendant string
	Nozzle    string
	// Search is matched case-insensitively as a substring, spaces included.
	Search       string
	SearchFields []Field
}

// InvalidDate points at a record whose transaction date could not be parsed.
type InvalidDate struct {
	Index int    `json:"index"`
	Raw   string `json:"raw"`
}

// Result is the outcome of Apply.
type Result struct {
	Records []domain.EnrichedRecord `json:"records"`

	// InvalidDates lists records that passed the filter even though their
	// date could not be checked against the date range. Indexes refer to
	// the input slice.
	InvalidDates []InvalidDate `json:"invalid_dates,omitempty"`
}

// Apply returns the records matching every constraint in spec.
//
// Records with an unparseable date are kept and reported in InvalidDates:
// showing suspicious data is preferred over silently hiding sales. A range
// with StartDate after EndDate matches nothing.
func Apply(records []domain.EnrichedRecord, spec Spec) Result {
	res := Result{Records: make([]domain.EnrichedRecord, 0)}
	if len(records) == 0 || spec.emptyRange() {
		return res
	}

	search := strings.ToLower(spec.Search)
	fields := spec.SearchFields
	if len(fields) == 0 {
		fields = DefaultSearchFields
	}
	from, to := spec.window()

	for i, r := range records {
		if spec.Attendant != "" && r.AttendantNickname != spec.Attendant {
			continue
		}
		if spec.Nozzle != "" && r.NozzleCode != spec.Nozzle {
			continue
		}
		if search != "" && !matchesSearch(r, search, fields) {
			continue
		}

		if spec.StartDate != nil || spec.EndDate != nil {
			dt, err := r.Date()
			if err != nil {
				res.InvalidDates = append(res.InvalidDates, InvalidDate{Index: i, Raw: r.TransactionDate})
			} else if !inWindow(dt, from, to) {
				continue
			}
		}

		res.Records = append(res.Records, r)
	}
	return res
}

// Filter is Apply without the invalid date report.
func Filter(records []domain.EnrichedRecord, spec Spec) []domain.EnrichedRecord {
	return Apply(records, spec).Records
}

func (s Spec) emptyRange() bool {
	return s.StartDate != nil && s.EndDate != nil && s.EndDate.Before(*s.StartDate)
}

// window normalizes the bounds to 00:00:00 of the start day and 23:59:59 of
// the end day.
func (s Spec) window() (from, to *civil.DateTime) {
	if s.StartDate != nil {
		from = &civil.DateTime{Date: *s.StartDate}
	}
	if s.EndDate != nil {
		to = &civil.DateTime{Date: *s.EndDate, Time: civil.Time{Hour: 23, Minute: 59, Second: 59}}
	}
	return from, to
}

func inWindow(dt civil.DateTime, from, to *civil.DateTime) bool {
	// Sub-second precision is not part of the window.
	dt.Time.Nanosecond = 0
	if from != nil && dt.Before(*from) {
		return false
	}
	if to != nil && dt.After(*to) {
		return false
	}
	return true
}

func matchesSearch(r domain.EnrichedRecord, needle string, fields []Field) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(fieldValue(r, f)), needle) {
			return true
		}
	}
	return false
}

func fieldValue(r domain.EnrichedRecord, f Field) string {
	switch f {
	case FieldNickname:
		return r.AttendantNickname
	case FieldFuelType:
		return r.FuelType
	case FieldNozzle:
		return r.NozzleCode
	case FieldCardID:
		return r.AttendantCardID
	default:
		return ""
	}
}
