package filter

import (
	"fmt"
	"net/url"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/posto-dashboard/internal/domain"
)

// Query parameter names understood by ParseSpec.
const (
	ParamStartDate = "start_date"
	ParamEndDate   = "end_date"
	ParamAttendant = "attendant"
	ParamNozzle    = "nozzle"
	ParamSearch    = "q"
	ParamFields    = "fields"
)

// ParseSpec builds a Spec from query parameters. Dates use YYYY-MM-DD; fields
// is a comma separated list of search field names.
func ParseSpec(q url.Values) (Spec, error) {
	spec := Spec{
		Attendant: strings.TrimSpace(q.Get(ParamAttendant)),
		Nozzle:    strings.TrimSpace(q.Get(ParamNozzle)),
		Search:    q.Get(ParamSearch),
	}

	var err error
	if spec.StartDate, err = optionalDate(q.Get(ParamStartDate)); err != nil {
		return Spec{}, fmt.Errorf("ParseSpec: %s: %w", ParamStartDate, err)
	}
	if spec.EndDate, err = optionalDate(q.Get(ParamEndDate)); err != nil {
		return Spec{}, fmt.Errorf("ParseSpec: %s: %w", ParamEndDate, err)
	}

	if raw := strings.TrimSpace(q.Get(ParamFields)); raw != "" {
		for _, name := range strings.Split(raw, ",") {
			f := Field(strings.TrimSpace(name))
			if !knownField(f) {
				return Spec{}, fmt.Errorf("ParseSpec: unknown search field %q", name)
			}
			spec.SearchFields = append(spec.SearchFields, f)
		}
	}

	return spec, nil
}

// Values is the inverse of ParseSpec.
func (s Spec) Values() url.Values {
	q := url.Values{}
	if s.StartDate != nil {
		q.Set(ParamStartDate, s.StartDate.String())
	}
	if s.EndDate != nil {
		q.Set(ParamEndDate, s.EndDate.String())
	}
	if s.Attendant != "" {
		q.Set(ParamAttendant, s.Attendant)
	}
	if s.Nozzle != "" {
		q.Set(ParamNozzle, s.Nozzle)
	}
	if s.Search != "" {
		q.Set(ParamSearch, s.Search)
	}
	if len(s.SearchFields) > 0 {
		names := make([]string, len(s.SearchFields))
		for i, f := range s.SearchFields {
			names[i] = string(f)
		}
		q.Set(ParamFields, strings.Join(names, ","))
	}
	return q
}

func optionalDate(s string) (*civil.Date, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	d, err := domain.ParseDate(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func knownField(f Field) bool {
	for _, k := range DefaultSearchFields {
		if k == f {
			return true
		}
	}
	return false
}
