package filter

import (
	"net/url"
	"reflect"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/posto-dashboard/internal/domain"
)

func record(nickname, nozzle, fuel, date string) domain.EnrichedRecord {
	return domain.EnrichedRecord{
		FuelingRecord: domain.FuelingRecord{
			NozzleCode:      nozzle,
			FuelType:        fuel,
			TransactionDate: date,
			AttendantCardID: "card-" + nickname,
			TotalAmount:     domain.NewAmount(10),
		},
		AttendantNickname: nickname,
	}
}

func date(s string) *civil.Date {
	d, err := civil.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return &d
}

func nozzles(records []domain.EnrichedRecord) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.NozzleCode)
	}
	return out
}

var sample = []domain.EnrichedRecord{
	record("Carlos", "01", "GASOLINA COMUM", "2024-03-10"),
	record("Marta", "02", "ETANOL", "2024-03-11"),
	record("Carlos", "03", "DIESEL S10", "2024-03-12T18:45:00"),
	record("Bia", "04", "GASOLINA ADITIVADA", "2024-03-13 23:59:59"),
	record("Marta", "05", "ETANOL", "2024-03-14"),
}

func TestApply(t *testing.T) {
	tests := []struct {
		name string
		spec Spec
		want []string
	}{
		{name: "no constraints", spec: Spec{}, want: []string{"01", "02", "03", "04", "05"}},
		{
			name: "boundary days are inclusive",
			spec: Spec{StartDate: date("2024-03-11"), EndDate: date("2024-03-13")},
			want: []string{"02", "03", "04"},
		},
		{name: "start only", spec: Spec{StartDate: date("2024-03-13")}, want: []string{"04", "05"}},
		{name: "end only", spec: Spec{EndDate: date("2024-03-10")}, want: []string{"01"}},
		{name: "attendant exact match", spec: Spec{Attendant: "Marta"}, want: []string{"02", "05"}},
		{name: "attendant is case sensitive", spec: Spec{Attendant: "marta"}, want: []string{}},
		{name: "nozzle exact match", spec: Spec{Nozzle: "03"}, want: []string{"03"}},
		{name: "search is case insensitive", spec: Spec{Search: "gasolina"}, want: []string{"01", "04"}},
		{name: "search matches card id", spec: Spec{Search: "CARD-BIA"}, want: []string{"04"}},
		{name: "search keeps surrounding spaces", spec: Spec{Search: "etanol "}, want: []string{}},
		{name: "search with inner space", spec: Spec{Search: "gasolina "}, want: []string{"01", "04"}},
		{
			name: "search limited to fields",
			spec: Spec{Search: "etanol", SearchFields: []Field{FieldNickname}},
			want: []string{},
		},
		{
			name: "all constraints combined",
			spec: Spec{StartDate: date("2024-03-11"), EndDate: date("2024-03-14"), Attendant: "Marta", Search: "eta"},
			want: []string{"02", "05"},
		},
		{
			name: "start after end matches nothing",
			spec: Spec{StartDate: date("2024-03-14"), EndDate: date("2024-03-10")},
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := nozzles(Apply(sample, tt.spec).Records)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Apply() nozzles = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestApply_EmptyInput(t *testing.T) {
	res := Apply(nil, Spec{Attendant: "Carlos"})
	if res.Records == nil || len(res.Records) != 0 {
		t.Errorf("Apply(nil) = %#v, want empty non-nil slice", res.Records)
	}
}

func TestApply_AndEqualsIntersection(t *testing.T) {
	dateOnly := Spec{StartDate: date("2024-03-11"), EndDate: date("2024-03-14")}
	attendantOnly := Spec{Attendant: "Carlos"}
	both := Spec{StartDate: dateOnly.StartDate, EndDate: dateOnly.EndDate, Attendant: attendantOnly.Attendant}

	inAttendant := map[string]bool{}
	for _, r := range Filter(sample, attendantOnly) {
		inAttendant[r.NozzleCode] = true
	}
	var intersection []string
	for _, r := range Filter(sample, dateOnly) {
		if inAttendant[r.NozzleCode] {
			intersection = append(intersection, r.NozzleCode)
		}
	}

	got := nozzles(Filter(sample, both))
	if !reflect.DeepEqual(got, intersection) {
		t.Errorf("combined filter = %v, intersection = %v", got, intersection)
	}
}

func TestApply_UnparseableDateIsIncluded(t *testing.T) {
	records := append([]domain.EnrichedRecord{}, sample...)
	records = append(records, record("Junior", "06", "ETANOL", "sem data"))

	res := Apply(records, Spec{StartDate: date("2024-03-14"), EndDate: date("2024-03-14")})

	if got, want := nozzles(res.Records), []string{"05", "06"}; !reflect.DeepEqual(got, want) {
		t.Errorf("records = %v, want %v", got, want)
	}
	want := []InvalidDate{{Index: 5, Raw: "sem data"}}
	if !reflect.DeepEqual(res.InvalidDates, want) {
		t.Errorf("InvalidDates = %v, want %v", res.InvalidDates, want)
	}
}

func TestApply_DoesNotReportDatesWithoutRange(t *testing.T) {
	res := Apply([]domain.EnrichedRecord{record("Junior", "06", "ETANOL", "")}, Spec{})
	if len(res.Records) != 1 || len(res.InvalidDates) != 0 {
		t.Errorf("Apply() = %+v, want the record and no invalid dates", res)
	}
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	before := append([]domain.EnrichedRecord{}, sample...)
	_ = Apply(sample, Spec{Search: "a"})
	if !reflect.DeepEqual(before, sample) {
		t.Error("Apply modified its input")
	}
}

func TestParseSpec(t *testing.T) {
	q := url.Values{}
	q.Set(ParamStartDate, "2024-03-01")
	q.Set(ParamEndDate, "2024-03-31")
	q.Set(ParamAttendant, "Bia")
	q.Set(ParamNozzle, "02")
	q.Set(ParamSearch, "diesel")
	q.Set(ParamFields, "tipo_combustivel, cod_bico")

	spec, err := ParseSpec(q)
	if err != nil {
		t.Fatalf("ParseSpec: %v", err)
	}
	if *spec.StartDate != *date("2024-03-01") || *spec.EndDate != *date("2024-03-31") {
		t.Errorf("dates = %v..%v", spec.StartDate, spec.EndDate)
	}
	if spec.Attendant != "Bia" || spec.Nozzle != "02" || spec.Search != "diesel" {
		t.Errorf("unexpected spec %+v", spec)
	}
	if !reflect.DeepEqual(spec.SearchFields, []Field{FieldFuelType, FieldNozzle}) {
		t.Errorf("SearchFields = %v", spec.SearchFields)
	}

	back, err := ParseSpec(spec.Values())
	if err != nil {
		t.Fatalf("ParseSpec(Values()): %v", err)
	}
	if !reflect.DeepEqual(back, spec) {
		t.Errorf("ParseSpec(Values()) = %+v, want %+v", back, spec)
	}
}

func TestParseSpec_Errors(t *testing.T) {
	for _, q := range []url.Values{
		{ParamStartDate: {"01/03/2024"}},
		{ParamEndDate: {"amanhã"}},
		{ParamFields: {"preco"}},
	} {
		if _, err := ParseSpec(q); err == nil {
			t.Errorf("ParseSpec(%v) expected error", q)
		}
	}
}
