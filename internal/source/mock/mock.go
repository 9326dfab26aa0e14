// Package mock generates demonstration fueling data.
package mock

import (
	"context"
	"math/rand"
	"time"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/posto-dashboard/internal/domain"
	"github.com/shopspring/decimal"
)

// Attendants is the demonstration roster.
var Attendants = []domain.Attendant{
	{CardID: "1001", Nickname: "Carlos", FullName: "Carlos Silva"},
	{CardID: "1002", Nickname: "Marta", FullName: "Marta Souza"},
	{CardID: "1003", Nickname: "Junior", FullName: "José Junior"},
	{CardID: "1004", Nickname: "Bia", FullName: "Beatriz Lima"},
}

// Nozzles are the pump nozzle codes of the demonstration station.
var Nozzles = []string{"01", "02", "03", "04", "05", "06"}

// FuelTypes sold by the demonstration station.
var FuelTypes = []string{"GASOLINA COMUM", "GASOLINA ADITIVADA", "ETANOL", "DIESEL S10"}

// Source generates Count records spread over the last Days days before Now.
// The same Seed always produces the same records.
type Source struct {
	Seed  int64
	Count int
	Days  int
	Now   func() time.Time
}

// New returns a source with the demonstration defaults.
func New(seed int64, count int) *Source {
	return &Source{Seed: seed, Count: count, Days: 7, Now: time.Now}
}

// Name implements source.Source.
func (s *Source) Name() string { return "mock" }

// Ping implements source.Pinger; the generator is always available.
func (s *Source) Ping(ctx context.Context) error { return ctx.Err() }

// Attendants implements source.Source.
func (s *Source) Attendants(ctx context.Context) ([]domain.Attendant, error) {
	return append([]domain.Attendant(nil), Attendants...), nil
}

// Fuelings implements source.Source. Records outside [start, end] are dropped
// after generation so the sequence does not depend on the range.
func (s *Source) Fuelings(ctx context.Context, start, end civil.Date) ([]domain.FuelingRecord, error) {
	all := s.Generate()
	out := make([]domain.FuelingRecord, 0, len(all))
	for _, r := range all {
		d, err := civil.ParseDate(r.TransactionDate)
		if err != nil || d.Before(start) || d.After(end) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// Generate returns every generated record.
func (s *Source) Generate() []domain.FuelingRecord {
	rng := rand.New(rand.NewSource(s.Seed))
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	today := civil.DateOf(now())
	days := s.Days
	if days <= 0 {
		days = 7
	}

	records := make([]domain.FuelingRecord, 0, s.Count)
	for i := 0; i < s.Count; i++ {
		attendant := Attendants[rng.Intn(len(Attendants))]
		price := decimal.NewFromFloat(5.89 + rng.Float64()*0.5).Round(2)
		liters := decimal.NewFromFloat(10 + rng.Float64()*40).Round(3)
		meterStart := decimal.NewFromInt(int64(1000 + i*50))

		flag := domain.MeteredNone
		if rng.Float64() > 0.95 {
			flag = domain.MeteredFlagged
		}

		records = append(records, domain.FuelingRecord{
			OperatorName:     "SISTEMA",
			FuelType:         FuelTypes[rng.Intn(len(FuelTypes))],
			NozzleCode:       Nozzles[rng.Intn(len(Nozzles))],
			UnitPrice:        domain.AmountFromDecimal(price),
			VolumeLiters:     domain.AmountFromDecimal(liters),
			TotalAmount:      domain.AmountFromDecimal(price.Mul(liters).Round(2)),
			MeteredFlag:      flag,
			RegisterSequence: int64(450 + i/10),
			TransactionDate:  today.AddDays(-rng.Intn(days)).String(),
			MeterStart:       domain.AmountFromDecimal(meterStart),
			MeterEnd:         domain.AmountFromDecimal(meterStart.Add(liters)),
			AttendantCardID:  attendant.CardID,
		})
	}
	return records
}
