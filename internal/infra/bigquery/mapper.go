package bigquery

import (
	"math/big"

	"github.com/dvloznov/posto-dashboard/internal/domain"
	"github.com/shopspring/decimal"
)

// numericScale is the BigQuery NUMERIC scale.
const numericScale = 9

// ToFuelingRecord maps a warehouse row to the domain record.
func ToFuelingRecord(row *FuelingRow) domain.FuelingRecord {
	return domain.FuelingRecord{
		OperatorName:     row.OperatorName.StringVal,
		FuelType:         row.FuelType.StringVal,
		NozzleCode:       row.NozzleCode,
		UnitPrice:        ratToAmount(row.UnitPrice),
		VolumeLiters:     ratToAmount(row.VolumeLiters),
		TotalAmount:      ratToAmount(row.TotalAmount),
		MeteredFlag:      domain.ParseMeteredFlag(row.Metered.StringVal),
		RegisterSequence: row.RegisterSequence.Int64,
		TransactionDate:  row.CashDate.String(),
		MeterStart:       ratToAmount(row.MeterStart),
		MeterEnd:         ratToAmount(row.MeterEnd),
		AttendantCardID:  row.AttendantCardID.StringVal,
	}
}

// ToAttendant maps a warehouse row to the domain attendant.
func ToAttendant(row *AttendantRow) domain.Attendant {
	return domain.Attendant{
		CardID:           row.CardID,
		Nickname:         row.Nickname,
		FullName:         row.FullName.StringVal,
		SecondaryCardIDs: row.SecondaryCards,
	}
}

func ratToAmount(r *big.Rat) domain.Amount {
	if r == nil {
		return domain.Amount{}
	}
	return domain.AmountFromDecimal(decimal.NewFromBigRat(r, numericScale))
}
