package domain

import (
	"encoding/json"
	"fmt"
	"strings"

	"cloud.google.com/go/civil"
)

// MeteredFlag tells whether a meter calibration check happened on the sale.
type MeteredFlag int

const (
	MeteredNone MeteredFlag = iota
	MeteredFlagged
)

// String returns the wire code used by the pump system ("N" or "S").
func (f MeteredFlag) String() string {
	if f == MeteredFlagged {
		return "S"
	}
	return "N"
}

// MarshalJSON writes the wire code.
func (f MeteredFlag) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.String())
}

// UnmarshalJSON accepts "S"/"N", booleans and null.
func (f *MeteredFlag) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("MeteredFlag: %w", err)
	}
	switch t := v.(type) {
	case nil:
		*f = MeteredNone
	case bool:
		if t {
			*f = MeteredFlagged
		} else {
			*f = MeteredNone
		}
	case string:
		*f = ParseMeteredFlag(t)
	default:
		return fmt.Errorf("MeteredFlag: unexpected value %v", v)
	}
	return nil
}

// ParseMeteredFlag maps the pump system code to a flag. Anything other than
// "S" is treated as no check.
func ParseMeteredFlag(s string) MeteredFlag {
	if strings.EqualFold(strings.TrimSpace(s), "S") {
		return MeteredFlagged
	}
	return MeteredNone
}

// FuelingRecord is one pump transaction.
type FuelingRecord struct {
	OperatorName     string      `json:"nome_operador"`
	FuelType         string      `json:"tipo_combustivel"`
	NozzleCode       string      `json:"cod_bico"`
	UnitPrice        Amount      `json:"preco"`
	VolumeLiters     Amount      `json:"litros"`
	TotalAmount      Amount      `json:"total"`
	MeteredFlag      MeteredFlag `json:"afericao"`
	RegisterSequence int64       `json:"seq_caixa"`
	TransactionDate  string      `json:"dt_caixa"`
	MeterStart       Amount      `json:"enc_inicial"`
	MeterEnd         Amount      `json:"enc_final"`
	AttendantCardID  string      `json:"id_cartao_frentista"`
}

// Date parses TransactionDate.
func (r FuelingRecord) Date() (civil.DateTime, error) {
	return ParseTransactionDate(r.TransactionDate)
}

// Validate reports data-integrity problems. It does not recompute the total:
// TotalAmount is trusted as given.
func (r FuelingRecord) Validate() []error {
	var errs []error
	check := func(field string, a Amount) {
		d, err := a.Decimal()
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", field, err))
			return
		}
		if d.IsNegative() {
			errs = append(errs, fmt.Errorf("%s: negative value %s", field, d))
		}
	}
	check("preco", r.UnitPrice)
	check("litros", r.VolumeLiters)
	check("total", r.TotalAmount)

	if r.MeterStart.Valid() && r.MeterEnd.Valid() && r.MeterEnd.OrZero().LessThan(r.MeterStart.OrZero()) {
		errs = append(errs, fmt.Errorf("enc_final %s is below enc_inicial %s", r.MeterEnd, r.MeterStart))
	}
	if _, err := r.Date(); err != nil {
		errs = append(errs, err)
	}
	return errs
}

// Attendant is a pump operator identified by a fueling card.
type Attendant struct {
	CardID           string   `json:"id_cartao_abast"`
	Nickname         string   `json:"apelido"`
	FullName         string   `json:"nome_completo,omitempty"`
	SecondaryCardIDs []string `json:"cartoes_secundarios,omitempty"`
}

// EnrichedRecord is a fueling record joined with its attendant nickname.
type EnrichedRecord struct {
	FuelingRecord
	AttendantNickname string `json:"apelido"`
}
