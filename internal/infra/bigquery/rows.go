package bigquery

import (
	"math/big"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
)

// FuelingRow is one pump transaction in posto.abastecimentos.
type FuelingRow struct {
	NozzleCode string     `bigquery:"cod_bico"` // REQUIRED
	CashDate   civil.Date `bigquery:"dt_caixa"` // REQUIRED

	OperatorName bigquery.NullString `bigquery:"nome_operador"`    // NULLABLE
	FuelType     bigquery.NullString `bigquery:"tipo_combustivel"` // NULLABLE

	UnitPrice    *big.Rat `bigquery:"preco"`  // NULLABLE NUMERIC
	VolumeLiters *big.Rat `bigquery:"litros"` // NULLABLE NUMERIC
	TotalAmount  *big.Rat `bigquery:"total"`  // NULLABLE NUMERIC

	Metered          bigquery.NullString `bigquery:"afericao"`  // NULLABLE, "S" or "N"
	RegisterSequence bigquery.NullInt64  `bigquery:"seq_caixa"` // NULLABLE

	MeterStart *big.Rat `bigquery:"enc_inicial"` // NULLABLE NUMERIC
	MeterEnd   *big.Rat `bigquery:"enc_final"`   // NULLABLE NUMERIC

	AttendantCardID bigquery.NullString `bigquery:"id_cartao_frentista"` // NULLABLE
}

// AttendantRow is one attendant in posto.funcionarios.
type AttendantRow struct {
	CardID   string              `bigquery:"id_cartao_abast"` // REQUIRED
	Nickname string              `bigquery:"apelido"`         // REQUIRED
	FullName bigquery.NullString `bigquery:"nome"`            // NULLABLE

	SecondaryCards []string `bigquery:"cartoes_secundarios"` // REPEATED STRING
}
