package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"google.golang.org/api/iterator"
)

const (
	fuelingsTable   = "abastecimentos"
	attendantsTable = "funcionarios"
)

// QueryFuelingsByDateRangeWithClient returns the fuelings whose cash date is
// within [start, end], oldest first.
func QueryFuelingsByDateRangeWithClient(ctx context.Context, client *bigquery.Client, project, dataset string, start, end civil.Date) ([]*FuelingRow, error) {
	q := client.Query(fmt.Sprintf(`
		SELECT
			nome_operador,
			tipo_combustivel,
			cod_bico,
			preco,
			litros,
			total,
			afericao,
			seq_caixa,
			dt_caixa,
			enc_inicial,
			enc_final,
			id_cartao_frentista
		FROM `+"`%s.%s.%s`"+`
		WHERE dt_caixa >= @start_date
		  AND dt_caixa <= @end_date
		ORDER BY dt_caixa, seq_caixa
	`, project, dataset, fuelingsTable))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "start_date", Value: start},
		{Name: "end_date", Value: end},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("QueryFuelingsByDateRange: query read: %w", err)
	}

	var rows []*FuelingRow
	for {
		var r FuelingRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("QueryFuelingsByDateRange: iter next: %w", err)
		}
		rows = append(rows, &r)
	}

	return rows, nil
}

// ListAttendantsWithClient returns the attendant roster ordered by nickname.
func ListAttendantsWithClient(ctx context.Context, client *bigquery.Client, project, dataset string) ([]*AttendantRow, error) {
	q := client.Query(fmt.Sprintf(`
		SELECT
		  id_cartao_abast,
		  apelido,
		  nome,
		  cartoes_secundarios
		FROM `+"`%s.%s.%s`"+`
		ORDER BY apelido
	`, project, dataset, attendantsTable))

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListAttendants: query read: %w", err)
	}

	var rows []*AttendantRow
	for {
		var r AttendantRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListAttendants: iter next: %w", err)
		}
		rows = append(rows, &r)
	}

	return rows, nil
}
