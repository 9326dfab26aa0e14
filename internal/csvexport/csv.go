// Package csvexport writes fueling records as spreadsheet-friendly CSV.
//
// The output starts with a UTF-8 byte order mark so spreadsheet software
// detects the encoding of accented names. Text cells are always quoted with
// embedded quotes doubled; number cells are written with a fixed number of
// decimals and never quoted.
package csvexport

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/dvloznov/posto-dashboard/internal/domain"
	"github.com/shopspring/decimal"
)

// BOM is written before the header row.
const BOM = "\uFEFF"

// DefaultDelimiter separates fields when Options.Delimiter is unset.
const DefaultDelimiter = ','

type cellKind uint8

const (
	cellText cellKind = iota
	cellNumber
	cellEmpty
)

// Cell is one formatted field.
type Cell struct {
	kind   cellKind
	text   string
	number decimal.Decimal
	places int32
}

// Text is a quoted string cell.
func Text(s string) Cell { return Cell{kind: cellText, text: s} }

// Number is an unquoted number cell with places decimals.
func Number(d decimal.Decimal, places int32) Cell {
	return Cell{kind: cellNumber, number: d, places: places}
}

// Empty is a blank cell.
func Empty() Cell { return Cell{kind: cellEmpty} }

func (c Cell) render(b *strings.Builder) {
	switch c.kind {
	case cellText:
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(c.text, `"`, `""`))
		b.WriteByte('"')
	case cellNumber:
		b.WriteString(c.number.StringFixed(c.places))
	}
}

// Column maps a header to a cell extractor.
type Column struct {
	Header string
	Value  func(r domain.EnrichedRecord) Cell
}

// TextColumn exports a string field.
func TextColumn(header string, get func(r domain.EnrichedRecord) string) Column {
	return Column{Header: header, Value: func(r domain.EnrichedRecord) Cell { return Text(get(r)) }}
}

// AmountColumn exports a decimal field with places decimals. Missing values
// are written as zero and non-numeric values as an empty field.
func AmountColumn(header string, places int32, get func(r domain.EnrichedRecord) domain.Amount) Column {
	return Column{Header: header, Value: func(r domain.EnrichedRecord) Cell {
		d, err := get(r).Decimal()
		if err != nil {
			return Empty()
		}
		return Number(d, places)
	}}
}

// IntColumn exports an integer field.
func IntColumn(header string, get func(r domain.EnrichedRecord) int64) Column {
	return Column{Header: header, Value: func(r domain.EnrichedRecord) Cell {
		return Number(decimal.NewFromInt(get(r)), 0)
	}}
}

// Options controls the output format.
type Options struct {
	// Delimiter defaults to a comma. Semicolon is what spreadsheets set to
	// a comma-decimal locale expect.
	Delimiter rune
}

func (o Options) delimiter() rune {
	if err := validDelimiter(o.Delimiter); err != nil {
		return DefaultDelimiter
	}
	return o.Delimiter
}

// ParseDelimiter reads a delimiter option. "" means the default, and the
// names "comma", "semicolon" and "tab" are accepted besides the character
// itself.
func ParseDelimiter(s string) (rune, error) {
	switch strings.ToLower(s) {
	case "":
		return DefaultDelimiter, nil
	case "comma":
		return ',', nil
	case "semicolon":
		return ';', nil
	case "tab", `\t`:
		return '\t', nil
	}
	r, size := utf8.DecodeRuneInString(s)
	if size != len(s) {
		return 0, fmt.Errorf("ParseDelimiter: %q is not a single character", s)
	}
	if err := validDelimiter(r); err != nil {
		return 0, fmt.Errorf("ParseDelimiter: %w", err)
	}
	return r, nil
}

// validDelimiter rejects runes that can appear inside a field unquoted.
// Number cells are never quoted, so digits, signs, the decimal point and the
// exponent marker are refused too.
func validDelimiter(r rune) error {
	switch {
	case r == 0, r == '"', r == '\r', r == '\n', r == utf8.RuneError:
		return fmt.Errorf("invalid delimiter %q", r)
	case r >= '0' && r <= '9', strings.ContainsRune(".-+eE", r):
		return fmt.Errorf("invalid delimiter %q: it can appear in a number", r)
	}
	return nil
}

// ToCSV renders records with the given columns.
func ToCSV(records []domain.EnrichedRecord, columns []Column, opts Options) string {
	var b strings.Builder
	header, rows := table(records, columns)
	render(&b, header, rows, opts.delimiter())
	return b.String()
}

// Write renders records with the given columns to w.
func Write(w io.Writer, records []domain.EnrichedRecord, columns []Column, opts Options) error {
	header, rows := table(records, columns)
	return WriteTable(w, header, rows, opts)
}

// WriteTable renders an arbitrary header and rows with the same rules.
func WriteTable(w io.Writer, header []string, rows [][]Cell, opts Options) error {
	var b strings.Builder
	render(&b, header, rows, opts.delimiter())
	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("csvexport.WriteTable: %w", err)
	}
	return nil
}

func table(records []domain.EnrichedRecord, columns []Column) ([]string, [][]Cell) {
	header := make([]string, len(columns))
	for i, c := range columns {
		header[i] = c.Header
	}
	rows := make([][]Cell, 0, len(records))
	for _, r := range records {
		row := make([]Cell, len(columns))
		for i, c := range columns {
			row[i] = c.Value(r)
		}
		rows = append(rows, row)
	}
	return header, rows
}

// render writes the BOM, the quoted header and one line per row. Lines are
// separated by \n with no trailing newline.
func render(b *strings.Builder, header []string, rows [][]Cell, delim rune) {
	b.WriteString(BOM)
	for i, h := range header {
		if i > 0 {
			b.WriteRune(delim)
		}
		Text(h).render(b)
	}
	for _, row := range rows {
		b.WriteByte('\n')
		for i, c := range row {
			if i > 0 {
				b.WriteRune(delim)
			}
			c.render(b)
		}
	}
}

// DefaultColumns is the attendant sales export layout.
func DefaultColumns() []Column {
	return []Column{
		TextColumn("dt_caixa", func(r domain.EnrichedRecord) string { return r.TransactionDate }),
		IntColumn("seq_caixa", func(r domain.EnrichedRecord) int64 { return r.RegisterSequence }),
		TextColumn("apelido", func(r domain.EnrichedRecord) string { return r.AttendantNickname }),
		TextColumn("id_cartao_frentista", func(r domain.EnrichedRecord) string { return r.AttendantCardID }),
		TextColumn("cod_bico", func(r domain.EnrichedRecord) string { return r.NozzleCode }),
		TextColumn("tipo_combustivel", func(r domain.EnrichedRecord) string { return r.FuelType }),
		AmountColumn("preco", 2, func(r domain.EnrichedRecord) domain.Amount { return r.UnitPrice }),
		AmountColumn("litros", 3, func(r domain.EnrichedRecord) domain.Amount { return r.VolumeLiters }),
		AmountColumn("total", 2, func(r domain.EnrichedRecord) domain.Amount { return r.TotalAmount }),
		AmountColumn("enc_inicial", 1, func(r domain.EnrichedRecord) domain.Amount { return r.MeterStart }),
		AmountColumn("enc_final", 1, func(r domain.EnrichedRecord) domain.Amount { return r.MeterEnd }),
		TextColumn("afericao", func(r domain.EnrichedRecord) string { return r.MeteredFlag.String() }),
	}
}

// AttendantTable lays out an attendant roster, secondary cards included.
func AttendantTable(attendants []domain.Attendant) ([]string, [][]Cell) {
	header := []string{"id_cartao_abast", "apelido", "nome_completo", "cartoes_secundarios"}
	rows := make([][]Cell, 0, len(attendants))
	for _, a := range attendants {
		rows = append(rows, []Cell{
			Text(a.CardID),
			Text(a.Nickname),
			Text(a.FullName),
			Text(strings.Join(a.SecondaryCardIDs, "|")),
		})
	}
	return header, rows
}

// FormatDelimiter is the printable name of a delimiter, for logs.
func FormatDelimiter(r rune) string {
	if r == '\t' {
		return "tab"
	}
	return strconv.QuoteRune(r)
}
