// Package insight asks a text-generation model for a short management
// suggestion about the filtered sales.
package insight

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/posto-dashboard/internal/aggregate"
)

const (
	// FallbackMessage is shown when the model answers with no text.
	FallbackMessage = "Nenhuma percepção disponível no momento."

	// ErrorMessage is shown when the model call fails.
	ErrorMessage = "Ocorreu um erro ao gerar os insights. Verifique a conexão."

	noTopAttendant = "N/A"
)

// ErrEmptySuggestion is returned when the model produced no usable text.
var ErrEmptySuggestion = errors.New("empty suggestion from model")

// Summary is what the model gets to see.
type Summary struct {
	Stats        aggregate.Stats
	TopAttendant string
	Start        *civil.Date
	End          *civil.Date
}

// Suggester turns a summary into a short suggestion.
type Suggester interface {
	Suggest(ctx context.Context, summary Summary) (string, error)
}

// NewSummary builds a Summary from computed stats and the attendant ranking.
func NewSummary(stats aggregate.Stats, ranking []aggregate.AttendantTotal, start, end *civil.Date) Summary {
	top, _ := aggregate.TopAttendant(ranking)
	return Summary{Stats: stats, TopAttendant: top, Start: start, End: end}
}

// BuildPrompt renders the analyst prompt in Portuguese.
func BuildPrompt(s Summary) string {
	top := s.TopAttendant
	if top == "" {
		top = noTopAttendant
	}
	data := fmt.Sprintf("Total faturado: %s, Litros: %s, Melhor frentista: %s. Período: %s a %s.",
		s.Stats.TotalRevenue.StringFixed(2),
		s.Stats.TotalVolume.StringFixed(2),
		top,
		dateOrBlank(s.Start),
		dateOrBlank(s.End),
	)
	return "Como um analista financeiro de postos de combustíveis, analise estes dados e " +
		"sugira uma ação prática (em português, max 3 frases): " + data
}

// Result is the user-facing outcome of a suggestion request. Failures are
// reported through Err while Text always holds something displayable.
type Result struct {
	Text string
	Err  error
}

// Suggest calls s and maps failures to the display messages.
func Suggest(ctx context.Context, s Suggester, summary Summary) Result {
	text, err := s.Suggest(ctx, summary)
	switch {
	case errors.Is(err, ErrEmptySuggestion):
		return Result{Text: FallbackMessage}
	case err != nil:
		return Result{Text: ErrorMessage, Err: err}
	case strings.TrimSpace(text) == "":
		return Result{Text: FallbackMessage}
	}
	return Result{Text: text}
}

func dateOrBlank(d *civil.Date) string {
	if d == nil {
		return ""
	}
	return d.String()
}
