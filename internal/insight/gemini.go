package insight

import (
	"context"
	"fmt"
	"strings"

	"github.com/dvloznov/posto-dashboard/internal/logger"
	"google.golang.org/genai"
)

// DefaultModelName is the Gemini model used when none is configured.
const DefaultModelName = "gemini-2.5-flash"

// contentGenerator is the part of *genai.Models the suggester uses.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiSuggester implements Suggester with the Gemini API. The API key is
// read from the environment by the genai client (GOOGLE_API_KEY or Vertex AI
// settings).
type GeminiSuggester struct {
	models contentGenerator
	model  string
}

// NewGeminiSuggester creates the genai client.
func NewGeminiSuggester(ctx context.Context, model, apiVersion string) (*GeminiSuggester, error) {
	if model == "" {
		model = DefaultModelName
	}
	if apiVersion == "" {
		apiVersion = "v1"
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: apiVersion},
	})
	if err != nil {
		return nil, fmt.Errorf("NewGeminiSuggester: create genai client: %w", err)
	}
	return &GeminiSuggester{models: client.Models, model: model}, nil
}

// Suggest implements Suggester.
func (g *GeminiSuggester) Suggest(ctx context.Context, summary Summary) (string, error) {
	prompt := BuildPrompt(summary)
	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: prompt}},
		},
	}

	resp, err := g.models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("Suggest: generate content: %w", err)
	}

	text := cleanModelText(resp.Text())
	if text == "" {
		return "", ErrEmptySuggestion
	}

	ctxLog := logger.FromContext(ctx)
	ctxLog.Debug().
		Str("model", g.model).
		Int("chars", len(text)).
		Msg("Generated suggestion")

	return text, nil
}

// cleanModelText strips Markdown fences the model sometimes adds.
func cleanModelText(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		// Drop the opening fence line (``` or ```text).
		idx := strings.Index(s, "\n")
		if idx == -1 {
			return strings.TrimSpace(strings.Trim(s, "`"))
		}
		s = s[idx+1:]
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
