// Package ai talks to Gemini to classify bank transactions.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"google.golang.org/genai"

	"github.com/dlozanor/finanzas/internal/categorize"
	"github.com/dlozanor/finanzas/internal/domain"
)

// DefaultModelName is the default Gemini model used for classification.
const DefaultModelName = "gemini-2.5-flash"

// GeminiClassifier implements categorize.Classifier against the Gemini API.
// Authentication comes from the environment (GEMINI_API_KEY or application
// default credentials), same as the rest of the Google stack.
type GeminiClassifier struct {
	model string
}

func NewGeminiClassifier(model string) *GeminiClassifier {
	if model == "" {
		model = DefaultModelName
	}
	return &GeminiClassifier{model: model}
}

var _ categorize.Classifier = (*GeminiClassifier)(nil)

// Classify asks the model to pick one category for the transaction.
// It expects the model to return a STRICT JSON object with category_id
// and confidence.
func (c *GeminiClassifier) Classify(ctx context.Context, description string, amount decimal.Decimal, categories []domain.Category) (*categorize.Classification, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("Classify: create genai client: %w", err)
	}

	prompt := buildClassifyPrompt(description, amount, categories)

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: prompt},
			},
		},
	}

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0),
	}

	resp, err := client.Models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("Classify: generate content: %w", err)
	}

	rawText := resp.Text()
	if rawText == "" {
		return nil, fmt.Errorf("Classify: empty response from model")
	}

	clean := cleanModelJSON(rawText)

	var out categorize.Classification
	if err := json.Unmarshal([]byte(clean), &out); err != nil {
		return nil, fmt.Errorf("Classify: unmarshal JSON: %w\nraw response: %s", err, rawText)
	}
	if out.Confidence < 0 || out.Confidence > 1 {
		return nil, fmt.Errorf("Classify: confidence %v out of range", out.Confidence)
	}

	return &out, nil
}

// buildClassifyPrompt enumerates the taxonomy and the transaction for the
// model. Categories are listed with their type so the model can respect the
// income/expense split.
func buildClassifyPrompt(description string, amount decimal.Decimal, categories []domain.Category) string {
	var b strings.Builder

	b.WriteString("Eres un clasificador de movimientos bancarios españoles.\n\n")
	b.WriteString("Categorías disponibles:\n")
	for _, cat := range categories {
		fmt.Fprintf(&b, "ID %d: %s (%s)\n", cat.ID, cat.Name, cat.Type)
	}

	kind := "GASTO"
	if domain.TypeForAmount(amount) == domain.Income {
		kind = "INGRESO"
	}
	fmt.Fprintf(&b, "\nMovimiento: \"%s\" (%s€, %s)\n\n", description, amount.String(), kind)

	b.WriteString("Responde SOLO con JSON válido, sin comentarios ni texto extra.\n")
	b.WriteString("No uses ```json ni Markdown.\n")
	b.WriteString("El objeto debe tener exactamente estos campos:\n")
	b.WriteString("{\"category_id\": <id numérico de la lista>, \"confidence\": <número entre 0 y 1>}\n")

	return b.String()
}

// cleanModelJSON strips Markdown fences and surrounding junk when the model
// ignores the formatting instructions.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		// Drop the first line (``` or ```json).
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}

	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}

	s = strings.TrimSpace(s)

	// Keep only from the first '{' to the last '}' if there is still noise.
	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end != -1 && end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}

	return s
}
