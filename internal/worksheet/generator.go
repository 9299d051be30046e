package worksheet

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/makosai/backend/internal/models"
	"google.golang.org/genai"
)

type Generator interface {
	Generate(ctx context.Context, input models.WorksheetInput) (*models.Worksheet, error)
}

type GeminiGenerator struct {
	client *genai.Client
	model  string
}

func NewGeminiGenerator(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("failed to create AI client: %w", err)
	}
	return &GeminiGenerator{
		client: client,
		model:  model,
	}, nil
}

func (g *GeminiGenerator) Generate(ctx context.Context, input models.WorksheetInput) (*models.Worksheet, error) {
	prompt := buildPrompt(input)

	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	ws, err := parseWorksheet(result.Text())
	if err != nil {
		return nil, fmt.Errorf("failed to parse generated worksheet: %w", err)
	}

	ws.ID = uuid.New().String()
	ws.Subject = input.Subject
	ws.Topic = input.Topic
	ws.GradeLevel = input.GradeLevel
	ws.Difficulty = input.Difficulty
	ws.Language = input.Language
	ws.Status = models.WorksheetDraft
	if ws.Title == "" {
		ws.Title = input.Topic
	}
	return ws, nil
}

func buildPrompt(input models.WorksheetInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create a %s worksheet about %q for grade %s students.\n",
		input.Subject, input.Topic, input.GradeLevel)
	fmt.Fprintf(&b, "Difficulty: %s. Language: %s.\n", input.Difficulty, input.Language)
	fmt.Fprintf(&b, "Generate exactly %d questions using these types: %s.\n",
		input.QuestionCount, strings.Join(input.QuestionTypes, ", "))
	b.WriteString(`Respond with JSON only, no prose, in this shape:
{"title": "...", "questions": [{"type": "multiple_choice", "prompt": "...", "options": ["..."], "answer": "..."}]}
Omit "options" for question types that have none.`)
	return b.String()
}

// generatedWorksheet is the JSON shape the model is instructed to return.
type generatedWorksheet struct {
	Title     string `json:"title"`
	Questions []struct {
		Type    string   `json:"type"`
		Prompt  string   `json:"prompt"`
		Options []string `json:"options"`
		Answer  string   `json:"answer"`
	} `json:"questions"`
}

// parseWorksheet decodes the model output, tolerating markdown code fences
// around the JSON.
func parseWorksheet(raw string) (*models.Worksheet, error) {
	cleaned := strings.TrimSpace(raw)
	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
		cleaned = strings.TrimSpace(cleaned)
	}

	var gen generatedWorksheet
	if err := json.Unmarshal([]byte(cleaned), &gen); err != nil {
		return nil, err
	}
	if len(gen.Questions) == 0 {
		return nil, fmt.Errorf("model returned no questions")
	}

	ws := &models.Worksheet{
		Title:     gen.Title,
		Questions: make([]models.Question, 0, len(gen.Questions)),
	}
	for i, q := range gen.Questions {
		ws.Questions = append(ws.Questions, models.Question{
			ID:      fmt.Sprintf("q%d", i+1),
			Type:    models.QuestionType(q.Type),
			Prompt:  q.Prompt,
			Options: q.Options,
			Answer:  q.Answer,
		})
	}
	return ws, nil
}
