package models

import "time"

type QuestionType string

const (
	QuestionMultipleChoice QuestionType = "multiple_choice"
	QuestionFillBlank      QuestionType = "fill_blank"
	QuestionTrueFalse      QuestionType = "true_false"
	QuestionMatching       QuestionType = "matching"
	QuestionShortAnswer    QuestionType = "short_answer"
	QuestionEssay          QuestionType = "essay"
)

type WorksheetStatus string

const (
	WorksheetDraft     WorksheetStatus = "draft"
	WorksheetPublished WorksheetStatus = "published"
)

type Question struct {
	ID      string       `json:"id"`
	Type    QuestionType `json:"type"`
	Prompt  string       `json:"prompt"`
	Options []string     `json:"options,omitempty"`
	Answer  string       `json:"answer"`
}

type Worksheet struct {
	ID            string          `json:"id"`
	UserID        string          `json:"user_id"`
	Title         string          `json:"title"`
	Subject       string          `json:"subject"`
	Topic         string          `json:"topic"`
	GradeLevel    string          `json:"grade_level"`
	Difficulty    string          `json:"difficulty"`
	Language      string          `json:"language"`
	Status        WorksheetStatus `json:"status"`
	Questions     []Question      `json:"questions"`
	Downloads     int             `json:"downloads"`
	CreditsSpent  int             `json:"credits_spent"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// WorksheetInput carries the generator form parameters. Zero values are
// filled with defaults before generation; only Topic is required.
type WorksheetInput struct {
	Topic         string   `json:"topic"`
	Subject       string   `json:"subject"`
	GradeLevel    string   `json:"grade_level"`
	Difficulty    string   `json:"difficulty"`
	QuestionCount int      `json:"question_count"`
	QuestionTypes []string `json:"question_types"`
	Language      string   `json:"language"`
}

func (in *WorksheetInput) ApplyDefaults() {
	if in.Subject == "" {
		in.Subject = "general"
	}
	if in.GradeLevel == "" {
		in.GradeLevel = "5"
	}
	if in.Difficulty == "" {
		in.Difficulty = "medium"
	}
	if in.QuestionCount == 0 {
		in.QuestionCount = 10
	}
	if len(in.QuestionTypes) == 0 {
		in.QuestionTypes = []string{string(QuestionMultipleChoice)}
	}
	if in.Language == "" {
		in.Language = "en"
	}
}
