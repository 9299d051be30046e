package worksheet

import (
	"context"
	"errors"
	"fmt"

	"github.com/makosai/backend/internal/credits"
	"github.com/makosai/backend/internal/logger"
	"github.com/makosai/backend/internal/models"
)

var ErrTopicRequired = errors.New("topic is required")

// Ledger is the slice of the credit service the generation flow needs.
type Ledger interface {
	EnsureExists(ctx context.Context, userID string) (*models.UserCredits, error)
	Debit(ctx context.Context, userID string, amount int, description string) error
}

type Service struct {
	generator Generator
	repo      Repository
	ledger    Ledger
}

func NewService(generator Generator, repo Repository, ledger Ledger) *Service {
	return &Service{
		generator: generator,
		repo:      repo,
		ledger:    ledger,
	}
}

// Generate prices the request, debits the user's credits, and only then
// calls the model. A failed debit aborts before any paid work happens.
func (s *Service) Generate(ctx context.Context, userID string, input models.WorksheetInput) (*models.Worksheet, error) {
	if input.Topic == "" {
		return nil, ErrTopicRequired
	}
	input.ApplyDefaults()

	cost := credits.WorksheetCost(input.QuestionCount, input.GradeLevel)

	if _, err := s.ledger.EnsureExists(ctx, userID); err != nil {
		return nil, fmt.Errorf("failed to initialize credits: %w", err)
	}
	if err := s.ledger.Debit(ctx, userID, cost, "Worksheet: "+input.Topic); err != nil {
		return nil, err
	}

	ws, err := s.generator.Generate(ctx, input)
	if err != nil {
		logger.Log.Error("worksheet generation failed after debit",
			"user_id", userID, "topic", input.Topic, "cost", cost, "error", err)
		return nil, err
	}

	ws.UserID = userID
	ws.CreditsSpent = cost

	if err := s.repo.Create(ctx, ws); err != nil {
		return nil, fmt.Errorf("failed to store worksheet: %w", err)
	}

	logger.Log.Info("worksheet generated",
		"user_id", userID, "worksheet_id", ws.ID, "cost", cost)
	return ws, nil
}

func (s *Service) List(ctx context.Context, userID string) ([]*models.Worksheet, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) Get(ctx context.Context, userID, worksheetID string) (*models.Worksheet, error) {
	return s.repo.GetByID(ctx, userID, worksheetID)
}

// Update applies partial edits: empty fields keep their current value.
func (s *Service) Update(ctx context.Context, userID, worksheetID string, updates models.Worksheet) (*models.Worksheet, error) {
	ws, err := s.repo.GetByID(ctx, userID, worksheetID)
	if err != nil {
		return nil, err
	}

	if updates.Title != "" {
		ws.Title = updates.Title
	}
	if updates.Status != "" {
		ws.Status = updates.Status
	}
	if len(updates.Questions) > 0 {
		ws.Questions = updates.Questions
	}

	if err := s.repo.Update(ctx, ws); err != nil {
		return nil, err
	}
	return ws, nil
}

func (s *Service) Delete(ctx context.Context, userID, worksheetID string) error {
	return s.repo.Delete(ctx, userID, worksheetID)
}

// RecordDownload bumps the download counter and returns the worksheet for
// export.
func (s *Service) RecordDownload(ctx context.Context, userID, worksheetID string) (*models.Worksheet, error) {
	if err := s.repo.IncrementDownloads(ctx, userID, worksheetID); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, userID, worksheetID)
}
