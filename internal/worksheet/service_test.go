package worksheet

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/makosai/backend/internal/credits"
	"github.com/makosai/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLedger struct {
	balance int
	debits  []int
}

func (f *fakeLedger) EnsureExists(ctx context.Context, userID string) (*models.UserCredits, error) {
	return &models.UserCredits{UserID: userID, Credits: f.balance, Plan: credits.PlanFree}, nil
}

func (f *fakeLedger) Debit(ctx context.Context, userID string, amount int, description string) error {
	if f.balance < amount {
		return credits.ErrInsufficientCredits
	}
	f.balance -= amount
	f.debits = append(f.debits, amount)
	return nil
}

type fakeGenerator struct {
	calls int
	fail  error
}

func (f *fakeGenerator) Generate(ctx context.Context, input models.WorksheetInput) (*models.Worksheet, error) {
	f.calls++
	if f.fail != nil {
		return nil, f.fail
	}
	return &models.Worksheet{
		ID:    uuid.New().String(),
		Title: input.Topic,
		Questions: []models.Question{
			{ID: "q1", Type: models.QuestionMultipleChoice, Prompt: "p", Answer: "a"},
		},
	}, nil
}

type fakeRepo struct {
	stored map[string]*models.Worksheet
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{stored: make(map[string]*models.Worksheet)}
}

func (f *fakeRepo) InitializeDatabase(ctx context.Context) error { return nil }

func (f *fakeRepo) Create(ctx context.Context, ws *models.Worksheet) error {
	f.stored[ws.ID] = ws
	return nil
}

func (f *fakeRepo) GetByID(ctx context.Context, userID, worksheetID string) (*models.Worksheet, error) {
	ws, ok := f.stored[worksheetID]
	if !ok || ws.UserID != userID {
		return nil, ErrWorksheetNotFound
	}
	copied := *ws
	return &copied, nil
}

func (f *fakeRepo) ListByUser(ctx context.Context, userID string) ([]*models.Worksheet, error) {
	var out []*models.Worksheet
	for _, ws := range f.stored {
		if ws.UserID == userID {
			out = append(out, ws)
		}
	}
	return out, nil
}

func (f *fakeRepo) Update(ctx context.Context, ws *models.Worksheet) error {
	if _, ok := f.stored[ws.ID]; !ok {
		return ErrWorksheetNotFound
	}
	f.stored[ws.ID] = ws
	return nil
}

func (f *fakeRepo) Delete(ctx context.Context, userID, worksheetID string) error {
	ws, ok := f.stored[worksheetID]
	if !ok || ws.UserID != userID {
		return ErrWorksheetNotFound
	}
	delete(f.stored, worksheetID)
	return nil
}

func (f *fakeRepo) IncrementDownloads(ctx context.Context, userID, worksheetID string) error {
	ws, ok := f.stored[worksheetID]
	if !ok || ws.UserID != userID {
		return ErrWorksheetNotFound
	}
	ws.Downloads++
	return nil
}

func TestGenerateDebitsBeforeGenerating(t *testing.T) {
	ledger := &fakeLedger{balance: 5}
	gen := &fakeGenerator{}
	repo := newFakeRepo()
	svc := NewService(gen, repo, ledger)

	ws, err := svc.Generate(context.Background(), "u1", models.WorksheetInput{Topic: "Fractions"})
	require.NoError(t, err)

	// Defaults: 10 questions, grade 5 -> 1 credit.
	assert.Equal(t, []int{1}, ledger.debits)
	assert.Equal(t, 4, ledger.balance)
	assert.Equal(t, 1, ws.CreditsSpent)
	assert.Equal(t, "u1", ws.UserID)
	assert.Len(t, repo.stored, 1)
}

func TestGenerateChargesGradeSurcharge(t *testing.T) {
	ledger := &fakeLedger{balance: 5}
	svc := NewService(&fakeGenerator{}, newFakeRepo(), ledger)

	input := models.WorksheetInput{Topic: "Shapes", GradeLevel: "K", QuestionCount: 10}
	_, err := svc.Generate(context.Background(), "u1", input)
	require.NoError(t, err)
	assert.Equal(t, []int{2}, ledger.debits)
}

func TestGenerateInsufficientCreditsSkipsGeneration(t *testing.T) {
	ledger := &fakeLedger{balance: 0}
	gen := &fakeGenerator{}
	repo := newFakeRepo()
	svc := NewService(gen, repo, ledger)

	_, err := svc.Generate(context.Background(), "u1", models.WorksheetInput{Topic: "Fractions"})
	assert.ErrorIs(t, err, credits.ErrInsufficientCredits)
	assert.Zero(t, gen.calls, "paid work must not run when the debit fails")
	assert.Empty(t, repo.stored)
}

func TestGenerateRequiresTopic(t *testing.T) {
	ledger := &fakeLedger{balance: 5}
	svc := NewService(&fakeGenerator{}, newFakeRepo(), ledger)

	_, err := svc.Generate(context.Background(), "u1", models.WorksheetInput{})
	assert.ErrorIs(t, err, ErrTopicRequired)
	assert.Empty(t, ledger.debits)
}

func TestUpdateAppliesPartialEdits(t *testing.T) {
	ledger := &fakeLedger{balance: 5}
	repo := newFakeRepo()
	svc := NewService(&fakeGenerator{}, repo, ledger)

	ws, err := svc.Generate(context.Background(), "u1", models.WorksheetInput{Topic: "Fractions"})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), "u1", ws.ID, models.Worksheet{Title: "Fractions v2"})
	require.NoError(t, err)
	assert.Equal(t, "Fractions v2", updated.Title)
	assert.Equal(t, ws.Questions, updated.Questions, "unset fields keep their values")
}

func TestRecordDownloadIncrements(t *testing.T) {
	ledger := &fakeLedger{balance: 5}
	repo := newFakeRepo()
	svc := NewService(&fakeGenerator{}, repo, ledger)

	ws, err := svc.Generate(context.Background(), "u1", models.WorksheetInput{Topic: "Fractions"})
	require.NoError(t, err)

	got, err := svc.RecordDownload(context.Background(), "u1", ws.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Downloads)

	_, err = svc.RecordDownload(context.Background(), "someone-else", ws.ID)
	assert.ErrorIs(t, err, ErrWorksheetNotFound)
}
