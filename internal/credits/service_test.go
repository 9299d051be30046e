package credits

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/makosai/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memRepo is an in-memory Repository with the same contract as the
// Postgres-backed one: conditional debits, idempotent creation, and a
// unique-reference gate on credits.
type memRepo struct {
	balances   map[string]*models.UserCredits
	entries    map[string][]*models.CreditTransaction
	references map[string]bool
	clock      time.Time
}

func newMemRepo() *memRepo {
	return &memRepo{
		balances:   make(map[string]*models.UserCredits),
		entries:    make(map[string][]*models.CreditTransaction),
		references: make(map[string]bool),
		clock:      time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (m *memRepo) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func (m *memRepo) append(userID string, amount int, txType models.TransactionType, description string, reference *string) {
	entry := &models.CreditTransaction{
		ID:          fmt.Sprintf("tx-%d", len(m.entries[userID])+1),
		UserID:      userID,
		Amount:      amount,
		Type:        txType,
		Description: description,
		Reference:   reference,
		CreatedAt:   m.tick(),
	}
	m.entries[userID] = append(m.entries[userID], entry)
}

func (m *memRepo) InitializeDatabase(ctx context.Context) error { return nil }

func (m *memRepo) Get(ctx context.Context, userID string) (*models.UserCredits, error) {
	balance, ok := m.balances[userID]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *balance
	return &copied, nil
}

func (m *memRepo) GetOrCreate(ctx context.Context, userID string) (*models.UserCredits, error) {
	if balance, ok := m.balances[userID]; ok {
		copied := *balance
		return &copied, nil
	}
	now := m.tick()
	m.balances[userID] = &models.UserCredits{
		UserID:    userID,
		Credits:   WelcomeBonusCredits,
		Plan:      PlanFree,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.append(userID, WelcomeBonusCredits, models.TransactionBonus, WelcomeBonusDescription, nil)
	return m.Get(ctx, userID)
}

func (m *memRepo) Debit(ctx context.Context, userID string, amount int, description string) error {
	balance, ok := m.balances[userID]
	if !ok {
		return ErrNotFound
	}
	if balance.Credits < amount {
		return ErrInsufficientCredits
	}
	balance.Credits -= amount
	balance.UpdatedAt = m.tick()
	m.append(userID, -amount, models.TransactionUsage, description, nil)
	return nil
}

func (m *memRepo) Credit(ctx context.Context, userID string, amount int, txType models.TransactionType, description, reference string) error {
	if reference != "" {
		if m.references[reference] {
			return ErrDuplicateReference
		}
		m.references[reference] = true
	}
	balance, ok := m.balances[userID]
	if !ok {
		return ErrNotFound
	}
	balance.Credits += amount
	balance.UpdatedAt = m.tick()
	var ref *string
	if reference != "" {
		ref = &reference
	}
	m.append(userID, amount, txType, description, ref)
	return nil
}

func (m *memRepo) Transactions(ctx context.Context, userID string, limit int) ([]*models.CreditTransaction, error) {
	all := m.entries[userID]
	out := make([]*models.CreditTransaction, 0, limit)
	for i := len(all) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, all[i])
	}
	return out, nil
}

func (m *memRepo) UpdatePlan(ctx context.Context, userID, plan string, expiresAt *time.Time, subscriptionID *string) error {
	balance, ok := m.balances[userID]
	if !ok {
		return ErrNotFound
	}
	balance.Plan = plan
	balance.PlanExpiresAt = expiresAt
	balance.StripeSubscriptionID = subscriptionID
	balance.UpdatedAt = m.tick()
	return nil
}

func (m *memRepo) ClearPlan(ctx context.Context, userID string) error {
	return m.UpdatePlan(ctx, userID, PlanFree, nil, nil)
}

func TestBalanceAbsentForFreshUser(t *testing.T) {
	svc := NewService(newMemRepo())

	_, err := svc.Balance(context.Background(), "u1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEnsureExistsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	svc := NewService(repo)

	first, err := svc.EnsureExists(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, WelcomeBonusCredits, first.Credits)
	assert.Equal(t, PlanFree, first.Plan)

	second, err := svc.EnsureExists(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, first.Credits, second.Credits)

	history, err := svc.Transactions(ctx, "u1", 0)
	require.NoError(t, err)
	require.Len(t, history, 1, "welcome bonus must be recorded exactly once")
	assert.Equal(t, models.TransactionBonus, history[0].Type)
	assert.Equal(t, WelcomeBonusCredits, history[0].Amount)
	assert.Equal(t, WelcomeBonusDescription, history[0].Description)
}

func TestDebitInsufficientLeavesStateUntouched(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	svc := NewService(repo)

	_, err := svc.EnsureExists(ctx, "u1")
	require.NoError(t, err)

	err = svc.Debit(ctx, "u1", WelcomeBonusCredits+1, "too expensive")
	assert.ErrorIs(t, err, ErrInsufficientCredits)

	balance, err := svc.Balance(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, WelcomeBonusCredits, balance.Credits)

	history, err := svc.Transactions(ctx, "u1", 0)
	require.NoError(t, err)
	assert.Len(t, history, 1, "failed debit must not append a transaction")
}

func TestDebitRecordsMatchingUsageTransaction(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemRepo())

	_, err := svc.EnsureExists(ctx, "u1")
	require.NoError(t, err)

	require.NoError(t, svc.Debit(ctx, "u1", 2, "Worksheet: Fractions"))

	balance, err := svc.Balance(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, WelcomeBonusCredits-2, balance.Credits)

	history, err := svc.Transactions(ctx, "u1", 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, models.TransactionUsage, history[0].Type)
	assert.Equal(t, -2, history[0].Amount)
	assert.Equal(t, "Worksheet: Fractions", history[0].Description)
}

func TestDebitUnknownUser(t *testing.T) {
	svc := NewService(newMemRepo())

	err := svc.Debit(context.Background(), "ghost", 1, "x")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDebitRejectsNonPositiveAmount(t *testing.T) {
	svc := NewService(newMemRepo())

	assert.ErrorIs(t, svc.Debit(context.Background(), "u1", 0, "x"), ErrInvalidAmount)
	assert.ErrorIs(t, svc.Debit(context.Background(), "u1", -3, "x"), ErrInvalidAmount)
}

func TestCreditInitializesFreshAccountFirst(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemRepo())

	err := svc.Credit(ctx, "u1", 40, models.TransactionPurchase, "Credit pack: 40", "")
	require.NoError(t, err)

	balance, err := svc.Balance(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, WelcomeBonusCredits+40, balance.Credits)

	history, err := svc.Transactions(ctx, "u1", 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, models.TransactionPurchase, history[0].Type)
	assert.Equal(t, 40, history[0].Amount)
	assert.Equal(t, models.TransactionBonus, history[1].Type)
}

func TestCreditDuplicateReferenceAppliedOnce(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemRepo())

	require.NoError(t, svc.Credit(ctx, "u1", 100, models.TransactionSubscription, "Starter renewal", "evt_123"))
	require.NoError(t, svc.Credit(ctx, "u1", 100, models.TransactionSubscription, "Starter renewal", "evt_123"))

	balance, err := svc.Balance(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, WelcomeBonusCredits+100, balance.Credits,
		"re-delivered webhook event must not apply twice")
}

func TestCreditRejectsUsageType(t *testing.T) {
	svc := NewService(newMemRepo())

	err := svc.Credit(context.Background(), "u1", 5, models.TransactionUsage, "x", "")
	assert.Error(t, err)
}

func TestTransactionsNewestFirstAndCapped(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	svc := NewService(repo)

	_, err := svc.EnsureExists(ctx, "u1")
	require.NoError(t, err)
	for i := 0; i < 60; i++ {
		require.NoError(t, svc.Credit(ctx, "u1", 1, models.TransactionBonus, fmt.Sprintf("bonus %d", i), ""))
	}

	history, err := svc.Transactions(ctx, "u1", 0)
	require.NoError(t, err)
	assert.Len(t, history, MaxTransactionHistory)
	for i := 1; i < len(history); i++ {
		assert.False(t, history[i].CreatedAt.After(history[i-1].CreatedAt),
			"transactions must be ordered newest first")
	}

	history, err = svc.Transactions(ctx, "u1", 10)
	require.NoError(t, err)
	assert.Len(t, history, 10)
}

func TestWorksheetSpendingScenario(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	svc := NewService(repo)

	// A 10-question grade-2 worksheet costs 2 credits (image surcharge).
	cost := WorksheetCost(10, "2")
	require.Equal(t, 2, cost)

	_, err := svc.EnsureExists(ctx, "u1")
	require.NoError(t, err)
	require.NoError(t, svc.Debit(ctx, "u1", cost, "Worksheet: Photosynthesis"))

	balance, err := svc.Balance(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, 3, balance.Credits)

	require.NoError(t, svc.Debit(ctx, "u1", cost, "Worksheet: The Water Cycle"))
	balance, err = svc.Balance(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, 1, balance.Credits)

	err = svc.Debit(ctx, "u1", cost, "Worksheet: Volcanoes")
	assert.ErrorIs(t, err, ErrInsufficientCredits)
	balance, err = svc.Balance(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, balance.Credits)

	before := len(repo.entries["u1"])

	// A purchase webhook lands afterwards.
	require.NoError(t, svc.Credit(ctx, "u1", 40, models.TransactionPurchase, "Credit pack: 40", "evt_pack"))
	balance, err = svc.Balance(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 41, balance.Credits)
	assert.Equal(t, before+1, len(repo.entries["u1"]))
}

func TestSetPlanValidatesPlanID(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemRepo())

	assert.Error(t, svc.SetPlan(ctx, "u1", "platinum", nil, nil))

	expiry := time.Now().AddDate(0, 1, 0)
	subID := "sub_123"
	require.NoError(t, svc.SetPlan(ctx, "u1", PlanStarter, &expiry, &subID))

	balance, err := svc.Balance(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, PlanStarter, balance.Plan)
	require.NotNil(t, balance.StripeSubscriptionID)
	assert.Equal(t, "sub_123", *balance.StripeSubscriptionID)
}

func TestClearPlanOnMissingAccountIsNoop(t *testing.T) {
	svc := NewService(newMemRepo())
	assert.NoError(t, svc.ClearPlan(context.Background(), "ghost"))
}
