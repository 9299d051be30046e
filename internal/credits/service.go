package credits

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/makosai/backend/internal/logger"
	"github.com/makosai/backend/internal/models"
)

// MaxTransactionHistory caps how many ledger entries a single listing
// returns.
const MaxTransactionHistory = 50

// Service is the credit ledger. It owns the per-user balance and its
// append-only audit trail; every balance mutation commits together with
// exactly one matching transaction record.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Balance returns the current balance row for userID. A user that has never
// touched the ledger yields ErrNotFound, which is an expected state rather
// than a failure; call EnsureExists to resolve it.
func (s *Service) Balance(ctx context.Context, userID string) (*models.UserCredits, error) {
	return s.repo.Get(ctx, userID)
}

// EnsureExists lazily initializes the balance row with the welcome bonus.
// It is idempotent: repeated calls return the same row and only the first
// creation writes the bonus transaction.
func (s *Service) EnsureExists(ctx context.Context, userID string) (*models.UserCredits, error) {
	return s.repo.GetOrCreate(ctx, userID)
}

// Debit spends amount credits for userID. It fails with
// ErrInsufficientCredits (or ErrNotFound for an uninitialized account)
// without changing any state; callers must not perform the paid action in
// that case.
func (s *Service) Debit(ctx context.Context, userID string, amount int, description string) error {
	if amount <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidAmount, amount)
	}
	return s.repo.Debit(ctx, userID, amount, description)
}

// Credit grants amount credits to userID, initializing the account first if
// needed. A non-empty reference (typically a webhook event ID) makes the
// grant idempotent: re-delivery of the same event is skipped.
func (s *Service) Credit(ctx context.Context, userID string, amount int, txType models.TransactionType, description, reference string) error {
	if amount <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidAmount, amount)
	}
	switch txType {
	case models.TransactionPurchase, models.TransactionSubscription, models.TransactionBonus:
	default:
		return fmt.Errorf("invalid credit type %q", txType)
	}

	if _, err := s.repo.GetOrCreate(ctx, userID); err != nil {
		return err
	}

	err := s.repo.Credit(ctx, userID, amount, txType, description, reference)
	if errors.Is(err, ErrDuplicateReference) {
		logger.Log.Info("skipping duplicate credit",
			"user_id", userID, "reference", reference)
		return nil
	}
	return err
}

// Transactions returns the most recent ledger entries for userID, newest
// first, capped at MaxTransactionHistory.
func (s *Service) Transactions(ctx context.Context, userID string, limit int) ([]*models.CreditTransaction, error) {
	if limit <= 0 || limit > MaxTransactionHistory {
		limit = MaxTransactionHistory
	}
	return s.repo.Transactions(ctx, userID, limit)
}

// SetPlan records the active subscription plan on the balance row.
func (s *Service) SetPlan(ctx context.Context, userID, plan string, expiresAt *time.Time, subscriptionID *string) error {
	if GetPlan(plan) == nil {
		return fmt.Errorf("unknown plan %q", plan)
	}
	if _, err := s.repo.GetOrCreate(ctx, userID); err != nil {
		return err
	}
	return s.repo.UpdatePlan(ctx, userID, plan, expiresAt, subscriptionID)
}

// ClearPlan drops the user back to the free plan, e.g. after a subscription
// is cancelled.
func (s *Service) ClearPlan(ctx context.Context, userID string) error {
	err := s.repo.ClearPlan(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}
