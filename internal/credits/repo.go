package credits

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/makosai/backend/internal/models"
	"github.com/uptrace/bun"
)

type Repository interface {
	InitializeDatabase(ctx context.Context) error
	Get(ctx context.Context, userID string) (*models.UserCredits, error)
	GetOrCreate(ctx context.Context, userID string) (*models.UserCredits, error)
	Debit(ctx context.Context, userID string, amount int, description string) error
	Credit(ctx context.Context, userID string, amount int, txType models.TransactionType, description, reference string) error
	Transactions(ctx context.Context, userID string, limit int) ([]*models.CreditTransaction, error)
	UpdatePlan(ctx context.Context, userID, plan string, expiresAt *time.Time, subscriptionID *string) error
	ClearPlan(ctx context.Context, userID string) error
}

type CreditsRepository struct {
	db *bun.DB
}

func NewCreditsRepository(db *bun.DB) *CreditsRepository {
	return &CreditsRepository{db: db}
}

func (r *CreditsRepository) InitializeDatabase(ctx context.Context) error {
	_, err := r.db.NewCreateTable().
		Model((*models.UserCreditsDB)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return err
	}

	_, err = r.db.NewCreateTable().
		Model((*models.CreditTransactionDB)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return err
	}

	_, err = r.db.NewCreateIndex().
		Model((*models.CreditTransactionDB)(nil)).
		Index("idx_credit_transactions_user_created").
		Column("user_id", "created_at").
		IfNotExists().
		Exec(ctx)
	return err
}

func (r *CreditsRepository) Get(ctx context.Context, userID string) (*models.UserCredits, error) {
	row := new(models.UserCreditsDB)
	err := r.db.NewSelect().
		Model(row).
		Where("user_id = ?", userID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return row.ToUserCredits(), nil
}

// GetOrCreate returns the balance row for userID, creating it with the
// welcome bonus on first access. Creation uses ON CONFLICT DO NOTHING so
// concurrent callers converge on the same row, and the bonus transaction is
// only written by the caller that actually inserted the row.
func (r *CreditsRepository) GetOrCreate(ctx context.Context, userID string) (*models.UserCredits, error) {
	existing, err := r.Get(ctx, userID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	err = r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		row := &models.UserCreditsDB{
			UserID:  userID,
			Credits: WelcomeBonusCredits,
			Plan:    PlanFree,
		}
		res, err := tx.NewInsert().
			Model(row).
			On("CONFLICT (user_id) DO NOTHING").
			Exec(ctx)
		if err != nil {
			return err
		}
		inserted, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if inserted == 0 {
			// Lost the race to another caller; their bonus stands.
			return nil
		}

		bonus := &models.CreditTransactionDB{
			UserID:      userID,
			Amount:      WelcomeBonusCredits,
			Type:        models.TransactionBonus,
			Description: WelcomeBonusDescription,
		}
		_, err = tx.NewInsert().Model(bonus).Exec(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	return r.Get(ctx, userID)
}

// Debit decrements the balance by amount and appends the usage transaction
// in a single database transaction. The decrement is conditional on
// credits >= amount, so concurrent debits cannot drive the balance negative.
func (r *CreditsRepository) Debit(ctx context.Context, userID string, amount int, description string) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().
			Model((*models.UserCreditsDB)(nil)).
			Set("credits = credits - ?", amount).
			Set("updated_at = ?", time.Now()).
			Where("user_id = ? AND credits >= ?", userID, amount).
			Exec(ctx)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			exists, err := tx.NewSelect().
				Model((*models.UserCreditsDB)(nil)).
				Where("user_id = ?", userID).
				Exists(ctx)
			if err != nil {
				return err
			}
			if !exists {
				return ErrNotFound
			}
			return ErrInsufficientCredits
		}

		usage := &models.CreditTransactionDB{
			UserID:      userID,
			Amount:      -amount,
			Type:        models.TransactionUsage,
			Description: description,
		}
		_, err = tx.NewInsert().Model(usage).Exec(ctx)
		return err
	})
}

// Credit increments the balance by amount and appends the transaction in a
// single database transaction. A non-empty reference makes the credit
// idempotent: the transaction row is inserted first, gated by the unique
// index on reference, and a duplicate reference aborts without touching the
// balance.
func (r *CreditsRepository) Credit(ctx context.Context, userID string, amount int, txType models.TransactionType, description, reference string) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		entry := &models.CreditTransactionDB{
			UserID:      userID,
			Amount:      amount,
			Type:        txType,
			Description: description,
		}
		insert := tx.NewInsert().Model(entry)
		if reference != "" {
			entry.Reference = &reference
			insert = insert.On("CONFLICT (reference) DO NOTHING")
		}
		res, err := insert.Exec(ctx)
		if err != nil {
			return err
		}
		inserted, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if inserted == 0 {
			return ErrDuplicateReference
		}

		res, err = tx.NewUpdate().
			Model((*models.UserCreditsDB)(nil)).
			Set("credits = credits + ?", amount).
			Set("updated_at = ?", time.Now()).
			Where("user_id = ?", userID).
			Exec(ctx)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *CreditsRepository) Transactions(ctx context.Context, userID string, limit int) ([]*models.CreditTransaction, error) {
	var rows []*models.CreditTransactionDB
	err := r.db.NewSelect().
		Model(&rows).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	transactions := make([]*models.CreditTransaction, 0, len(rows))
	for _, row := range rows {
		transactions = append(transactions, row.ToCreditTransaction())
	}
	return transactions, nil
}

func (r *CreditsRepository) UpdatePlan(ctx context.Context, userID, plan string, expiresAt *time.Time, subscriptionID *string) error {
	res, err := r.db.NewUpdate().
		Model((*models.UserCreditsDB)(nil)).
		Set("plan = ?", plan).
		Set("plan_expires_at = ?", expiresAt).
		Set("stripe_subscription_id = ?", subscriptionID).
		Set("updated_at = ?", time.Now()).
		Where("user_id = ?", userID).
		Exec(ctx)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *CreditsRepository) ClearPlan(ctx context.Context, userID string) error {
	return r.UpdatePlan(ctx, userID, PlanFree, nil, nil)
}
