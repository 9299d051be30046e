package user

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/makosai/backend/internal/models"
	"github.com/uptrace/bun"
)

var ErrUserNotFound = errors.New("user not found")

type Repository interface {
	InitializeDatabase(ctx context.Context) error
	GetByID(ctx context.Context, userID string) (*models.User, error)
	GetByStripeCustomerID(ctx context.Context, stripeCustomerID string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	GetOrCreate(ctx context.Context, userID, email, firstName, lastName string) (*models.User, bool, error)
	UpdateStripeCustomerID(ctx context.Context, userID, stripeCustomerID string) error
}

type UserRepository struct {
	db *bun.DB
}

func NewUserRepository(db *bun.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) InitializeDatabase(ctx context.Context) error {
	_, err := r.db.NewCreateTable().
		Model((*models.UserDB)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return err
	}

	_, err = r.db.NewCreateIndex().
		Model((*models.UserDB)(nil)).
		Index("idx_users_email").
		Column("email").
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return err
	}

	_, err = r.db.NewCreateIndex().
		Model((*models.UserDB)(nil)).
		Index("idx_users_stripe_customer_id").
		Column("stripe_customer_id").
		IfNotExists().
		Exec(ctx)
	return err
}

func (r *UserRepository) GetByID(ctx context.Context, userID string) (*models.User, error) {
	userDB := new(models.UserDB)
	err := r.db.NewSelect().
		Model(userDB).
		Where("id = ?", userID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return userDB.ToUser(), nil
}

func (r *UserRepository) GetByStripeCustomerID(ctx context.Context, stripeCustomerID string) (*models.User, error) {
	userDB := new(models.UserDB)
	err := r.db.NewSelect().
		Model(userDB).
		Where("stripe_customer_id = ?", stripeCustomerID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return userDB.ToUser(), nil
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	userDB := models.UserFromDomain(user)
	userDB.CreatedAt = time.Now()
	userDB.UpdatedAt = time.Now()
	_, err := r.db.NewInsert().Model(userDB).Exec(ctx)
	return err
}

// GetOrCreate returns the user row, creating it on first login. The second
// return value reports whether the row was just created, so callers can run
// first-login side effects exactly once.
func (r *UserRepository) GetOrCreate(ctx context.Context, userID, email, firstName, lastName string) (*models.User, bool, error) {
	user, err := r.GetByID(ctx, userID)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, false, err
	}

	newUser := &models.User{
		ID:        userID,
		Email:     email,
		FirstName: firstName,
		LastName:  lastName,
	}

	if err := r.Create(ctx, newUser); err != nil {
		return nil, false, err
	}

	return newUser, true, nil
}

func (r *UserRepository) UpdateStripeCustomerID(ctx context.Context, userID, stripeCustomerID string) error {
	_, err := r.db.NewUpdate().
		Model((*models.UserDB)(nil)).
		Set("stripe_customer_id = ?", stripeCustomerID).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", userID).
		Exec(ctx)
	return err
}
