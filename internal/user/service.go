package user

import (
	"context"

	"github.com/makosai/backend/internal/billing"
	"github.com/makosai/backend/internal/email"
	"github.com/makosai/backend/internal/logger"
	"github.com/makosai/backend/internal/models"
)

type Service interface {
	GetOrCreate(ctx context.Context, userID, email, firstName, lastName string) (*models.User, error)
}

type UserService struct {
	repo    Repository
	billing *billing.Billing
	mailer  *email.ResendClient
}

func NewUserService(repo Repository, billing *billing.Billing, mailer *email.ResendClient) *UserService {
	return &UserService{
		repo:    repo,
		billing: billing,
		mailer:  mailer,
	}
}

func (s *UserService) GetOrCreate(ctx context.Context, userID, emailAddr, firstName, lastName string) (*models.User, error) {
	user, created, err := s.repo.GetOrCreate(ctx, userID, emailAddr, firstName, lastName)
	if err != nil {
		return nil, err
	}

	if user.StripeCustomerID == nil {
		customer, err := s.billing.CreateCustomer(ctx, userID, emailAddr)
		if err != nil {
			return nil, err
		}
		if err := s.repo.UpdateStripeCustomerID(ctx, userID, customer.ID); err != nil {
			return nil, err
		}
		user.StripeCustomerID = &customer.ID
	}

	if created && s.mailer != nil {
		// Best effort; signup must not fail on a mail outage.
		if err := s.mailer.SendWelcomeEmail(ctx, emailAddr, firstName); err != nil {
			logger.Log.Warn("failed to send welcome email",
				"user_id", userID, "error", err)
		}
	}

	return user, nil
}
