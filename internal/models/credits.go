package models

import "time"

type TransactionType string

const (
	TransactionPurchase     TransactionType = "purchase"
	TransactionUsage        TransactionType = "usage"
	TransactionBonus        TransactionType = "bonus"
	TransactionSubscription TransactionType = "subscription"
)

// UserCredits is the per-user balance row. Credits never go negative in
// committed state; debits are conditional updates at the storage layer.
type UserCredits struct {
	UserID               string     `json:"user_id"`
	Credits              int        `json:"credits"`
	Plan                 string     `json:"plan"`
	PlanExpiresAt        *time.Time `json:"plan_expires_at,omitempty"`
	StripeSubscriptionID *string    `json:"stripe_subscription_id,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// CreditTransaction is one entry in the append-only audit trail. Amount is
// signed: positive for credits added, negative for usage.
type CreditTransaction struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	Amount      int             `json:"amount"`
	Type        TransactionType `json:"type"`
	Description string          `json:"description"`
	Reference   *string         `json:"reference,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}
