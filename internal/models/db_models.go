package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type UserDB struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID               string    `bun:"id,pk" json:"id"`
	Email            string    `bun:"email,notnull" json:"email"`
	FirstName        string    `bun:"first_name" json:"first_name"`
	LastName         string    `bun:"last_name" json:"last_name"`
	StripeCustomerID *string   `bun:"stripe_customer_id" json:"stripe_customer_id,omitempty"`
	CreatedAt        time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt        time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
}

func (u *UserDB) ToUser() *User {
	return &User{
		ID:               u.ID,
		Email:            u.Email,
		FirstName:        u.FirstName,
		LastName:         u.LastName,
		StripeCustomerID: u.StripeCustomerID,
		CreatedAt:        u.CreatedAt,
		UpdatedAt:        u.UpdatedAt,
	}
}

func UserFromDomain(u *User) *UserDB {
	return &UserDB{
		ID:               u.ID,
		Email:            u.Email,
		FirstName:        u.FirstName,
		LastName:         u.LastName,
		StripeCustomerID: u.StripeCustomerID,
		CreatedAt:        u.CreatedAt,
		UpdatedAt:        u.UpdatedAt,
	}
}

type UserCreditsDB struct {
	bun.BaseModel `bun:"table:user_credits,alias:uc"`

	ID                   uuid.UUID  `bun:"id,pk,type:uuid,default:gen_random_uuid()" json:"id"`
	UserID               string     `bun:"user_id,notnull,unique" json:"user_id"`
	Credits              int        `bun:"credits,notnull,default:0" json:"credits"`
	Plan                 string     `bun:"plan,notnull,default:'free'" json:"plan"`
	PlanExpiresAt        *time.Time `bun:"plan_expires_at" json:"plan_expires_at,omitempty"`
	StripeSubscriptionID *string    `bun:"stripe_subscription_id" json:"stripe_subscription_id,omitempty"`
	CreatedAt            time.Time  `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt            time.Time  `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
}

func (c *UserCreditsDB) ToUserCredits() *UserCredits {
	return &UserCredits{
		UserID:               c.UserID,
		Credits:              c.Credits,
		Plan:                 c.Plan,
		PlanExpiresAt:        c.PlanExpiresAt,
		StripeSubscriptionID: c.StripeSubscriptionID,
		CreatedAt:            c.CreatedAt,
		UpdatedAt:            c.UpdatedAt,
	}
}

type CreditTransactionDB struct {
	bun.BaseModel `bun:"table:credit_transactions,alias:ct"`

	ID          uuid.UUID       `bun:"id,pk,type:uuid,default:gen_random_uuid()" json:"id"`
	UserID      string          `bun:"user_id,notnull" json:"user_id"`
	Amount      int             `bun:"amount,notnull" json:"amount"`
	Type        TransactionType `bun:"type,notnull" json:"type"`
	Description string          `bun:"description" json:"description"`
	Reference   *string         `bun:"reference,unique" json:"reference,omitempty"`
	CreatedAt   time.Time       `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}

func (t *CreditTransactionDB) ToCreditTransaction() *CreditTransaction {
	return &CreditTransaction{
		ID:          t.ID.String(),
		UserID:      t.UserID,
		Amount:      t.Amount,
		Type:        t.Type,
		Description: t.Description,
		Reference:   t.Reference,
		CreatedAt:   t.CreatedAt,
	}
}

type WorksheetDB struct {
	bun.BaseModel `bun:"table:worksheets,alias:w"`

	ID           string          `bun:"id,pk" json:"id"`
	UserID       string          `bun:"user_id,notnull" json:"user_id"`
	Title        string          `bun:"title,notnull" json:"title"`
	Subject      string          `bun:"subject" json:"subject"`
	Topic        string          `bun:"topic" json:"topic"`
	GradeLevel   string          `bun:"grade_level" json:"grade_level"`
	Difficulty   string          `bun:"difficulty" json:"difficulty"`
	Language     string          `bun:"language" json:"language"`
	Status       WorksheetStatus `bun:"status,notnull,default:'draft'" json:"status"`
	Questions    []Question      `bun:"questions,type:jsonb" json:"questions"`
	Downloads    int             `bun:"downloads,notnull,default:0" json:"downloads"`
	CreditsSpent int             `bun:"credits_spent,notnull,default:0" json:"credits_spent"`
	CreatedAt    time.Time       `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt    time.Time       `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
}

func (w *WorksheetDB) ToWorksheet() *Worksheet {
	return &Worksheet{
		ID:           w.ID,
		UserID:       w.UserID,
		Title:        w.Title,
		Subject:      w.Subject,
		Topic:        w.Topic,
		GradeLevel:   w.GradeLevel,
		Difficulty:   w.Difficulty,
		Language:     w.Language,
		Status:       w.Status,
		Questions:    w.Questions,
		Downloads:    w.Downloads,
		CreditsSpent: w.CreditsSpent,
		CreatedAt:    w.CreatedAt,
		UpdatedAt:    w.UpdatedAt,
	}
}

func WorksheetFromDomain(ws *Worksheet) *WorksheetDB {
	return &WorksheetDB{
		ID:           ws.ID,
		UserID:       ws.UserID,
		Title:        ws.Title,
		Subject:      ws.Subject,
		Topic:        ws.Topic,
		GradeLevel:   ws.GradeLevel,
		Difficulty:   ws.Difficulty,
		Language:     ws.Language,
		Status:       ws.Status,
		Questions:    ws.Questions,
		Downloads:    ws.Downloads,
		CreditsSpent: ws.CreditsSpent,
		CreatedAt:    ws.CreatedAt,
		UpdatedAt:    ws.UpdatedAt,
	}
}
