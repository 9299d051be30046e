package billing

import (
	"context"
	"fmt"

	"github.com/makosai/backend/internal/credits"
	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/webhook"
)

const (
	MetadataUserID       = "user_id"
	MetadataType         = "type"
	MetadataCredits      = "credits"
	MetadataPriceID      = "price_id"
	MetadataPlanID       = "plan_id"
	TypeCreditPurchase   = "credit_purchase"
	TypePlanSubscription = "plan_subscription"
)

type Billing struct {
	sc            *stripe.Client
	webhookSecret string
}

func New(secretKey, webhookSecret string) *Billing {
	return &Billing{
		sc:            stripe.NewClient(secretKey),
		webhookSecret: webhookSecret,
	}
}

func (b *Billing) CreateCustomer(ctx context.Context, userID, email string) (*stripe.Customer, error) {
	params := &stripe.CustomerCreateParams{
		Email:    stripe.String(email),
		Metadata: map[string]string{MetadataUserID: userID},
	}
	return b.sc.V1Customers.Create(ctx, params)
}

// CreatePackCheckout opens a one-time payment session for a credit pack.
// The pack size travels in the session metadata so the webhook can apply
// the credits without a catalog lookup.
func (b *Billing) CreatePackCheckout(ctx context.Context, customerID, userID string, pack *credits.CreditPack, successURL, cancelURL string) (*stripe.CheckoutSession, error) {
	params := &stripe.CheckoutSessionCreateParams{
		Customer:           stripe.String(customerID),
		PaymentMethodTypes: []*string{stripe.String("card")},
		LineItems: []*stripe.CheckoutSessionCreateLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionCreateLineItemPriceDataParams{
					Currency: stripe.String(string(stripe.CurrencyUSD)),
					ProductData: &stripe.CheckoutSessionCreateLineItemPriceDataProductDataParams{
						Name:        stripe.String(fmt.Sprintf("%d Credits", pack.Credits)),
						Description: stripe.String(fmt.Sprintf("%d worksheet credits", pack.Credits)),
					},
					UnitAmount: stripe.Int64(pack.PriceCents),
				},
				Quantity: stripe.Int64(1),
			},
		},
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(successURL),
		CancelURL:  stripe.String(cancelURL),
		Metadata: map[string]string{
			MetadataType:    TypeCreditPurchase,
			MetadataUserID:  userID,
			MetadataCredits: fmt.Sprintf("%d", pack.Credits),
			MetadataPriceID: pack.PriceID,
		},
	}
	return b.sc.V1CheckoutSessions.Create(ctx, params)
}

// CreatePlanCheckout opens a subscription session for a plan. Yearly
// billing uses the discounted yearly price.
func (b *Billing) CreatePlanCheckout(ctx context.Context, customerID, userID string, plan *credits.Plan, yearly bool, successURL, cancelURL string) (*stripe.CheckoutSession, error) {
	interval := string(stripe.PriceRecurringIntervalMonth)
	amount := plan.MonthlyPriceCents
	if yearly {
		interval = string(stripe.PriceRecurringIntervalYear)
		amount = plan.YearlyPriceCents
	}

	params := &stripe.CheckoutSessionCreateParams{
		Customer:           stripe.String(customerID),
		PaymentMethodTypes: []*string{stripe.String("card")},
		LineItems: []*stripe.CheckoutSessionCreateLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionCreateLineItemPriceDataParams{
					Currency: stripe.String(string(stripe.CurrencyUSD)),
					ProductData: &stripe.CheckoutSessionCreateLineItemPriceDataProductDataParams{
						Name:        stripe.String(fmt.Sprintf("%s Plan", plan.DisplayName)),
						Description: stripe.String(fmt.Sprintf("%d credits per month", plan.MonthlyCredits)),
					},
					UnitAmount: stripe.Int64(amount),
					Recurring: &stripe.CheckoutSessionCreateLineItemPriceDataRecurringParams{
						Interval: stripe.String(interval),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		Mode:       stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		SuccessURL: stripe.String(successURL),
		CancelURL:  stripe.String(cancelURL),
		Metadata: map[string]string{
			MetadataType:   TypePlanSubscription,
			MetadataUserID: userID,
			MetadataPlanID: plan.ID,
		},
		SubscriptionData: &stripe.CheckoutSessionCreateSubscriptionDataParams{
			Metadata: map[string]string{
				MetadataUserID: userID,
				MetadataPlanID: plan.ID,
			},
		},
	}
	return b.sc.V1CheckoutSessions.Create(ctx, params)
}

func (b *Billing) GetSubscription(ctx context.Context, subscriptionID string) (*stripe.Subscription, error) {
	return b.sc.V1Subscriptions.Retrieve(ctx, subscriptionID, nil)
}

func (b *Billing) CancelSubscription(ctx context.Context, subscriptionID string) (*stripe.Subscription, error) {
	return b.sc.V1Subscriptions.Cancel(ctx, subscriptionID, nil)
}

func (b *Billing) VerifyWebhookSignature(payload []byte, signature string) (*stripe.Event, error) {
	event, err := webhook.ConstructEvent(payload, signature, b.webhookSecret)
	if err != nil {
		return nil, fmt.Errorf("webhook signature verification failed: %w", err)
	}
	return &event, nil
}
