package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/makosai/backend/internal/billing"
	"github.com/makosai/backend/internal/credits"
	"github.com/makosai/backend/internal/logger"
	"github.com/makosai/backend/internal/models"
	"github.com/makosai/backend/internal/user"
	"github.com/stripe/stripe-go/v84"
)

type CheckoutHandler struct {
	billing  *billing.Billing
	credits  *credits.Service
	userRepo user.Repository
}

func NewCheckoutHandler(billingClient *billing.Billing, creditsService *credits.Service, userRepo user.Repository) *CheckoutHandler {
	return &CheckoutHandler{
		billing:  billingClient,
		credits:  creditsService,
		userRepo: userRepo,
	}
}

type CreatePackCheckoutRequest struct {
	PriceID    string `json:"price_id"`
	SuccessURL string `json:"success_url"`
	CancelURL  string `json:"cancel_url"`
}

type CreatePlanCheckoutRequest struct {
	PlanID     string `json:"plan_id"`
	Yearly     bool   `json:"yearly"`
	SuccessURL string `json:"success_url"`
	CancelURL  string `json:"cancel_url"`
}

type CreateCheckoutResponse struct {
	CheckoutURL string `json:"checkout_url"`
	SessionID   string `json:"session_id"`
}

func (h *CheckoutHandler) CreatePackCheckout(w http.ResponseWriter, r *http.Request) {
	dbUser, ok := user.GetDBUserFromContext(r.Context())
	if !ok || dbUser.StripeCustomerID == nil {
		http.Error(w, "User not found or missing Stripe customer", http.StatusBadRequest)
		return
	}

	var req CreatePackCheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	pack := credits.GetCreditPack(req.PriceID)
	if pack == nil {
		http.Error(w, "Invalid price_id", http.StatusBadRequest)
		return
	}

	if req.SuccessURL == "" || req.CancelURL == "" {
		http.Error(w, "success_url and cancel_url are required", http.StatusBadRequest)
		return
	}

	session, err := h.billing.CreatePackCheckout(r.Context(), *dbUser.StripeCustomerID, dbUser.ID, pack, req.SuccessURL, req.CancelURL)
	if err != nil {
		logger.Log.Error("failed to create pack checkout", "user_id", dbUser.ID, "error", err)
		http.Error(w, "Failed to create checkout session", http.StatusInternalServerError)
		return
	}

	writeJSON(w, CreateCheckoutResponse{
		CheckoutURL: session.URL,
		SessionID:   session.ID,
	})
}

func (h *CheckoutHandler) CreatePlanCheckout(w http.ResponseWriter, r *http.Request) {
	dbUser, ok := user.GetDBUserFromContext(r.Context())
	if !ok || dbUser.StripeCustomerID == nil {
		http.Error(w, "User not found or missing Stripe customer", http.StatusBadRequest)
		return
	}

	var req CreatePlanCheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	plan := credits.GetPlan(req.PlanID)
	if plan == nil || plan.MonthlyPriceCents == 0 {
		http.Error(w, "Invalid plan_id", http.StatusBadRequest)
		return
	}

	if req.SuccessURL == "" || req.CancelURL == "" {
		http.Error(w, "success_url and cancel_url are required", http.StatusBadRequest)
		return
	}

	session, err := h.billing.CreatePlanCheckout(r.Context(), *dbUser.StripeCustomerID, dbUser.ID, plan, req.Yearly, req.SuccessURL, req.CancelURL)
	if err != nil {
		logger.Log.Error("failed to create plan checkout", "user_id", dbUser.ID, "error", err)
		http.Error(w, "Failed to create checkout session", http.StatusInternalServerError)
		return
	}

	writeJSON(w, CreateCheckoutResponse{
		CheckoutURL: session.URL,
		SessionID:   session.ID,
	})
}

func (h *CheckoutHandler) CancelSubscription(w http.ResponseWriter, r *http.Request) {
	dbUser, ok := user.GetDBUserFromContext(r.Context())
	if !ok {
		http.Error(w, "User not found", http.StatusUnauthorized)
		return
	}

	balance, err := h.credits.Balance(r.Context(), dbUser.ID)
	if err != nil || balance.StripeSubscriptionID == nil {
		http.Error(w, "No active subscription found", http.StatusBadRequest)
		return
	}

	if _, err := h.billing.CancelSubscription(r.Context(), *balance.StripeSubscriptionID); err != nil {
		logger.Log.Error("failed to cancel subscription", "user_id", dbUser.ID, "error", err)
		http.Error(w, "Failed to cancel subscription", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]string{"message": "Subscription cancelled"})
}

func (h *CheckoutHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		logger.Log.Error("failed to read webhook body", "error", err)
		http.Error(w, "Failed to read body", http.StatusBadRequest)
		return
	}

	signature := r.Header.Get("Stripe-Signature")
	event, err := h.billing.VerifyWebhookSignature(payload, signature)
	if err != nil {
		logger.Log.Warn("webhook signature verification failed", "error", err)
		http.Error(w, "Invalid signature", http.StatusUnauthorized)
		return
	}

	var handleErr error
	switch event.Type {
	case "checkout.session.completed":
		handleErr = h.handleCheckoutCompleted(r.Context(), event)
	case "invoice.paid":
		handleErr = h.handleInvoicePaid(r.Context(), event)
	case "customer.subscription.deleted":
		handleErr = h.handleSubscriptionDeleted(r.Context(), event)
	}

	if handleErr != nil {
		logger.Log.Error("webhook handling failed", "type", event.Type, "error", handleErr)
		http.Error(w, "Webhook handling failed", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// handleCheckoutCompleted applies a completed checkout. One-time pack
// purchases carry the pack size in the session metadata; subscription
// checkouts activate the plan and grant its first monthly allotment. The
// event ID is the ledger reference, so Stripe retries are applied once.
func (h *CheckoutHandler) handleCheckoutCompleted(ctx context.Context, event *stripe.Event) error {
	session, err := parseEventData[checkoutSession](event)
	if err != nil {
		return fmt.Errorf("failed to parse checkout session: %w", err)
	}

	if session.Metadata[billing.MetadataType] == billing.TypeCreditPurchase {
		return h.applyPackPurchase(ctx, session, event.ID)
	}

	if session.Subscription == "" {
		return nil
	}

	sub, err := h.billing.GetSubscription(ctx, session.Subscription)
	if err != nil {
		return fmt.Errorf("failed to retrieve subscription %s: %w", session.Subscription, err)
	}

	userID := sub.Metadata[billing.MetadataUserID]
	planID := sub.Metadata[billing.MetadataPlanID]
	plan := credits.GetPlan(planID)
	if userID == "" || plan == nil {
		return fmt.Errorf("subscription %s has invalid metadata (user_id=%q, plan_id=%q)",
			session.Subscription, userID, planID)
	}

	_, periodEnd, err := subscriptionPeriod(sub)
	if err != nil {
		return fmt.Errorf("subscription %s: %w", session.Subscription, err)
	}

	if err := h.credits.SetPlan(ctx, userID, planID, &periodEnd, &session.Subscription); err != nil {
		return fmt.Errorf("failed to set plan for user %s: %w", userID, err)
	}

	description := fmt.Sprintf("%s plan - monthly credits", plan.DisplayName)
	if err := h.credits.Credit(ctx, userID, plan.MonthlyCredits, models.TransactionSubscription, description, event.ID); err != nil {
		return fmt.Errorf("failed to grant subscription credits for user %s: %w", userID, err)
	}

	logger.Log.Info("subscription activated",
		"user_id", userID, "plan", planID, "subscription", session.Subscription)
	return nil
}

func (h *CheckoutHandler) applyPackPurchase(ctx context.Context, session *checkoutSession, eventID string) error {
	userID := session.Metadata[billing.MetadataUserID]
	amount, err := strconv.Atoi(session.Metadata[billing.MetadataCredits])
	if err != nil || userID == "" {
		return fmt.Errorf("checkout session %s has invalid purchase metadata", session.ID)
	}

	description := fmt.Sprintf("Purchased %d credits", amount)
	if err := h.credits.Credit(ctx, userID, amount, models.TransactionPurchase, description, eventID); err != nil {
		return fmt.Errorf("failed to apply credit purchase for user %s: %w", userID, err)
	}

	logger.Log.Info("credit pack purchased", "user_id", userID, "credits", amount)
	return nil
}

// handleInvoicePaid refills the monthly allotment on renewal. The first
// invoice of a subscription is covered by checkout.session.completed, so
// billing_reason=subscription_create is skipped.
func (h *CheckoutHandler) handleInvoicePaid(ctx context.Context, event *stripe.Event) error {
	invoice, err := parseEventData[invoiceEvent](event)
	if err != nil {
		return fmt.Errorf("failed to parse invoice: %w", err)
	}

	if invoice.Subscription == "" || invoice.BillingReason == "subscription_create" {
		return nil
	}

	usr, err := h.userRepo.GetByStripeCustomerID(ctx, invoice.Customer)
	if err != nil {
		return fmt.Errorf("failed to find user for customer %s: %w", invoice.Customer, err)
	}

	balance, err := h.credits.Balance(ctx, usr.ID)
	if err != nil {
		return fmt.Errorf("failed to load balance for user %s: %w", usr.ID, err)
	}

	plan := credits.GetPlan(balance.Plan)
	if plan == nil || plan.MonthlyCredits == 0 || plan.MonthlyPriceCents == 0 {
		return fmt.Errorf("user %s has no paid plan to renew", usr.ID)
	}

	sub, err := h.billing.GetSubscription(ctx, invoice.Subscription)
	if err != nil {
		return fmt.Errorf("failed to retrieve subscription %s: %w", invoice.Subscription, err)
	}

	_, periodEnd, err := subscriptionPeriod(sub)
	if err != nil {
		return fmt.Errorf("subscription %s: %w", invoice.Subscription, err)
	}

	if err := h.credits.SetPlan(ctx, usr.ID, balance.Plan, &periodEnd, &invoice.Subscription); err != nil {
		return fmt.Errorf("failed to extend plan for user %s: %w", usr.ID, err)
	}

	description := fmt.Sprintf("%s plan - monthly credits", plan.DisplayName)
	if err := h.credits.Credit(ctx, usr.ID, plan.MonthlyCredits, models.TransactionSubscription, description, event.ID); err != nil {
		return fmt.Errorf("failed to grant renewal credits for user %s: %w", usr.ID, err)
	}

	logger.Log.Info("subscription renewed",
		"user_id", usr.ID, "plan", balance.Plan, "period_end", periodEnd)
	return nil
}

func (h *CheckoutHandler) handleSubscriptionDeleted(ctx context.Context, event *stripe.Event) error {
	sub, err := parseEventData[subscriptionEvent](event)
	if err != nil {
		return fmt.Errorf("failed to parse subscription: %w", err)
	}

	usr, err := h.userRepo.GetByStripeCustomerID(ctx, sub.Customer)
	if err != nil {
		return fmt.Errorf("failed to find user for customer %s: %w", sub.Customer, err)
	}

	if err := h.credits.ClearPlan(ctx, usr.ID); err != nil {
		return fmt.Errorf("failed to clear plan for user %s: %w", usr.ID, err)
	}

	logger.Log.Info("subscription deleted", "user_id", usr.ID, "subscription", sub.ID)
	return nil
}

func subscriptionPeriod(sub *stripe.Subscription) (time.Time, time.Time, error) {
	if sub.Items == nil || len(sub.Items.Data) == 0 {
		return time.Time{}, time.Time{}, fmt.Errorf("no subscription items found")
	}
	item := sub.Items.Data[0]
	return time.Unix(item.CurrentPeriodStart, 0), time.Unix(item.CurrentPeriodEnd, 0), nil
}

func parseEventData[T any](event *stripe.Event) (*T, error) {
	var data T
	if err := json.Unmarshal(event.Data.Raw, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

type checkoutSession struct {
	ID           string            `json:"id"`
	Customer     string            `json:"customer"`
	Subscription string            `json:"subscription"`
	Metadata     map[string]string `json:"metadata"`
}

type invoiceEvent struct {
	Customer      string `json:"customer"`
	Subscription  string `json:"subscription"`
	BillingReason string `json:"billing_reason"`
}

type subscriptionEvent struct {
	ID       string `json:"id"`
	Customer string `json:"customer"`
}
