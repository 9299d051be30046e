package api

import (
	"net/http"

	"github.com/makosai/backend/internal/credits"
	"github.com/makosai/backend/internal/logger"
	"github.com/makosai/backend/internal/models"
	"github.com/makosai/backend/internal/user"
)

type CreditsHandler struct {
	credits *credits.Service
}

func NewCreditsHandler(creditsService *credits.Service) *CreditsHandler {
	return &CreditsHandler{credits: creditsService}
}

// GetBalance returns the caller's balance, creating the account with the
// welcome bonus on first contact.
func (h *CreditsHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	dbUser, ok := user.GetDBUserFromContext(r.Context())
	if !ok {
		http.Error(w, "User not found", http.StatusUnauthorized)
		return
	}

	balance, err := h.credits.EnsureExists(r.Context(), dbUser.ID)
	if err != nil {
		logger.Log.Error("failed to load credit balance", "user_id", dbUser.ID, "error", err)
		http.Error(w, internalServerError, http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{
		"success": true,
		"credits": balance,
	})
}

// GetTransactions lists the caller's recent ledger entries. A read failure
// degrades to an empty history; the balance endpoint stays the source of
// truth.
func (h *CreditsHandler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	dbUser, ok := user.GetDBUserFromContext(r.Context())
	if !ok {
		http.Error(w, "User not found", http.StatusUnauthorized)
		return
	}

	transactions, err := h.credits.Transactions(r.Context(), dbUser.ID, credits.MaxTransactionHistory)
	if err != nil {
		logger.Log.Error("failed to load credit transactions",
			"user_id", dbUser.ID, "error", err)
		transactions = []*models.CreditTransaction{}
	}
	if transactions == nil {
		transactions = []*models.CreditTransaction{}
	}

	writeJSON(w, map[string]any{
		"success":      true,
		"transactions": transactions,
	})
}

func (h *CreditsHandler) ListPlans(w http.ResponseWriter, r *http.Request) {
	plans := make([]*credits.Plan, 0, len(credits.PlanOrder))
	for _, id := range credits.PlanOrder {
		plans = append(plans, credits.Plans[id])
	}

	writeJSON(w, map[string]any{
		"success": true,
		"plans":   plans,
	})
}

func (h *CreditsHandler) ListPacks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"success": true,
		"packs":   credits.CreditPacks,
	})
}
