package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/makosai/backend/internal/auth"
	"github.com/makosai/backend/internal/user"
)

type Handlers struct {
	Worksheets    *WorksheetHandler
	Credits       *CreditsHandler
	Checkout      *CheckoutHandler
	ResendWebhook *ResendWebhookHandler
}

func SetupRoutes(h Handlers, authMiddleware *auth.Middleware, userService user.Service, frontendOrigin string) *mux.Router {
	r := mux.NewRouter()

	r.Use(CORSMiddleware(frontendOrigin))
	r.Use(LoggingMiddleware)
	r.Use(RecoveryMiddleware)

	// Public routes. Webhooks authenticate with their own signatures.
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]string{"status": "ok"})
	}).Methods("GET")
	r.HandleFunc("/auth/login", auth.LoginHandler()).Methods("GET")
	r.HandleFunc("/auth/callback", auth.CallbackHandler).Methods("GET")
	r.HandleFunc("/webhooks/stripe", h.Checkout.HandleWebhook).Methods("POST")
	r.HandleFunc("/webhooks/resend", h.ResendWebhook.HandleWebhook).Methods("POST")
	r.HandleFunc("/webhooks/resend/status", h.ResendWebhook.Status).Methods("GET")

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(authMiddleware.RequireAuth)
	api.Use(user.UserMiddleware(userService))

	api.HandleFunc("/worksheets/options", h.Worksheets.Options).Methods("GET")
	api.HandleFunc("/worksheets/generate", h.Worksheets.Generate).Methods("POST")
	api.HandleFunc("/worksheets", h.Worksheets.List).Methods("GET")
	api.HandleFunc("/worksheets/{worksheetID}", h.Worksheets.Get).Methods("GET")
	api.HandleFunc("/worksheets/{worksheetID}", h.Worksheets.Update).Methods("PUT")
	api.HandleFunc("/worksheets/{worksheetID}", h.Worksheets.Delete).Methods("DELETE")
	api.HandleFunc("/worksheets/{worksheetID}/download", h.Worksheets.Download).Methods("POST")

	api.HandleFunc("/credits", h.Credits.GetBalance).Methods("GET")
	api.HandleFunc("/credits/transactions", h.Credits.GetTransactions).Methods("GET")
	api.HandleFunc("/plans", h.Credits.ListPlans).Methods("GET")
	api.HandleFunc("/packs", h.Credits.ListPacks).Methods("GET")

	api.HandleFunc("/checkout/pack", h.Checkout.CreatePackCheckout).Methods("POST")
	api.HandleFunc("/checkout/plan", h.Checkout.CreatePlanCheckout).Methods("POST")
	api.HandleFunc("/subscription/cancel", h.Checkout.CancelSubscription).Methods("POST")

	return r
}
