package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/makosai/backend/internal/email"
	"github.com/makosai/backend/internal/logger"
)

type ResendWebhookHandler struct {
	webhookSecret string
}

func NewResendWebhookHandler(webhookSecret string) *ResendWebhookHandler {
	return &ResendWebhookHandler{webhookSecret: webhookSecret}
}

// HandleWebhook receives delivery events from Resend. Events are logged for
// observability; bounces and complaints are the ones worth acting on.
func (h *ResendWebhookHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		logger.Log.Error("failed to read resend webhook body", "error", err)
		http.Error(w, "Failed to read body", http.StatusBadRequest)
		return
	}

	signature := r.Header.Get("Resend-Signature")
	if !email.VerifyWebhookSignature(payload, signature, h.webhookSecret) {
		logger.Log.Warn("resend webhook signature verification failed")
		http.Error(w, "Invalid signature", http.StatusUnauthorized)
		return
	}

	var event email.WebhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		http.Error(w, "Invalid payload", http.StatusBadRequest)
		return
	}

	switch event.Type {
	case "email.sent", "email.delivered":
		logger.Log.Info("email event", "type", event.Type, "email_id", event.Data.ID)
	case "email.opened", "email.clicked":
		logger.Log.Info("email engagement", "type", event.Type, "email_id", event.Data.ID)
	case "email.bounced":
		msg := ""
		if event.Data.Bounce != nil {
			msg = event.Data.Bounce.Message
		}
		logger.Log.Warn("email bounced",
			"email_id", event.Data.ID, "to", event.Data.To, "reason", msg)
	case "email.complained":
		logger.Log.Warn("email complaint", "email_id", event.Data.ID, "to", event.Data.To)
	default:
		logger.Log.Info("unhandled email event", "type", event.Type)
	}

	writeJSON(w, map[string]bool{"received": true})
}

func (h *ResendWebhookHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"status":     "ok",
		"configured": h.webhookSecret != "",
	})
}
