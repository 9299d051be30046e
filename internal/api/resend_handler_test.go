package api

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signPayload(payload, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestResendWebhookAcceptsSignedEvent(t *testing.T) {
	h := NewResendWebhookHandler("whsec_test")
	payload := `{"type":"email.delivered","data":{"id":"em_1","to":["a@b.com"]}}`

	req := httptest.NewRequest(http.MethodPost, "/webhooks/resend", strings.NewReader(payload))
	req.Header.Set("Resend-Signature", signPayload(payload, "whsec_test"))
	rec := httptest.NewRecorder()

	h.HandleWebhook(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]bool
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body["received"])
}

func TestResendWebhookRejectsBadSignature(t *testing.T) {
	h := NewResendWebhookHandler("whsec_test")
	payload := `{"type":"email.bounced","data":{"id":"em_2"}}`

	req := httptest.NewRequest(http.MethodPost, "/webhooks/resend", strings.NewReader(payload))
	req.Header.Set("Resend-Signature", signPayload(payload, "wrong_secret"))
	rec := httptest.NewRecorder()

	h.HandleWebhook(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestResendWebhookRejectsMissingSignature(t *testing.T) {
	h := NewResendWebhookHandler("whsec_test")

	req := httptest.NewRequest(http.MethodPost, "/webhooks/resend", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()

	h.HandleWebhook(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestWorksheetOptionsCatalog(t *testing.T) {
	h := NewWorksheetHandler(nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/worksheets/options", nil)
	rec := httptest.NewRecorder()

	h.Options(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Success       bool                `json:"success"`
		Subjects      []map[string]string `json:"subjects"`
		Grades        []map[string]string `json:"grades"`
		QuestionTypes []map[string]string `json:"question_types"`
		Difficulties  []map[string]string `json:"difficulties"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	assert.True(t, body.Success)
	assert.Len(t, body.Subjects, 8)
	assert.Len(t, body.Grades, 13)
	assert.Len(t, body.QuestionTypes, 6)
	assert.Len(t, body.Difficulties, 3)
	assert.Equal(t, "K", body.Grades[0]["value"])
}
