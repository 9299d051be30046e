package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const resendEndpoint = "https://api.resend.com/emails"

type ResendClient struct {
	apiKey    string
	fromEmail string
	httpc     *http.Client
}

type EmailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Html    string   `json:"html"`
}

type EmailResponse struct {
	Id string `json:"id"`
}

func NewResendClient(apiKey, fromEmail string) *ResendClient {
	return &ResendClient{
		apiKey:    apiKey,
		fromEmail: fromEmail,
		httpc:     &http.Client{Timeout: 10 * time.Second},
	}
}

func (r *ResendClient) SendEmail(ctx context.Context, to, subject, html string) error {
	emailReq := EmailRequest{
		From:    r.fromEmail,
		To:      []string{to},
		Subject: subject,
		Html:    html,
	}

	jsonData, err := json.Marshal(emailReq)
	if err != nil {
		return fmt.Errorf("failed to marshal email request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, resendEndpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+r.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("resend API returned status: %d", resp.StatusCode)
	}

	return nil
}

func (r *ResendClient) SendWelcomeEmail(ctx context.Context, to, userName string) error {
	subject := "Welcome to Makos.ai!"
	html := welcomeEmailHTML(userName)
	return r.SendEmail(ctx, to, subject, html)
}

func welcomeEmailHTML(userName string) string {
	if userName == "" {
		userName = "there"
	}
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<body style="font-family: sans-serif; color: #374151;">
  <h1>Welcome aboard!</h1>
  <p>Hey %s,</p>
  <p>Thanks for joining Makos.ai. You've got <strong>5 free credits</strong>
  to create worksheets - a standard worksheet costs 1 credit, and grades K-2
  with generated images cost 2.</p>
  <p><a href="https://makos.ai/generator">Create your first worksheet</a></p>
  <p>Need help? Just reply to this email.</p>
</body>
</html>`, userName)
}
