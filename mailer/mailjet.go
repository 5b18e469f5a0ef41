package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// MailjetSender dispatches messages through Mailjet's /v3.1/send API
// using HTTP Basic auth over the account's API key pair.
type MailjetSender struct {
	baseURL   string
	apiKey    string
	apiSecret string
	client    *http.Client
}

// NewMailjetSender builds a sender for the given Mailjet base URL and
// credentials, with a fixed 10s client timeout.
func NewMailjetSender(baseURL, apiKey, apiSecret string) *MailjetSender {
	return &MailjetSender{
		baseURL:   strings.TrimRight(baseURL, "/"),
		apiKey:    apiKey,
		apiSecret: apiSecret,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

type mailjetRequest struct {
	Messages []mailjetMessage `json:"Messages"`
}

type mailjetMessage struct {
	From     mailjetAddress   `json:"From"`
	To       []mailjetAddress `json:"To"`
	Subject  string           `json:"Subject"`
	HTMLPart string           `json:"HTMLPart"`
}

type mailjetAddress struct {
	Email string `json:"Email"`
}

type mailjetResponse struct {
	Messages []struct {
		Status string `json:"Status"`
	} `json:"Messages"`
}

// Send POSTs msg to Mailjet and verifies the first message status came
// back "success".
func (s *MailjetSender) Send(ctx context.Context, msg Message) error {
	reqBody := mailjetRequest{
		Messages: []mailjetMessage{{
			From:     mailjetAddress{Email: msg.From},
			To:       []mailjetAddress{{Email: msg.To}},
			Subject:  msg.Subject,
			HTMLPart: msg.Body,
		}},
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("mailer: encoding mailjet request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v3.1/send", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("mailer: building mailjet request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(s.apiKey, s.apiSecret)

	resp, err := s.client.Do(req)
	if err != nil {
		slog.Error("mailer: sending email failed", "error", err)
		return fmt.Errorf("mailer: sending email: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("mailer: reading mailjet response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("mailer: mailjet returned %d: %s", resp.StatusCode, respBody)
	}

	var parsed mailjetResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		slog.Error("mailer: parsing email response failed", "error", err)
		return fmt.Errorf("mailer: parsing mailjet response: %w", err)
	}
	if len(parsed.Messages) == 0 {
		return fmt.Errorf("mailer: mailjet response carried no message status")
	}
	if status := parsed.Messages[0].Status; status != "success" {
		slog.Error("mailer: mailjet reported non-success status", "status", status)
		return fmt.Errorf("mailer: mailjet status %q", status)
	}
	return nil
}
