package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/backline/backline/internal/shared"
)

// Message is one rendered email ready for delivery.
type Message struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// Mailer delivers one message and returns the provider's message id.
type Mailer interface {
	Send(ctx context.Context, msg Message) (string, error)
}

// NewMailer builds a mailer from config. Without an API key the returned
// mailer rejects every send with [shared.ErrMissingConfig]; missing provider
// configuration is a hard error at dispatch time, never a silent no-op.
func NewMailer(cfg shared.MailConfig, client *http.Client) Mailer {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return disabledMailer{}
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &httpMailer{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		client:  client,
	}
}

// httpMailer posts messages to a Resend-compatible emails endpoint.
type httpMailer struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

type sendResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

func (m *httpMailer) Send(ctx context.Context, msg Message) (string, error) {
	body, err := json.Marshal(msg)
	if err != nil {
		return "", fmt.Errorf("failed to encode message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/emails", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrMailDelivery, err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var parsed sendResponse
	_ = json.Unmarshal(data, &parsed)

	if resp.StatusCode >= 300 {
		detail := parsed.Message
		if detail == "" {
			detail = strings.TrimSpace(string(data))
		}
		return "", fmt.Errorf("%w: provider returned %d: %s", shared.ErrMailDelivery, resp.StatusCode, shared.Truncate(detail, 200))
	}

	return parsed.ID, nil
}

// disabledMailer is used when no provider API key is configured.
type disabledMailer struct{}

func (disabledMailer) Send(context.Context, Message) (string, error) {
	return "", fmt.Errorf("%w: mail.api_key", shared.ErrMissingConfig)
}
