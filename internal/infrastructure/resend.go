package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const resendAPIURL = "https://api.resend.com/emails"

// ResendConfig holds transactional-email credentials, built once at startup.
type ResendConfig struct {
	APIKey      string
	FromAddress string // e.g. "CallPlatter <noreply@callplatter.com>"
}

type ResendClient struct {
	apiKey string
	from   string
	http   *http.Client
}

func NewResendClient(cfg ResendConfig) (*ResendClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("resend: missing API key")
	}
	if cfg.FromAddress == "" {
		return nil, errors.New("resend: missing from address")
	}
	return &ResendClient{
		apiKey: cfg.APIKey,
		from:   cfg.FromAddress,
		http:   &http.Client{Timeout: 10 * time.Second},
	}, nil
}

// Send delivers a plain-text transactional email.
func (r *ResendClient) Send(ctx context.Context, to, subject, body string) error {
	payload := map[string]interface{}{
		"from":    r.from,
		"to":      []string{to},
		"subject": subject,
		"text":    body,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal email: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, resendAPIURL, bytes.NewBuffer(data))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+r.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.http.Do(req)
	if err != nil {
		return fmt.Errorf("resend request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("resend send email: status %d: %s", resp.StatusCode, respBody)
	}
	return nil
}
