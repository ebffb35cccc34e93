package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const twilioAPIBase = "https://api.twilio.com/2010-04-01"

// TwilioConfig holds telephony credentials, built once at startup.
type TwilioConfig struct {
	AccountSID string
	AuthToken  string
}

type TwilioClient struct {
	accountSID string
	authToken  string
	http       *http.Client
}

func NewTwilioClient(cfg TwilioConfig) (*TwilioClient, error) {
	if cfg.AccountSID == "" || cfg.AuthToken == "" {
		return nil, errors.New("twilio: missing account SID or auth token")
	}
	return &TwilioClient{
		accountSID: cfg.AccountSID,
		authToken:  cfg.AuthToken,
		http:       &http.Client{Timeout: 15 * time.Second},
	}, nil
}

type AvailableNumber struct {
	PhoneNumber  string `json:"phone_number"`
	FriendlyName string `json:"friendly_name"`
	Locality     string `json:"locality"`
	Region       string `json:"region"`
}

type availableNumbersResponse struct {
	AvailablePhoneNumbers []AvailableNumber `json:"available_phone_numbers"`
}

// SearchLocalNumbers lists purchasable US local numbers, optionally filtered
// by area code.
func (t *TwilioClient) SearchLocalNumbers(ctx context.Context, areaCode string) ([]AvailableNumber, error) {
	endpoint := fmt.Sprintf("%s/Accounts/%s/AvailablePhoneNumbers/US/Local.json?PageSize=10",
		twilioAPIBase, t.accountSID)
	if areaCode != "" {
		endpoint += "&AreaCode=" + url.QueryEscape(areaCode)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.SetBasicAuth(t.accountSID, t.authToken)

	resp, err := t.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("twilio request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("twilio number search: status %d: %s", resp.StatusCode, body)
	}

	var parsed availableNumbersResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("twilio number search: decode response: %w", err)
	}
	return parsed.AvailablePhoneNumbers, nil
}

// PurchaseNumber buys a phone number for the account and returns it in E.164.
func (t *TwilioClient) PurchaseNumber(ctx context.Context, phoneNumber string) (string, error) {
	endpoint := fmt.Sprintf("%s/Accounts/%s/IncomingPhoneNumbers.json", twilioAPIBase, t.accountSID)

	form := url.Values{}
	form.Set("PhoneNumber", phoneNumber)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.SetBasicAuth(t.accountSID, t.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("twilio request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("twilio purchase number: status %d: %s", resp.StatusCode, body)
	}

	var parsed struct {
		PhoneNumber string `json:"phone_number"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("twilio purchase number: decode response: %w", err)
	}
	return parsed.PhoneNumber, nil
}
