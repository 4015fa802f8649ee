package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Provider creates payment orders with the external gateway. The gateway's
// own settlement protocol is out of scope; only the order reference matters
// here.
type Provider interface {
	CreateOrder(ctx context.Context, amount int64, receipt string) (string, error)
}

// HTTPProvider talks to a REST payment gateway with basic-auth credentials.
type HTTPProvider struct {
	client    *http.Client
	baseURL   string
	keyID     string
	keySecret string
}

// NewHTTPProvider constructs a gateway connector.
func NewHTTPProvider(baseURL, keyID, keySecret string) *HTTPProvider {
	return &HTTPProvider{
		client:    &http.Client{Timeout: 15 * time.Second},
		baseURL:   baseURL,
		keyID:     keyID,
		keySecret: keySecret,
	}
}

// CreateOrder registers an order for the amount and returns the provider's
// order reference.
func (p *HTTPProvider) CreateOrder(ctx context.Context, amount int64, receipt string) (string, error) {
	payload, err := json.Marshal(map[string]any{
		"amount":          amount,
		"currency":        "INR",
		"receipt":         receipt,
		"payment_capture": 1,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/orders", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build order request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(p.keyID, p.keySecret)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("create order: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("gateway status %d", resp.StatusCode)
	}

	var body struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode order response: %w", err)
	}
	if body.ID == "" {
		return "", fmt.Errorf("gateway returned no order id")
	}
	return body.ID, nil
}

// StaticProvider simulates a gateway that accepts every order. Used in
// development and tests.
type StaticProvider struct{}

// CreateOrder returns a synthetic order reference.
func (StaticProvider) CreateOrder(context.Context, int64, string) (string, error) {
	return "order_" + uuid.NewString(), nil
}
