package notification

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultGatewayBaseURL = "https://api.twilio.com/2010-04-01"

// SMSSender delivers messages through a Twilio-compatible REST gateway.
type SMSSender struct {
	client     *http.Client
	baseURL    string
	accountSID string
	authToken  string
	fromNumber string
	logger     *slog.Logger
}

// NewSMSSender constructs a gateway-backed notifier.
func NewSMSSender(accountSID, authToken, fromNumber string, logger *slog.Logger) *SMSSender {
	return &SMSSender{
		client:     &http.Client{Timeout: 10 * time.Second},
		baseURL:    defaultGatewayBaseURL,
		accountSID: accountSID,
		authToken:  authToken,
		fromNumber: fromNumber,
		logger:     logger,
	}
}

// Send posts the message to the gateway. The destination is a normalized
// phone number without the leading plus sign.
func (s *SMSSender) Send(ctx context.Context, message Message) error {
	form := url.Values{}
	form.Set("To", "+"+message.Destination)
	form.Set("From", s.fromNumber)
	form.Set("Body", message.Body)

	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json", s.baseURL, s.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build sms request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(s.accountSID, s.authToken)

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Warn("sms send failed", "destination", message.Destination, "error", err)
		return fmt.Errorf("send sms: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		s.logger.Warn("sms gateway rejected message", "destination", message.Destination, "status", resp.StatusCode)
		return fmt.Errorf("sms gateway status %d", resp.StatusCode)
	}
	return nil
}
