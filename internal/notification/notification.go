package notification

import (
	"context"
	"log/slog"
)

const (
	// KindOTP carries a one-time login code.
	KindOTP = "otp"
	// KindReceipt confirms a completed transfer to either party.
	KindReceipt = "transfer_receipt"
	// KindReply is a conversational reply on the text-message channel.
	KindReply = "sms_reply"
)

// Message describes an outbound text message.
type Message struct {
	Kind        string
	Destination string
	Body        string
}

// Notifier delivers messages to a phone number. Delivery is best effort:
// callers must never treat a send failure as a business failure.
type Notifier interface {
	Send(ctx context.Context, message Message) error
}

// LoggerNotifier is a stub implementation that writes messages to the logger.
// Used in development when no SMS gateway is configured.
type LoggerNotifier struct {
	logger *slog.Logger
}

// NewLoggerNotifier constructs a logging notifier stub.
func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
	return &LoggerNotifier{logger: logger}
}

// Send writes the message to the structured logger.
func (n *LoggerNotifier) Send(_ context.Context, message Message) error {
	if n == nil || n.logger == nil {
		return nil
	}
	n.logger.Info("notification", "kind", message.Kind, "destination", message.Destination, "body", message.Body)
	return nil
}
