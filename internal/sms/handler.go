package sms

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/offgrid-pay/offgridpay/internal/auth"
	"github.com/offgrid-pay/offgridpay/internal/ledger"
	"github.com/offgrid-pay/offgridpay/internal/money"
	"github.com/offgrid-pay/offgridpay/internal/notification"
	"github.com/offgrid-pay/offgridpay/internal/transfer"
	"github.com/offgrid-pay/offgridpay/internal/user"
)

const (
	replyNotRegistered = "Phone number not registered. Please register first."
	replyThrottled     = "Too many requests. Please try again later."
	replyServerError   = "Sorry, an error occurred processing your request. Please try again later."
	replyUnknown       = "Unrecognized command. Reply HELP for available commands."

	helpText = `Available commands:
- LOGIN <password>: Start login process
- VERIFY <otp>: Verify login OTP
- TRANSFER <amount> <address> <description>: Send money
- BALANCE: Check wallet balance
- HELP: Show this help menu`
)

// Handler processes the inbound webhook of the text-message channel. The
// transport is always acknowledged with 200 regardless of business outcome,
// because the carrier retries non-2xx responses and a retry would reprocess
// the message. All outcomes reach the user as outbound replies instead.
type Handler struct {
	users     user.Repository
	auth      *auth.Service
	transfers *transfer.Service
	logs      LogRepository
	limiter   RateLimiter
	cipher    *Cipher
	notifier  notification.Notifier
	logger    *slog.Logger
}

// NewHandler wires the webhook handler.
func NewHandler(users user.Repository, authSvc *auth.Service, transfers *transfer.Service,
	logs LogRepository, limiter RateLimiter, cipher *Cipher,
	notifier notification.Notifier, logger *slog.Logger) *Handler {
	return &Handler{
		users:     users,
		auth:      authSvc,
		transfers: transfers,
		logs:      logs,
		limiter:   limiter,
		cipher:    cipher,
		notifier:  notifier,
		logger:    logger,
	}
}

// Webhook handles one inbound message envelope {From, Body}.
func (h *Handler) Webhook(c *fiber.Ctx) error {
	from := c.FormValue("From")
	body := c.FormValue("Body")
	if from == "" || body == "" {
		return c.SendStatus(http.StatusOK) // empty delivery, just acknowledge
	}

	ctx := c.UserContext()
	phone := user.NormalizePhone(from)
	if phone == "" {
		return c.SendStatus(http.StatusOK)
	}

	if h.logs != nil {
		_ = h.logs.Record(ctx, MessageLog{
			ID:        uuid.New().String(),
			Phone:     phone,
			Direction: DirectionInbound,
			Body:      body,
			CreatedAt: time.Now().UTC(),
		})
	}

	allowed, err := h.limiter.Allow(ctx, phone)
	if err != nil {
		h.logger.Warn("rate limiter unavailable", "phone", phone, "error", err)
	}
	if !allowed {
		h.reply(ctx, phone, replyThrottled)
		return c.SendStatus(http.StatusOK)
	}

	// The body may arrive in the encrypted envelope. A failed decrypt means
	// it was plaintext, not an error.
	if h.cipher != nil {
		if plain, err := h.cipher.Decrypt(body); err == nil {
			body = plain
		}
	}

	cmd, err := Parse(body)
	if err != nil {
		var usage *UsageError
		if errors.As(err, &usage) {
			h.reply(ctx, phone, usage.Hint)
		}
		return c.SendStatus(http.StatusOK)
	}

	h.dispatch(ctx, phone, cmd)
	return c.SendStatus(http.StatusOK)
}

func (h *Handler) dispatch(ctx context.Context, phone string, cmd Command) {
	switch cmd := cmd.(type) {
	case LoginCommand:
		h.handleLogin(ctx, phone, cmd)
	case VerifyCommand:
		h.handleVerify(ctx, phone, cmd)
	case TransferCommand:
		h.handleTransfer(ctx, phone, cmd)
	case BalanceCommand:
		h.handleBalance(ctx, phone)
	case HelpCommand:
		h.reply(ctx, phone, helpText)
	case UnknownCommand:
		h.reply(ctx, phone, replyUnknown)
	}
}

func (h *Handler) handleLogin(ctx context.Context, phone string, cmd LoginCommand) {
	// Login delivers the OTP itself on success; only failures need a reply.
	if _, err := h.auth.Login(ctx, phone, cmd.Password); err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			if _, lookupErr := h.users.FindByPhone(ctx, phone); errors.Is(lookupErr, user.ErrNotFound) {
				h.reply(ctx, phone, replyNotRegistered)
			} else {
				h.reply(ctx, phone, "Invalid password. Please try again.")
			}
		default:
			h.logger.Error("sms login failed", "phone", phone, "error", err)
			h.reply(ctx, phone, replyServerError)
		}
	}
}

func (h *Handler) handleVerify(ctx context.Context, phone string, cmd VerifyCommand) {
	u, err := h.users.FindByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			h.reply(ctx, phone, replyNotRegistered)
			return
		}
		h.logger.Error("sms verify lookup failed", "phone", phone, "error", err)
		h.reply(ctx, phone, replyServerError)
		return
	}

	res, err := h.auth.VerifyOTP(ctx, u.ID, cmd.Code)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidOTP) {
			h.reply(ctx, phone, "Invalid or expired OTP. Please request a new one.")
			return
		}
		h.logger.Error("sms verify failed", "phone", phone, "error", err)
		h.reply(ctx, phone, replyServerError)
		return
	}

	// The token is a credential, so this reply goes through the envelope
	// whenever a cipher key is configured.
	body := fmt.Sprintf("AUTH %s BALANCE %s", res.Token, money.Format(res.User.Balance))
	if h.cipher != nil {
		if sealed, err := h.cipher.Encrypt(body); err == nil {
			body = sealed
		}
	}
	h.reply(ctx, phone, body)
}

func (h *Handler) handleTransfer(ctx context.Context, phone string, cmd TransferCommand) {
	var sender user.User
	var err error
	if cmd.Token != "" {
		sender, err = h.auth.Authenticate(ctx, cmd.Token)
		if err != nil {
			h.reply(ctx, phone, "Authentication failed. Please login again.")
			return
		}
	} else {
		sender, err = h.users.FindByPhone(ctx, phone)
		if err != nil {
			h.reply(ctx, phone, replyNotRegistered)
			return
		}
	}

	_, err = h.transfers.Send(ctx, transfer.Input{
		SenderID:         sender.ID,
		RecipientAddress: cmd.Address,
		Amount:           cmd.Amount,
		Description:      cmd.Description,
	})
	if err == nil {
		// The transfer service already notified both parties.
		return
	}

	switch {
	case errors.Is(err, ledger.ErrInsufficientFunds):
		h.reply(ctx, phone, fmt.Sprintf("Insufficient balance. Your current balance is %s", money.Format(sender.Balance)))
	case errors.Is(err, transfer.ErrRecipientNotFound):
		h.reply(ctx, phone, "Recipient payment address not found. Please check the address.")
	case errors.Is(err, transfer.ErrSelfTransfer):
		h.reply(ctx, phone, "You cannot transfer to your own wallet.")
	case errors.Is(err, ledger.ErrInvalidAmount):
		h.reply(ctx, phone, "Invalid amount. Please specify a positive number.")
	default:
		h.logger.Error("sms transfer failed", "phone", phone, "error", err)
		h.reply(ctx, phone, replyServerError)
	}
}

func (h *Handler) handleBalance(ctx context.Context, phone string) {
	u, err := h.users.FindByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			h.reply(ctx, phone, replyNotRegistered)
			return
		}
		h.logger.Error("sms balance lookup failed", "phone", phone, "error", err)
		h.reply(ctx, phone, replyServerError)
		return
	}
	h.reply(ctx, phone, fmt.Sprintf("Your current wallet balance is: %s. Payment address: %s",
		money.Format(u.Balance), u.PayAddress))
}

func (h *Handler) reply(ctx context.Context, phone, body string) {
	if h.notifier == nil {
		return
	}
	if err := h.notifier.Send(ctx, notification.Message{
		Kind:        notification.KindReply,
		Destination: phone,
		Body:        body,
	}); err != nil {
		h.logger.Warn("sms reply failed", "phone", phone, "error", err)
	}
}
