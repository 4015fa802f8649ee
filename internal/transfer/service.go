package transfer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/offgrid-pay/offgridpay/internal/ledger"
	"github.com/offgrid-pay/offgridpay/internal/money"
	"github.com/offgrid-pay/offgridpay/internal/notification"
	"github.com/offgrid-pay/offgridpay/internal/user"
)

var (
	// ErrRecipientNotFound indicates no wallet owns the payment address.
	ErrRecipientNotFound = errors.New("recipient payment address not found")
	// ErrSelfTransfer indicates sender and recipient are the same wallet.
	ErrSelfTransfer = errors.New("cannot transfer to own wallet")
)

// Service validates and executes peer-to-peer transfers.
type Service struct {
	users    user.Repository
	store    Store
	notifier notification.Notifier
}

// NewService constructs a transfer service.
func NewService(users user.Repository, store Store, notifier notification.Notifier) *Service {
	return &Service{users: users, store: store, notifier: notifier}
}

// Input captures a requested transfer. SenderID is already resolved by the
// caller, via session token or the sending phone identity.
type Input struct {
	SenderID         string
	RecipientAddress string
	Amount           int64
	Description      string
}

// Result describes a committed transfer.
type Result struct {
	TransferID       string
	SenderBalance    int64
	RecipientBalance int64
	Recipient        user.User
	Sender           user.User
}

// Send executes one transfer as an atomic unit, then notifies both parties
// best-effort. Notification failure never affects the committed transfer.
func (s *Service) Send(ctx context.Context, input Input) (Result, error) {
	if input.Amount <= 0 {
		return Result{}, ledger.ErrInvalidAmount
	}

	sender, err := s.users.FindByID(ctx, input.SenderID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return Result{}, ledger.ErrUserNotFound
		}
		return Result{}, err
	}

	recipient, err := s.users.FindByPayAddress(ctx, input.RecipientAddress)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return Result{}, ErrRecipientNotFound
		}
		return Result{}, err
	}

	if recipient.ID == sender.ID {
		return Result{}, ErrSelfTransfer
	}

	description := input.Description
	if description == "" {
		description = "Wallet transfer"
	}

	t := Transfer{
		ID:               uuid.New().String(),
		SenderID:         sender.ID,
		RecipientAddress: recipient.PayAddress,
		RecipientID:      recipient.ID,
		Amount:           input.Amount,
		Description:      description,
		Status:           StatusPending,
		CreatedAt:        time.Now().UTC(),
	}

	committed, debitEntry, creditEntry, err := s.store.Execute(ctx, t)
	if err != nil {
		return Result{}, err
	}

	if s.notifier != nil {
		amount := money.Format(t.Amount)
		_ = s.notifier.Send(ctx, notification.Message{
			Kind:        notification.KindReceipt,
			Destination: sender.Phone,
			Body: fmt.Sprintf("Transfer of %s sent to %s (%s). Your new balance: %s",
				amount, recipient.Name, recipient.PayAddress, money.Format(debitEntry.BalanceAfter)),
		})
		_ = s.notifier.Send(ctx, notification.Message{
			Kind:        notification.KindReceipt,
			Destination: recipient.Phone,
			Body: fmt.Sprintf("You received %s from %s (%s). Your new balance: %s",
				amount, sender.Name, sender.Phone, money.Format(creditEntry.BalanceAfter)),
		})
	}

	return Result{
		TransferID:       committed.ID,
		SenderBalance:    debitEntry.BalanceAfter,
		RecipientBalance: creditEntry.BalanceAfter,
		Recipient:        recipient,
		Sender:           sender,
	}, nil
}
