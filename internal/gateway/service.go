package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/offgrid-pay/offgridpay/internal/ledger"
	"github.com/offgrid-pay/offgridpay/internal/money"
	"github.com/offgrid-pay/offgridpay/internal/user"
)

var (
	// ErrInvalidSignature indicates the callback signature does not match.
	ErrInvalidSignature = errors.New("invalid payment signature")
	// ErrDuplicateCallback indicates the order was already resolved.
	ErrDuplicateCallback = errors.New("order already processed")
)

// Service handles the add-money flow: it registers orders with the provider
// and resolves verified callbacks into a single wallet credit.
type Service struct {
	provider  Provider
	orders    Repository
	users     user.Repository
	keySecret string
	logger    *slog.Logger
}

// NewService constructs a gateway service.
func NewService(provider Provider, orders Repository, users user.Repository,
	keySecret string, logger *slog.Logger) *Service {
	return &Service{
		provider:  provider,
		orders:    orders,
		users:     users,
		keySecret: keySecret,
		logger:    logger,
	}
}

// CreateOrder registers a pending add-money order for the user.
func (s *Service) CreateOrder(ctx context.Context, userID string, amount int64) (Order, error) {
	if amount <= 0 {
		return Order{}, ledger.ErrInvalidAmount
	}
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return Order{}, err
	}

	receipt := fmt.Sprintf("txn_%d", time.Now().UnixMilli())
	orderRef, err := s.provider.CreateOrder(ctx, amount, receipt)
	if err != nil {
		return Order{}, fmt.Errorf("register gateway order: %w", err)
	}

	order := Order{
		ID:        uuid.New().String(),
		UserID:    u.ID,
		OrderRef:  orderRef,
		Amount:    amount,
		Status:    OrderCreated,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return Order{}, err
	}
	return order, nil
}

// ConfirmPayment verifies the callback signature and settles the order: the
// paid transition and the wallet credit commit together, exactly once. On a
// store failure the order stays open so the provider's retry can settle it; a
// replayed or tampered callback leaves both the order and the balance
// untouched.
func (s *Service) ConfirmPayment(ctx context.Context, orderRef, paymentRef, signature string) (ledger.Entry, error) {
	if !s.signatureValid(orderRef, paymentRef, signature) {
		return ledger.Entry{}, ErrInvalidSignature
	}

	order, err := s.orders.FindByRef(ctx, orderRef)
	if err != nil {
		return ledger.Entry{}, err
	}

	entry, claimed, err := s.orders.Settle(ctx, order.ID, paymentRef, ledger.Mutation{
		UserID:    order.UserID,
		Amount:    order.Amount,
		Direction: ledger.Credit,
		CauseID:   order.ID,
		Note:      fmt.Sprintf("Added %s via payment gateway (payment %s)", money.Format(order.Amount), paymentRef),
	})
	if err != nil {
		s.logger.Error("order settlement failed",
			"order_ref", orderRef, "payment_ref", paymentRef, "error", err)
		return ledger.Entry{}, err
	}
	if !claimed {
		return ledger.Entry{}, ErrDuplicateCallback
	}
	return entry, nil
}

func (s *Service) signatureValid(orderRef, paymentRef, signature string) bool {
	mac := hmac.New(sha256.New, []byte(s.keySecret))
	mac.Write([]byte(orderRef + "|" + paymentRef))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
