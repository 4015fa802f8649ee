package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"
	"time"

	"github.com/offgrid-pay/offgridpay/internal/ledger"
	"github.com/offgrid-pay/offgridpay/internal/logging"
	"github.com/offgrid-pay/offgridpay/internal/user"
)

const testKeySecret = "gateway-test-secret"

func sign(orderRef, paymentRef string) string {
	mac := hmac.New(sha256.New, []byte(testKeySecret))
	mac.Write([]byte(orderRef + "|" + paymentRef))
	return hex.EncodeToString(mac.Sum(nil))
}

func newTestGateway(t *testing.T) (*Service, *MemoryRepository, *user.MemoryRepository, *ledger.MemoryStore) {
	t.Helper()
	users := user.NewMemoryRepository()
	led := ledger.NewMemoryStore(users)
	orders := NewMemoryRepository(led)
	svc := NewService(StaticProvider{}, orders, users, testKeySecret, logging.Discard())

	err := users.Create(context.Background(), user.User{
		ID:         "u1",
		Name:       "Asha",
		Phone:      "919876543210",
		PayAddress: "asha@pay",
		Balance:    1_000,
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return svc, orders, users, led
}

func TestCreateOrder(t *testing.T) {
	svc, _, _, _ := newTestGateway(t)
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, "u1", 50_000)
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	if order.Status != OrderCreated {
		t.Fatalf("status = %s, want created", order.Status)
	}
	if !strings.HasPrefix(order.OrderRef, "order_") {
		t.Fatalf("order ref = %q", order.OrderRef)
	}
	if order.Amount != 50_000 || order.UserID != "u1" {
		t.Fatalf("unexpected order: %+v", order)
	}
}

func TestCreateOrderRejectsBadInput(t *testing.T) {
	svc, _, _, _ := newTestGateway(t)
	ctx := context.Background()

	if _, err := svc.CreateOrder(ctx, "u1", 0); err != ledger.ErrInvalidAmount {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if _, err := svc.CreateOrder(ctx, "ghost", 100); err != user.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestConfirmPaymentCreditsWallet(t *testing.T) {
	svc, _, users, led := newTestGateway(t)
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, "u1", 50_000)
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	entry, err := svc.ConfirmPayment(ctx, order.OrderRef, "pay_123", sign(order.OrderRef, "pay_123"))
	if err != nil {
		t.Fatalf("confirm failed: %v", err)
	}

	if entry.Direction != ledger.Credit || entry.Amount != 50_000 {
		t.Fatalf("unexpected entry: %+v", entry)
	}
	if entry.BalanceBefore != 1_000 || entry.BalanceAfter != 51_000 {
		t.Fatalf("balance window = (%d, %d)", entry.BalanceBefore, entry.BalanceAfter)
	}
	if entry.CauseID != order.ID {
		t.Fatalf("entry cause = %q, want order id", entry.CauseID)
	}

	balance, _ := users.Balance("u1")
	if balance != 51_000 {
		t.Fatalf("balance = %d, want 51000", balance)
	}
	entries, _ := led.EntriesForUser(ctx, "u1", 10)
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
}

func TestConfirmPaymentRejectsBadSignature(t *testing.T) {
	svc, _, users, _ := newTestGateway(t)
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, "u1", 50_000)
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	cases := []string{
		"",
		"deadbeef",
		sign(order.OrderRef, "pay_other"),
		sign("order_other", "pay_123"),
	}
	for _, sig := range cases {
		if _, err := svc.ConfirmPayment(ctx, order.OrderRef, "pay_123", sig); err != ErrInvalidSignature {
			t.Fatalf("signature %q: expected ErrInvalidSignature, got %v", sig, err)
		}
	}

	balance, _ := users.Balance("u1")
	if balance != 1_000 {
		t.Fatalf("tampered callbacks changed the balance: %d", balance)
	}
}

func TestConfirmPaymentReplay(t *testing.T) {
	svc, _, users, _ := newTestGateway(t)
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, "u1", 50_000)
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	sig := sign(order.OrderRef, "pay_123")

	if _, err := svc.ConfirmPayment(ctx, order.OrderRef, "pay_123", sig); err != nil {
		t.Fatalf("first confirm failed: %v", err)
	}
	if _, err := svc.ConfirmPayment(ctx, order.OrderRef, "pay_123", sig); err != ErrDuplicateCallback {
		t.Fatalf("replay: expected ErrDuplicateCallback, got %v", err)
	}

	balance, _ := users.Balance("u1")
	if balance != 51_000 {
		t.Fatalf("replay credited twice: balance = %d", balance)
	}
}

func TestConfirmPaymentUnknownOrder(t *testing.T) {
	svc, _, _, _ := newTestGateway(t)

	_, err := svc.ConfirmPayment(context.Background(), "order_ghost", "pay_123", sign("order_ghost", "pay_123"))
	if err != ErrOrderNotFound {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestConfirmPaymentFailedCreditLeavesOrderOpen(t *testing.T) {
	svc, orders, users, _ := newTestGateway(t)
	ctx := context.Background()

	// An order whose user is gone makes the credit fail inside settlement.
	order := Order{
		ID:        "11111111-1111-1111-1111-111111111111",
		UserID:    "ghost",
		OrderRef:  "order_orphan",
		Amount:    50_000,
		Status:    OrderCreated,
		CreatedAt: time.Now().UTC(),
	}
	if err := orders.Create(ctx, order); err != nil {
		t.Fatalf("seed order: %v", err)
	}

	sig := sign(order.OrderRef, "pay_123")
	if _, err := svc.ConfirmPayment(ctx, order.OrderRef, "pay_123", sig); err != ledger.ErrUserNotFound {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}

	// The failed credit must not have consumed the order.
	stored, err := orders.FindByRef(ctx, order.OrderRef)
	if err != nil {
		t.Fatalf("find order: %v", err)
	}
	if stored.Status != OrderCreated {
		t.Fatalf("order status = %s after failed credit, want created", stored.Status)
	}

	// Once the cause is repaired, the provider's retry settles normally.
	err = users.Create(ctx, user.User{ID: "ghost", Name: "Ghost", Phone: "910000000000", PayAddress: "ghost@pay"})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	entry, err := svc.ConfirmPayment(ctx, order.OrderRef, "pay_123", sig)
	if err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if entry.BalanceAfter != 50_000 {
		t.Fatalf("balance after retry = %d, want 50000", entry.BalanceAfter)
	}
	if balance, _ := users.Balance("ghost"); balance != 50_000 {
		t.Fatalf("stored balance = %d, want 50000", balance)
	}
}
