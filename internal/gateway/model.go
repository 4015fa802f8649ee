package gateway

import (
	"fmt"
	"time"
)

// OrderStatus classifies a gateway order's lifecycle state.
type OrderStatus string

const (
	// OrderCreated marks an order registered with the provider and awaiting payment.
	OrderCreated OrderStatus = "created"
	// OrderPaid marks an order whose verified callback credited the wallet.
	OrderPaid OrderStatus = "paid"
	// OrderFailed marks an order the provider reported as failed.
	OrderFailed OrderStatus = "failed"
)

// ParseOrderStatus validates a status string at the construction boundary.
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch OrderStatus(s) {
	case OrderCreated, OrderPaid, OrderFailed:
		return OrderStatus(s), nil
	default:
		return "", fmt.Errorf("invalid order status %q", s)
	}
}

// Order is one pending add-money request keyed by the provider's order
// reference. A verified callback resolves it into a single wallet credit.
type Order struct {
	ID         string
	UserID     string
	OrderRef   string
	PaymentRef string
	Amount     int64
	Status     OrderStatus
	CreatedAt  time.Time
}
