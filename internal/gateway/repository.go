package gateway

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/offgrid-pay/offgridpay/internal/ledger"
)

// ErrOrderNotFound indicates no order matches the provider reference.
var ErrOrderNotFound = errors.New("gateway order not found")

// Repository persists gateway orders.
type Repository interface {
	Create(ctx context.Context, order Order) error
	FindByRef(ctx context.Context, orderRef string) (Order, error)
	// Settle transitions the order from created to paid and applies the
	// wallet credit as one atomic unit: either the order resolves and the
	// balance changes, or neither happens. Returns claimed=false when the
	// order was already resolved, so a replayed callback cannot credit twice.
	Settle(ctx context.Context, id, paymentRef string, credit ledger.Mutation) (ledger.Entry, bool, error)
}

// PostgresRepository stores orders in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed order repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new order.
func (r *PostgresRepository) Create(ctx context.Context, order Order) error {
	orderID, err := uuid.Parse(order.ID)
	if err != nil {
		return err
	}
	userID, err := uuid.Parse(order.UserID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO gateway_orders (id, user_id, order_ref, amount, status, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)`,
		orderID, userID, order.OrderRef, order.Amount, string(order.Status), order.CreatedAt.UTC())
	return err
}

// FindByRef fetches an order by the provider's order reference.
func (r *PostgresRepository) FindByRef(ctx context.Context, orderRef string) (Order, error) {
	row := r.db.QueryRow(ctx, `SELECT id, user_id, order_ref, COALESCE(payment_ref, ''), amount, status, created_at
        FROM gateway_orders WHERE order_ref = $1`, orderRef)
	var (
		id        uuid.UUID
		userID    uuid.UUID
		o         Order
		status    string
		createdAt time.Time
	)
	if err := row.Scan(&id, &userID, &o.OrderRef, &o.PaymentRef, &o.Amount, &status, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Order{}, ErrOrderNotFound
		}
		return Order{}, err
	}
	o.ID = id.String()
	o.UserID = userID.String()
	o.Status = OrderStatus(status)
	o.CreatedAt = createdAt.UTC()
	return o, nil
}

// Settle resolves the order and credits the wallet in one transaction. The
// conditional status update doubles as the replay guard: a row already paid
// matches nothing, the transaction rolls back and no credit is applied.
func (r *PostgresRepository) Settle(ctx context.Context, id, paymentRef string, credit ledger.Mutation) (ledger.Entry, bool, error) {
	orderID, err := uuid.Parse(id)
	if err != nil {
		return ledger.Entry{}, false, ErrOrderNotFound
	}

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return ledger.Entry{}, false, err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	cmd, err := tx.Exec(ctx, `UPDATE gateway_orders SET status = $1, payment_ref = $2
        WHERE id = $3 AND status = $4`,
		string(OrderPaid), paymentRef, orderID, string(OrderCreated))
	if err != nil {
		return ledger.Entry{}, false, err
	}
	if cmd.RowsAffected() == 0 {
		return ledger.Entry{}, false, nil
	}

	entry, err := ledger.ApplyInTx(ctx, tx, credit)
	if err != nil {
		return ledger.Entry{}, false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return ledger.Entry{}, false, err
	}
	return entry, true, nil
}

// MemoryRepository keeps orders in memory for development and tests, applying
// credits through the in-memory ledger store.
type MemoryRepository struct {
	mu     sync.Mutex
	led    *ledger.MemoryStore
	orders map[string]Order // keyed by order reference
}

// NewMemoryRepository builds an empty in-memory order repository over the
// given ledger store.
func NewMemoryRepository(led *ledger.MemoryStore) *MemoryRepository {
	return &MemoryRepository{led: led, orders: make(map[string]Order)}
}

func (r *MemoryRepository) Create(_ context.Context, order Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[order.OrderRef] = order
	return nil
}

func (r *MemoryRepository) FindByRef(_ context.Context, orderRef string) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[orderRef]
	if !ok {
		return Order{}, ErrOrderNotFound
	}
	return o, nil
}

// Settle credits first and marks the order afterwards; the mark is a pure
// in-memory write that cannot fail, so a failed credit leaves the order open
// for the provider's retry.
func (r *MemoryRepository) Settle(ctx context.Context, id, paymentRef string, credit ledger.Mutation) (ledger.Entry, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for ref, o := range r.orders {
		if o.ID == id {
			if o.Status != OrderCreated {
				return ledger.Entry{}, false, nil
			}
			entry, err := r.led.Apply(ctx, credit)
			if err != nil {
				return ledger.Entry{}, false, err
			}
			o.Status = OrderPaid
			o.PaymentRef = paymentRef
			r.orders[ref] = o
			return entry, true, nil
		}
	}
	return ledger.Entry{}, false, ErrOrderNotFound
}
