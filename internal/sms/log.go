package sms

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/offgrid-pay/offgridpay/internal/notification"
)

// MessageDirection distinguishes received from sent messages.
type MessageDirection string

const (
	// DirectionInbound is a message received from a phone.
	DirectionInbound MessageDirection = "inbound"
	// DirectionOutbound is a reply or notification sent to a phone.
	DirectionOutbound MessageDirection = "outbound"
)

// MessageLog is one audit record of channel traffic.
type MessageLog struct {
	ID        string
	Phone     string
	Direction MessageDirection
	Body      string
	CreatedAt time.Time
}

// LogRepository persists the message audit trail. Recording is best effort;
// a failed write never blocks message processing.
type LogRepository interface {
	Record(ctx context.Context, log MessageLog) error
}

// PostgresLogRepository stores message logs in PostgreSQL.
type PostgresLogRepository struct {
	db *pgxpool.Pool
}

// NewPostgresLogRepository builds a Postgres-backed message log.
func NewPostgresLogRepository(db *pgxpool.Pool) *PostgresLogRepository {
	return &PostgresLogRepository{db: db}
}

// Record inserts one audit row.
func (r *PostgresLogRepository) Record(ctx context.Context, log MessageLog) error {
	id, err := uuid.Parse(log.ID)
	if err != nil {
		id = uuid.New()
	}
	_, err = r.db.Exec(ctx, `INSERT INTO message_logs (id, phone, direction, body, created_at)
        VALUES ($1, $2, $3, $4, $5)`, id, log.Phone, string(log.Direction), log.Body, log.CreatedAt.UTC())
	return err
}

// MemoryLogRepository keeps message logs in memory for development and tests.
type MemoryLogRepository struct {
	mu   sync.RWMutex
	logs []MessageLog
}

// NewMemoryLogRepository builds an empty in-memory message log.
func NewMemoryLogRepository() *MemoryLogRepository {
	return &MemoryLogRepository{}
}

// Record appends one audit row.
func (r *MemoryLogRepository) Record(_ context.Context, log MessageLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, log)
	return nil
}

// Logs returns a copy of all recorded rows. Test helper.
func (r *MemoryLogRepository) Logs() []MessageLog {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]MessageLog, len(r.logs))
	copy(out, r.logs)
	return out
}

// RecordingNotifier wraps a notifier so every outbound message lands in the
// audit log before delivery is attempted.
type RecordingNotifier struct {
	next notification.Notifier
	logs LogRepository
}

// NewRecordingNotifier wraps next with audit recording.
func NewRecordingNotifier(next notification.Notifier, logs LogRepository) *RecordingNotifier {
	return &RecordingNotifier{next: next, logs: logs}
}

// Send records the outbound message and delegates delivery.
func (n *RecordingNotifier) Send(ctx context.Context, message notification.Message) error {
	if n.logs != nil {
		_ = n.logs.Record(ctx, MessageLog{
			ID:        uuid.New().String(),
			Phone:     message.Destination,
			Direction: DirectionOutbound,
			Body:      message.Body,
			CreatedAt: time.Now().UTC(),
		})
	}
	return n.next.Send(ctx, message)
}
