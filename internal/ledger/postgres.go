package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists ledger entries in PostgreSQL. The user's balance row
// is locked for the duration of the transaction, so concurrent debits against
// one user serialize and cannot both spend the same funds.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore constructs a Postgres-backed ledger store.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// Apply commits one balance mutation and its entry atomically.
func (s *PostgresStore) Apply(ctx context.Context, m Mutation) (Entry, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Entry{}, err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	entry, err := ApplyInTx(ctx, tx, m)
	if err != nil {
		return Entry{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Entry{}, err
	}
	return entry, nil
}

// ApplyInTx performs one balance mutation inside the caller's transaction.
// The transfer store uses it to commit a debit, a credit and the transfer
// record as a single unit. This function and Apply are the only writers of
// the balance column.
func ApplyInTx(ctx context.Context, tx pgx.Tx, m Mutation) (Entry, error) {
	if err := m.validate(); err != nil {
		return Entry{}, err
	}

	userID, err := uuid.Parse(m.UserID)
	if err != nil {
		return Entry{}, ErrUserNotFound
	}

	var before int64
	if err := tx.QueryRow(ctx, `SELECT balance FROM users WHERE id = $1 FOR UPDATE`, userID).Scan(&before); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Entry{}, ErrUserNotFound
		}
		return Entry{}, err
	}

	after := before + m.Amount
	if m.Direction == Debit {
		if before < m.Amount {
			return Entry{}, ErrInsufficientFunds
		}
		after = before - m.Amount
	}

	if _, err := tx.Exec(ctx, `UPDATE users SET balance = $1, last_activity = $2 WHERE id = $3`,
		after, time.Now().UTC(), userID); err != nil {
		return Entry{}, err
	}

	entry := Entry{
		ID:            uuid.New().String(),
		UserID:        m.UserID,
		Amount:        m.Amount,
		Direction:     m.Direction,
		BalanceBefore: before,
		BalanceAfter:  after,
		Status:        EntryCompleted,
		CauseID:       m.CauseID,
		Note:          m.Note,
		CreatedAt:     time.Now().UTC(),
	}

	if _, err := tx.Exec(ctx, `INSERT INTO ledger_entries
        (id, user_id, amount, direction, balance_before, balance_after, status, cause_id, note, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		uuid.MustParse(entry.ID), userID, entry.Amount, string(entry.Direction),
		entry.BalanceBefore, entry.BalanceAfter, string(entry.Status),
		nullIfEmpty(entry.CauseID), entry.Note, entry.CreatedAt); err != nil {
		return Entry{}, err
	}

	return entry, nil
}

// EntriesForUser returns recent entries for a user, newest first.
func (s *PostgresStore) EntriesForUser(ctx context.Context, userID string, limit int) ([]Entry, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	rows, err := s.db.Query(ctx, `SELECT id, user_id, amount, direction, balance_before, balance_after,
        status, COALESCE(cause_id::text, ''), note, created_at
        FROM ledger_entries WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`, uid, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			id        uuid.UUID
			owner     uuid.UUID
			e         Entry
			direction string
			status    string
			createdAt time.Time
		)
		if err := rows.Scan(&id, &owner, &e.Amount, &direction, &e.BalanceBefore, &e.BalanceAfter,
			&status, &e.CauseID, &e.Note, &createdAt); err != nil {
			return nil, err
		}
		e.ID = id.String()
		e.UserID = owner.String()
		e.Direction = Direction(direction)
		e.Status = EntryStatus(status)
		e.CreatedAt = createdAt.UTC()
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	if id, err := uuid.Parse(s); err == nil {
		return id
	}
	return nil
}
