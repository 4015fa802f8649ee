package transfer

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/offgrid-pay/offgridpay/internal/ledger"
)

// PostgresStore commits transfers in a single database transaction spanning
// the transfer row and both ledger mutations.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore constructs a Postgres-backed transfer store.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// Execute inserts the pending transfer, applies the debit and credit through
// the ledger's transaction helper, marks the transfer completed and commits.
// Rolling back on any failure leaves no partial debit or credit behind.
func (s *PostgresStore) Execute(ctx context.Context, t Transfer) (Transfer, ledger.Entry, ledger.Entry, error) {
	transferID, err := uuid.Parse(t.ID)
	if err != nil {
		return Transfer{}, ledger.Entry{}, ledger.Entry{}, err
	}
	senderID, err := uuid.Parse(t.SenderID)
	if err != nil {
		return Transfer{}, ledger.Entry{}, ledger.Entry{}, ledger.ErrUserNotFound
	}
	recipientID, err := uuid.Parse(t.RecipientID)
	if err != nil {
		return Transfer{}, ledger.Entry{}, ledger.Entry{}, ledger.ErrUserNotFound
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Transfer{}, ledger.Entry{}, ledger.Entry{}, err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	if _, err := tx.Exec(ctx, `INSERT INTO transfers
        (id, sender_id, recipient_address, recipient_id, amount, description, status, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		transferID, senderID, t.RecipientAddress, recipientID, t.Amount, t.Description,
		string(StatusPending), t.CreatedAt.UTC()); err != nil {
		return Transfer{}, ledger.Entry{}, ledger.Entry{}, err
	}

	debitEntry, err := ledger.ApplyInTx(ctx, tx, ledger.Mutation{
		UserID:    t.SenderID,
		Amount:    t.Amount,
		Direction: ledger.Debit,
		CauseID:   t.ID,
		Note:      t.Description,
	})
	if err != nil {
		return Transfer{}, ledger.Entry{}, ledger.Entry{}, err
	}

	creditEntry, err := ledger.ApplyInTx(ctx, tx, ledger.Mutation{
		UserID:    t.RecipientID,
		Amount:    t.Amount,
		Direction: ledger.Credit,
		CauseID:   t.ID,
		Note:      t.Description,
	})
	if err != nil {
		return Transfer{}, ledger.Entry{}, ledger.Entry{}, err
	}

	if _, err := tx.Exec(ctx, `UPDATE transfers SET status = $1 WHERE id = $2`,
		string(StatusCompleted), transferID); err != nil {
		return Transfer{}, ledger.Entry{}, ledger.Entry{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Transfer{}, ledger.Entry{}, ledger.Entry{}, err
	}

	t.Status = StatusCompleted
	return t, debitEntry, creditEntry, nil
}
