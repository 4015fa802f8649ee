package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound indicates no user matches the lookup key.
	ErrNotFound = errors.New("user not found")
	// ErrPhoneTaken indicates the phone number is already registered.
	ErrPhoneTaken = errors.New("phone number already registered")
	// ErrAddressTaken indicates the payment address is already registered.
	ErrAddressTaken = errors.New("payment address already registered")
)

// Repository persists users. Balance mutation is deliberately absent: the
// ledger store is the only writer of the balance column.
type Repository interface {
	Create(ctx context.Context, user User) error
	FindByID(ctx context.Context, id string) (User, error)
	FindByPhone(ctx context.Context, phone string) (User, error)
	FindByPayAddress(ctx context.Context, address string) (User, error)
	// SetOTP stores a pending one-time code and its expiry on the user.
	SetOTP(ctx context.Context, id, code string, expiry time.Time) error
	// ConsumeOTP atomically clears the stored code if it matches and is still
	// unexpired at now. Returns false when the code is wrong, expired or
	// already consumed.
	ConsumeOTP(ctx context.Context, id, code string, now time.Time) (bool, error)
	// SetActiveToken overwrites the user's single session-token slot.
	SetActiveToken(ctx context.Context, id, token string) error
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed user repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const userColumns = `id, name, phone, pay_address, balance, password_hash,
        COALESCE(otp_code, ''), COALESCE(otp_expires_at, 'epoch'::timestamptz),
        COALESCE(active_token, ''), created_at, last_activity`

// Create inserts a new user, translating unique violations into conflicts.
func (r *PostgresRepository) Create(ctx context.Context, user User) error {
	userID, err := uuid.Parse(user.ID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO users (id, name, phone, pay_address, balance, password_hash, created_at, last_activity)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		userID, user.Name, user.Phone, user.PayAddress, user.Balance, user.PasswordHash, user.CreatedAt.UTC(), user.LastActivity.UTC())
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		if strings.Contains(pgErr.ConstraintName, "phone") {
			return ErrPhoneTaken
		}
		return ErrAddressTaken
	}
	return err
}

// FindByID fetches a user by identifier.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (User, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return User{}, ErrNotFound
	}
	return r.scanOne(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID))
}

// FindByPhone fetches a user by normalized phone number.
func (r *PostgresRepository) FindByPhone(ctx context.Context, phone string) (User, error) {
	return r.scanOne(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE phone = $1`, phone))
}

// FindByPayAddress fetches a user by payment address.
func (r *PostgresRepository) FindByPayAddress(ctx context.Context, address string) (User, error) {
	return r.scanOne(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE pay_address = $1`, address))
}

// SetOTP stores a pending one-time code with its expiry.
func (r *PostgresRepository) SetOTP(ctx context.Context, id, code string, expiry time.Time) error {
	userID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `UPDATE users SET otp_code = $1, otp_expires_at = $2 WHERE id = $3`,
		code, expiry.UTC(), userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ConsumeOTP clears the code in the same statement that checks it, so two
// concurrent verifications cannot both succeed.
func (r *PostgresRepository) ConsumeOTP(ctx context.Context, id, code string, now time.Time) (bool, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return false, ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `UPDATE users SET otp_code = NULL, otp_expires_at = NULL
        WHERE id = $1 AND otp_code = $2 AND otp_expires_at > $3`, userID, code, now.UTC())
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() == 1, nil
}

// SetActiveToken overwrites the single session-token slot.
func (r *PostgresRepository) SetActiveToken(ctx context.Context, id, token string) error {
	userID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `UPDATE users SET active_token = $1, last_activity = $2 WHERE id = $3`,
		token, time.Now().UTC(), userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) scanOne(row pgx.Row) (User, error) {
	var (
		id        uuid.UUID
		u         User
		createdAt time.Time
		lastSeen  time.Time
		otpExpiry time.Time
	)
	err := row.Scan(&id, &u.Name, &u.Phone, &u.PayAddress, &u.Balance, &u.PasswordHash,
		&u.OTPCode, &otpExpiry, &u.ActiveToken, &createdAt, &lastSeen)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	u.ID = id.String()
	u.CreatedAt = createdAt.UTC()
	u.LastActivity = lastSeen.UTC()
	if otpExpiry.Unix() > 0 {
		u.OTPExpiry = otpExpiry.UTC()
	}
	return u, nil
}
