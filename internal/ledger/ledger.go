package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrUserNotFound occurs when the mutation targets an unknown user.
	ErrUserNotFound = errors.New("user not found")
	// ErrInsufficientFunds occurs when a debit exceeds the current balance.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrInvalidAmount occurs when a mutation amount is not strictly positive.
	ErrInvalidAmount = errors.New("amount must be positive")
)

// Direction classifies a balance change.
type Direction string

const (
	// Credit increases the balance.
	Credit Direction = "credit"
	// Debit decreases the balance.
	Debit Direction = "debit"
)

// ParseDirection validates a direction string at the construction boundary.
func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case Credit:
		return Credit, nil
	case Debit:
		return Debit, nil
	default:
		return "", fmt.Errorf("invalid ledger direction %q", s)
	}
}

// EntryStatus classifies the settlement state of an entry.
type EntryStatus string

const (
	// EntryCompleted marks a committed balance change.
	EntryCompleted EntryStatus = "completed"
	// EntryReversed marks an entry undone by a compensating entry.
	EntryReversed EntryStatus = "reversed"
)

// Entry is one immutable record of a balance change. BalanceBefore and
// BalanceAfter make every mutation auditable without replaying history.
type Entry struct {
	ID            string
	UserID        string
	Amount        int64
	Direction     Direction
	BalanceBefore int64
	BalanceAfter  int64
	Status        EntryStatus
	CauseID       string
	Note          string
	CreatedAt     time.Time
}

// Mutation describes one requested balance change.
type Mutation struct {
	UserID    string
	Amount    int64
	Direction Direction
	// CauseID links the entry to the transfer or gateway order that caused it.
	CauseID string
	Note    string
}

func (m Mutation) validate() error {
	if m.Amount <= 0 {
		return ErrInvalidAmount
	}
	if _, err := ParseDirection(string(m.Direction)); err != nil {
		return err
	}
	return nil
}

// Store persists balance mutations. Implementations must commit the balance
// update and the new entry as one atomic unit and serialize concurrent
// mutations against the same user.
type Store interface {
	Apply(ctx context.Context, m Mutation) (Entry, error)
	EntriesForUser(ctx context.Context, userID string, limit int) ([]Entry, error)
}

// Service is the single authority over wallet balances. Transfers and gateway
// credits both route through it (or through a store sharing its transaction
// helpers); nothing else writes a balance.
type Service struct {
	store Store
}

// NewService builds a ledger service on the given store.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Apply validates and commits one balance mutation, returning the entry that
// records it. The entry's BalanceAfter is the new balance.
func (s *Service) Apply(ctx context.Context, m Mutation) (Entry, error) {
	if err := m.validate(); err != nil {
		return Entry{}, err
	}
	return s.store.Apply(ctx, m)
}

// EntriesForUser returns the most recent entries for a user, newest first.
func (s *Service) EntriesForUser(ctx context.Context, userID string, limit int) ([]Entry, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.store.EntriesForUser(ctx, userID, limit)
}
