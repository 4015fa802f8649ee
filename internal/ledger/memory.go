package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/offgrid-pay/offgridpay/internal/user"
)

// MemoryStore keeps ledger entries in memory, mutating balances held by the
// in-memory user repository. Used in development mode and unit tests; the
// mutex gives the same serialization the Postgres row lock provides.
type MemoryStore struct {
	mu      sync.Mutex
	users   *user.MemoryRepository
	entries []Entry
}

// NewMemoryStore builds a memory-backed ledger store over the given user
// repository.
func NewMemoryStore(users *user.MemoryRepository) *MemoryStore {
	return &MemoryStore{users: users}
}

// Apply commits one balance mutation under the store lock.
func (s *MemoryStore) Apply(_ context.Context, m Mutation) (Entry, error) {
	if err := m.validate(); err != nil {
		return Entry{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applyLocked(m)
}

// ApplyPair commits a debit and a credit as one unit: either both entries
// persist or neither does. The transfer store relies on this to keep peer
// transfers atomic.
func (s *MemoryStore) ApplyPair(_ context.Context, debit, credit Mutation) (Entry, Entry, error) {
	if err := debit.validate(); err != nil {
		return Entry{}, Entry{}, err
	}
	if err := credit.validate(); err != nil {
		return Entry{}, Entry{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Validate both sides before touching anything so a late failure cannot
	// leave a partial mutation behind.
	senderBalance, ok := s.users.Balance(debit.UserID)
	if !ok {
		return Entry{}, Entry{}, ErrUserNotFound
	}
	if _, ok := s.users.Balance(credit.UserID); !ok {
		return Entry{}, Entry{}, ErrUserNotFound
	}
	if senderBalance < debit.Amount {
		return Entry{}, Entry{}, ErrInsufficientFunds
	}

	debitEntry, err := s.applyLocked(debit)
	if err != nil {
		return Entry{}, Entry{}, err
	}
	creditEntry, err := s.applyLocked(credit)
	if err != nil {
		return Entry{}, Entry{}, err
	}
	return debitEntry, creditEntry, nil
}

func (s *MemoryStore) applyLocked(m Mutation) (Entry, error) {
	before, ok := s.users.Balance(m.UserID)
	if !ok {
		return Entry{}, ErrUserNotFound
	}

	after := before + m.Amount
	if m.Direction == Debit {
		if before < m.Amount {
			return Entry{}, ErrInsufficientFunds
		}
		after = before - m.Amount
	}

	s.users.SetBalance(m.UserID, after)

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
	s.entries = append(s.entries, entry)
	return entry, nil
}

// EntriesForUser returns recent entries for a user, newest first.
func (s *MemoryStore) EntriesForUser(_ context.Context, userID string, limit int) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var entries []Entry
	for i := len(s.entries) - 1; i >= 0 && len(entries) < limit; i-- {
		if s.entries[i].UserID == userID {
			entries = append(entries, s.entries[i])
		}
	}
	return entries, nil
}
