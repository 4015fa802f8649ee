package transfer

import (
	"context"
	"sync"

	"github.com/offgrid-pay/offgridpay/internal/ledger"
)

// MemoryStore executes transfers against the in-memory ledger store.
type MemoryStore struct {
	mu        sync.RWMutex
	led       *ledger.MemoryStore
	transfers map[string]Transfer
}

// NewMemoryStore builds a memory-backed transfer store.
func NewMemoryStore(led *ledger.MemoryStore) *MemoryStore {
	return &MemoryStore{led: led, transfers: make(map[string]Transfer)}
}

// Execute applies the debit/credit pair atomically and records the transfer
// only when both sides committed.
func (s *MemoryStore) Execute(ctx context.Context, t Transfer) (Transfer, ledger.Entry, ledger.Entry, error) {
	debitEntry, creditEntry, err := s.led.ApplyPair(ctx,
		ledger.Mutation{UserID: t.SenderID, Amount: t.Amount, Direction: ledger.Debit, CauseID: t.ID, Note: t.Description},
		ledger.Mutation{UserID: t.RecipientID, Amount: t.Amount, Direction: ledger.Credit, CauseID: t.ID, Note: t.Description},
	)
	if err != nil {
		return Transfer{}, ledger.Entry{}, ledger.Entry{}, err
	}

	t.Status = StatusCompleted
	s.mu.Lock()
	s.transfers[t.ID] = t
	s.mu.Unlock()

	return t, debitEntry, creditEntry, nil
}

// Get returns a stored transfer. Test helper.
func (s *MemoryStore) Get(id string) (Transfer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.transfers[id]
	return t, ok
}
