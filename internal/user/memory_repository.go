package user

import (
	"context"
	"sync"
	"time"
)

// MemoryRepository is an in-memory user store for development and tests.
type MemoryRepository struct {
	mu    sync.RWMutex
	users map[string]User
}

// NewMemoryRepository builds an empty in-memory user store.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{users: make(map[string]User)}
}

func (r *MemoryRepository) Create(_ context.Context, user User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Phone == user.Phone {
			return ErrPhoneTaken
		}
		if existing.PayAddress == user.PayAddress {
			return ErrAddressTaken
		}
	}
	r.users[user.ID] = user
	return nil
}

func (r *MemoryRepository) FindByID(_ context.Context, id string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (r *MemoryRepository) FindByPhone(_ context.Context, phone string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Phone == phone {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (r *MemoryRepository) FindByPayAddress(_ context.Context, address string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.PayAddress == address {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (r *MemoryRepository) SetOTP(_ context.Context, id, code string, expiry time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return ErrNotFound
	}
	u.OTPCode = code
	u.OTPExpiry = expiry
	r.users[id] = u
	return nil
}

func (r *MemoryRepository) ConsumeOTP(_ context.Context, id, code string, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return false, ErrNotFound
	}
	if u.OTPCode == "" || u.OTPCode != code || !u.OTPExpiry.After(now) {
		return false, nil
	}
	u.OTPCode = ""
	u.OTPExpiry = time.Time{}
	r.users[id] = u
	return true, nil
}

func (r *MemoryRepository) SetActiveToken(_ context.Context, id, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return ErrNotFound
	}
	u.ActiveToken = token
	u.LastActivity = time.Now().UTC()
	r.users[id] = u
	return nil
}

// Balance reads the stored balance directly. Exposed for the in-memory ledger
// store, which stands in for the SQL balance column.
func (r *MemoryRepository) Balance(id string) (int64, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return 0, false
	}
	return u.Balance, true
}

// SetBalance writes the stored balance directly. Only the in-memory ledger
// store may call this; every other balance change goes through the ledger.
func (r *MemoryRepository) SetBalance(id string, balance int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return
	}
	u.Balance = balance
	u.LastActivity = time.Now().UTC()
	r.users[id] = u
}
