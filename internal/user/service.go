package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidInput indicates a registration field failed validation.
var ErrInvalidInput = errors.New("invalid registration input")

// Service manages the user lifecycle.
type Service struct {
	repo Repository
}

// NewService creates a new user service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// RegisterInput captures the data required to open a wallet.
type RegisterInput struct {
	Name       string
	Phone      string
	PayAddress string
	Password   string
}

// Register creates a user with a hashed password, a zero balance and a
// canonical phone identity.
func (s *Service) Register(ctx context.Context, input RegisterInput) (User, error) {
	name := strings.TrimSpace(input.Name)
	address := strings.TrimSpace(input.PayAddress)
	phone := NormalizePhone(input.Phone)

	if name == "" || address == "" || phone == "" || len(input.Password) < 6 {
		return User{}, ErrInvalidInput
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}

	now := time.Now().UTC()
	u := User{
		ID:           uuid.New().String(),
		Name:         name,
		Phone:        phone,
		PayAddress:   address,
		Balance:      0,
		PasswordHash: hash,
		CreatedAt:    now,
		LastActivity: now,
	}

	if err := s.repo.Create(ctx, u); err != nil {
		return User{}, err
	}

	return u, nil
}
