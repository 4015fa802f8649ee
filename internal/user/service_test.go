package user

import (
	"context"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"+919876543210", "919876543210"},
		{"91 98765 43210", "919876543210"},
		{"(91) 98765-43210", "919876543210"},
		{"919876543210", "919876543210"},
		{"abc", ""},
	}
	for _, c := range cases {
		if got := NormalizePhone(c.in); got != c.want {
			t.Errorf("NormalizePhone(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestRegister(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	u, err := svc.Register(ctx, RegisterInput{
		Name:       "Asha",
		Phone:      "+919876543210",
		PayAddress: "asha@pay",
		Password:   "secret123",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if u.ID == "" {
		t.Fatal("expected generated id")
	}
	if u.Phone != "919876543210" {
		t.Fatalf("phone not normalized: %q", u.Phone)
	}
	if u.Balance != 0 {
		t.Fatalf("new wallet balance = %d, want 0", u.Balance)
	}
	if err := bcrypt.CompareHashAndPassword(u.PasswordHash, []byte("secret123")); err != nil {
		t.Fatalf("password hash does not verify: %v", err)
	}
}

func TestRegisterConflicts(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	first := RegisterInput{Name: "Asha", Phone: "919876543210", PayAddress: "asha@pay", Password: "secret123"}
	if _, err := svc.Register(ctx, first); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	dupPhone := first
	dupPhone.PayAddress = "other@pay"
	if _, err := svc.Register(ctx, dupPhone); err != ErrPhoneTaken {
		t.Fatalf("expected ErrPhoneTaken, got %v", err)
	}

	dupAddress := first
	dupAddress.Phone = "919876500000"
	if _, err := svc.Register(ctx, dupAddress); err != ErrAddressTaken {
		t.Fatalf("expected ErrAddressTaken, got %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	cases := []RegisterInput{
		{Name: "", Phone: "919876543210", PayAddress: "a@pay", Password: "secret123"},
		{Name: "Asha", Phone: "", PayAddress: "a@pay", Password: "secret123"},
		{Name: "Asha", Phone: "919876543210", PayAddress: "", Password: "secret123"},
		{Name: "Asha", Phone: "919876543210", PayAddress: "a@pay", Password: "short"},
	}
	for i, in := range cases {
		if _, err := svc.Register(ctx, in); err != ErrInvalidInput {
			t.Errorf("case %d: expected ErrInvalidInput, got %v", i, err)
		}
	}
}

func TestConsumeOTPSingleUse(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	u := User{ID: "u1", Name: "Asha", Phone: "919876543210", PayAddress: "asha@pay"}
	if err := repo.Create(ctx, u); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	now := time.Now().UTC()
	if err := repo.SetOTP(ctx, "u1", "123456", now.Add(10*time.Minute)); err != nil {
		t.Fatalf("set otp failed: %v", err)
	}

	ok, err := repo.ConsumeOTP(ctx, "u1", "123456", now)
	if err != nil || !ok {
		t.Fatalf("first consume = (%v, %v), want (true, nil)", ok, err)
	}

	ok, err = repo.ConsumeOTP(ctx, "u1", "123456", now)
	if err != nil || ok {
		t.Fatalf("second consume = (%v, %v), want (false, nil)", ok, err)
	}
}
