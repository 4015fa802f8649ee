package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/offgrid-pay/offgridpay/internal/notification"
	"github.com/offgrid-pay/offgridpay/internal/user"
)

type captureNotifier struct {
	sent []notification.Message
}

func (n *captureNotifier) Send(_ context.Context, msg notification.Message) error {
	n.sent = append(n.sent, msg)
	return nil
}

// lastOTP pulls the code out of the delivered OTP message.
func (n *captureNotifier) lastOTP(t *testing.T) string {
	t.Helper()
	if len(n.sent) == 0 {
		t.Fatal("no notification was sent")
	}
	msg := n.sent[len(n.sent)-1]
	if msg.Kind != notification.KindOTP {
		t.Fatalf("last message kind = %q, want otp", msg.Kind)
	}
	fields := strings.Fields(msg.Body)
	for _, f := range fields {
		code := strings.TrimSuffix(f, ".")
		if len(code) == otpDigits && strings.Trim(code, "0123456789") == "" {
			return code
		}
	}
	t.Fatalf("no code found in %q", msg.Body)
	return ""
}

func newTestAuth(t *testing.T) (*Service, *user.MemoryRepository, *captureNotifier) {
	t.Helper()
	users := user.NewMemoryRepository()
	notifier := &captureNotifier{}
	svc := NewService(users, notifier, "test-secret", 24*time.Hour, 10*time.Minute)

	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	err = users.Create(context.Background(), user.User{
		ID:           "u1",
		Name:         "Asha",
		Phone:        "919876543210",
		PayAddress:   "asha@pay",
		Balance:      15_050,
		PasswordHash: hash,
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return svc, users, notifier
}

func TestLoginDeliversOTP(t *testing.T) {
	svc, users, notifier := newTestAuth(t)
	ctx := context.Background()

	u, err := svc.Login(ctx, "+91 98765 43210", "secret123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if u.ID != "u1" {
		t.Fatalf("wrong user: %s", u.ID)
	}

	code := notifier.lastOTP(t)
	if len(code) != 6 {
		t.Fatalf("code %q is not six digits", code)
	}

	stored, _ := users.FindByID(ctx, "u1")
	if stored.OTPCode != code {
		t.Fatalf("stored code %q does not match delivered %q", stored.OTPCode, code)
	}
	if until := time.Until(stored.OTPExpiry); until < 9*time.Minute || until > 10*time.Minute {
		t.Fatalf("otp expiry %s not near ten minutes out", until)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc, users, notifier := newTestAuth(t)
	ctx := context.Background()

	if _, err := svc.Login(ctx, "919876543210", "wrong"); err != ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if len(notifier.sent) != 0 {
		t.Fatal("failed login sent a notification")
	}
	stored, _ := users.FindByID(ctx, "u1")
	if stored.OTPCode != "" {
		t.Fatal("failed login stored a code")
	}
}

func TestLoginUnknownPhone(t *testing.T) {
	svc, _, _ := newTestAuth(t)
	if _, err := svc.Login(context.Background(), "910000000000", "secret123"); err != ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestVerifyOTPIssuesSession(t *testing.T) {
	svc, users, notifier := newTestAuth(t)
	ctx := context.Background()

	if _, err := svc.Login(ctx, "919876543210", "secret123"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	code := notifier.lastOTP(t)

	res, err := svc.VerifyOTP(ctx, "u1", code)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if res.Token == "" {
		t.Fatal("expected a session token")
	}
	if res.ExpiresIn != int64((24 * time.Hour).Seconds()) {
		t.Fatalf("expires_in = %d", res.ExpiresIn)
	}

	stored, _ := users.FindByID(ctx, "u1")
	if stored.ActiveToken != res.Token {
		t.Fatal("token was not persisted as the active token")
	}
	if stored.OTPCode != "" {
		t.Fatal("code survived verification")
	}

	// The token round-trips through Authenticate.
	authed, err := svc.Authenticate(ctx, res.Token)
	if err != nil {
		t.Fatalf("authenticate failed: %v", err)
	}
	if authed.ID != "u1" {
		t.Fatalf("authenticated wrong user: %s", authed.ID)
	}
}

func TestVerifyOTPSingleUse(t *testing.T) {
	svc, _, notifier := newTestAuth(t)
	ctx := context.Background()

	if _, err := svc.Login(ctx, "919876543210", "secret123"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	code := notifier.lastOTP(t)

	if _, err := svc.VerifyOTP(ctx, "u1", code); err != nil {
		t.Fatalf("first verify failed: %v", err)
	}
	if _, err := svc.VerifyOTP(ctx, "u1", code); err != ErrInvalidOTP {
		t.Fatalf("second verify: expected ErrInvalidOTP, got %v", err)
	}
}

func TestVerifyOTPExpired(t *testing.T) {
	users := user.NewMemoryRepository()
	svc := NewService(users, nil, "test-secret", 24*time.Hour, 10*time.Minute)
	ctx := context.Background()

	if err := users.Create(ctx, user.User{ID: "u1", Phone: "919876543210", PayAddress: "a@pay"}); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	if err := users.SetOTP(ctx, "u1", "123456", time.Now().UTC().Add(-time.Minute)); err != nil {
		t.Fatalf("set otp: %v", err)
	}

	if _, err := svc.VerifyOTP(ctx, "u1", "123456"); err != ErrInvalidOTP {
		t.Fatalf("expected ErrInvalidOTP for expired code, got %v", err)
	}
}

func TestVerifyOTPWrongCode(t *testing.T) {
	svc, _, notifier := newTestAuth(t)
	ctx := context.Background()

	if _, err := svc.Login(ctx, "919876543210", "secret123"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	code := notifier.lastOTP(t)

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	if _, err := svc.VerifyOTP(ctx, "u1", wrong); err != ErrInvalidOTP {
		t.Fatalf("expected ErrInvalidOTP, got %v", err)
	}

	// The real code still works after a failed guess.
	if _, err := svc.VerifyOTP(ctx, "u1", code); err != nil {
		t.Fatalf("verify after failed guess: %v", err)
	}
}

func TestNewLoginSupersedesToken(t *testing.T) {
	svc, _, notifier := newTestAuth(t)
	ctx := context.Background()

	if _, err := svc.Login(ctx, "919876543210", "secret123"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	first, err := svc.VerifyOTP(ctx, "u1", notifier.lastOTP(t))
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}

	if _, err := svc.Login(ctx, "919876543210", "secret123"); err != nil {
		t.Fatalf("second login failed: %v", err)
	}
	second, err := svc.VerifyOTP(ctx, "u1", notifier.lastOTP(t))
	if err != nil {
		t.Fatalf("second verify failed: %v", err)
	}

	if _, err := svc.Authenticate(ctx, second.Token); err != nil {
		t.Fatalf("current token rejected: %v", err)
	}
	if _, err := svc.Authenticate(ctx, first.Token); err != ErrInvalidToken {
		t.Fatalf("superseded token accepted: %v", err)
	}
}

func TestAuthenticateRejectsGarbage(t *testing.T) {
	svc, _, _ := newTestAuth(t)
	for _, token := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := svc.Authenticate(context.Background(), token); err != ErrInvalidToken {
			t.Fatalf("token %q: expected ErrInvalidToken, got %v", token, err)
		}
	}
}
