package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/offgrid-pay/offgridpay/internal/notification"
	"github.com/offgrid-pay/offgridpay/internal/user"
)

var (
	// ErrInvalidCredentials indicates a wrong password or unknown identity.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidOTP indicates a wrong, expired or already consumed code.
	ErrInvalidOTP = errors.New("invalid or expired otp")
	// ErrInvalidToken indicates a missing, malformed, expired or superseded
	// session token.
	ErrInvalidToken = errors.New("invalid session token")
)

// Claims are the session-token claims.
type Claims struct {
	Phone string `json:"phone"`
	jwt.RegisteredClaims
}

// Service implements the one-time-code login state machine: password check,
// code issuance, code verification and session-token issuance. A user holds
// at most one live session token; a new login overwrites it.
type Service struct {
	users     user.Repository
	notifier  notification.Notifier
	jwtSecret []byte
	tokenTTL  time.Duration
	otpTTL    time.Duration
}

// NewService constructs an auth service.
func NewService(users user.Repository, notifier notification.Notifier, jwtSecret string, tokenTTL, otpTTL time.Duration) *Service {
	return &Service{
		users:     users,
		notifier:  notifier,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		otpTTL:    otpTTL,
	}
}

// Login verifies the password for the phone identity and, on success, stores
// a fresh one-time code with a fixed expiry and delivers it to the phone.
// No state changes on a failed password.
func (s *Service) Login(ctx context.Context, phone, password string) (user.User, error) {
	u, err := s.users.FindByPhone(ctx, user.NormalizePhone(phone))
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.User{}, ErrInvalidCredentials
		}
		return user.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)); err != nil {
		return user.User{}, ErrInvalidCredentials
	}

	code, err := generateOTP()
	if err != nil {
		return user.User{}, err
	}

	if err := s.users.SetOTP(ctx, u.ID, code, time.Now().UTC().Add(s.otpTTL)); err != nil {
		return user.User{}, err
	}

	if s.notifier != nil {
		_ = s.notifier.Send(ctx, notification.Message{
			Kind:        notification.KindOTP,
			Destination: u.Phone,
			Body:        fmt.Sprintf("Your login OTP is: %s. Reply with \"VERIFY %s\" to complete login.", code, code),
		})
	}

	return u, nil
}

// VerifyResult carries the outcome of a successful code verification.
type VerifyResult struct {
	Token     string
	ExpiresIn int64
	User      user.User
}

// VerifyOTP consumes the stored code if it matches and is unexpired, then
// mints a session token and persists it as the user's active token. The code
// is single use: a second verification with the same code fails.
func (s *Service) VerifyOTP(ctx context.Context, userID, code string) (VerifyResult, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return VerifyResult{}, err
	}

	consumed, err := s.users.ConsumeOTP(ctx, u.ID, code, time.Now().UTC())
	if err != nil {
		return VerifyResult{}, err
	}
	if !consumed {
		return VerifyResult{}, ErrInvalidOTP
	}

	token, err := s.mintToken(u)
	if err != nil {
		return VerifyResult{}, err
	}

	if err := s.users.SetActiveToken(ctx, u.ID, token); err != nil {
		return VerifyResult{}, err
	}

	u.ActiveToken = token
	u.OTPCode = ""
	u.OTPExpiry = time.Time{}
	return VerifyResult{Token: token, ExpiresIn: int64(s.tokenTTL.Seconds()), User: u}, nil
}

// Authenticate re-derives the authenticated state from a presented token:
// signature and expiry are checked by the JWT library, then the token must
// equal the user's current active token. Expiry is evaluated here, at use
// time; there is no background invalidation.
func (s *Service) Authenticate(ctx context.Context, token string) (user.User, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !parsed.Valid {
		return user.User{}, ErrInvalidToken
	}

	u, err := s.users.FindByID(ctx, claims.Subject)
	if err != nil {
		return user.User{}, ErrInvalidToken
	}
	if u.ActiveToken == "" || u.ActiveToken != token {
		return user.User{}, ErrInvalidToken
	}
	return u, nil
}

func (s *Service) mintToken(u user.User) (string, error) {
	now := time.Now()
	claims := &Claims{
		Phone: u.Phone,
		RegisteredClaims: jwt.RegisteredClaims{
			// The jti keeps tokens distinct even when two logins land in the
			// same second, so the active-token comparison stays meaningful.
			ID:        uuid.NewString(),
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
}
