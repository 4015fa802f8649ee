package user

import "time"

// User represents a registered wallet owner. Balance is held in minor units
// (paise) and changes only through the ledger; the OTP slot and the active
// session token change only through the auth service.
type User struct {
	ID           string
	Name         string
	Phone        string
	PayAddress   string
	Balance      int64
	PasswordHash []byte
	OTPCode      string
	OTPExpiry    time.Time
	ActiveToken  string
	CreatedAt    time.Time
	LastActivity time.Time
}
