package auth

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// otpDigits is the fixed length of a one-time code.
const otpDigits = 6

// generateOTP draws a 6-digit numeric code from a cryptographically secure
// source. The code gates access to funds, so math/rand is not acceptable.
func generateOTP() (string, error) {
	// Codes range 100000-999999 so the length is always six digits.
	max := big.NewInt(900000)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
