// Package money converts between minor-unit integer amounts and their
// two-decimal display form. Balances are stored exclusively as int64 minor
// units; decimals exist only at the formatting and parsing boundaries.
package money

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidAmount indicates the textual amount could not be parsed into a
// positive minor-unit value.
var ErrInvalidAmount = errors.New("invalid amount")

// Format renders minor units with two decimal places, e.g. 15050 -> "150.50".
func Format(minor int64) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return fmt.Sprintf("%s%d.%02d", sign, minor/100, minor%100)
}

// Parse converts a decimal string such as "150", "150.5" or "150.50" into
// minor units. More than two decimal places, negatives and zero are rejected.
func Parse(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
		return 0, ErrInvalidAmount
	}

	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" || len(frac) > 2 {
		return 0, ErrInvalidAmount
	}
	for len(frac) < 2 {
		frac += "0"
	}

	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	cents, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}

	// units*100 + cents must stay within int64.
	if units > (math.MaxInt64-cents)/100 {
		return 0, ErrInvalidAmount
	}

	minor := units*100 + cents
	if minor <= 0 {
		return 0, ErrInvalidAmount
	}
	return minor, nil
}
