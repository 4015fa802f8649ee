package user

import "strings"

// NormalizePhone reduces a phone identity to its canonical digit-only form:
// the leading plus sign and every non-numeric character are stripped.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
