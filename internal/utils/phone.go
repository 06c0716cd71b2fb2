package utils

import (
	"errors"
	"strings"
)

var ErrInvalidPhone = errors.New("invalid mobile number")

// NormalizePhone reduces an Indian mobile number to its 10 digits.
// Accepts +91 / 91 / 0 prefixes and common separators.
func NormalizePhone(raw string) (string, error) {
	var b strings.Builder
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '(' || r == ')' || r == '+' || r == '.':
		default:
			return "", ErrInvalidPhone
		}
	}
	d := b.String()
	switch {
	case len(d) == 12 && strings.HasPrefix(d, "91"):
		d = d[2:]
	case len(d) == 11 && strings.HasPrefix(d, "0"):
		d = d[1:]
	}
	if len(d) != 10 || d[0] < '6' {
		return "", ErrInvalidPhone
	}
	return d, nil
}

// MaskPhone keeps the last four digits only.
func MaskPhone(phone string) string {
	if len(phone) <= 4 {
		return strings.Repeat("*", len(phone))
	}
	return strings.Repeat("*", len(phone)-4) + phone[len(phone)-4:]
}
