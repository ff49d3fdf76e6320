package common

import "strings"

// NormalizePhone trims a phone number and drops the separators people type
// (spaces, dots, dashes, parentheses). A leading + is kept.
func NormalizePhone(raw string) string {
	raw = strings.TrimSpace(raw)
	var b strings.Builder
	for i, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// PhoneDigits keeps only the digits, the form wa.me expects.
func PhoneDigits(raw string) string {
	return strings.TrimPrefix(NormalizePhone(raw), "+")
}
