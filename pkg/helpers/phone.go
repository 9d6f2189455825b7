package helpers

import (
	"errors"
	"regexp"
	"strings"
)

var lkPhoneRe = regexp.MustCompile(`^(\+?94)\d{9}$`)

// ErrInvalidPhone is returned for numbers that are not Sri Lankan mobile or
// fixed-line numbers in national or E.164 form.
var ErrInvalidPhone = errors.New("invalid Sri Lankan phone number, expected 94XXXXXXXXX or +94XXXXXXXXX")

// IsValidLKNumber reports whether the input is a Sri Lankan number with or
// without the leading plus.
func IsValidLKNumber(number string) bool {
	return lkPhoneRe.MatchString(strings.TrimSpace(number))
}

// NormalizeLKPhone validates and normalizes a Sri Lankan number to E.164
// (+94XXXXXXXXX).
func NormalizeLKPhone(number string) (string, error) {
	raw := strings.TrimSpace(number)
	if !lkPhoneRe.MatchString(raw) {
		return "", ErrInvalidPhone
	}
	if strings.HasPrefix(raw, "+") {
		return raw, nil
	}
	return "+" + raw, nil
}
