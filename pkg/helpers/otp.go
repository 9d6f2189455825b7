package helpers

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

var otpMax = big.NewInt(1000000)

// GenOTPCode generates a uniformly random 6-digit verification code as a
// zero-padded string. Codes are not globally unique; uniqueness is scoped to
// the single pending slot they guard.
func GenOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, otpMax)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
