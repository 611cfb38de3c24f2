package security

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
)

// GenerateNumericToken returns a cryptographically random string of the given
// number of decimal digits, zero-padded, suitable for email verification codes.
func GenerateNumericToken(digits int) (string, error) {
	if digits <= 0 || digits > 18 {
		return "", fmt.Errorf("digits must be between 1 and 18")
	}
	max := big.NewInt(1)
	for i := 0; i < digits; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("generate numeric token: %w", err)
	}
	return fmt.Sprintf("%0*d", digits, n), nil
}

// GenerateHexToken returns byteLen random bytes hex-encoded, suitable for
// password reset links.
func GenerateHexToken(byteLen int) (string, error) {
	if byteLen <= 0 {
		return "", fmt.Errorf("length must be positive")
	}
	buf := make([]byte, byteLen)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate hex token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
