package security

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"math/big"
	"strconv"
)

const (
	verificationCodeMin = 100000
	verificationCodeMax = 999999
)

// GenerateVerificationCode returns a uniformly random 6-digit numeric code in
// the range 100000-999999.
func GenerateVerificationCode() (string, error) {
	span := big.NewInt(verificationCodeMax - verificationCodeMin + 1)
	n, err := rand.Int(rand.Reader, span)
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return strconv.FormatInt(n.Int64()+verificationCodeMin, 10), nil
}

// GenerateSecureToken returns a base64 URL-safe random string using the
// specified number of random bytes.
func GenerateSecureToken(byteLength int) (string, error) {
	if byteLength <= 0 {
		return "", fmt.Errorf("length must be positive")
	}

	buf := make([]byte, byteLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// GenerateUnusablePassword returns a random password for accounts created
// through code login. The user never learns it; password login for such
// accounts goes through the reset flow.
func GenerateUnusablePassword() (string, error) {
	return GenerateSecureToken(24)
}

// HashToken calculates a SHA-256 hash of the provided value, used to key
// session records without storing the raw token.
func HashToken(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
