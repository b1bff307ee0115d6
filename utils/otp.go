package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"math/big"
)

// OTPLength is the number of digits in a password reset code
const OTPLength = 6

// GenerateOTP returns a random numeric code of OTPLength digits
func GenerateOTP() (string, error) {
	max := big.NewInt(1_000_000)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("failed to generate otp: %w", err)
	}
	return fmt.Sprintf("%0*d", OTPLength, n.Int64()), nil
}

// HashOTP returns the hex SHA-256 digest stored in place of the code
func HashOTP(otp string) string {
	sum := sha256.Sum256([]byte(otp))
	return hex.EncodeToString(sum[:])
}

// OTPMatches compares a submitted code with a stored digest in constant time
func OTPMatches(storedHash, otp string) bool {
	computed := HashOTP(otp)
	return subtle.ConstantTimeCompare([]byte(storedHash), []byte(computed)) == 1
}
