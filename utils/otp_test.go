package utils

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateOTP(t *testing.T) {
	pattern := regexp.MustCompile(`^\d{6}$`)

	for i := 0; i < 50; i++ {
		otp, err := GenerateOTP()
		require.NoError(t, err)
		assert.Regexp(t, pattern, otp)
	}
}

func TestHashOTP(t *testing.T) {
	hash := HashOTP("123456")

	assert.Len(t, hash, 64)
	assert.NotContains(t, hash, "123456")
	assert.Equal(t, hash, HashOTP("123456"), "hash must be deterministic")
	assert.NotEqual(t, hash, HashOTP("123457"))
}

func TestOTPMatches(t *testing.T) {
	stored := HashOTP("042917")

	assert.True(t, OTPMatches(stored, "042917"))
	assert.False(t, OTPMatches(stored, "42917"))
	assert.False(t, OTPMatches(stored, ""))
	assert.False(t, OTPMatches("", "042917"))
}
