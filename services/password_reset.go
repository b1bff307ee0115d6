package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/sparesx/sparesx-api/models"
	"github.com/sparesx/sparesx-api/utils"
	"gorm.io/gorm"
)

const (
	// SelfServiceResetTTL is how long a code requested by the user stays valid
	SelfServiceResetTTL = 10 * time.Minute
	// AdminResetTTL is how long a code issued by an admin stays valid
	AdminResetTTL = 24 * time.Hour
	// MaxResetAttempts is how many wrong codes a pending reset survives
	MaxResetAttempts = 5
)

var (
	ErrInvalidOTP = errors.New("invalid or missing one-time code")
	ErrOTPExpired = errors.New("one-time code has expired")
)

// IssueResetOTP stores the digest of a fresh code on the user and returns the
// plain code. A previously issued code is replaced.
func IssueResetOTP(db *gorm.DB, user *models.User, ttl time.Duration) (string, time.Time, error) {
	otp, err := utils.GenerateOTP()
	if err != nil {
		return "", time.Time{}, err
	}

	hash := utils.HashOTP(otp)
	expiresAt := time.Now().Add(ttl)

	err = db.Model(user).Updates(map[string]interface{}{
		"reset_otp_hash":     hash,
		"reset_otp_expiry":   expiresAt,
		"reset_otp_attempts": 0,
	}).Error
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to store reset code: %w", err)
	}

	user.ResetOTPHash = &hash
	user.ResetOTPExpiry = &expiresAt
	user.ResetAttempts = 0
	return otp, expiresAt, nil
}

// RecordFailedAttempt counts a wrong code against the user's pending reset.
// The code is discarded once MaxResetAttempts wrong codes have been seen, and
// the return value reports whether that happened.
func RecordFailedAttempt(db *gorm.DB, user *models.User) (bool, error) {
	if !user.HasPendingReset() {
		return false, nil
	}
	pending := db.Model(&models.User{}).Where("id = ? AND reset_otp_hash = ?", user.ID, *user.ResetOTPHash)

	err := pending.Session(&gorm.Session{}).
		UpdateColumn("reset_otp_attempts", gorm.Expr("reset_otp_attempts + 1")).Error
	if err != nil {
		return false, fmt.Errorf("failed to record reset attempt: %w", err)
	}

	result := pending.Session(&gorm.Session{}).
		Where("reset_otp_attempts >= ?", MaxResetAttempts).
		UpdateColumns(map[string]interface{}{
			"reset_otp_hash":     nil,
			"reset_otp_expiry":   nil,
			"reset_otp_attempts": 0,
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to discard reset code: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		user.ResetAttempts++
		return false, nil
	}

	user.ResetOTPHash = nil
	user.ResetOTPExpiry = nil
	user.ResetAttempts = 0
	return true, nil
}

// VerifyResetOTP checks otp against the code stored on user without changing it
func VerifyResetOTP(user *models.User, otp string, now time.Time) error {
	if !user.HasPendingReset() {
		return ErrInvalidOTP
	}
	if !utils.OTPMatches(*user.ResetOTPHash, otp) {
		return ErrInvalidOTP
	}
	if now.After(*user.ResetOTPExpiry) {
		return ErrOTPExpired
	}
	return nil
}

// CompleteReset replaces the password and clears the stored code in one update.
// The update is conditioned on the code that was verified, so a code can only
// be consumed once.
func CompleteReset(db *gorm.DB, user *models.User, otp, newPassword string) error {
	if err := VerifyResetOTP(user, otp, time.Now()); err != nil {
		return err
	}

	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return err
	}

	result := db.Model(&models.User{}).
		Where("id = ? AND reset_otp_hash = ?", user.ID, *user.ResetOTPHash).
		Updates(map[string]interface{}{
			"password":           hash,
			"reset_otp_hash":     nil,
			"reset_otp_expiry":   nil,
			"reset_otp_attempts": 0,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update password: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrInvalidOTP
	}

	user.Password = hash
	user.ResetOTPHash = nil
	user.ResetOTPExpiry = nil
	user.ResetAttempts = 0
	return nil
}
