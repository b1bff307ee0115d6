package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sparesx/sparesx-api/config"
	"github.com/sparesx/sparesx-api/logger"
	"github.com/sparesx/sparesx-api/models"
	"github.com/sparesx/sparesx-api/services"
	"gorm.io/gorm"
)

// ForgotPasswordRequest represents the request body for starting a reset
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// VerifyOTPRequest represents the request body for checking a reset code
type VerifyOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
	OTP   string `json:"otp" binding:"required,len=6,numeric"`
}

// ResetPasswordRequest represents the request body for completing a reset
type ResetPasswordRequest struct {
	Email       string `json:"email" binding:"required,email"`
	OTP         string `json:"otp" binding:"required,len=6,numeric"`
	NewPassword string `json:"newPassword" binding:"required,min=6"`
}

const resetRequestedMessage = "If an account exists for this email, a reset code has been sent"

// RequestPasswordReset handles POST /api/auth/forgot-password/request.
// The response is the same whether or not the email is registered.
func RequestPasswordReset(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	db := config.GetDB()
	var user models.User
	err := db.Where("email = ?", normalizeEmail(req.Email)).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		logger.L().Infow("password reset requested for unknown email")
	case err != nil:
		respondDatabaseError(c, "Failed to load user", err)
		return
	default:
		otp, _, err := services.IssueResetOTP(db, &user, services.SelfServiceResetTTL)
		if err != nil {
			respondDatabaseError(c, "Failed to start password reset", err)
			return
		}
		if err := services.SendPasswordResetCode(c.Request.Context(), services.GetMailer(), user.Email, user.Name, otp, services.SelfServiceResetTTL); err != nil {
			logger.L().Errorw("failed to send reset code", "user_id", user.ID, "error", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"message": resetRequestedMessage,
		},
	})
}

// VerifyPasswordReset handles POST /api/auth/forgot-password/verify - checks a
// code without consuming it
func VerifyPasswordReset(c *gin.Context) {
	var req VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	user, ok := userForReset(c, req.Email)
	if !ok {
		return
	}

	if err := services.VerifyResetOTP(user, req.OTP, time.Now()); err != nil {
		recordFailedAttempt(user, err)
		respondOTPError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"verified": true,
		},
	})
}

// ResetPassword handles POST /api/auth/forgot-password/reset - replaces the
// password and clears the code
func ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	user, ok := userForReset(c, req.Email)
	if !ok {
		return
	}

	if err := services.CompleteReset(config.GetDB(), user, req.OTP, req.NewPassword); err != nil {
		if errors.Is(err, services.ErrInvalidOTP) || errors.Is(err, services.ErrOTPExpired) {
			recordFailedAttempt(user, err)
			respondOTPError(c, err)
			return
		}
		respondDatabaseError(c, "Failed to reset password", err)
		return
	}

	// The reset has already been committed; a failed notification only gets logged.
	if err := services.SendPasswordChanged(c.Request.Context(), services.GetMailer(), user.Email, user.Name); err != nil {
		logger.L().Warnw("failed to send password changed notice", "user_id", user.ID, "error", err)
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"message": "Password has been reset",
		},
	})
}

func userForReset(c *gin.Context, email string) (*models.User, bool) {
	var user models.User
	if err := config.GetDB().Where("email = ?", normalizeEmail(email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondOTPError(c, services.ErrInvalidOTP)
			return nil, false
		}
		respondDatabaseError(c, "Failed to load user", err)
		return nil, false
	}
	return &user, true
}

// recordFailedAttempt counts a wrong code against the user's pending reset
func recordFailedAttempt(user *models.User, err error) {
	if !errors.Is(err, services.ErrInvalidOTP) {
		return
	}
	discarded, rerr := services.RecordFailedAttempt(config.GetDB(), user)
	if rerr != nil {
		logger.L().Warnw("failed to record reset attempt", "user_id", user.ID, "error", rerr)
		return
	}
	if discarded {
		logger.L().Warnw("reset code discarded after repeated wrong guesses", "user_id", user.ID)
	}
}

func respondOTPError(c *gin.Context, err error) {
	if errors.Is(err, services.ErrOTPExpired) {
		respondError(c, http.StatusBadRequest, "OTP_EXPIRED", "The reset code has expired, request a new one")
		return
	}
	respondError(c, http.StatusBadRequest, "INVALID_OTP", "The reset code is invalid")
}
