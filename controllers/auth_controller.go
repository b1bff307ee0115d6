package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sparesx/sparesx-api/config"
	"github.com/sparesx/sparesx-api/logger"
	"github.com/sparesx/sparesx-api/models"
	"github.com/sparesx/sparesx-api/services"
	"github.com/sparesx/sparesx-api/utils"
	"gorm.io/gorm"
)

// RegisterRequest represents the request body for technician registration.
// A role sent by the client is ignored.
type RegisterRequest struct {
	Name        string `json:"name" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=6"`
	Mobile      string `json:"mobile" binding:"required,mobile"`
	CountryCode string `json:"countryCode"`
	Address     string `json:"address" binding:"required"`
	PinCode     string `json:"pinCode" binding:"required,pincode"`
	City        string `json:"city" binding:"required"`
	State       string `json:"state" binding:"required"`
	WhatsApp    string `json:"whatsapp" binding:"omitempty,mobile"`
}

// LoginRequest represents the request body for login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register handles POST /api/auth/register - creates a technician account
func Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	db := config.GetDB()
	email := normalizeEmail(req.Email)

	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		respondDatabaseError(c, "Failed to check existing user", err)
		return
	}
	if count > 0 {
		respondError(c, http.StatusConflict, "USER_EXISTS", "An account with this email already exists")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		logger.L().Errorw("failed to hash password", "error", err)
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create account")
		return
	}

	countryCode := req.CountryCode
	if countryCode == "" {
		countryCode = "+91"
	}

	user := models.User{
		Name:        strings.TrimSpace(req.Name),
		Email:       email,
		Password:    hash,
		Role:        models.RoleTechnician,
		Mobile:      req.Mobile,
		CountryCode: countryCode,
		Address:     req.Address,
		PinCode:     req.PinCode,
		City:        req.City,
		State:       req.State,
		WhatsApp:    req.WhatsApp,
	}

	if err := db.Create(&user).Error; err != nil {
		if isDuplicateError(err) {
			respondError(c, http.StatusConflict, "USER_EXISTS", "An account with this email already exists")
			return
		}
		respondDatabaseError(c, "Failed to create account", err)
		return
	}

	logger.L().Infow("technician registered", "user_id", user.ID)

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    user,
	})
}

// Login handles POST /api/auth/login - exchanges credentials for an access token
func Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	db := config.GetDB()
	var user models.User
	if err := db.Where("email = ?", normalizeEmail(req.Email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
			return
		}
		respondDatabaseError(c, "Failed to load user", err)
		return
	}

	if err := utils.CheckPassword(user.Password, req.Password); err != nil {
		respondError(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
		return
	}

	if user.IsBlocked {
		respondError(c, http.StatusUnauthorized, "ACCOUNT_BLOCKED", "This account has been blocked")
		return
	}

	token, expiresAt, err := services.NewTokenService(config.GetConfig()).Issue(user.ID, user.Role)
	if err != nil {
		logger.L().Errorw("failed to issue token", "user_id", user.ID, "error", err)
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to issue token")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"token":     token,
			"expiresAt": expiresAt,
			"user":      user,
		},
	})
}

// GetMe handles GET /api/auth/me - returns the caller's own profile
func GetMe(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    user,
	})
}
