package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sparesx/sparesx-api/config"
	"github.com/sparesx/sparesx-api/logger"
	"github.com/sparesx/sparesx-api/middleware"
	"github.com/sparesx/sparesx-api/models"
	"github.com/sparesx/sparesx-api/utils"
	"gorm.io/gorm"
)

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

func respondValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "VALIDATION_ERROR",
			"message": "Invalid request data",
			"details": utils.FormatValidationErrors(err),
		},
	})
}

func respondDatabaseError(c *gin.Context, message string, err error) {
	logger.L().Errorw(message, "path", c.Request.URL.Path, "error", err)
	_ = c.Error(err)
	respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", message)
}

// isDuplicateError detects unique constraint violations across the postgres and sqlite drivers
func isDuplicateError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique constraint")
}

// parseID reads a numeric path parameter, answering 400 when it is malformed
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "Invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// currentUser loads the account behind the bearer token. A token whose user
// no longer exists is answered with 404.
func currentUser(c *gin.Context) (*models.User, bool) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return nil, false
	}

	var user models.User
	if err := config.GetDB().First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
			return nil, false
		}
		respondDatabaseError(c, "Failed to load user", err)
		return nil, false
	}

	return &user, true
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// paginated writes a list page in the shape shared by every listing endpoint
func paginated(c *gin.Context, key string, items interface{}, total int64, p utils.Pagination) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			key:          items,
			"total":      total,
			"page":       p.Page,
			"limit":      p.Limit,
			"totalPages": p.TotalPages(total),
		},
	})
}

// storeInactive applies an explicit isActive=false after insert. On create, a
// false bool is replaced by the column default of true.
func storeInactive(db *gorm.DB, model interface{}, isActive *bool) error {
	if isActive == nil || *isActive {
		return nil
	}
	return db.Model(model).Update("is_active", false).Error
}

// includeInactive reports whether a taxonomy listing asked for inactive rows
func includeInactive(c *gin.Context) bool {
	return c.Query("includeInactive") == "true"
}
