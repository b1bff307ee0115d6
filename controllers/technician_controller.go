package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sparesx/sparesx-api/config"
)

// UpdateProfileRequest represents the self-service profile update. Only name
// and email can be changed this way.
type UpdateProfileRequest struct {
	Name  *string `json:"name" binding:"omitempty,min=1"`
	Email *string `json:"email" binding:"omitempty,email"`
}

// GetTechnicianProfile handles GET /api/technician/profile
func GetTechnicianProfile(c *gin.Context) {
	GetMe(c)
}

// UpdateTechnicianProfile handles PUT /api/technician/profile
func UpdateTechnicianProfile(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		updates["email"] = normalizeEmail(*req.Email)
	}

	if len(updates) == 0 {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Nothing to update")
		return
	}

	db := config.GetDB()
	if err := db.Model(user).Updates(updates).Error; err != nil {
		if isDuplicateError(err) {
			respondError(c, http.StatusConflict, "USER_EXISTS", "An account with this email already exists")
			return
		}
		respondDatabaseError(c, "Failed to update profile", err)
		return
	}

	if err := db.First(user, user.ID).Error; err != nil {
		respondDatabaseError(c, "Failed to load profile", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    user,
	})
}
