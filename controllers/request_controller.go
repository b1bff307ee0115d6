package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sparesx/sparesx-api/config"
	"github.com/sparesx/sparesx-api/logger"
	"github.com/sparesx/sparesx-api/models"
)

// CreatePartRequestRequest represents the request body a buyer submits
type CreatePartRequestRequest struct {
	Name           string `json:"name" binding:"required"`
	Mobile         string `json:"mobile" binding:"required,mobile"`
	Email          string `json:"email" binding:"omitempty,email"`
	DeviceCategory string `json:"deviceCategory" binding:"omitempty,oneof=mobile laptop desktop"`
	Brand          string `json:"brand"`
	DeviceModel    string `json:"deviceModel"`
	PartType       string `json:"partType" binding:"omitempty,oneof=display battery charging-port camera speaker microphone back-panel motherboard keyboard touchpad hinge cooling-fan power-supply ram storage other"`
	Description    string `json:"description" binding:"required"`
	City           string `json:"city"`
}

// CreatePartRequest handles POST /api/requests - public part request submission
func CreatePartRequest(c *gin.Context) {
	var req CreatePartRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	partRequest := models.PartRequest{
		Name:           strings.TrimSpace(req.Name),
		Mobile:         req.Mobile,
		Email:          normalizeEmail(req.Email),
		DeviceCategory: req.DeviceCategory,
		Brand:          req.Brand,
		DeviceModel:    req.DeviceModel,
		PartType:       req.PartType,
		Description:    req.Description,
		City:           req.City,
		Status:         models.RequestStatusOpen,
	}

	if err := config.GetDB().Create(&partRequest).Error; err != nil {
		respondDatabaseError(c, "Failed to submit request", err)
		return
	}

	logger.L().Infow("part request submitted", "request_id", partRequest.ID)

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    partRequest,
	})
}
