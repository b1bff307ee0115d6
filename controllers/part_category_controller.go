package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sparesx/sparesx-api/config"
	"github.com/sparesx/sparesx-api/models"
	"github.com/sparesx/sparesx-api/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PartCategoryRequest represents the request body for creating a device-scoped category
type PartCategoryRequest struct {
	DeviceID    uint   `json:"deviceId" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Order       int    `json:"order"`
}

// ListPartCategories handles GET /api/device-management/part-categories.
// Inactive entries are included only with includeInactive=true.
func ListPartCategories(c *gin.Context) {
	query := config.GetDB().Preload("Device").Where("device_id IS NOT NULL")

	if raw := c.Query("deviceId"); raw != "" {
		deviceID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			respondError(c, http.StatusBadRequest, "INVALID_ID", "Invalid deviceId")
			return
		}
		query = query.Where("device_id = ?", deviceID)
	}
	if !includeInactive(c) {
		query = query.Where("is_active = ?", true)
	}

	var categories []models.Category
	if err := query.Order("sort_order ASC").Order("name ASC").Find(&categories).Error; err != nil {
		respondDatabaseError(c, "Failed to retrieve part categories", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    categories,
	})
}

// GetPartCategory handles GET /api/device-management/part-categories/:id
func GetPartCategory(c *gin.Context) {
	category, ok := loadCategory(c, false)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    category,
	})
}

// CreatePartCategory handles POST /api/device-management/part-categories. The
// slug is namespaced by the device slug and suffixed -1, -2, ... on collision.
func CreatePartCategory(c *gin.Context) {
	var req PartCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	if utils.Slugify(req.Name) == "" {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Category name must contain letters or digits")
		return
	}

	db := config.GetDB()

	var device models.DeviceType
	if err := db.First(&device, req.DeviceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "DEVICE_TYPE_NOT_FOUND", "Device type not found")
			return
		}
		respondDatabaseError(c, "Failed to retrieve device type", err)
		return
	}

	taken, err := categoryNameTaken(db, req.Name, &device.ID, 0)
	if err != nil {
		respondDatabaseError(c, "Failed to check category name", err)
		return
	}
	if taken {
		respondError(c, http.StatusConflict, "CATEGORY_EXISTS", "This device type already has a category with this name")
		return
	}

	slug, err := utils.UniqueSlug(utils.DeviceScopedSlug(device.Slug, req.Name), func(candidate string) (bool, error) {
		return categorySlugTaken(db, candidate, 0)
	})
	if err != nil {
		respondDatabaseError(c, "Failed to generate category slug", err)
		return
	}

	category := models.Category{
		Name:        strings.TrimSpace(req.Name),
		Slug:        slug,
		Description: req.Description,
		Icon:        req.Icon,
		DeviceID:    &device.ID,
		IsActive:    true,
		Order:       req.Order,
	}

	if err := db.Omit(clause.Associations).Create(&category).Error; err != nil {
		if isDuplicateError(err) {
			respondError(c, http.StatusConflict, "CATEGORY_SLUG_EXISTS", "A category with this slug already exists")
			return
		}
		respondDatabaseError(c, "Failed to create part category", err)
		return
	}
	category.Device = &device

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    category,
	})
}

// UpdatePartCategory handles PUT /api/device-management/part-categories/:id.
// The slug stays stable when the name changes.
func UpdatePartCategory(c *gin.Context) {
	category, ok := loadCategory(c, false)
	if !ok {
		return
	}

	var req UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	db := config.GetDB()

	if req.Name != nil {
		taken, err := categoryNameTaken(db, *req.Name, category.DeviceID, category.ID)
		if err != nil {
			respondDatabaseError(c, "Failed to check category name", err)
			return
		}
		if taken {
			respondError(c, http.StatusConflict, "CATEGORY_EXISTS", "This device type already has a category with this name")
			return
		}
		category.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		category.Description = *req.Description
	}
	if req.Icon != nil {
		category.Icon = *req.Icon
	}
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}
	if req.Order != nil {
		category.Order = *req.Order
	}

	if err := db.Omit(clause.Associations).Save(category).Error; err != nil {
		respondDatabaseError(c, "Failed to update part category", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    category,
	})
}

// DeletePartCategory handles DELETE /api/device-management/part-categories/:id.
// Device-scoped categories are deactivated, never removed.
func DeletePartCategory(c *gin.Context) {
	category, ok := loadCategory(c, false)
	if !ok {
		return
	}

	if err := config.GetDB().Model(category).Update("is_active", false).Error; err != nil {
		respondDatabaseError(c, "Failed to deactivate part category", err)
		return
	}
	category.IsActive = false

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    category,
	})
}
