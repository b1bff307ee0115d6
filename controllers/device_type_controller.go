package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sparesx/sparesx-api/config"
	"github.com/sparesx/sparesx-api/models"
	"github.com/sparesx/sparesx-api/utils"
	"gorm.io/gorm"
)

// DeviceTypeRequest represents the request body for creating a device type
type DeviceTypeRequest struct {
	Name        string `json:"name" binding:"required"`
	Emoji       string `json:"emoji"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	IsActive    *bool  `json:"isActive"`
	Order       int    `json:"order"`
}

// UpdateDeviceTypeRequest represents the request body for editing a device type
type UpdateDeviceTypeRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1"`
	Emoji       *string `json:"emoji"`
	Slug        *string `json:"slug"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"isActive"`
	Order       *int    `json:"order"`
}

func deviceTypeConflict(db *gorm.DB, name, slug string, excludeID uint) (bool, error) {
	query := db.Model(&models.DeviceType{}).Where("LOWER(name) = ? OR slug = ?", strings.ToLower(strings.TrimSpace(name)), slug)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}

	var count int64
	err := query.Count(&count).Error
	return count > 0, err
}

func loadDeviceType(c *gin.Context) (*models.DeviceType, bool) {
	id, ok := parseID(c, "id")
	if !ok {
		return nil, false
	}

	var device models.DeviceType
	if err := config.GetDB().First(&device, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "DEVICE_TYPE_NOT_FOUND", "Device type not found")
			return nil, false
		}
		respondDatabaseError(c, "Failed to retrieve device type", err)
		return nil, false
	}
	return &device, true
}

// ListDeviceTypes handles GET /api/admin/device-types - every device type
func ListDeviceTypes(c *gin.Context) {
	var devices []models.DeviceType
	if err := config.GetDB().Order("sort_order ASC").Order("name ASC").Find(&devices).Error; err != nil {
		respondDatabaseError(c, "Failed to retrieve device types", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    devices,
	})
}

// GetDeviceType handles GET /api/admin/device-types/:id
func GetDeviceType(c *gin.Context) {
	device, ok := loadDeviceType(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    device,
	})
}

// CreateDeviceType handles POST /api/admin/device-types
func CreateDeviceType(c *gin.Context) {
	var req DeviceTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	slugSource := req.Slug
	if strings.TrimSpace(slugSource) == "" {
		slugSource = req.Name
	}
	slug := utils.Slugify(slugSource)
	if slug == "" {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Device type name must contain letters or digits")
		return
	}

	db := config.GetDB()
	conflict, err := deviceTypeConflict(db, req.Name, slug, 0)
	if err != nil {
		respondDatabaseError(c, "Failed to check device type", err)
		return
	}
	if conflict {
		respondError(c, http.StatusConflict, "DEVICE_TYPE_EXISTS", "A device type with this name or slug already exists")
		return
	}

	device := models.DeviceType{
		Name:        strings.TrimSpace(req.Name),
		Emoji:       req.Emoji,
		Slug:        slug,
		Description: req.Description,
		Order:       req.Order,
	}

	if err := db.Create(&device).Error; err != nil {
		if isDuplicateError(err) {
			respondError(c, http.StatusConflict, "DEVICE_TYPE_EXISTS", "A device type with this name or slug already exists")
			return
		}
		respondDatabaseError(c, "Failed to create device type", err)
		return
	}
	if err := storeInactive(db, &device, req.IsActive); err != nil {
		respondDatabaseError(c, "Failed to create device type", err)
		return
	}
	device.IsActive = req.IsActive == nil || *req.IsActive

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    device,
	})
}

// UpdateDeviceType handles PUT /api/admin/device-types/:id
func UpdateDeviceType(c *gin.Context) {
	device, ok := loadDeviceType(c)
	if !ok {
		return
	}

	var req UpdateDeviceTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	if req.Name != nil {
		device.Name = strings.TrimSpace(*req.Name)
	}
	if req.Slug != nil {
		slug := utils.Slugify(*req.Slug)
		if slug == "" {
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Slug must contain letters or digits")
			return
		}
		device.Slug = slug
	}
	if req.Emoji != nil {
		device.Emoji = *req.Emoji
	}
	if req.Description != nil {
		device.Description = *req.Description
	}
	if req.IsActive != nil {
		device.IsActive = *req.IsActive
	}
	if req.Order != nil {
		device.Order = *req.Order
	}

	db := config.GetDB()
	conflict, err := deviceTypeConflict(db, device.Name, device.Slug, device.ID)
	if err != nil {
		respondDatabaseError(c, "Failed to check device type", err)
		return
	}
	if conflict {
		respondError(c, http.StatusConflict, "DEVICE_TYPE_EXISTS", "A device type with this name or slug already exists")
		return
	}

	if err := db.Save(device).Error; err != nil {
		if isDuplicateError(err) {
			respondError(c, http.StatusConflict, "DEVICE_TYPE_EXISTS", "A device type with this name or slug already exists")
			return
		}
		respondDatabaseError(c, "Failed to update device type", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    device,
	})
}

// DeleteDeviceType handles DELETE /api/admin/device-types/:id. Device types
// that still own part categories are refused.
func DeleteDeviceType(c *gin.Context) {
	device, ok := loadDeviceType(c)
	if !ok {
		return
	}

	db := config.GetDB()
	var inUse int64
	if err := db.Model(&models.Category{}).Where("device_id = ?", device.ID).Count(&inUse).Error; err != nil {
		respondDatabaseError(c, "Failed to check device type usage", err)
		return
	}
	if inUse > 0 {
		respondError(c, http.StatusConflict, "DEVICE_TYPE_IN_USE", "Device type still has part categories")
		return
	}

	if err := db.Delete(device).Error; err != nil {
		respondDatabaseError(c, "Failed to delete device type", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"message": "Device type deleted",
			"id":      device.ID,
		},
	})
}

// ListActiveDeviceTypes handles GET /api/device-types
func ListActiveDeviceTypes(c *gin.Context) {
	var devices []models.DeviceType
	if err := config.GetDB().Where("is_active = ?", true).Order("sort_order ASC").Order("name ASC").Find(&devices).Error; err != nil {
		respondDatabaseError(c, "Failed to retrieve device types", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    devices,
	})
}

// ListDeviceTypeCategories handles GET /api/device-types/:slug/categories -
// the active global categories plus those scoped to the device type
func ListDeviceTypeCategories(c *gin.Context) {
	db := config.GetDB()

	var device models.DeviceType
	if err := db.Where("slug = ? AND is_active = ?", c.Param("slug"), true).First(&device).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "DEVICE_TYPE_NOT_FOUND", "Device type not found")
			return
		}
		respondDatabaseError(c, "Failed to retrieve device type", err)
		return
	}

	var categories []models.Category
	err := db.Where("is_active = ?", true).
		Where(db.Where("device_id IS NULL").Or("device_id = ?", device.ID)).
		Order("sort_order ASC").Order("name ASC").
		Find(&categories).Error
	if err != nil {
		respondDatabaseError(c, "Failed to retrieve categories", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"deviceType": device,
			"categories": categories,
		},
	})
}
