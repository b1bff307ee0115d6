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
	"gorm.io/gorm/clause"
)

// CategoryRequest represents the request body for creating a global category
type CategoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	IsActive    *bool  `json:"isActive"`
	Order       int    `json:"order"`
}

// UpdateCategoryRequest represents the request body for editing a category
type UpdateCategoryRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1"`
	Slug        *string `json:"slug"`
	Description *string `json:"description"`
	Icon        *string `json:"icon"`
	IsActive    *bool   `json:"isActive"`
	Order       *int    `json:"order"`
}

// categoryNameTaken checks case-insensitive name uniqueness within one device
// scope. A nil deviceID is the global scope.
func categoryNameTaken(db *gorm.DB, name string, deviceID *uint, excludeID uint) (bool, error) {
	query := db.Model(&models.Category{}).Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name)))
	if deviceID == nil {
		query = query.Where("device_id IS NULL")
	} else {
		query = query.Where("device_id = ?", *deviceID)
	}
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}

	var count int64
	err := query.Count(&count).Error
	return count > 0, err
}

func categorySlugTaken(db *gorm.DB, slug string, excludeID uint) (bool, error) {
	query := db.Model(&models.Category{}).Where("slug = ?", slug)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}

	var count int64
	err := query.Count(&count).Error
	return count > 0, err
}

// loadCategory fetches a category by :id and enforces which endpoint family
// may manage it
func loadCategory(c *gin.Context, wantGlobal bool) (*models.Category, bool) {
	id, ok := parseID(c, "id")
	if !ok {
		return nil, false
	}

	var category models.Category
	if err := config.GetDB().Preload("Device").First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "CATEGORY_NOT_FOUND", "Category not found")
			return nil, false
		}
		respondDatabaseError(c, "Failed to retrieve category", err)
		return nil, false
	}

	if wantGlobal && !category.IsGlobal() {
		respondError(c, http.StatusBadRequest, "DEVICE_SCOPED_CATEGORY",
			"This category belongs to a device type; manage it through device management")
		return nil, false
	}
	if !wantGlobal && category.IsGlobal() {
		respondError(c, http.StatusBadRequest, "GLOBAL_CATEGORY",
			"This is a global category; manage it through the category endpoints")
		return nil, false
	}

	return &category, true
}

// ListCategories handles GET /api/admin/categories - global categories only.
// Inactive entries are included only with includeInactive=true.
func ListCategories(c *gin.Context) {
	query := config.GetDB().Where("device_id IS NULL")
	if !includeInactive(c) {
		query = query.Where("is_active = ?", true)
	}

	var categories []models.Category
	if err := query.Order("sort_order ASC").Order("name ASC").Find(&categories).Error; err != nil {
		respondDatabaseError(c, "Failed to retrieve categories", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    categories,
	})
}

// GetCategory handles GET /api/admin/categories/:id
func GetCategory(c *gin.Context) {
	category, ok := loadCategory(c, true)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    category,
	})
}

// CreateCategory handles POST /api/admin/categories
func CreateCategory(c *gin.Context) {
	var req CategoryRequest
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
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Category name must contain letters or digits")
		return
	}

	db := config.GetDB()

	taken, err := categorySlugTaken(db, slug, 0)
	if err != nil {
		respondDatabaseError(c, "Failed to check category slug", err)
		return
	}
	if taken {
		respondError(c, http.StatusConflict, "CATEGORY_SLUG_EXISTS", "A category with this slug already exists")
		return
	}

	taken, err = categoryNameTaken(db, req.Name, nil, 0)
	if err != nil {
		respondDatabaseError(c, "Failed to check category name", err)
		return
	}
	if taken {
		respondError(c, http.StatusConflict, "CATEGORY_EXISTS", "A category with this name already exists")
		return
	}

	category := models.Category{
		Name:        strings.TrimSpace(req.Name),
		Slug:        slug,
		Description: req.Description,
		Icon:        req.Icon,
		Order:       req.Order,
	}

	if err := db.Create(&category).Error; err != nil {
		if isDuplicateError(err) {
			respondError(c, http.StatusConflict, "CATEGORY_SLUG_EXISTS", "A category with this slug already exists")
			return
		}
		respondDatabaseError(c, "Failed to create category", err)
		return
	}
	if err := storeInactive(db, &category, req.IsActive); err != nil {
		respondDatabaseError(c, "Failed to create category", err)
		return
	}
	category.IsActive = req.IsActive == nil || *req.IsActive

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    category,
	})
}

// UpdateCategory handles PUT /api/admin/categories/:id
func UpdateCategory(c *gin.Context) {
	category, ok := loadCategory(c, true)
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
		taken, err := categoryNameTaken(db, *req.Name, nil, category.ID)
		if err != nil {
			respondDatabaseError(c, "Failed to check category name", err)
			return
		}
		if taken {
			respondError(c, http.StatusConflict, "CATEGORY_EXISTS", "A category with this name already exists")
			return
		}
		category.Name = strings.TrimSpace(*req.Name)
	}

	if req.Slug != nil {
		slug := utils.Slugify(*req.Slug)
		if slug == "" {
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Slug must contain letters or digits")
			return
		}
		taken, err := categorySlugTaken(db, slug, category.ID)
		if err != nil {
			respondDatabaseError(c, "Failed to check category slug", err)
			return
		}
		if taken {
			respondError(c, http.StatusConflict, "CATEGORY_SLUG_EXISTS", "A category with this slug already exists")
			return
		}
		category.Slug = slug
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
		if isDuplicateError(err) {
			respondError(c, http.StatusConflict, "CATEGORY_SLUG_EXISTS", "A category with this slug already exists")
			return
		}
		respondDatabaseError(c, "Failed to update category", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    category,
	})
}

// DeleteCategory handles DELETE /api/admin/categories/:id - hard delete of a global category
func DeleteCategory(c *gin.Context) {
	category, ok := loadCategory(c, true)
	if !ok {
		return
	}

	if err := config.GetDB().Delete(category).Error; err != nil {
		respondDatabaseError(c, "Failed to delete category", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"message": "Category deleted",
			"id":      category.ID,
		},
	})
}
