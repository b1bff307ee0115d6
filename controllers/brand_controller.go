package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sparesx/sparesx-api/config"
	"github.com/sparesx/sparesx-api/logger"
	"github.com/sparesx/sparesx-api/models"
	"github.com/sparesx/sparesx-api/utils"
	"gorm.io/gorm"
)

// BrandRequest represents one brand in a create or bulk create body
type BrandRequest struct {
	Name     string              `json:"name" binding:"required"`
	Slug     string              `json:"slug"`
	Logo     *string             `json:"logo"`
	Models   []models.BrandModel `json:"models" binding:"omitempty,dive"`
	IsActive *bool               `json:"isActive"`
}

// BulkBrandRequest represents the request body for bulk brand creation
type BulkBrandRequest struct {
	Brands []BrandRequest `json:"brands" binding:"required,min=1,dive"`
}

// UpdateBrandRequest represents the request body for editing a brand. The slug
// is immutable.
type UpdateBrandRequest struct {
	Name     *string              `json:"name" binding:"omitempty,min=1"`
	Logo     *string              `json:"logo"`
	Models   *[]models.BrandModel `json:"models" binding:"omitempty,dive"`
	IsActive *bool                `json:"isActive"`
}

func (r BrandRequest) toBrand(category string) (models.CategoryBrand, bool) {
	slugSource := r.Slug
	if strings.TrimSpace(slugSource) == "" {
		slugSource = r.Name
	}
	brandModels := trimModelNames(r.Models)

	brand := models.CategoryBrand{
		Category: category,
		Name:     strings.TrimSpace(r.Name),
		Slug:     utils.Slugify(slugSource),
		Logo:     r.Logo,
		Models:   brandModels,
		IsActive: true,
	}
	return brand, brand.Slug != ""
}

func trimModelNames(in []models.BrandModel) []models.BrandModel {
	out := make([]models.BrandModel, len(in))
	for i, m := range in {
		m.Name = strings.TrimSpace(m.Name)
		out[i] = m
	}
	return out
}

// deviceCategoryParam validates the :category path parameter
func deviceCategoryParam(c *gin.Context) (string, bool) {
	category := strings.ToLower(c.Param("category"))
	if !models.IsValidDeviceCategory(category) {
		respondError(c, http.StatusBadRequest, "INVALID_CATEGORY", "Category must be one of: mobile, laptop, desktop")
		return "", false
	}
	return category, true
}

func findBrand(c *gin.Context, category string, activeOnly bool) (*models.CategoryBrand, bool) {
	query := config.GetDB().Where("category = ? AND slug = ?", category, strings.ToLower(c.Param("slug")))
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var brand models.CategoryBrand
	if err := query.First(&brand).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "BRAND_NOT_FOUND", "Brand not found")
			return nil, false
		}
		respondDatabaseError(c, "Failed to retrieve brand", err)
		return nil, false
	}
	return &brand, true
}

func listBrands(c *gin.Context, category string, activeOnly bool) {
	query := config.GetDB().Where("category = ?", category)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var brands []models.CategoryBrand
	if err := query.Order("name ASC").Find(&brands).Error; err != nil {
		respondDatabaseError(c, "Failed to retrieve brands", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    brands,
	})
}

func searchBrandModels(c *gin.Context, category string) {
	brand, ok := findBrand(c, category, true)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"brand":  brand.Name,
			"slug":   brand.Slug,
			"models": brand.SearchModels(c.Query("search")),
		},
	})
}

// ListBrands handles GET /api/admin/device-categories/:category/brands
func ListBrands(c *gin.Context) {
	category, ok := deviceCategoryParam(c)
	if !ok {
		return
	}
	listBrands(c, category, false)
}

// GetBrand handles GET /api/admin/device-categories/:category/brands/:slug
func GetBrand(c *gin.Context) {
	category, ok := deviceCategoryParam(c)
	if !ok {
		return
	}
	brand, ok := findBrand(c, category, false)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    brand,
	})
}

// CreateBrand handles POST /api/admin/device-categories/:category/brands
func CreateBrand(c *gin.Context) {
	category, ok := deviceCategoryParam(c)
	if !ok {
		return
	}

	var req BrandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	brand, ok := req.toBrand(category)
	if !ok {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Brand name must contain letters or digits")
		return
	}

	db := config.GetDB()
	if err := db.Create(&brand).Error; err != nil {
		if isDuplicateError(err) {
			respondError(c, http.StatusConflict, "BRAND_EXISTS", "A brand with this slug already exists in this category")
			return
		}
		respondDatabaseError(c, "Failed to create brand", err)
		return
	}
	if err := storeInactive(db, &brand, req.IsActive); err != nil {
		respondDatabaseError(c, "Failed to create brand", err)
		return
	}
	brand.IsActive = req.IsActive == nil || *req.IsActive

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    brand,
	})
}

// BulkCreateBrands handles POST /api/admin/device-categories/:category/brands/bulk.
// Every brand is inserted in one transaction; any duplicate rejects the batch with 409.
func BulkCreateBrands(c *gin.Context) {
	category, ok := deviceCategoryParam(c)
	if !ok {
		return
	}

	var req BulkBrandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	brands := make([]models.CategoryBrand, 0, len(req.Brands))
	for _, r := range req.Brands {
		brand, ok := r.toBrand(category)
		if !ok {
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Brand name must contain letters or digits")
			return
		}
		brands = append(brands, brand)
	}

	err := config.GetDB().Transaction(func(tx *gorm.DB) error {
		for i := range brands {
			if err := tx.Create(&brands[i]).Error; err != nil {
				return err
			}
			if err := storeInactive(tx, &brands[i], req.Brands[i].IsActive); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if isDuplicateError(err) {
			respondError(c, http.StatusConflict, "BRAND_EXISTS", "One or more brands already exist in this category")
			return
		}
		respondDatabaseError(c, "Failed to create brands", err)
		return
	}

	logger.L().Infow("brands created in bulk", "category", category, "count", len(brands))

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data": gin.H{
			"created": len(brands),
			"total":   len(req.Brands),
		},
	})
}

// UpdateBrand handles PUT /api/admin/device-categories/:category/brands/:slug
func UpdateBrand(c *gin.Context) {
	category, ok := deviceCategoryParam(c)
	if !ok {
		return
	}
	brand, ok := findBrand(c, category, false)
	if !ok {
		return
	}

	var req UpdateBrandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	if req.Name != nil {
		brand.Name = strings.TrimSpace(*req.Name)
	}
	if req.Logo != nil {
		brand.Logo = req.Logo
	}
	if req.Models != nil {
		brand.Models = trimModelNames(*req.Models)
	}
	if req.IsActive != nil {
		brand.IsActive = *req.IsActive
	}

	if err := config.GetDB().Save(brand).Error; err != nil {
		respondDatabaseError(c, "Failed to update brand", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    brand,
	})
}

// DeleteBrand handles DELETE /api/admin/device-categories/:category/brands/:slug
func DeleteBrand(c *gin.Context) {
	category, ok := deviceCategoryParam(c)
	if !ok {
		return
	}
	brand, ok := findBrand(c, category, false)
	if !ok {
		return
	}

	if err := config.GetDB().Delete(brand).Error; err != nil {
		respondDatabaseError(c, "Failed to delete brand", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"message": "Brand deleted",
			"slug":    brand.Slug,
		},
	})
}

// AddBrandModel handles POST /api/admin/device-categories/:category/brands/:slug/models
func AddBrandModel(c *gin.Context) {
	category, ok := deviceCategoryParam(c)
	if !ok {
		return
	}
	brand, ok := findBrand(c, category, false)
	if !ok {
		return
	}

	var model models.BrandModel
	if err := c.ShouldBindJSON(&model); err != nil {
		respondValidationError(c, err)
		return
	}
	model.Name = strings.TrimSpace(model.Name)

	if brand.HasModel(model.Name) {
		respondError(c, http.StatusConflict, "MODEL_EXISTS", "This brand already has a model with this name")
		return
	}

	brand.Models = append(brand.Models, model)
	if err := config.GetDB().Save(brand).Error; err != nil {
		respondDatabaseError(c, "Failed to add model", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    brand,
	})
}

// RemoveBrandModel handles DELETE /api/admin/device-categories/:category/brands/:slug/models/:model
func RemoveBrandModel(c *gin.Context) {
	category, ok := deviceCategoryParam(c)
	if !ok {
		return
	}
	brand, ok := findBrand(c, category, false)
	if !ok {
		return
	}

	if !brand.RemoveModel(c.Param("model")) {
		respondError(c, http.StatusNotFound, "MODEL_NOT_FOUND", "Model not found")
		return
	}

	if err := config.GetDB().Save(brand).Error; err != nil {
		respondDatabaseError(c, "Failed to remove model", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    brand,
	})
}

// ListPublicBrands handles GET /api/categories/:category/brands - active brands only
func ListPublicBrands(c *gin.Context) {
	category, ok := deviceCategoryParam(c)
	if !ok {
		return
	}
	listBrands(c, category, true)
}

// SearchBrandModels handles GET /api/categories/:category/brands/:slug/models?search=
func SearchBrandModels(c *gin.Context) {
	category, ok := deviceCategoryParam(c)
	if !ok {
		return
	}
	searchBrandModels(c, category)
}

// ListLegacyBrands handles GET /api/brands - the mobile brand catalog
func ListLegacyBrands(c *gin.Context) {
	listBrands(c, models.DeviceCategoryMobile, true)
}

// SearchLegacyBrandModels handles GET /api/brands/:slug/models
func SearchLegacyBrandModels(c *gin.Context) {
	searchBrandModels(c, models.DeviceCategoryMobile)
}
