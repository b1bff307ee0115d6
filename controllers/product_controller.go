package controllers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sparesx/sparesx-api/config"
	"github.com/sparesx/sparesx-api/logger"
	"github.com/sparesx/sparesx-api/middleware"
	"github.com/sparesx/sparesx-api/models"
	"github.com/sparesx/sparesx-api/services"
	"github.com/sparesx/sparesx-api/utils"
	"gorm.io/gorm"
)

// CreateProductRequest represents the request body for creating a listing
type CreateProductRequest struct {
	Name           string   `json:"name" binding:"required"`
	Description    string   `json:"description"`
	Price          *float64 `json:"price" binding:"required,gte=0"`
	DeviceCategory string   `json:"deviceCategory" binding:"required,oneof=mobile laptop desktop"`
	Brand          string   `json:"brand" binding:"required"`
	DeviceModel    string   `json:"deviceModel" binding:"required"`
	ModelNumber    *string  `json:"modelNumber"`
	PartType       string   `json:"partType" binding:"required,oneof=display battery charging-port camera speaker microphone back-panel motherboard keyboard touchpad hinge cooling-fan power-supply ram storage other"`
	Category       string   `json:"category"`
	Condition      string   `json:"condition" binding:"omitempty,oneof=new used"`
	Images         []string `json:"images"`
	Slug           *string  `json:"slug"`
	Tags           []string `json:"tags"`
}

// UpdateProductRequest represents the request body for editing a listing.
// Owner and status cannot be changed through it.
type UpdateProductRequest struct {
	Name           *string   `json:"name" binding:"omitempty,min=1"`
	Description    *string   `json:"description"`
	Price          *float64  `json:"price" binding:"omitempty,gte=0"`
	DeviceCategory *string   `json:"deviceCategory" binding:"omitempty,oneof=mobile laptop desktop"`
	Brand          *string   `json:"brand" binding:"omitempty,min=1"`
	DeviceModel    *string   `json:"deviceModel" binding:"omitempty,min=1"`
	ModelNumber    *string   `json:"modelNumber"`
	PartType       *string   `json:"partType" binding:"omitempty,oneof=display battery charging-port camera speaker microphone back-panel motherboard keyboard touchpad hinge cooling-fan power-supply ram storage other"`
	Category       *string   `json:"category"`
	Condition      *string   `json:"condition" binding:"omitempty,oneof=new used"`
	Images         *[]string `json:"images"`
	Slug           *string   `json:"slug"`
	Tags           *[]string `json:"tags"`
}

// technicianPublicFields are the owner columns shown alongside a listing
func technicianPublicFields(db *gorm.DB) *gorm.DB {
	return db.Select("id", "name", "mobile", "country_code", "whatsapp", "city", "state", "profile_picture")
}

func normalizeProductSlug(raw *string) *string {
	if raw == nil {
		return nil
	}
	s := utils.Slugify(*raw)
	if s == "" {
		return nil
	}
	return &s
}

// CreateProduct handles POST /api/products and POST /api/technician/products.
// Listings are approved on creation.
func CreateProduct(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	if !user.IsTechnician() {
		respondError(c, http.StatusForbidden, "FORBIDDEN", "Only technicians can create listings")
		return
	}
	if user.IsBlocked {
		respondError(c, http.StatusForbidden, "ACCOUNT_BLOCKED", "This account has been blocked")
		return
	}

	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	condition := req.Condition
	if condition == "" {
		condition = models.ConditionNew
	}
	images := req.Images
	if images == nil {
		images = []string{}
	}

	product := models.Product{
		Name:           strings.TrimSpace(req.Name),
		Description:    req.Description,
		Price:          *req.Price,
		DeviceCategory: req.DeviceCategory,
		Brand:          strings.TrimSpace(req.Brand),
		DeviceModel:    strings.TrimSpace(req.DeviceModel),
		ModelNumber:    req.ModelNumber,
		PartType:       req.PartType,
		Category:       req.Category,
		Condition:      condition,
		Images:         images,
		Status:         models.ProductStatusApproved,
		TechnicianID:   user.ID,
		Slug:           normalizeProductSlug(req.Slug),
		Tags:           req.Tags,
	}

	db := config.GetDB()
	if err := db.Create(&product).Error; err != nil {
		if isDuplicateError(err) {
			respondError(c, http.StatusConflict, "PRODUCT_SLUG_EXISTS", "A product with this slug already exists")
			return
		}
		respondDatabaseError(c, "Failed to create product", err)
		return
	}

	logger.L().Infow("product created", "product_id", product.ID, "technician_id", user.ID)

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    product,
	})
}

// ListProducts handles GET /api/products - public listing of approved products
func ListProducts(c *gin.Context) {
	query := config.GetDB().Model(&models.Product{}).Where("status = ?", models.ProductStatusApproved)

	query, ok := applyProductFilters(c, query)
	if !ok {
		return
	}

	p := utils.ParsePagination(c.Query("page"), c.Query("limit"))

	var total int64
	if err := query.Count(&total).Error; err != nil {
		respondDatabaseError(c, "Failed to count products", err)
		return
	}

	var products []models.Product
	err := query.Preload("Technician", technicianPublicFields).
		Order("created_at DESC").Order("id DESC").
		Offset(p.Offset()).Limit(p.Limit).
		Find(&products).Error
	if err != nil {
		respondDatabaseError(c, "Failed to retrieve products", err)
		return
	}

	paginated(c, "products", products, total, p)
}

// applyProductFilters adds the conjunctive listing filters from the query string
func applyProductFilters(c *gin.Context, query *gorm.DB) (*gorm.DB, bool) {
	if brand := strings.TrimSpace(c.Query("brand")); brand != "" {
		query = query.Where("LOWER(brand) = ?", strings.ToLower(brand))
	}
	if partType := c.Query("partType"); partType != "" {
		query = query.Where("part_type = ?", partType)
	}
	if condition := c.Query("condition"); condition != "" {
		query = query.Where("condition = ?", condition)
	}
	if deviceCategory := c.Query("deviceCategory"); deviceCategory != "" {
		query = query.Where("device_category = ?", deviceCategory)
	}
	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}

	for param, clause := range map[string]string{"minPrice": "price >= ?", "maxPrice": "price <= ?"} {
		raw := c.Query(param)
		if raw == "" {
			continue
		}
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", param+" must be a number")
			return nil, false
		}
		query = query.Where(clause, value)
	}

	return query, true
}

// GetProduct handles GET /api/products/:id. Products that are not approved are
// only visible to their owner.
func GetProduct(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var product models.Product
	err := config.GetDB().Preload("Technician", technicianPublicFields).First(&product, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "PRODUCT_NOT_FOUND", "Product not found")
			return
		}
		respondDatabaseError(c, "Failed to retrieve product", err)
		return
	}

	if !product.IsVisibleTo(middleware.OptionalUserID(c)) {
		respondError(c, http.StatusNotFound, "PRODUCT_NOT_FOUND", "Product not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    product,
	})
}

// ListMyProducts handles GET /api/technician/products - the caller's listings in any status
func ListMyProducts(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return
	}

	query := config.GetDB().Model(&models.Product{}).Where("technician_id = ?", userID)
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	p := utils.ParsePagination(c.Query("page"), c.Query("limit"))

	var total int64
	if err := query.Count(&total).Error; err != nil {
		respondDatabaseError(c, "Failed to count products", err)
		return
	}

	var products []models.Product
	if err := query.Order("created_at DESC").Order("id DESC").Offset(p.Offset()).Limit(p.Limit).Find(&products).Error; err != nil {
		respondDatabaseError(c, "Failed to retrieve products", err)
		return
	}

	paginated(c, "products", products, total, p)
}

// loadOwnedProduct fetches a product and checks that the caller owns it
func loadOwnedProduct(c *gin.Context) (*models.Product, bool) {
	id, ok := parseID(c, "id")
	if !ok {
		return nil, false
	}

	userID, err := middleware.GetUserID(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return nil, false
	}

	var product models.Product
	if err := config.GetDB().First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "PRODUCT_NOT_FOUND", "Product not found")
			return nil, false
		}
		respondDatabaseError(c, "Failed to retrieve product", err)
		return nil, false
	}

	if product.TechnicianID != userID {
		respondError(c, http.StatusForbidden, "FORBIDDEN", "You can only manage your own listings")
		return nil, false
	}

	return &product, true
}

// UpdateMyProduct handles PUT /api/technician/products/edit/:id
func UpdateMyProduct(c *gin.Context) {
	product, ok := loadOwnedProduct(c)
	if !ok {
		return
	}

	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	if req.Name != nil {
		product.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.DeviceCategory != nil {
		product.DeviceCategory = *req.DeviceCategory
	}
	if req.Brand != nil {
		product.Brand = strings.TrimSpace(*req.Brand)
	}
	if req.DeviceModel != nil {
		product.DeviceModel = strings.TrimSpace(*req.DeviceModel)
	}
	if req.ModelNumber != nil {
		product.ModelNumber = req.ModelNumber
	}
	if req.PartType != nil {
		product.PartType = *req.PartType
	}
	if req.Category != nil {
		product.Category = *req.Category
	}
	if req.Condition != nil {
		product.Condition = *req.Condition
	}
	if req.Images != nil {
		product.Images = *req.Images
	}
	if req.Slug != nil {
		product.Slug = normalizeProductSlug(req.Slug)
	}
	if req.Tags != nil {
		product.Tags = *req.Tags
	}

	if err := config.GetDB().Save(product).Error; err != nil {
		if isDuplicateError(err) {
			respondError(c, http.StatusConflict, "PRODUCT_SLUG_EXISTS", "A product with this slug already exists")
			return
		}
		respondDatabaseError(c, "Failed to update product", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    product,
	})
}

// DeleteMyProduct handles DELETE /api/technician/products/delete/:id
func DeleteMyProduct(c *gin.Context) {
	product, ok := loadOwnedProduct(c)
	if !ok {
		return
	}

	if err := config.GetDB().Delete(product).Error; err != nil {
		respondDatabaseError(c, "Failed to delete product", err)
		return
	}

	releaseProductImages(c.Request.Context(), config.GetDB(), product.Images)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"message": "Product deleted",
			"id":      product.ID,
		},
	})
}

// releaseProductImages removes stored images after their listings are gone.
// URLs the image service did not issue, and URLs another listing still
// references, are left alone. Failures are logged; the delete has already
// succeeded.
func releaseProductImages(ctx context.Context, db *gorm.DB, images []string) {
	imageService := services.GetImageService()
	if imageService == nil {
		return
	}

	seen := make(map[string]bool, len(images))
	for _, url := range images {
		if seen[url] {
			continue
		}
		seen[url] = true

		if !imageService.Owns(url) {
			logger.L().Debugw("skipping foreign product image", "url", url)
			continue
		}

		var refs int64
		if err := db.Model(&models.Product{}).Where("images LIKE ?", "%"+strconv.Quote(url)+"%").Count(&refs).Error; err != nil {
			logger.L().Warnw("failed to check product image references", "url", url, "error", err)
			continue
		}
		if refs > 0 {
			continue
		}

		if err := imageService.DeleteImage(ctx, url); err != nil {
			logger.L().Warnw("failed to delete product image", "url", url, "error", err)
		}
	}
}
