package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sparesx/sparesx-api/config"
	"github.com/sparesx/sparesx-api/logger"
	"github.com/sparesx/sparesx-api/models"
	"github.com/sparesx/sparesx-api/utils"
	"gorm.io/gorm"
)

// DashboardStats are the aggregate counts shown on the admin dashboard
type DashboardStats struct {
	TotalUsers         int64 `json:"totalUsers"`
	TotalTechnicians   int64 `json:"totalTechnicians"`
	TotalAdmins        int64 `json:"totalAdmins"`
	BlockedTechnicians int64 `json:"blockedTechnicians"`
	TotalProducts      int64 `json:"totalProducts"`
	PendingProducts    int64 `json:"pendingProducts"`
	ApprovedProducts   int64 `json:"approvedProducts"`
	OpenRequests       int64 `json:"openRequests"`
}

// UpdateProductStatusRequest represents the request body for moderating a listing
type UpdateProductStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending approved rejected"`
}

// UpdateRequestStatusRequest represents the request body for closing out a part request
type UpdateRequestStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=open fulfilled closed"`
}

// GetDashboard handles GET /api/admin/dashboard. Counts are recomputed on every call.
func GetDashboard(c *gin.Context) {
	db := config.GetDB()
	var stats DashboardStats

	counts := []struct {
		dest  *int64
		query *gorm.DB
	}{
		{&stats.TotalUsers, db.Model(&models.User{})},
		{&stats.TotalTechnicians, db.Model(&models.User{}).Where("role = ?", models.RoleTechnician)},
		{&stats.TotalAdmins, db.Model(&models.User{}).Where("role = ?", models.RoleAdmin)},
		{&stats.BlockedTechnicians, db.Model(&models.User{}).Where("role = ? AND is_blocked = ?", models.RoleTechnician, true)},
		{&stats.TotalProducts, db.Model(&models.Product{})},
		{&stats.PendingProducts, db.Model(&models.Product{}).Where("status = ?", models.ProductStatusPending)},
		{&stats.ApprovedProducts, db.Model(&models.Product{}).Where("status = ?", models.ProductStatusApproved)},
		{&stats.OpenRequests, db.Model(&models.PartRequest{}).Where("status = ?", models.RequestStatusOpen)},
	}

	for _, count := range counts {
		if err := count.query.Count(count.dest).Error; err != nil {
			respondDatabaseError(c, "Failed to compute dashboard", err)
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    stats,
	})
}

// ListAdminProducts handles GET /api/admin/products - every listing, optionally by status
func ListAdminProducts(c *gin.Context) {
	query := config.GetDB().Model(&models.Product{})
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if technicianID := c.Query("technicianId"); technicianID != "" {
		query = query.Where("technician_id = ?", technicianID)
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

// UpdateProductStatus handles PATCH /api/admin/products/:id/status
func UpdateProductStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req UpdateProductStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	db := config.GetDB()
	var product models.Product
	if err := db.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "PRODUCT_NOT_FOUND", "Product not found")
			return
		}
		respondDatabaseError(c, "Failed to retrieve product", err)
		return
	}

	if err := db.Model(&product).Update("status", req.Status).Error; err != nil {
		respondDatabaseError(c, "Failed to update product status", err)
		return
	}
	product.Status = req.Status

	logger.L().Infow("product status changed", "product_id", product.ID, "status", req.Status)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    product,
	})
}

// ListRequests handles GET /api/admin/requests
func ListRequests(c *gin.Context) {
	query := config.GetDB().Model(&models.PartRequest{})
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	p := utils.ParsePagination(c.Query("page"), c.Query("limit"))

	var total int64
	if err := query.Count(&total).Error; err != nil {
		respondDatabaseError(c, "Failed to count requests", err)
		return
	}

	var requests []models.PartRequest
	if err := query.Order("created_at DESC").Order("id DESC").Offset(p.Offset()).Limit(p.Limit).Find(&requests).Error; err != nil {
		respondDatabaseError(c, "Failed to retrieve requests", err)
		return
	}

	paginated(c, "requests", requests, total, p)
}

// UpdateRequestStatus handles PATCH /api/admin/requests/:id/status
func UpdateRequestStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req UpdateRequestStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	db := config.GetDB()
	var partRequest models.PartRequest
	if err := db.First(&partRequest, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "REQUEST_NOT_FOUND", "Request not found")
			return
		}
		respondDatabaseError(c, "Failed to retrieve request", err)
		return
	}

	if err := db.Model(&partRequest).Update("status", req.Status).Error; err != nil {
		respondDatabaseError(c, "Failed to update request", err)
		return
	}
	partRequest.Status = req.Status

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    partRequest,
	})
}
