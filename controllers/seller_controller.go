package controllers

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sparesx/sparesx-api/config"
	"github.com/sparesx/sparesx-api/models"
	"github.com/sparesx/sparesx-api/utils"
)

// SellerSummary is the public view of a technician
type SellerSummary struct {
	ID             uint      `json:"id"`
	Name           string    `json:"name"`
	City           string    `json:"city"`
	State          string    `json:"state"`
	Mobile         string    `json:"mobile"`
	WhatsApp       string    `gorm:"column:whatsapp" json:"whatsapp"`
	ProfilePicture *string   `json:"profilePicture,omitempty"`
	ProductCount   int64     `json:"productCount"`
	CreatedAt      time.Time `json:"createdAt"`
}

// ListSellers handles GET /api/sellers - unblocked technicians with their
// approved listing counts
func ListSellers(c *gin.Context) {
	db := config.GetDB()

	base := db.Model(&models.User{}).Where("users.role = ? AND users.is_blocked = ?", models.RoleTechnician, false)
	if city := strings.TrimSpace(c.Query("city")); city != "" {
		base = base.Where("LOWER(users.city) = ?", strings.ToLower(city))
	}

	p := utils.ParsePagination(c.Query("page"), c.Query("limit"))

	var total int64
	if err := base.Count(&total).Error; err != nil {
		respondDatabaseError(c, "Failed to count sellers", err)
		return
	}

	sellers := []SellerSummary{}
	err := base.
		Select("users.id, users.name, users.city, users.state, users.mobile, users.whatsapp, users.profile_picture, users.created_at, COUNT(products.id) AS product_count").
		Joins("LEFT JOIN products ON products.technician_id = users.id AND products.status = ?", models.ProductStatusApproved).
		Group("users.id").
		Order("product_count DESC").Order("users.id ASC").
		Offset(p.Offset()).Limit(p.Limit).
		Scan(&sellers).Error
	if err != nil {
		respondDatabaseError(c, "Failed to retrieve sellers", err)
		return
	}

	paginated(c, "sellers", sellers, total, p)
}
