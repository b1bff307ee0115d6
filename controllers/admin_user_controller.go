package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sparesx/sparesx-api/config"
	"github.com/sparesx/sparesx-api/logger"
	"github.com/sparesx/sparesx-api/models"
	"github.com/sparesx/sparesx-api/services"
	"github.com/sparesx/sparesx-api/utils"
	"gorm.io/gorm"
)

// AdminUpdateUserRequest represents an admin edit of an account. Email,
// password and role are not editable here.
type AdminUpdateUserRequest struct {
	Name           *string `json:"name" binding:"omitempty,min=1"`
	Mobile         *string `json:"mobile" binding:"omitempty,mobile"`
	CountryCode    *string `json:"countryCode"`
	Address        *string `json:"address"`
	PinCode        *string `json:"pinCode" binding:"omitempty,pincode"`
	City           *string `json:"city"`
	State          *string `json:"state"`
	WhatsApp       *string `json:"whatsapp" binding:"omitempty,mobile"`
	ProfilePicture *string `json:"profilePicture"`
	IsBlocked      *bool   `json:"isBlocked"`
}

func (r AdminUpdateUserRequest) updates() map[string]interface{} {
	updates := map[string]interface{}{}
	if r.Name != nil {
		updates["name"] = strings.TrimSpace(*r.Name)
	}
	if r.Mobile != nil {
		updates["mobile"] = *r.Mobile
	}
	if r.CountryCode != nil {
		updates["country_code"] = *r.CountryCode
	}
	if r.Address != nil {
		updates["address"] = *r.Address
	}
	if r.PinCode != nil {
		updates["pin_code"] = *r.PinCode
	}
	if r.City != nil {
		updates["city"] = *r.City
	}
	if r.State != nil {
		updates["state"] = *r.State
	}
	if r.WhatsApp != nil {
		updates["whatsapp"] = *r.WhatsApp
	}
	if r.ProfilePicture != nil {
		updates["profile_picture"] = *r.ProfilePicture
	}
	if r.IsBlocked != nil {
		updates["is_blocked"] = *r.IsBlocked
	}
	return updates
}

// deleteUserCascade removes the user's products and then the user in one
// transaction. It returns the number of products removed and their image URLs.
func deleteUserCascade(db *gorm.DB, userID uint) (int64, []string, error) {
	var products []models.Product
	if err := db.Select("id", "images").Where("technician_id = ?", userID).Find(&products).Error; err != nil {
		return 0, nil, fmt.Errorf("failed to load products: %w", err)
	}
	var images []string
	for _, p := range products {
		images = append(images, p.Images...)
	}

	var removed int64
	err := db.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("technician_id = ?", userID).Delete(&models.Product{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete products: %w", result.Error)
		}
		removed = result.RowsAffected

		if err := tx.Delete(&models.User{}, userID).Error; err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, nil, err
	}
	return removed, images, nil
}

// findUser loads a user by the :id path parameter. When role is not empty, a
// user with another role is reported as not found.
func findUser(c *gin.Context, role string) (*models.User, bool) {
	id, ok := parseID(c, "id")
	if !ok {
		return nil, false
	}

	notFoundCode, notFoundMessage := "USER_NOT_FOUND", "User not found"
	if role == models.RoleTechnician {
		notFoundCode, notFoundMessage = "TECHNICIAN_NOT_FOUND", "Technician not found"
	}

	var user models.User
	if err := config.GetDB().First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, notFoundCode, notFoundMessage)
			return nil, false
		}
		respondDatabaseError(c, "Failed to retrieve user", err)
		return nil, false
	}

	if role != "" && user.Role != role {
		respondError(c, http.StatusNotFound, notFoundCode, notFoundMessage)
		return nil, false
	}

	return &user, true
}

func listUsers(c *gin.Context, role string) {
	query := config.GetDB().Model(&models.User{})
	if role != "" {
		query = query.Where("role = ?", role)
	}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR email LIKE ?", like, like)
	}
	if blocked := c.Query("blocked"); blocked != "" {
		query = query.Where("is_blocked = ?", blocked == "true")
	}

	p := utils.ParsePagination(c.Query("page"), c.Query("limit"))

	var total int64
	if err := query.Count(&total).Error; err != nil {
		respondDatabaseError(c, "Failed to count users", err)
		return
	}

	var users []models.User
	if err := query.Order("created_at DESC").Order("id DESC").Offset(p.Offset()).Limit(p.Limit).Find(&users).Error; err != nil {
		respondDatabaseError(c, "Failed to retrieve users", err)
		return
	}

	paginated(c, "users", users, total, p)
}

func updateUser(c *gin.Context, user *models.User) {
	var req AdminUpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	updates := req.updates()
	if len(updates) == 0 {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Nothing to update")
		return
	}

	db := config.GetDB()
	if err := db.Model(user).Updates(updates).Error; err != nil {
		respondDatabaseError(c, "Failed to update user", err)
		return
	}
	if err := db.First(user, user.ID).Error; err != nil {
		respondDatabaseError(c, "Failed to load user", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    user,
	})
}

func deleteUser(c *gin.Context, user *models.User) {
	if user.IsAdmin() {
		respondError(c, http.StatusForbidden, "ADMIN_PROTECTED", "Admin accounts cannot be deleted")
		return
	}

	removed, images, err := deleteUserCascade(config.GetDB(), user.ID)
	if err != nil {
		respondDatabaseError(c, "Failed to delete user", err)
		return
	}
	releaseProductImages(c.Request.Context(), config.GetDB(), images)

	logger.L().Infow("user deleted", "user_id", user.ID, "products_removed", removed)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"message":         "User deleted",
			"id":              user.ID,
			"productsDeleted": removed,
		},
	})
}

func setBlocked(c *gin.Context, blocked bool) {
	user, ok := findUser(c, models.RoleTechnician)
	if !ok {
		return
	}

	if err := config.GetDB().Model(user).Update("is_blocked", blocked).Error; err != nil {
		respondDatabaseError(c, "Failed to update technician", err)
		return
	}
	user.IsBlocked = blocked

	logger.L().Infow("technician block state changed", "user_id", user.ID, "blocked", blocked)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    user,
	})
}

// ListTechnicians handles GET /api/admin/technicians
func ListTechnicians(c *gin.Context) {
	listUsers(c, models.RoleTechnician)
}

// GetTechnician handles GET /api/admin/technicians/:id
func GetTechnician(c *gin.Context) {
	user, ok := findUser(c, models.RoleTechnician)
	if !ok {
		return
	}

	var productCount int64
	if err := config.GetDB().Model(&models.Product{}).Where("technician_id = ?", user.ID).Count(&productCount).Error; err != nil {
		respondDatabaseError(c, "Failed to count products", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"technician":   user,
			"productCount": productCount,
		},
	})
}

// UpdateTechnician handles PUT /api/admin/technicians/:id
func UpdateTechnician(c *gin.Context) {
	user, ok := findUser(c, models.RoleTechnician)
	if !ok {
		return
	}
	updateUser(c, user)
}

// BlockTechnician handles PUT /api/admin/technicians/:id/block
func BlockTechnician(c *gin.Context) {
	setBlocked(c, true)
}

// UnblockTechnician handles PUT /api/admin/technicians/:id/unblock
func UnblockTechnician(c *gin.Context) {
	setBlocked(c, false)
}

// DeleteTechnician handles DELETE /api/admin/technicians/:id - removes the
// technician and every listing they own
func DeleteTechnician(c *gin.Context) {
	user, ok := findUser(c, models.RoleTechnician)
	if !ok {
		return
	}
	deleteUser(c, user)
}

// ListUsers handles GET /api/admin/users, optionally filtered by role
func ListUsers(c *gin.Context) {
	listUsers(c, c.Query("role"))
}

// GetUser handles GET /api/admin/users/:id
func GetUser(c *gin.Context) {
	user, ok := findUser(c, "")
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    user,
	})
}

// UpdateUser handles PATCH /api/admin/users/:id
func UpdateUser(c *gin.Context) {
	user, ok := findUser(c, "")
	if !ok {
		return
	}
	updateUser(c, user)
}

// DeleteUser handles DELETE /api/admin/users/:id. Admin accounts are refused.
func DeleteUser(c *gin.Context) {
	user, ok := findUser(c, "")
	if !ok {
		return
	}
	deleteUser(c, user)
}

// AdminResetUserPassword handles POST /api/admin/users/:id/reset-password.
// The code is emailed to the user and returned so the admin can relay it.
func AdminResetUserPassword(c *gin.Context) {
	user, ok := findUser(c, "")
	if !ok {
		return
	}

	otp, expiresAt, err := services.IssueResetOTP(config.GetDB(), user, services.AdminResetTTL)
	if err != nil {
		respondDatabaseError(c, "Failed to start password reset", err)
		return
	}

	emailed := true
	if err := services.SendPasswordResetCode(c.Request.Context(), services.GetMailer(), user.Email, user.Name, otp, services.AdminResetTTL); err != nil {
		logger.L().Warnw("failed to email admin reset code", "user_id", user.ID, "error", err)
		emailed = false
	}

	logger.L().Infow("admin issued password reset", "user_id", user.ID)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"otp":       otp,
			"expiresAt": expiresAt,
			"emailed":   emailed,
		},
	})
}
