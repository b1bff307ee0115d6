package models

import (
	"time"
)

const (
	ProductStatusPending  = "pending"
	ProductStatusApproved = "approved"
	ProductStatusRejected = "rejected"

	ConditionNew  = "new"
	ConditionUsed = "used"

	DeviceCategoryMobile  = "mobile"
	DeviceCategoryLaptop  = "laptop"
	DeviceCategoryDesktop = "desktop"
)

// PartTypes is the closed set of part kinds a listing can declare
var PartTypes = []string{
	"display", "battery", "charging-port", "camera", "speaker", "microphone",
	"back-panel", "motherboard", "keyboard", "touchpad", "hinge", "cooling-fan",
	"power-supply", "ram", "storage", "other",
}

// DeviceCategories lists the device categories products and brands are scoped to
var DeviceCategories = []string{DeviceCategoryMobile, DeviceCategoryLaptop, DeviceCategoryDesktop}

// Product is a spare-parts listing owned by a technician
type Product struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Name           string    `gorm:"not null;index" json:"name"`
	Description    string    `gorm:"type:text" json:"description"`
	Price          float64   `gorm:"not null;check:price >= 0" json:"price"`
	DeviceCategory string    `gorm:"not null;index" json:"deviceCategory"`
	Brand          string    `gorm:"not null;index" json:"brand"`
	DeviceModel    string    `gorm:"not null" json:"deviceModel"`
	ModelNumber    *string   `json:"modelNumber,omitempty"`
	PartType       string    `gorm:"not null;index" json:"partType"`
	Category       string    `gorm:"index" json:"category,omitempty"` // legacy free-text category
	Condition      string    `gorm:"not null;default:'new'" json:"condition"`
	Images         []string  `gorm:"serializer:json;type:text" json:"images"`
	Status         string    `gorm:"not null;default:'approved';index" json:"status"`
	TechnicianID   uint      `gorm:"not null;index" json:"technicianId"`
	Technician     *User     `gorm:"foreignKey:TechnicianID;constraint:OnDelete:CASCADE" json:"technician,omitempty"`
	Slug           *string   `gorm:"uniqueIndex" json:"slug,omitempty"`
	Tags           []string  `gorm:"serializer:json;type:text" json:"tags,omitempty"`
	CreatedAt      time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// TableName specifies the table name for the Product model
func (Product) TableName() string {
	return "products"
}

// IsVisibleTo reports whether the product may be shown to the given caller.
// A zero callerID means an anonymous request.
func (p *Product) IsVisibleTo(callerID uint) bool {
	if p.Status == ProductStatusApproved {
		return true
	}
	return callerID != 0 && p.TechnicianID == callerID
}

// IsValidDeviceCategory reports whether value is one of DeviceCategories
func IsValidDeviceCategory(value string) bool {
	for _, c := range DeviceCategories {
		if c == value {
			return true
		}
	}
	return false
}
