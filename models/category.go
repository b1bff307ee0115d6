package models

import (
	"time"
)

// Category is a part-category taxonomy entry. A nil DeviceID makes it global,
// shown under every device type.
type Category struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	Name        string      `gorm:"not null" json:"name"`
	Slug        string      `gorm:"uniqueIndex;not null" json:"slug"`
	Description string      `json:"description"`
	Icon        string      `json:"icon,omitempty"`
	DeviceID    *uint       `gorm:"index" json:"deviceId"`
	Device      *DeviceType `gorm:"foreignKey:DeviceID" json:"device,omitempty"`
	IsActive    bool        `gorm:"not null;default:true" json:"isActive"`
	Order       int         `gorm:"column:sort_order;not null;default:0" json:"order"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// TableName specifies the table name for the Category model
func (Category) TableName() string {
	return "categories"
}

// IsGlobal reports whether the category is shared by all device types
func (c *Category) IsGlobal() bool {
	return c.DeviceID == nil
}
