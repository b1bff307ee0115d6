package models

import (
	"time"
)

// DeviceType is a top-level device classification such as "Mobile Phone"
type DeviceType struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"uniqueIndex;not null" json:"name"`
	Emoji       string    `json:"emoji"`
	Slug        string    `gorm:"uniqueIndex;not null" json:"slug"`
	Description string    `json:"description"`
	IsActive    bool      `gorm:"not null;default:true" json:"isActive"`
	Order       int       `gorm:"column:sort_order;not null;default:0" json:"order"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TableName specifies the table name for the DeviceType model
func (DeviceType) TableName() string {
	return "device_types"
}
