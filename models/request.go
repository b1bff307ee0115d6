package models

import (
	"time"
)

const (
	RequestStatusOpen      = "open"
	RequestStatusFulfilled = "fulfilled"
	RequestStatusClosed    = "closed"
)

// PartRequest is a buyer-submitted request for a part nobody lists yet
type PartRequest struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Name           string    `gorm:"not null" json:"name"`
	Mobile         string    `gorm:"size:10;not null" json:"mobile"`
	Email          string    `json:"email,omitempty"`
	DeviceCategory string    `json:"deviceCategory,omitempty"`
	Brand          string    `json:"brand,omitempty"`
	DeviceModel    string    `json:"deviceModel,omitempty"`
	PartType       string    `json:"partType,omitempty"`
	Description    string    `gorm:"type:text" json:"description"`
	City           string    `json:"city,omitempty"`
	Status         string    `gorm:"not null;default:'open';index" json:"status"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// TableName specifies the table name for the PartRequest model
func (PartRequest) TableName() string {
	return "requests"
}
