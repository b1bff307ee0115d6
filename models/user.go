package models

import (
	"time"
)

const (
	RoleTechnician = "technician"
	RoleAdmin      = "admin"
)

// User represents a technician (seller) or an admin
type User struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	Name           string     `gorm:"not null" json:"name"`
	Email          string     `gorm:"uniqueIndex;not null" json:"email"` // stored lower-cased
	Password       string     `gorm:"not null" json:"-"`                 // bcrypt hash
	Role           string     `gorm:"not null;default:'technician';index" json:"role"`
	Mobile         string     `gorm:"size:10" json:"mobile"`
	CountryCode    string     `gorm:"size:5;default:'+91'" json:"countryCode"`
	Address        string     `json:"address"`
	PinCode        string     `gorm:"size:6" json:"pinCode"`
	City           string     `json:"city"`
	State          string     `json:"state"`
	WhatsApp       string     `gorm:"column:whatsapp;size:10" json:"whatsapp"`
	ProfilePicture *string    `json:"profilePicture,omitempty"`
	IsBlocked      bool       `gorm:"not null;default:false" json:"isBlocked"`
	ResetOTPHash   *string    `gorm:"column:reset_otp_hash" json:"-"`
	ResetOTPExpiry *time.Time `gorm:"column:reset_otp_expiry" json:"-"`
	ResetAttempts  int        `gorm:"column:reset_otp_attempts;not null;default:0" json:"-"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}

// IsAdmin reports whether the user holds the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsTechnician reports whether the user holds the technician role
func (u *User) IsTechnician() bool {
	return u.Role == RoleTechnician
}

// HasPendingReset reports whether a one-time reset code is stored for the user
func (u *User) HasPendingReset() bool {
	return u.ResetOTPHash != nil && u.ResetOTPExpiry != nil
}
