package models

import (
	"time"
)

const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

// Order links a buyer to a product. It is persisted but no route uses it yet.
type Order struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProductID uint      `gorm:"not null;index" json:"productId"`
	Product   Product   `gorm:"foreignKey:ProductID" json:"-"`
	BuyerID   uint      `gorm:"not null;index" json:"buyerId"`
	Buyer     User      `gorm:"foreignKey:BuyerID" json:"-"`
	Quantity  int       `gorm:"not null;check:quantity > 0" json:"quantity"`
	Status    string    `gorm:"not null;default:'pending'" json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}
