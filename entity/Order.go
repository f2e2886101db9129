package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is a placed order. Only Status and DeliveryCrewID change after creation.
// Orders are hard-deleted together with their items.
type Order struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`

	UserID uint `gorm:"not null;index" json:"user_id"`
	User   User `json:"-"`

	DeliveryCrewID *uint `gorm:"index" json:"delivery_crew_id"`
	DeliveryCrew   *User `gorm:"foreignKey:DeliveryCrewID" json:"-"`

	Status OrderStatus     `gorm:"not null;default:0;index" json:"status"`
	Total  decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"total"`
	Date   time.Time       `gorm:"not null;index" json:"date"`

	OrderItems []OrderItem `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"order_items"`
}
