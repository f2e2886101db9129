package entity

import (
	"github.com/shopspring/decimal"
)

// OrderItem is an immutable copy of a cart entry taken at placement time.
type OrderItem struct {
	ID uint `gorm:"primarykey" json:"id"`

	OrderID uint  `gorm:"not null;index" json:"-"`
	Order   Order `json:"-"`

	MenuItemID uint     `gorm:"not null" json:"menu_item_id"`
	MenuItem   MenuItem `json:"-"`

	Quantity  int             `gorm:"not null" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
}
