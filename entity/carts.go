package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartEntry is one line of a customer's cart. Prices are snapshots taken
// when the line was added. Rows are hard-deleted so the unique key can be reused.
type CartEntry struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID uint `gorm:"not null;uniqueIndex:idx_cart_user_menu_item" json:"user_id"`
	User   User `json:"-"`

	MenuItemID uint     `gorm:"not null;uniqueIndex:idx_cart_user_menu_item" json:"menu_item_id"`
	MenuItem   MenuItem `json:"-"`

	Quantity  int             `gorm:"not null" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
}

func (CartEntry) TableName() string { return "cart_entries" }
