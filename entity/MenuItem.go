package entity

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type MenuItem struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"-"`
	UpdatedAt time.Time      `json:"-"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Title    string          `gorm:"index;not null" json:"title"`
	Price    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Featured bool            `gorm:"index" json:"featured"`

	CategoryID uint     `gorm:"not null" json:"category_id"`
	Category   Category `json:"category,omitempty"` // preload on list/detail
}
