package entity

import (
	"time"

	"gorm.io/gorm"
)

type Category struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"-"`
	UpdatedAt time.Time      `json:"-"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Slug  string `gorm:"uniqueIndex;not null" json:"slug"`
	Title string `gorm:"index;not null" json:"title"`

	// hidden to keep list payloads small
	MenuItems []MenuItem `json:"-"`
}
