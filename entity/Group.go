package entity

import (
	"gorm.io/gorm"
)

const (
	GroupManager      = "Manager"
	GroupDeliveryCrew = "Delivery crew"
)

type Group struct {
	gorm.Model
	Name string `gorm:"uniqueIndex;not null" json:"name"`

	Users []User `gorm:"many2many:auth_user_groups;" json:"-"`
}

// "groups" collides with a keyword on some engines.
func (Group) TableName() string { return "auth_groups" }
