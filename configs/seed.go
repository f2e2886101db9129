package configs

import (
	"context"
	"fmt"
	"log/slog"

	"littlelemon/entity"
	"littlelemon/repository"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedGroups creates the two role groups.
func SeedGroups(db *gorm.DB) error {
	groups := repository.NewGroupRepository(db)
	for _, name := range []string{entity.GroupManager, entity.GroupDeliveryCrew} {
		if _, err := groups.Ensure(context.Background(), name); err != nil {
			return fmt.Errorf("seed group %q: %w", name, err)
		}
	}
	return nil
}

var starterCategories = []entity.Category{
	{Slug: "appetizers", Title: "Appetizers"},
	{Slug: "main-course", Title: "Main Course"},
	{Slug: "desserts", Title: "Desserts"},
	{Slug: "drinks", Title: "Drinks"},
}

func SeedCategories(db *gorm.DB) error {
	for _, c := range starterCategories {
		if err := db.Where(entity.Category{Slug: c.Slug}).FirstOrCreate(&entity.Category{}, c).Error; err != nil {
			return fmt.Errorf("seed category %q: %w", c.Slug, err)
		}
	}
	return nil
}

// SeedAdmin creates the first Manager when admin credentials are configured.
func SeedAdmin(db *gorm.DB, cfg Config, log *slog.Logger) error {
	username, pass := cfg.Admin.Username, cfg.Admin.Password
	if username == "" || pass == "" {
		log.Info("skip seeding admin: admin.username/admin.password not set")
		return nil
	}

	var count int64
	if err := db.Model(&entity.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Info("admin already exists", "username", username)
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(pass), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return db.Transaction(func(tx *gorm.DB) error {
		var manager entity.Group
		if err := tx.Where("name = ?", entity.GroupManager).First(&manager).Error; err != nil {
			return fmt.Errorf("manager group: %w", err)
		}
		admin := entity.User{
			Username:  username,
			Email:     cfg.Admin.Email,
			Password:  string(hash),
			FirstName: "Admin",
			LastName:  "Seed",
			Groups:    []entity.Group{manager},
		}
		if err := tx.Create(&admin).Error; err != nil {
			return err
		}
		log.Info("seeded admin", "username", username, "user_id", admin.ID)
		return nil
	})
}
