// repository/menu_repository.go
package repository

import (
	"context"
	"strings"

	"littlelemon/entity"

	"gorm.io/gorm"
)

type MenuRepository struct {
	DB *gorm.DB
}

func NewMenuRepository(db *gorm.DB) *MenuRepository {
	return &MenuRepository{DB: db}
}

// MenuFilter drives the menu item list. Ordering must already be whitelisted.
type MenuFilter struct {
	Search       string
	CategorySlug string
	Featured     *bool
	Ordering     string
	Page, Limit  int
}

var menuOrderings = map[string]string{
	"price":  "menu_items.price ASC, menu_items.id ASC",
	"-price": "menu_items.price DESC, menu_items.id DESC",
	"title":  "menu_items.title ASC, menu_items.id ASC",
	"-title": "menu_items.title DESC, menu_items.id DESC",
}

// ValidMenuOrdering reports whether ordering is accepted by List.
func ValidMenuOrdering(ordering string) bool {
	_, ok := menuOrderings[ordering]
	return ordering == "" || ok
}

func (r *MenuRepository) List(ctx context.Context, f MenuFilter) ([]entity.MenuItem, int64, error) {
	page, limit := normalizePage(f.Page, f.Limit)
	db := r.DB.WithContext(ctx)

	q := db.Model(&entity.MenuItem{})
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		catIDs := db.Model(&entity.Category{}).Select("id").Where("LOWER(title) LIKE ?", like)
		q = q.Where("LOWER(menu_items.title) LIKE ? OR menu_items.category_id IN (?)", like, catIDs)
	}
	if f.CategorySlug != "" {
		q = q.Where("menu_items.category_id IN (?)",
			db.Model(&entity.Category{}).Select("id").Where("slug = ?", f.CategorySlug))
	}
	if f.Featured != nil {
		q = q.Where("menu_items.featured = ?", *f.Featured)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order, ok := menuOrderings[f.Ordering]
	if !ok {
		order = "menu_items.id ASC"
	}
	var items []entity.MenuItem
	err := q.Preload("Category").
		Order(order).
		Limit(limit).Offset((page - 1) * limit).
		Find(&items).Error
	return items, total, err
}

func (r *MenuRepository) FindByID(ctx context.Context, id uint) (*entity.MenuItem, error) {
	var m entity.MenuItem
	if err := r.DB.WithContext(ctx).Preload("Category").First(&m, id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// FindBasics loads only what the cart needs (id, price).
func (r *MenuRepository) FindBasics(db *gorm.DB, id uint) (*entity.MenuItem, error) {
	var m entity.MenuItem
	if err := db.Select("id, price").First(&m, id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MenuRepository) Create(ctx context.Context, m *entity.MenuItem) error {
	return r.DB.WithContext(ctx).Create(m).Error
}

// Updates writes the given columns.
func (r *MenuRepository) Updates(ctx context.Context, id uint, fields map[string]any) error {
	return r.DB.WithContext(ctx).Model(&entity.MenuItem{}).Where("id = ?", id).Updates(fields).Error
}

func (r *MenuRepository) Delete(ctx context.Context, id uint) (int64, error) {
	res := r.DB.WithContext(ctx).Delete(&entity.MenuItem{}, id)
	return res.RowsAffected, res.Error
}

func normalizePage(page, limit int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}
