package repository

import (
	"context"

	"littlelemon/entity"

	"gorm.io/gorm"
)

type CategoryRepository struct {
	DB *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{DB: db}
}

func (r *CategoryRepository) List(ctx context.Context) ([]entity.Category, error) {
	var out []entity.Category
	err := r.DB.WithContext(ctx).Order("title ASC").Find(&out).Error
	return out, err
}

func (r *CategoryRepository) FindByID(ctx context.Context, id uint) (*entity.Category, error) {
	var c entity.Category
	if err := r.DB.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CategoryRepository) CountBySlug(ctx context.Context, slug string) (int64, error) {
	var cnt int64
	err := r.DB.WithContext(ctx).Model(&entity.Category{}).Where("slug = ?", slug).Count(&cnt).Error
	return cnt, err
}

func (r *CategoryRepository) Create(ctx context.Context, c *entity.Category) error {
	return r.DB.WithContext(ctx).Create(c).Error
}
