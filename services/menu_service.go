package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"littlelemon/entity"
	"littlelemon/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type MenuService struct {
	Repo    *repository.MenuRepository
	CatRepo *repository.CategoryRepository
}

func NewMenuService(repo *repository.MenuRepository, cat *repository.CategoryRepository) *MenuService {
	return &MenuService{Repo: repo, CatRepo: cat}
}

// MenuItemIn is used for create, replace and patch. Nil means "not sent".
type MenuItemIn struct {
	Title      *string          `json:"title"`
	Price      *decimal.Decimal `json:"price"`
	CategoryID *uint            `json:"category_id"`
	Featured   *bool            `json:"featured"`
}

type MenuQuery struct {
	Search   string
	Category string
	Featured *bool
	Ordering string
	Page     int
	Limit    int
}

type MenuPage struct {
	Items []entity.MenuItem `json:"items"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}

func (s *MenuService) List(ctx context.Context, q MenuQuery) (*MenuPage, error) {
	if !repository.ValidMenuOrdering(q.Ordering) {
		return nil, invalid("ordering", "must be one of price, -price, title, -title")
	}
	items, total, err := s.Repo.List(ctx, repository.MenuFilter{
		Search: q.Search, CategorySlug: q.Category, Featured: q.Featured,
		Ordering: q.Ordering, Page: q.Page, Limit: q.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list menu items: %w", err)
	}
	return &MenuPage{Items: items, Total: total, Page: q.Page, Limit: q.Limit}, nil
}

func (s *MenuService) Get(ctx context.Context, id uint) (*entity.MenuItem, error) {
	m, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, orNotFound(err, "menu item", id)
	}
	return m, nil
}

func (s *MenuService) Create(ctx context.Context, in MenuItemIn) (*entity.MenuItem, error) {
	if err := s.validate(ctx, in, true); err != nil {
		return nil, err
	}
	m := entity.MenuItem{
		Title:      strings.TrimSpace(*in.Title),
		Price:      in.Price.Round(2),
		CategoryID: *in.CategoryID,
	}
	if in.Featured != nil {
		m.Featured = *in.Featured
	}
	if err := s.Repo.Create(ctx, &m); err != nil {
		return nil, fmt.Errorf("create menu item: %w", err)
	}
	return s.Get(ctx, m.ID)
}

// Replace overwrites every field (PUT).
func (s *MenuService) Replace(ctx context.Context, id uint, in MenuItemIn) (*entity.MenuItem, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	if err := s.validate(ctx, in, true); err != nil {
		return nil, err
	}
	featured := false
	if in.Featured != nil {
		featured = *in.Featured
	}
	fields := map[string]any{
		"title":       strings.TrimSpace(*in.Title),
		"price":       in.Price.Round(2),
		"category_id": *in.CategoryID,
		"featured":    featured,
	}
	if err := s.Repo.Updates(ctx, id, fields); err != nil {
		return nil, fmt.Errorf("replace menu item: %w", err)
	}
	return s.Get(ctx, id)
}

// Patch updates only the fields that were sent (PATCH).
func (s *MenuService) Patch(ctx context.Context, id uint, in MenuItemIn) (*entity.MenuItem, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	if err := s.validate(ctx, in, false); err != nil {
		return nil, err
	}
	fields := map[string]any{}
	if in.Title != nil {
		fields["title"] = strings.TrimSpace(*in.Title)
	}
	if in.Price != nil {
		fields["price"] = in.Price.Round(2)
	}
	if in.CategoryID != nil {
		fields["category_id"] = *in.CategoryID
	}
	if in.Featured != nil {
		fields["featured"] = *in.Featured
	}
	if len(fields) > 0 {
		if err := s.Repo.Updates(ctx, id, fields); err != nil {
			return nil, fmt.Errorf("patch menu item: %w", err)
		}
	}
	return s.Get(ctx, id)
}

func (s *MenuService) Delete(ctx context.Context, id uint) error {
	n, err := s.Repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete menu item: %w", err)
	}
	if n == 0 {
		return notFound("menu item", id)
	}
	return nil
}

func (s *MenuService) validate(ctx context.Context, in MenuItemIn, full bool) error {
	fe := fieldErrors{}
	if in.Title != nil && strings.TrimSpace(*in.Title) == "" {
		fe.add("title", "must not be blank")
	}
	if in.Price != nil && !in.Price.IsPositive() {
		fe.add("price", "must be greater than 0")
	}
	if full {
		if in.Title == nil {
			fe.add("title", "required")
		}
		if in.Price == nil {
			fe.add("price", "required")
		}
		if in.CategoryID == nil {
			fe.add("category_id", "required")
		}
	}
	if in.CategoryID != nil {
		_, err := s.CatRepo.FindByID(ctx, *in.CategoryID)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			fe.add("category_id", fmt.Sprintf("category %d does not exist", *in.CategoryID))
		case err != nil:
			return err
		}
	}
	return fe.err()
}
