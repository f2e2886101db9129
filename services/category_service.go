package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"littlelemon/entity"
	"littlelemon/repository"
)

type CategoryService struct {
	Repo *repository.CategoryRepository
}

func NewCategoryService(repo *repository.CategoryRepository) *CategoryService {
	return &CategoryService{Repo: repo}
}

type CategoryIn struct {
	Slug  string `json:"slug"`
	Title string `json:"title"`
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases s and collapses everything else into single dashes.
func Slugify(s string) string {
	return strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(s), "-"), "-")
}

func (s *CategoryService) List(ctx context.Context) ([]entity.Category, error) {
	return s.Repo.List(ctx)
}

func (s *CategoryService) Create(ctx context.Context, in CategoryIn) (*entity.Category, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, invalid("title", "required")
	}
	slug := Slugify(in.Slug)
	if slug == "" {
		slug = Slugify(title)
	}
	if slug == "" {
		return nil, invalid("slug", "must contain letters or digits")
	}
	cnt, err := s.Repo.CountBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if cnt > 0 {
		return nil, invalid("slug", fmt.Sprintf("%q already exists", slug))
	}
	c := entity.Category{Slug: slug, Title: title}
	if err := s.Repo.Create(ctx, &c); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return &c, nil
}
