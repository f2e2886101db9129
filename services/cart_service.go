package services

import (
	"context"
	"errors"
	"fmt"

	"littlelemon/entity"
	"littlelemon/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CartService struct {
	DB       *gorm.DB
	CartRepo *repository.CartRepository
	MenuRepo *repository.MenuRepository // price snapshot source
}

func NewCartService(db *gorm.DB, cr *repository.CartRepository, mr *repository.MenuRepository) *CartService {
	return &CartService{DB: db, CartRepo: cr, MenuRepo: mr}
}

type AddToCartIn struct {
	MenuItemID uint `json:"menu_item_id"`
	Quantity   int  `json:"quantity"`
}

type CartView struct {
	Items []entity.CartEntry `json:"items"`
	Total decimal.Decimal    `json:"total"`
}

// List returns only the caller's entries.
func (s *CartService) List(ctx context.Context, userID uint) (*CartView, error) {
	entries, err := s.CartRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list cart: %w", err)
	}
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.Price)
	}
	return &CartView{Items: entries, Total: total}, nil
}

// Add snapshots the current menu price. Adding an item already in the cart
// increases its quantity.
func (s *CartService) Add(ctx context.Context, userID uint, in AddToCartIn) (*entity.CartEntry, error) {
	fe := fieldErrors{}
	if in.MenuItemID == 0 {
		fe.add("menu_item_id", "required")
	}
	if in.Quantity < 1 {
		fe.add("quantity", "must be at least 1")
	}
	if err := fe.err(); err != nil {
		return nil, err
	}

	unlock := cartLocks.lock(userID)
	defer unlock()

	var out entity.CartEntry
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m, err := s.MenuRepo.FindBasics(tx, in.MenuItemID)
		if err != nil {
			return orNotFound(err, "menu item", in.MenuItemID)
		}
		out = entity.CartEntry{
			UserID:     userID,
			MenuItemID: m.ID,
			Quantity:   in.Quantity,
			UnitPrice:  m.Price,
			Price:      m.Price.Mul(decimal.NewFromInt(int64(in.Quantity))),
		}
		return s.CartRepo.UpsertEntry(tx, &out)
	})
	if errors.Is(err, repository.ErrStaleEntry) {
		return nil, ErrConflict
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *CartService) Remove(ctx context.Context, userID, entryID uint) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		n, err := s.CartRepo.DeleteEntry(tx, userID, entryID)
		if err != nil {
			return err
		}
		if n == 0 {
			return notFound("cart entry", entryID)
		}
		return nil
	})
}

// Clear deletes every entry of the user and reports how many were removed.
func (s *CartService) Clear(ctx context.Context, userID uint) (int64, error) {
	var n int64
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		n, err = s.CartRepo.ClearByUser(tx, userID)
		return err
	})
	return n, err
}
