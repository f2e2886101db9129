package repository

import (
	"context"
	"errors"

	"littlelemon/entity"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrStaleEntry means the entry changed between read and write.
var ErrStaleEntry = errors.New("cart entry changed concurrently")

type CartRepository struct{ DB *gorm.DB }

func NewCartRepository(db *gorm.DB) *CartRepository { return &CartRepository{DB: db} }

// ListByUser returns the user's entries in insertion order.
func (r *CartRepository) ListByUser(ctx context.Context, userID uint) ([]entity.CartEntry, error) {
	return r.ListByUserTx(r.DB.WithContext(ctx), userID)
}

func (r *CartRepository) ListByUserTx(tx *gorm.DB, userID uint) ([]entity.CartEntry, error) {
	var out []entity.CartEntry
	err := tx.Where("user_id = ?", userID).Order("id ASC").Find(&out).Error
	return out, err
}

// LockByUser reads the user's entries with row locks held until tx ends.
func (r *CartRepository) LockByUser(tx *gorm.DB, userID uint) ([]entity.CartEntry, error) {
	return r.ListByUserTx(tx.Clauses(clause.Locking{Strength: "UPDATE"}), userID)
}

// UpsertEntry adds a line or merges it into the existing (user, menu item) line.
// The existing unit price snapshot is kept. A merge only applies if the line
// still holds the quantity that was read, otherwise ErrStaleEntry.
func (r *CartRepository) UpsertEntry(tx *gorm.DB, row *entity.CartEntry) error {
	var exist entity.CartEntry
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND menu_item_id = ?", row.UserID, row.MenuItemID).
		First(&exist).Error
	if err == nil {
		qty := exist.Quantity + row.Quantity
		price := exist.UnitPrice.Mul(decimal.NewFromInt(int64(qty)))
		res := tx.Model(&entity.CartEntry{}).
			Where("id = ? AND quantity = ?", exist.ID, exist.Quantity).
			Updates(map[string]any{"quantity": qty, "price": price})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStaleEntry
		}
		exist.Quantity, exist.Price = qty, price
		*row = exist
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return tx.Create(row).Error
}

// DeleteEntry removes one entry owned by the user.
func (r *CartRepository) DeleteEntry(tx *gorm.DB, userID, entryID uint) (int64, error) {
	res := tx.Where("id = ? AND user_id = ?", entryID, userID).Delete(&entity.CartEntry{})
	return res.RowsAffected, res.Error
}

func (r *CartRepository) ClearByUser(tx *gorm.DB, userID uint) (int64, error) {
	res := tx.Where("user_id = ?", userID).Delete(&entity.CartEntry{})
	return res.RowsAffected, res.Error
}

// DeleteEntries removes exactly the given entries of the user.
func (r *CartRepository) DeleteEntries(tx *gorm.DB, userID uint, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := tx.Where("user_id = ? AND id IN ?", userID, ids).Delete(&entity.CartEntry{})
	return res.RowsAffected, res.Error
}
