package repository

import (
	"context"

	"littlelemon/entity"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderRepository struct {
	DB *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{DB: db}
}

// OrderFilter restricts order reads. Nil pointers mean no restriction.
type OrderFilter struct {
	UserID         *uint
	DeliveryCrewID *uint
	Status         *entity.OrderStatus
	Ordering       string
	Page, Limit    int
}

var orderOrderings = map[string]string{
	"date":   "date ASC, id ASC",
	"-date":  "date DESC, id DESC",
	"total":  "total ASC, id ASC",
	"-total": "total DESC, id DESC",
}

func ValidOrderOrdering(ordering string) bool {
	_, ok := orderOrderings[ordering]
	return ordering == "" || ok
}

func (f OrderFilter) apply(db *gorm.DB) *gorm.DB {
	if f.UserID != nil {
		db = db.Where("user_id = ?", *f.UserID)
	}
	if f.DeliveryCrewID != nil {
		db = db.Where("delivery_crew_id = ?", *f.DeliveryCrewID)
	}
	if f.Status != nil {
		db = db.Where("status = ?", *f.Status)
	}
	return db
}

// ---------------- Orders ----------------

func (r *OrderRepository) CreateOrder(tx *gorm.DB, o *entity.Order) error {
	return tx.Omit("OrderItems").Create(o).Error
}

func (r *OrderRepository) CreateOrderItems(tx *gorm.DB, items []entity.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	return tx.Create(&items).Error
}

func (r *OrderRepository) SetTotal(tx *gorm.DB, orderID uint, total decimal.Decimal) error {
	return tx.Model(&entity.Order{}).Where("id = ?", orderID).Update("total", total).Error
}

// List returns one page of orders matching f, with items preloaded.
func (r *OrderRepository) List(ctx context.Context, f OrderFilter) ([]entity.Order, int64, error) {
	page, limit := normalizePage(f.Page, f.Limit)
	q := f.apply(r.DB.WithContext(ctx).Model(&entity.Order{}))

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order, ok := orderOrderings[f.Ordering]
	if !ok {
		order = orderOrderings["-date"]
	}
	var out []entity.Order
	err := q.Preload("OrderItems", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Order(order).
		Limit(limit).Offset((page - 1) * limit).
		Find(&out).Error
	return out, total, err
}

// GetOrder loads one order visible under f, with its items.
func (r *OrderRepository) GetOrder(ctx context.Context, orderID uint, f OrderFilter) (*entity.Order, error) {
	return r.GetOrderTx(r.DB.WithContext(ctx), orderID, f)
}

func (r *OrderRepository) GetOrderTx(tx *gorm.DB, orderID uint, f OrderFilter) (*entity.Order, error) {
	var o entity.Order
	err := f.apply(tx.Where("id = ?", orderID)).
		Preload("OrderItems", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&o).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// UpdateStatusGuard moves the order from one status to another only if it is
// still in the expected status. Zero rows affected means someone else won.
func (r *OrderRepository) UpdateStatusGuard(tx *gorm.DB, orderID uint, from, to entity.OrderStatus) (int64, error) {
	res := tx.Model(&entity.Order{}).
		Where("id = ? AND status = ?", orderID, from).
		Update("status", to)
	return res.RowsAffected, res.Error
}

// UpdateFields writes the given columns of one order.
func (r *OrderRepository) UpdateFields(tx *gorm.DB, orderID uint, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return tx.Model(&entity.Order{}).Where("id = ?", orderID).Updates(fields).Error
}

// DeleteOrder removes the order and its items.
func (r *OrderRepository) DeleteOrder(tx *gorm.DB, orderID uint) (int64, error) {
	if err := tx.Where("order_id = ?", orderID).Delete(&entity.OrderItem{}).Error; err != nil {
		return 0, err
	}
	res := tx.Delete(&entity.Order{}, orderID)
	return res.RowsAffected, res.Error
}
