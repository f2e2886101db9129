package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"littlelemon/entity"
	"littlelemon/pkg/events"
	"littlelemon/pkg/logging"
	"littlelemon/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderService struct {
	DB        *gorm.DB
	Repo      *repository.OrderRepository
	CartRepo  *repository.CartRepository
	UserRepo  *repository.UserRepository
	GroupRepo *repository.GroupRepository
	Events    events.Publisher

	now func() time.Time
}

func NewOrderService(
	db *gorm.DB,
	repo *repository.OrderRepository,
	cartRepo *repository.CartRepository,
	userRepo *repository.UserRepository,
	groupRepo *repository.GroupRepository,
	pub events.Publisher,
) *OrderService {
	if pub == nil {
		pub = events.Nop{}
	}
	return &OrderService{
		DB: db, Repo: repo, CartRepo: cartRepo, UserRepo: userRepo, GroupRepo: groupRepo,
		Events: pub, now: time.Now,
	}
}

// ----- Place -----

// PlaceOrder turns the caller's cart into an order. Creating the order, its
// items and emptying the cart happen in one transaction. An empty cart yields
// an order with no items and a zero total.
func (s *OrderService) PlaceOrder(ctx context.Context, p Principal) (*entity.Order, error) {
	if !p.Authenticated() {
		return nil, ErrUnauthenticated
	}
	unlock := cartLocks.lock(p.UserID)
	defer unlock()

	var out entity.Order
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		entries, err := s.CartRepo.LockByUser(tx, p.UserID)
		if err != nil {
			return err
		}

		order := entity.Order{
			UserID: p.UserID,
			Status: entity.StatusPending,
			Total:  decimal.Zero,
			Date:   s.now().UTC(),
		}
		if err := s.Repo.CreateOrder(tx, &order); err != nil {
			return err
		}

		total := decimal.Zero
		items := make([]entity.OrderItem, 0, len(entries))
		ids := make([]uint, 0, len(entries))
		for _, e := range entries {
			price := e.UnitPrice.Mul(decimal.NewFromInt(int64(e.Quantity)))
			items = append(items, entity.OrderItem{
				OrderID:    order.ID,
				MenuItemID: e.MenuItemID,
				Quantity:   e.Quantity,
				UnitPrice:  e.UnitPrice,
				Price:      price,
			})
			total = total.Add(price)
			ids = append(ids, e.ID)
		}
		if err := s.Repo.CreateOrderItems(tx, items); err != nil {
			return err
		}

		// another writer touched the cart between read and delete
		n, err := s.CartRepo.DeleteEntries(tx, p.UserID, ids)
		if err != nil {
			return err
		}
		if n != int64(len(ids)) {
			return ErrConflict
		}

		if err := s.Repo.SetTotal(tx, order.ID, total); err != nil {
			return err
		}
		order.Total = total
		order.OrderItems = items
		out = order
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("place order: %w", err)
	}

	ordersPlaced.Inc()
	orderLines.Observe(float64(len(out.OrderItems)))
	logging.FromCtx(ctx).Info("order placed",
		"order_id", out.ID, "user_id", out.UserID, "items", len(out.OrderItems), "total", out.Total.String())
	s.publish(ctx, events.OrderPlaced, &out, p.UserID)
	return &out, nil
}

// ----- List & Detail -----

type OrderQuery struct {
	Ordering string
	Status   *int
	Page     int
	Limit    int
}

type OrderPage struct {
	Items []entity.Order `json:"items"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

func scopeFilter(p Principal) repository.OrderFilter {
	sc := OrderScopeFor(p)
	return repository.OrderFilter{UserID: sc.UserID, DeliveryCrewID: sc.DeliveryCrewID}
}

// ListOrders returns the orders visible to p.
func (s *OrderService) ListOrders(ctx context.Context, p Principal, q OrderQuery) (*OrderPage, error) {
	if !p.Authenticated() {
		return nil, ErrUnauthenticated
	}
	fe := fieldErrors{}
	if !repository.ValidOrderOrdering(q.Ordering) {
		fe.add("ordering", "must be one of date, -date, total, -total")
	}
	f := scopeFilter(p)
	if q.Status != nil {
		st := entity.OrderStatus(*q.Status)
		if !st.Valid() {
			fe.add("status", fmt.Sprintf("unknown status %d", *q.Status))
		}
		f.Status = &st
	}
	if err := fe.err(); err != nil {
		return nil, err
	}
	f.Ordering, f.Page, f.Limit = q.Ordering, q.Page, q.Limit

	items, total, err := s.Repo.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return &OrderPage{Items: items, Total: total, Page: q.Page, Limit: q.Limit}, nil
}

// GetOrder returns NotFound for orders outside the caller's scope.
func (s *OrderService) GetOrder(ctx context.Context, p Principal, orderID uint) (*entity.Order, error) {
	if !p.Authenticated() {
		return nil, ErrUnauthenticated
	}
	o, err := s.Repo.GetOrder(ctx, orderID, scopeFilter(p))
	if err != nil {
		return nil, orNotFound(err, "order", orderID)
	}
	return o, nil
}

// ----- Delete -----

func (s *OrderService) DeleteOrder(ctx context.Context, p Principal, orderID uint) error {
	if err := managerOnly(p).Err(); err != nil {
		return err
	}
	var deleted entity.Order
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		o, err := s.Repo.GetOrderTx(tx, orderID, repository.OrderFilter{})
		if err != nil {
			return orNotFound(err, "order", orderID)
		}
		if _, err := s.Repo.DeleteOrder(tx, o.ID); err != nil {
			return err
		}
		deleted = *o
		return nil
	})
	if err != nil {
		return err
	}
	s.publish(ctx, events.OrderDeleted, &deleted, p.UserID)
	return nil
}

// publish is best effort: the order is already committed.
func (s *OrderService) publish(ctx context.Context, typ string, o *entity.Order, actor uint) {
	ev := events.OrderEvent{
		Type: typ, OrderID: o.ID, UserID: o.UserID, DeliveryCrewID: o.DeliveryCrewID,
		Status: int(o.Status), Total: o.Total, Items: len(o.OrderItems), ActorID: actor, At: s.now().UTC(),
	}
	if err := s.Events.PublishOrder(ctx, ev); err != nil {
		logging.FromCtx(ctx).Warn("publish order event failed", "type", typ, "order_id", o.ID, "error", err)
	}
}

// cartLocks serializes writers of one user's cart (adding lines, placing an
// order) within this process. Row locks and guarded updates cover other processes.
var cartLocks userLocks

type userLocks struct {
	mu sync.Mutex
	m  map[uint]*userLock
}

type userLock struct {
	sync.Mutex
	refs int
}

func (l *userLocks) lock(userID uint) (unlock func()) {
	l.mu.Lock()
	if l.m == nil {
		l.m = make(map[uint]*userLock)
	}
	ul, ok := l.m[userID]
	if !ok {
		ul = &userLock{}
		l.m[userID] = ul
	}
	ul.refs++
	l.mu.Unlock()

	ul.Lock()
	return func() {
		ul.Unlock()
		l.mu.Lock()
		ul.refs--
		if ul.refs == 0 {
			delete(l.m, userID)
		}
		l.mu.Unlock()
	}
}
