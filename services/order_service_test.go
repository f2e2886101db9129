package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"littlelemon/entity"
	"littlelemon/pkg/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestPlaceOrder_FromCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	mains := f.category(t, "mains", "Main Course")
	burger := f.menuItem(t, "Burger", "5.00", mains.ID)
	fries := f.menuItem(t, "Fries", "2.00", mains.ID)
	alice := f.principal(t, "alice")

	f.addToCart(t, alice, burger.ID, 2)
	f.addToCart(t, alice, fries.ID, 1)

	o, err := f.order.PlaceOrder(ctx, alice)
	require.NoError(t, err)

	assert.Equal(t, alice.UserID, o.UserID)
	assert.Equal(t, entity.StatusPending, o.Status)
	assert.Nil(t, o.DeliveryCrewID)
	assert.True(t, dec("12.00").Equal(o.Total), "total = %s", o.Total)
	require.Len(t, o.OrderItems, 2)
	assert.True(t, dec("10.00").Equal(o.OrderItems[0].Price))
	assert.True(t, dec("2.00").Equal(o.OrderItems[1].Price))

	view, err := f.cart.List(ctx, alice.UserID)
	require.NoError(t, err)
	assert.Empty(t, view.Items)

	stored, err := f.order.GetOrder(ctx, alice, o.ID)
	require.NoError(t, err)
	assert.True(t, dec("12").Equal(stored.Total))
	assert.Len(t, stored.OrderItems, 2)

	evs := f.events.Events()
	require.Len(t, evs, 1)
	assert.Equal(t, events.OrderPlaced, evs[0].Type)
	assert.Equal(t, o.ID, evs[0].OrderID)
	assert.Equal(t, 2, evs[0].Items)
}

func TestPlaceOrder_EmptyCart(t *testing.T) {
	f := newFixture(t)
	bob := f.principal(t, "bob")

	o, err := f.order.PlaceOrder(context.Background(), bob)
	require.NoError(t, err)
	assert.True(t, o.Total.IsZero())
	assert.Empty(t, o.OrderItems)
}

func TestPlaceOrder_Anonymous(t *testing.T) {
	f := newFixture(t)
	_, err := f.order.PlaceOrder(context.Background(), Anonymous)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestPlaceOrder_PriceSnapshot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cat := f.category(t, "drinks", "Drinks")
	tea := f.menuItem(t, "Tea", "3.00", cat.ID)
	alice := f.principal(t, "alice")

	f.addToCart(t, alice, tea.ID, 1)
	o, err := f.order.PlaceOrder(ctx, alice)
	require.NoError(t, err)

	require.NoError(t, f.db.Model(&entity.MenuItem{}).Where("id = ?", tea.ID).Update("price", dec("9.00")).Error)

	stored, err := f.order.GetOrder(ctx, alice, o.ID)
	require.NoError(t, err)
	assert.True(t, dec("3.00").Equal(stored.Total))
	assert.True(t, dec("3.00").Equal(stored.OrderItems[0].UnitPrice))
}

// A failure while writing order lines leaves the cart intact and no order behind.
func TestPlaceOrder_AllOrNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cat := f.category(t, "mains", "Main Course")
	burger := f.menuItem(t, "Burger", "5.00", cat.ID)
	fries := f.menuItem(t, "Fries", "2.00", cat.ID)
	alice := f.principal(t, "alice")
	f.addToCart(t, alice, burger.ID, 2)
	f.addToCart(t, alice, fries.ID, 1)

	require.NoError(t, f.db.Callback().Create().Before("gorm:create").Register("test:fail_order_items", func(db *gorm.DB) {
		if db.Statement.Table == "order_items" {
			_ = db.AddError(errors.New("disk full"))
		}
	}))

	_, err := f.order.PlaceOrder(ctx, alice)
	require.Error(t, err)

	view, err := f.cart.List(ctx, alice.UserID)
	require.NoError(t, err)
	assert.Len(t, view.Items, 2)
	assert.True(t, dec("12.00").Equal(view.Total))

	var orders, lines int64
	require.NoError(t, f.db.Model(&entity.Order{}).Count(&orders).Error)
	require.NoError(t, f.db.Model(&entity.OrderItem{}).Count(&lines).Error)
	assert.Zero(t, orders)
	assert.Zero(t, lines)
	assert.Empty(t, f.events.Events())
}

// Concurrent placements by one user must consume the cart exactly once.
func TestPlaceOrder_ConcurrentSameUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cat := f.category(t, "mains", "Main Course")
	burger := f.menuItem(t, "Burger", "5.00", cat.ID)
	alice := f.principal(t, "alice")
	f.addToCart(t, alice, burger.ID, 3)

	const n = 5
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		lines int
		errs  []error
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			o, err := f.order.PlaceOrder(ctx, alice)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			lines += len(o.OrderItems)
		}()
	}
	wg.Wait()

	for _, err := range errs {
		assert.True(t, errors.Is(err, ErrConflict), "unexpected error: %v", err)
	}
	assert.Equal(t, 1, lines, "cart lines must land in exactly one order")

	var cartRows int64
	require.NoError(t, f.db.Model(&entity.CartEntry{}).Count(&cartRows).Error)
	assert.Zero(t, cartRows)
}

func TestListOrders_ScopedByRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	manager := f.principal(t, "boss", entity.GroupManager)
	crew := f.principal(t, "rider", entity.GroupDeliveryCrew)
	alice := f.principal(t, "alice")
	bob := f.principal(t, "bob")

	a1, err := f.order.PlaceOrder(ctx, alice)
	require.NoError(t, err)
	_, err = f.order.PlaceOrder(ctx, alice)
	require.NoError(t, err)
	b1, err := f.order.PlaceOrder(ctx, bob)
	require.NoError(t, err)

	_, err = f.order.PatchOrder(ctx, manager, b1.ID, OrderPatch{"delivery_crew_id": idJSON(crew.UserID)})
	require.NoError(t, err)

	page, err := f.order.ListOrders(ctx, manager, OrderQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.Total)

	page, err = f.order.ListOrders(ctx, alice, OrderQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)
	for _, o := range page.Items {
		assert.Equal(t, alice.UserID, o.UserID)
	}

	page, err = f.order.ListOrders(ctx, crew, OrderQuery{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, b1.ID, page.Items[0].ID)

	_, err = f.order.GetOrder(ctx, bob, a1.ID)
	var nf *NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestListOrders_OrderingAndStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cat := f.category(t, "mains", "Main Course")
	burger := f.menuItem(t, "Burger", "5.00", cat.ID)
	manager := f.principal(t, "boss", entity.GroupManager)
	alice := f.principal(t, "alice")

	f.addToCart(t, alice, burger.ID, 3)
	big, err := f.order.PlaceOrder(ctx, alice)
	require.NoError(t, err)
	f.addToCart(t, alice, burger.ID, 1)
	small, err := f.order.PlaceOrder(ctx, alice)
	require.NoError(t, err)

	page, err := f.order.ListOrders(ctx, alice, OrderQuery{Ordering: "total"})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, small.ID, page.Items[0].ID)
	assert.Equal(t, big.ID, page.Items[1].ID)

	// default is newest first
	page, err = f.order.ListOrders(ctx, alice, OrderQuery{})
	require.NoError(t, err)
	assert.Equal(t, small.ID, page.Items[0].ID)

	_, err = f.order.PatchOrder(ctx, manager, big.ID, OrderPatch{"status": []byte("1")})
	require.NoError(t, err)
	delivered := int(entity.StatusDelivered)
	page, err = f.order.ListOrders(ctx, alice, OrderQuery{Status: &delivered})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, big.ID, page.Items[0].ID)

	_, err = f.order.ListOrders(ctx, alice, OrderQuery{Ordering: "price"})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "ordering")

	bogus := 7
	_, err = f.order.ListOrders(ctx, alice, OrderQuery{Status: &bogus})
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "status")
}

func TestDeleteOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cat := f.category(t, "mains", "Main Course")
	burger := f.menuItem(t, "Burger", "5.00", cat.ID)
	manager := f.principal(t, "boss", entity.GroupManager)
	alice := f.principal(t, "alice")
	f.addToCart(t, alice, burger.ID, 1)
	o, err := f.order.PlaceOrder(ctx, alice)
	require.NoError(t, err)

	assert.ErrorIs(t, f.order.DeleteOrder(ctx, alice, o.ID), ErrForbidden)
	require.NoError(t, f.order.DeleteOrder(ctx, manager, o.ID))

	var items int64
	require.NoError(t, f.db.Model(&entity.OrderItem{}).Where("order_id = ?", o.ID).Count(&items).Error)
	assert.Zero(t, items)

	var nf *NotFoundError
	assert.ErrorAs(t, f.order.DeleteOrder(ctx, manager, o.ID), &nf)
}

func TestUserLocks_ReleasesEntries(t *testing.T) {
	var l userLocks
	unlock := l.lock(1)
	unlock2 := make(chan func())
	go func() { unlock2 <- l.lock(1) }()
	unlock()
	(<-unlock2)()

	l.mu.Lock()
	defer l.mu.Unlock()
	assert.Empty(t, l.m)
}
