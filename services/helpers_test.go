package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"littlelemon/entity"
	"littlelemon/pkg/events"
	"littlelemon/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fixture struct {
	db     *gorm.DB
	users  *repository.UserRepository
	groups *repository.GroupRepository
	menu   *repository.MenuRepository
	cats   *repository.CategoryRepository
	carts  *repository.CartRepository
	orders *repository.OrderRepository

	cart   *CartService
	order  *OrderService
	group  *GroupService
	events *events.Recorder
}

// newFixture opens a private in-memory database with the schema and groups in place.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&entity.User{}, &entity.Group{}, &entity.Category{}, &entity.MenuItem{},
		&entity.CartEntry{}, &entity.Order{}, &entity.OrderItem{},
	))
	for _, name := range []string{entity.GroupManager, entity.GroupDeliveryCrew} {
		require.NoError(t, db.Create(&entity.Group{Name: name}).Error)
	}

	f := &fixture{
		db:     db,
		users:  repository.NewUserRepository(db),
		groups: repository.NewGroupRepository(db),
		menu:   repository.NewMenuRepository(db),
		cats:   repository.NewCategoryRepository(db),
		carts:  repository.NewCartRepository(db),
		orders: repository.NewOrderRepository(db),
		events: &events.Recorder{},
	}
	f.cart = NewCartService(db, f.carts, f.menu)
	f.order = NewOrderService(db, f.orders, f.carts, f.users, f.groups, f.events)
	f.group = NewGroupService(db, f.groups, f.users)
	return f
}

// principal creates a user in the given groups and returns it as a caller.
func (f *fixture) principal(t *testing.T, username string, groups ...string) Principal {
	t.Helper()
	u := entity.User{Username: username, Password: "x"}
	for _, name := range groups {
		var g entity.Group
		require.NoError(t, f.db.Where("name = ?", name).First(&g).Error)
		u.Groups = append(u.Groups, g)
	}
	require.NoError(t, f.db.Create(&u).Error)
	return Principal{UserID: u.ID, Username: u.Username, Role: entity.RoleFromGroups(groups)}
}

func (f *fixture) category(t *testing.T, slug, title string) entity.Category {
	t.Helper()
	c := entity.Category{Slug: slug, Title: title}
	require.NoError(t, f.db.Create(&c).Error)
	return c
}

func (f *fixture) menuItem(t *testing.T, title, price string, categoryID uint) entity.MenuItem {
	t.Helper()
	m := entity.MenuItem{Title: title, Price: decimal.RequireFromString(price), CategoryID: categoryID}
	require.NoError(t, f.db.Create(&m).Error)
	return m
}

func (f *fixture) addToCart(t *testing.T, p Principal, menuItemID uint, qty int) {
	t.Helper()
	_, err := f.cart.Add(context.Background(), p.UserID, AddToCartIn{MenuItemID: menuItemID, Quantity: qty})
	require.NoError(t, err)
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func idJSON(id uint) json.RawMessage { return json.RawMessage(strconv.FormatUint(uint64(id), 10)) }
