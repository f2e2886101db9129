package services

import (
	"context"
	"testing"

	"littlelemon/entity"
	"littlelemon/pkg/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type orderWorld struct {
	*fixture
	manager, crew, otherCrew, customer Principal
	placed                             *entity.Order
}

// newOrderWorld places one order for the customer and assigns it to crew.
func newOrderWorld(t *testing.T) *orderWorld {
	t.Helper()
	f := newFixture(t)
	w := &orderWorld{
		fixture:   f,
		manager:   f.principal(t, "boss", entity.GroupManager),
		crew:      f.principal(t, "rider", entity.GroupDeliveryCrew),
		otherCrew: f.principal(t, "rider2", entity.GroupDeliveryCrew),
		customer:  f.principal(t, "alice"),
	}
	cat := f.category(t, "mains", "Main Course")
	m := f.menuItem(t, "Burger", "5.00", cat.ID)
	f.addToCart(t, w.customer, m.ID, 1)

	o, err := f.order.PlaceOrder(context.Background(), w.customer)
	require.NoError(t, err)
	o, err = f.order.PatchOrder(context.Background(), w.manager, o.ID, OrderPatch{"delivery_crew_id": idJSON(w.crew.UserID)})
	require.NoError(t, err)
	w.placed = o
	return w
}

func TestCrewSetStatus_PendingToDelivered(t *testing.T) {
	w := newOrderWorld(t)
	ctx := context.Background()

	id := w.placed.ID
	updated, err := w.order.PatchOrder(ctx, w.crew, id, OrderPatch{"status": []byte("1")})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusDelivered, updated.Status)

	// same status again is a no-op
	again, err := w.order.PatchOrder(ctx, w.crew, id, OrderPatch{"status": []byte("1")})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusDelivered, again.Status)
}

func TestCrewSetStatus_DeliveredIsTerminal(t *testing.T) {
	w := newOrderWorld(t)
	ctx := context.Background()
	_, err := w.order.PatchOrder(ctx, w.crew, w.placed.ID, OrderPatch{"status": []byte("1")})
	require.NoError(t, err)

	_, err = w.order.PatchOrder(ctx, w.crew, w.placed.ID, OrderPatch{"status": []byte("0")})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "status")

	stored, err := w.order.GetOrder(ctx, w.manager, w.placed.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusDelivered, stored.Status)
}

func TestCrewSetStatus_OnlyStatus(t *testing.T) {
	w := newOrderWorld(t)
	_, err := w.order.PatchOrder(context.Background(), w.crew, w.placed.ID, OrderPatch{
		"status":           []byte("1"),
		"delivery_crew_id": idJSON(w.otherCrew.UserID),
		"total":            []byte(`"0.00"`),
	})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "delivery_crew_id")
	assert.Contains(t, ve.Fields, "total")
	assert.NotContains(t, ve.Fields, "status")
}

func TestCrewSetStatus_UnassignedOrder(t *testing.T) {
	w := newOrderWorld(t)
	_, err := w.order.PatchOrder(context.Background(), w.otherCrew, w.placed.ID, OrderPatch{"status": []byte("1")})
	var nf *NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestCrewCannotReplace(t *testing.T) {
	w := newOrderWorld(t)
	_, err := w.order.ReplaceOrder(context.Background(), w.crew, w.placed.ID, OrderPatch{
		"user_id": idJSON(w.customer.UserID), "status": []byte("1"),
	})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestCustomerCannotUpdate(t *testing.T) {
	w := newOrderWorld(t)
	_, err := w.order.PatchOrder(context.Background(), w.customer, w.placed.ID, OrderPatch{"status": []byte("1")})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestManagerPatch_NoTransitionGraph(t *testing.T) {
	w := newOrderWorld(t)
	ctx := context.Background()

	o, err := w.order.PatchOrder(ctx, w.manager, w.placed.ID, OrderPatch{"status": []byte("1")})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusDelivered, o.Status)

	o, err = w.order.PatchOrder(ctx, w.manager, w.placed.ID, OrderPatch{"status": []byte("0")})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusPending, o.Status)
}

func TestManagerPatch_CrewMustBeInGroup(t *testing.T) {
	w := newOrderWorld(t)
	_, err := w.order.PatchOrder(context.Background(), w.manager, w.placed.ID, OrderPatch{
		"delivery_crew_id": idJSON(w.customer.UserID),
	})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "delivery_crew_id")
}

func TestManagerPatch_UnassignWithNull(t *testing.T) {
	w := newOrderWorld(t)
	o, err := w.order.PatchOrder(context.Background(), w.manager, w.placed.ID, OrderPatch{
		"delivery_crew_id": []byte("null"),
	})
	require.NoError(t, err)
	assert.Nil(t, o.DeliveryCrewID)
}

func TestManagerPatch_ReadOnlyAndUnknownFields(t *testing.T) {
	w := newOrderWorld(t)
	_, err := w.order.PatchOrder(context.Background(), w.manager, w.placed.ID, OrderPatch{
		"total":       []byte(`"1.00"`),
		"order_items": []byte(`[]`),
		"colour":      []byte(`"red"`),
	})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "read-only field", ve.Fields["total"])
	assert.Equal(t, "read-only field", ve.Fields["order_items"])
	assert.Equal(t, "unknown field", ve.Fields["colour"])

	stored, err := w.order.GetOrder(context.Background(), w.manager, w.placed.ID)
	require.NoError(t, err)
	assert.True(t, dec("5.00").Equal(stored.Total))
}

func TestManagerReplace(t *testing.T) {
	w := newOrderWorld(t)
	ctx := context.Background()

	_, err := w.order.ReplaceOrder(ctx, w.manager, w.placed.ID, OrderPatch{"status": []byte("1")})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "user_id")

	_, err = w.order.ReplaceOrder(ctx, w.manager, w.placed.ID, OrderPatch{
		"user_id": idJSON(9999), "status": []byte("0"),
	})
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "user", nf.Entity)

	o, err := w.order.ReplaceOrder(ctx, w.manager, w.placed.ID, OrderPatch{
		"user_id": idJSON(w.customer.UserID),
		"status":  []byte("1"),
		"date":    []byte(`"2024-05-01"`),
	})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusDelivered, o.Status)
	assert.Nil(t, o.DeliveryCrewID, "full replace without a crew unassigns")
	assert.Equal(t, 2024, o.Date.Year())

	last := w.events.Events()
	assert.Equal(t, events.OrderUpdated, last[len(last)-1].Type)
}

func TestManagerPatch_MissingOrder(t *testing.T) {
	w := newOrderWorld(t)
	_, err := w.order.PatchOrder(context.Background(), w.manager, 4242, OrderPatch{"status": []byte("1")})
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "order", nf.Entity)
}

func TestDecodeStatus(t *testing.T) {
	st, err := decodeStatus([]byte("true"))
	require.NoError(t, err)
	assert.Equal(t, entity.StatusDelivered, st)

	_, err = decodeStatus([]byte("3"))
	assert.Error(t, err)
	_, err = decodeStatus([]byte(`"soon"`))
	assert.Error(t, err)
	_, err = decodeStatus([]byte(" null "))
	assert.Error(t, err)
}

func TestNullStatusRejected(t *testing.T) {
	w := newOrderWorld(t)
	ctx := context.Background()
	_, err := w.order.PatchOrder(ctx, w.manager, w.placed.ID, OrderPatch{"status": []byte("1")})
	require.NoError(t, err)

	_, err = w.order.ReplaceOrder(ctx, w.manager, w.placed.ID, OrderPatch{
		"user_id": idJSON(w.customer.UserID), "status": []byte("null"),
	})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "status")

	_, err = w.order.PatchOrder(ctx, w.crew, w.placed.ID, OrderPatch{"status": []byte("null")})
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "status")

	stored, err := w.order.GetOrder(ctx, w.manager, w.placed.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusDelivered, stored.Status)
}

func TestCanTransition(t *testing.T) {
	assert.True(t, canTransition(entity.StatusPending, entity.StatusDelivered))
	assert.False(t, canTransition(entity.StatusDelivered, entity.StatusPending))
	assert.False(t, canTransition(entity.StatusPending, entity.StatusPending))
}
