package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/models"
)

func orderStatus(t *testing.T, s *OrderService, admin *models.User, id uint) models.OrderStatus {
	t.Helper()
	order, err := s.Get(context.Background(), adminActor(admin), id)
	require.NoError(t, err)
	return order.Status
}

func TestUpdateStatusRequiresAdmin(t *testing.T) {
	db := newTestDB(t)
	orders := NewOrderService(db)
	admin := seedUser(t, db, "admin", models.RoleAdmin)
	customer := seedUser(t, db, "buyer", models.RoleCustomer)
	order := seedOrder(t, db, customer, "ORD202405170001", models.OrderStatusPending, 1000, testNow)

	_, err := orders.UpdateStatus(context.Background(), customerActor(customer), order.ID, models.OrderStatusPaid)
	require.ErrorIs(t, err, ErrForbidden)
	assert.Equal(t, models.OrderStatusPending, orderStatus(t, orders, admin, order.ID))

	_, err = orders.UpdateStatus(context.Background(), Actor{}, order.ID, models.OrderStatusPaid)
	require.ErrorIs(t, err, ErrUnauthenticated)
}

func TestUpdateStatusTransitions(t *testing.T) {
	db := newTestDB(t)
	orders := NewOrderService(db)
	admin := seedUser(t, db, "admin", models.RoleAdmin)
	customer := seedUser(t, db, "buyer", models.RoleCustomer)
	order := seedOrder(t, db, customer, "ORD202405170001", models.OrderStatusPending, 1000, testNow)
	ctx := context.Background()

	updated, err := orders.UpdateStatus(ctx, adminActor(admin), order.ID, models.OrderStatusPaid)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPaid, updated.Status)

	_, err = orders.UpdateStatus(ctx, adminActor(admin), order.ID, models.OrderStatusPending)
	require.ErrorIs(t, err, ErrInvalidTransition)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, models.OrderStatusPaid, orderStatus(t, orders, admin, order.ID))

	_, err = orders.UpdateStatus(ctx, adminActor(admin), order.ID, "REFUNDED")
	require.ErrorIs(t, err, ErrValidation)

	_, err = orders.UpdateStatus(ctx, adminActor(admin), 9999, models.OrderStatusPaid)
	require.ErrorIs(t, err, ErrNotFound)

	for _, next := range []models.OrderStatus{models.OrderStatusShipped, models.OrderStatusCompleted} {
		_, err = orders.UpdateStatus(ctx, adminActor(admin), order.ID, next)
		require.NoError(t, err)
	}
	_, err = orders.UpdateStatus(ctx, adminActor(admin), order.ID, models.OrderStatusCancelled)
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestBulkUpdateStatus(t *testing.T) {
	db := newTestDB(t)
	orders := NewOrderService(db)
	admin := seedUser(t, db, "admin", models.RoleAdmin)
	customer := seedUser(t, db, "buyer", models.RoleCustomer)
	pending := seedOrder(t, db, customer, "ORD202405170001", models.OrderStatusPending, 1000, testNow)
	paid := seedOrder(t, db, customer, "ORD202405170002", models.OrderStatusPaid, 1000, testNow)
	completed := seedOrder(t, db, customer, "ORD202405170003", models.OrderStatusCompleted, 1000, testNow)
	ctx := context.Background()

	ids := []uint{pending.ID, paid.ID, completed.ID, pending.ID, 9999}
	result, err := orders.BulkUpdateStatus(ctx, adminActor(admin), ids, models.OrderStatusCancelled)
	require.NoError(t, err)

	assert.ElementsMatch(t, []uint{pending.ID, paid.ID}, result.Updated)
	assert.Equal(t, []uint{completed.ID}, result.Skipped)
	assert.Equal(t, []uint{9999}, result.NotFound)

	assert.Equal(t, models.OrderStatusCancelled, orderStatus(t, orders, admin, pending.ID))
	assert.Equal(t, models.OrderStatusCancelled, orderStatus(t, orders, admin, paid.ID))
	assert.Equal(t, models.OrderStatusCompleted, orderStatus(t, orders, admin, completed.ID))

	_, err = orders.BulkUpdateStatus(ctx, customerActor(customer), []uint{pending.ID}, models.OrderStatusPaid)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = orders.BulkUpdateStatus(ctx, adminActor(admin), nil, models.OrderStatusPaid)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestGetOrderOwnership(t *testing.T) {
	db := newTestDB(t)
	orders := NewOrderService(db)
	owner := seedUser(t, db, "owner", models.RoleCustomer)
	other := seedUser(t, db, "other", models.RoleCustomer)
	admin := seedUser(t, db, "admin", models.RoleAdmin)
	order := seedOrder(t, db, owner, "ORD202405170001", models.OrderStatusPending, 1000, testNow)
	ctx := context.Background()

	found, err := orders.Get(ctx, customerActor(owner), order.ID)
	require.NoError(t, err)
	assert.Equal(t, "owner", found.User.Username)

	_, err = orders.Get(ctx, customerActor(other), order.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = orders.Get(ctx, Actor{}, order.ID)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = orders.Get(ctx, adminActor(admin), order.ID)
	assert.NoError(t, err)
}

func TestListOrders(t *testing.T) {
	db := newTestDB(t)
	orders := NewOrderService(db)
	alice := seedUser(t, db, "alice", models.RoleCustomer)
	bob := seedUser(t, db, "bob", models.RoleCustomer)
	admin := seedUser(t, db, "admin", models.RoleAdmin)
	seedOrder(t, db, alice, "ORD202405170001", models.OrderStatusPending, 1000, testNow.Add(-2*time.Hour))
	seedOrder(t, db, alice, "ORD202405170002", models.OrderStatusPaid, 1000, testNow.Add(-time.Hour))
	seedOrder(t, db, bob, "ORD202405170003", models.OrderStatusPending, 1000, testNow)
	ctx := context.Background()

	mine, err := orders.ListForUser(ctx, alice.ID, Page{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), mine.TotalCount)
	require.Len(t, mine.Orders, 2)
	assert.Equal(t, "ORD202405170002", mine.Orders[0].OrderNumber)

	pending, err := orders.AdminList(ctx, adminActor(admin), AdminOrderFilter{Status: models.OrderStatusPending})
	require.NoError(t, err)
	assert.Equal(t, int64(2), pending.TotalCount)

	byUser, err := orders.AdminList(ctx, adminActor(admin), AdminOrderFilter{Query: "BOB"})
	require.NoError(t, err)
	require.Len(t, byUser.Orders, 1)
	assert.Equal(t, "ORD202405170003", byUser.Orders[0].OrderNumber)

	byNumber, err := orders.AdminList(ctx, adminActor(admin), AdminOrderFilter{Query: "0001"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), byNumber.TotalCount)

	_, err = orders.AdminList(ctx, customerActor(alice), AdminOrderFilter{})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestAttachReceipt(t *testing.T) {
	db := newTestDB(t)
	orders := NewOrderService(db)
	owner := seedUser(t, db, "owner", models.RoleCustomer)
	other := seedUser(t, db, "other", models.RoleCustomer)
	order := seedOrder(t, db, owner, "ORD202405170001", models.OrderStatusPending, 1000, testNow)
	ctx := context.Background()

	_, err := orders.AttachReceipt(ctx, customerActor(other), order.ID, "/uploads/receipts/a.png")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = orders.AttachReceipt(ctx, customerActor(owner), order.ID, "")
	assert.ErrorIs(t, err, ErrValidation)

	updated, err := orders.AttachReceipt(ctx, customerActor(owner), order.ID, "/uploads/receipts/a.png")
	require.NoError(t, err)
	assert.Equal(t, "/uploads/receipts/a.png", updated.PaymentReceipt)

	found, err := orders.Get(ctx, customerActor(owner), order.ID)
	require.NoError(t, err)
	assert.Equal(t, "/uploads/receipts/a.png", found.PaymentReceipt)
}
