package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestOrderStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to OrderStatus
		allowed  bool
	}{
		{OrderStatusPending, OrderStatusPaid, true},
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusPending, OrderStatusShipped, false},
		{OrderStatusPaid, OrderStatusShipped, true},
		{OrderStatusPaid, OrderStatusCancelled, true},
		{OrderStatusPaid, OrderStatusPending, false},
		{OrderStatusShipped, OrderStatusCompleted, true},
		{OrderStatusShipped, OrderStatusCancelled, false},
		{OrderStatusCompleted, OrderStatusCancelled, false},
		{OrderStatusCancelled, OrderStatusPending, false},
		{OrderStatusPending, OrderStatusPending, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestOrderStatusTerminal(t *testing.T) {
	assert.True(t, OrderStatusCompleted.Terminal())
	assert.True(t, OrderStatusCancelled.Terminal())
	assert.False(t, OrderStatusPending.Terminal())
	assert.False(t, OrderStatus("LOST").Terminal())
	assert.False(t, OrderStatus("LOST").Valid())
}

func TestPaymentMethodValid(t *testing.T) {
	for _, m := range PaymentMethods {
		assert.True(t, m.Valid())
	}
	assert.False(t, PaymentMethod("cash").Valid())
	assert.Equal(t, "COD (Cash on Delivery)", PaymentCOD.Label())
}

func TestRoleIsAdmin(t *testing.T) {
	assert.True(t, RoleAdmin.IsAdmin())
	assert.False(t, RoleCustomer.IsAdmin())
	assert.False(t, Role("").IsAdmin())
	assert.False(t, Role("admin").Valid())
}

func TestCartTotals(t *testing.T) {
	cart := Cart{Items: []CartItem{
		{Quantity: 2, Product: Product{Price: decimal.NewFromInt(100000)}},
		{Quantity: 1, Product: Product{Price: decimal.NewFromInt(50000)}},
	}}
	assert.Equal(t, 3, cart.TotalItems())
	assert.True(t, decimal.NewFromInt(250000).Equal(cart.TotalPrice()))
	assert.False(t, cart.IsEmpty())
	assert.True(t, (&Cart{}).IsEmpty())
	assert.True(t, (&Cart{}).TotalPrice().IsZero())
}

func TestProductStockFlags(t *testing.T) {
	assert.True(t, (&Product{Stock: 3}).LowStock())
	assert.False(t, (&Product{Stock: 0}).LowStock())
	assert.False(t, (&Product{Stock: 10}).LowStock())
	assert.False(t, (&Product{Stock: 0}).InStock())
}
