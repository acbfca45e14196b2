package order

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOrder(t *testing.T) *Order {
	t.Helper()
	o, err := NewOrder(uuid.New(), "mp-order-1", "Alex Doe", decimal.NewFromFloat(25.00), `{"id":"mp-order-1"}`, []Item{
		{Name: "Burger", Quantity: 2, UnitPrice: decimal.NewFromFloat(12.50)},
	})
	require.NoError(t, err)
	return o
}

func TestStatus(t *testing.T) {
	t.Run("IsValid returns true for valid statuses", func(t *testing.T) {
		for _, s := range []Status{StatusPending, StatusAccepted, StatusCompleted, StatusFailed, StatusCancelled} {
			assert.True(t, s.IsValid(), "expected %s to be valid", s)
		}
	})

	t.Run("IsValid returns false for invalid statuses", func(t *testing.T) {
		assert.False(t, Status("SHIPPED").IsValid())
	})

	t.Run("IsTerminal", func(t *testing.T) {
		assert.False(t, StatusPending.IsTerminal())
		assert.False(t, StatusAccepted.IsTerminal())
		assert.True(t, StatusCompleted.IsTerminal())
		assert.True(t, StatusFailed.IsTerminal())
		assert.True(t, StatusCancelled.IsTerminal())
	})

	t.Run("CanTransitionTo", func(t *testing.T) {
		assert.True(t, StatusPending.CanTransitionTo(StatusAccepted))
		assert.True(t, StatusPending.CanTransitionTo(StatusFailed))
		assert.True(t, StatusPending.CanTransitionTo(StatusCancelled))
		assert.False(t, StatusPending.CanTransitionTo(StatusCompleted))

		assert.True(t, StatusAccepted.CanTransitionTo(StatusCompleted))
		assert.True(t, StatusAccepted.CanTransitionTo(StatusFailed))
		assert.True(t, StatusAccepted.CanTransitionTo(StatusCancelled))
		assert.False(t, StatusAccepted.CanTransitionTo(StatusAccepted))

		assert.False(t, StatusCompleted.CanTransitionTo(StatusCancelled))
		assert.False(t, StatusFailed.CanTransitionTo(StatusAccepted))
		assert.False(t, StatusCancelled.CanTransitionTo(StatusAccepted))
	})
}

func TestNewOrder(t *testing.T) {
	t.Run("creates pending order", func(t *testing.T) {
		o := testOrder(t)
		assert.NotEqual(t, uuid.Nil, o.ID)
		assert.Equal(t, "mp-order-1", o.MarketplaceOrderID)
		assert.Equal(t, "Alex Doe", o.CustomerName)
		assert.Equal(t, StatusPending, o.Status)
		assert.Empty(t, o.ProviderOrderID)
		assert.Len(t, o.Items, 1)
	})

	t.Run("substitutes placeholder for empty customer name", func(t *testing.T) {
		o, err := NewOrder(uuid.New(), "mp-order-2", "", decimal.Zero, "{}", nil)
		require.NoError(t, err)
		assert.Equal(t, MarketplaceCustomerPlaceholder, o.CustomerName)
	})

	t.Run("rejects nil tenant", func(t *testing.T) {
		_, err := NewOrder(uuid.Nil, "mp-order-3", "Alex", decimal.Zero, "{}", nil)
		assert.ErrorIs(t, err, ErrInvalidTenantID)
	})

	t.Run("rejects empty marketplace order id", func(t *testing.T) {
		_, err := NewOrder(uuid.New(), "", "Alex", decimal.Zero, "{}", nil)
		assert.ErrorIs(t, err, ErrInvalidMarketplaceOrderID)
	})
}

func TestOrderLifecycle(t *testing.T) {
	t.Run("accept then complete", func(t *testing.T) {
		o := testOrder(t)

		require.NoError(t, o.MarkAccepted("pos-order-1"))
		assert.Equal(t, StatusAccepted, o.Status)
		assert.Equal(t, "pos-order-1", o.ProviderOrderID)

		require.NoError(t, o.Complete())
		assert.Equal(t, StatusCompleted, o.Status)
	})

	t.Run("pending can fail", func(t *testing.T) {
		o := testOrder(t)
		require.NoError(t, o.MarkFailed())
		assert.Equal(t, StatusFailed, o.Status)
	})

	t.Run("cannot complete a pending order", func(t *testing.T) {
		o := testOrder(t)
		assert.ErrorIs(t, o.Complete(), ErrInvalidTransition)
	})

	t.Run("cannot accept twice", func(t *testing.T) {
		o := testOrder(t)
		require.NoError(t, o.MarkAccepted("pos-order-1"))
		assert.ErrorIs(t, o.MarkAccepted("pos-order-2"), ErrInvalidTransition)
		assert.Equal(t, "pos-order-1", o.ProviderOrderID)
	})

	t.Run("terminal orders reject further transitions", func(t *testing.T) {
		o := testOrder(t)
		require.NoError(t, o.MarkFailed())
		assert.ErrorIs(t, o.MarkAccepted("pos-order-1"), ErrInvalidTransition)
		assert.ErrorIs(t, o.Complete(), ErrInvalidTransition)
	})
}

func TestCancel(t *testing.T) {
	t.Run("cancels a pending order", func(t *testing.T) {
		o := testOrder(t)
		o.Cancel()
		assert.Equal(t, StatusCancelled, o.Status)
	})

	t.Run("cancelling again is harmless", func(t *testing.T) {
		o := testOrder(t)
		o.Cancel()
		o.Cancel()
		assert.Equal(t, StatusCancelled, o.Status)
	})

	t.Run("cancels an accepted order", func(t *testing.T) {
		o := testOrder(t)
		require.NoError(t, o.MarkAccepted("pos-order-1"))
		o.Cancel()
		assert.Equal(t, StatusCancelled, o.Status)
	})
}
