package uber

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menubridge/backend/internal/domain/integration"
)

func signBody(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	secret := "webhook-secret"
	body := []byte(`{"event_type": "orders.order.scheduled"}`)

	t.Run("accepts valid signature", func(t *testing.T) {
		err := VerifySignature(secret, body, signBody(secret, body))
		assert.NoError(t, err)
	})

	t.Run("rejects tampered body", func(t *testing.T) {
		err := VerifySignature(secret, []byte(`{"event_type": "other"}`), signBody(secret, body))
		assert.ErrorIs(t, err, integration.ErrInvalidSignature)
	})

	t.Run("rejects signature made with different secret", func(t *testing.T) {
		err := VerifySignature(secret, body, signBody("other-secret", body))
		assert.ErrorIs(t, err, integration.ErrInvalidSignature)
	})
}

func TestParseOrderEvent(t *testing.T) {
	tenantID := uuid.New()

	t.Run("parses scheduled order with eater and cart", func(t *testing.T) {
		body := []byte(`{
			"event_id": "evt-1",
			"event_type": "orders.order.scheduled",
			"order_id": "ue-order-1",
			"order": {
				"eater": {"name": "Alex"},
				"cart": {
					"items": [
						{"title": "Margherita", "quantity": 2, "price": 1300},
						{"title": {"translations": {"en": "Garlic Bread"}}, "quantity": "1", "price": "600"}
					]
				},
				"payment": {"charges": {"total": {"amount": 3200}}}
			}
		}`)

		evt, err := ParseOrderEvent(tenantID, body)

		require.NoError(t, err)
		assert.Equal(t, tenantID, evt.TenantID)
		assert.Equal(t, "evt-1", evt.EventID)
		assert.Equal(t, integration.OrderEventPlaced, evt.Kind)
		assert.Equal(t, "ue-order-1", evt.MarketplaceOrderID)
		assert.Equal(t, "Alex", evt.CustomerName)
		assert.Equal(t, int64(3200), evt.TotalMinor)
		assert.Equal(t, string(body), evt.RawPayload)

		require.Len(t, evt.Items, 2)
		assert.Equal(t, "Margherita", evt.Items[0].Name)
		assert.Equal(t, 2, evt.Items[0].Quantity)
		assert.Equal(t, int64(1300), evt.Items[0].UnitPriceMinor)
		assert.Equal(t, "Garlic Bread", evt.Items[1].Name)
		assert.Equal(t, 1, evt.Items[1].Quantity)
		assert.Equal(t, int64(600), evt.Items[1].UnitPriceMinor)
	})

	t.Run("parses nested order with consumer and flat items", func(t *testing.T) {
		body := []byte(`{
			"event_type": "eats.order",
			"meta": {"order_id": "ue-order-2"},
			"data": {
				"order": {
					"consumer": {"name": "Sam"},
					"items": [{"title": "Cola", "quantity": 1, "price": 350}]
				}
			}
		}`)

		evt, err := ParseOrderEvent(tenantID, body)

		require.NoError(t, err)
		assert.Equal(t, integration.OrderEventPlaced, evt.Kind)
		assert.Equal(t, "ue-order-2", evt.MarketplaceOrderID)
		assert.Equal(t, "Sam", evt.CustomerName)
		assert.NotEmpty(t, evt.EventID)
		require.Len(t, evt.Items, 1)
		assert.Equal(t, "Cola", evt.Items[0].Name)
	})

	t.Run("classifies cancellation", func(t *testing.T) {
		body := []byte(`{
			"event_id": "evt-3",
			"event_type": "orders.order.cancel_order",
			"order_id": "ue-order-1"
		}`)

		evt, err := ParseOrderEvent(tenantID, body)

		require.NoError(t, err)
		assert.Equal(t, integration.OrderEventCancelled, evt.Kind)
		assert.Equal(t, "ue-order-1", evt.MarketplaceOrderID)
		assert.Empty(t, evt.Items)
	})

	t.Run("classifies unknown event type as ignored", func(t *testing.T) {
		evt, err := ParseOrderEvent(tenantID, []byte(`{"event_id": "evt-4", "event_type": "store.status.changed"}`))

		require.NoError(t, err)
		assert.Equal(t, integration.OrderEventIgnored, evt.Kind)
	})

	t.Run("defaults malformed line item fields", func(t *testing.T) {
		body := []byte(`{
			"event_type": "eats.order",
			"order_id": "ue-order-5",
			"order": {
				"cart": {"items": [{"title": "", "quantity": 0, "price": "n/a"}]}
			}
		}`)

		evt, err := ParseOrderEvent(tenantID, body)

		require.NoError(t, err)
		require.Len(t, evt.Items, 1)
		assert.Equal(t, "Item", evt.Items[0].Name)
		assert.Equal(t, 1, evt.Items[0].Quantity)
		assert.Zero(t, evt.Items[0].UnitPriceMinor)
	})

	t.Run("rejects non-JSON body", func(t *testing.T) {
		_, err := ParseOrderEvent(tenantID, []byte("not json"))
		assert.ErrorIs(t, err, integration.ErrPlatformInvalidResponse)
	})
}
