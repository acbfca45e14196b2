package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menubridge/backend/internal/application/orders"
	"github.com/menubridge/backend/internal/domain/integration"
	"github.com/menubridge/backend/internal/interfaces/http/dto"
	"github.com/menubridge/backend/internal/interfaces/http/middleware"
)

type ordersFixture struct {
	router   *gin.Engine
	tenantID uuid.UUID
	orders   *fakeOrderRepo
	svc      *orders.Service
}

func newOrdersFixture(t *testing.T) *ordersFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := &ordersFixture{
		tenantID: uuid.New(),
		orders:   &fakeOrderRepo{},
	}
	f.svc = orders.NewService(f.orders, &fakePOSProvider{}, nil)

	h := NewOrderHandler(f.svc, nil)
	f.router = gin.New()
	f.router.Use(middleware.Tenant(middleware.TenantConfig{DefaultTenantID: f.tenantID}))
	api := f.router.Group("/api/v1")
	h.RegisterRoutes(api)
	return f
}

func (f *ordersFixture) bridgeOrder(t *testing.T, marketplaceOrderID string) {
	t.Helper()
	err := f.svc.HandlePlaced(context.Background(), &integration.OrderEvent{
		TenantID:           f.tenantID,
		EventID:            "evt-" + marketplaceOrderID,
		Kind:               integration.OrderEventPlaced,
		MarketplaceOrderID: marketplaceOrderID,
		CustomerName:       "Alex Doe",
		Items: []integration.OrderEventItem{
			{Name: "Burger", Quantity: 2, UnitPriceMinor: 1250},
		},
		TotalMinor: 2500,
		RawPayload: "{}",
	})
	require.NoError(t, err)
}

func TestOrderHandler_List(t *testing.T) {
	t.Run("returns bridged orders newest first", func(t *testing.T) {
		f := newOrdersFixture(t)
		f.bridgeOrder(t, "mp-order-1")
		f.bridgeOrder(t, "mp-order-2")

		req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
		w := httptest.NewRecorder()
		f.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)

		list := resp.Data.([]interface{})
		require.Len(t, list, 2)

		first := list[0].(map[string]interface{})
		assert.Equal(t, "mp-order-2", first["marketplace_order_id"])
		assert.Equal(t, "ACCEPTED", first["status"])
		assert.Equal(t, "pos-order-1", first["provider_order_id"])
		assert.Equal(t, "Alex Doe", first["customer_name"])

		items := first["items"].([]interface{})
		require.Len(t, items, 1)
		item := items[0].(map[string]interface{})
		assert.Equal(t, "Burger", item["name"])
		assert.Equal(t, float64(2), item["quantity"])
	})

	t.Run("limit query caps the listing", func(t *testing.T) {
		f := newOrdersFixture(t)
		f.bridgeOrder(t, "mp-order-1")
		f.bridgeOrder(t, "mp-order-2")

		req := httptest.NewRequest(http.MethodGet, "/api/v1/orders?limit=1", nil)
		w := httptest.NewRecorder()
		f.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Len(t, resp.Data.([]interface{}), 1)
	})

	t.Run("empty tenant returns an empty list", func(t *testing.T) {
		f := newOrdersFixture(t)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
		w := httptest.NewRecorder()
		f.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.Empty(t, resp.Data)
	})
}
