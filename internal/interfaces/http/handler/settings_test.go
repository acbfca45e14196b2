package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menubridge/backend/internal/application/settings"
	"github.com/menubridge/backend/internal/domain/integration"
	"github.com/menubridge/backend/internal/domain/tenant"
	"github.com/menubridge/backend/internal/interfaces/http/dto"
	"github.com/menubridge/backend/internal/interfaces/http/middleware"
)

type fakeAuthorizer struct {
	exchangedFor []uuid.UUID
	exchangedTo  []string
}

func (f *fakeAuthorizer) AuthorizeURL(_ context.Context, tenantID uuid.UUID) (string, error) {
	return "https://login.example.com/authorize?state=" + tenantID.String(), nil
}

func (f *fakeAuthorizer) ExchangeAuthCode(_ context.Context, tenantID uuid.UUID, code string) (*integration.TokenGrant, error) {
	f.exchangedFor = append(f.exchangedFor, tenantID)
	f.exchangedTo = append(f.exchangedTo, code)
	return &integration.TokenGrant{AccessToken: "at-1", RefreshToken: "rt-1", ExpiresIn: 3600}, nil
}

type settingsFixture struct {
	router     *gin.Engine
	tenantID   uuid.UUID
	repo       *fakeSettingsRepo
	authorizer *fakeAuthorizer
}

func newSettingsFixture(t *testing.T) *settingsFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tenantID := uuid.New()
	st, err := tenant.NewSettings(tenantID)
	require.NoError(t, err)
	st.ProviderAccessToken = "sq-live-token-1234"
	st.MarketplaceClientID = "client-1"
	st.MarketplaceClientSecret = "super-secret-value"

	f := &settingsFixture{
		tenantID:   tenantID,
		repo:       &fakeSettingsRepo{settings: map[uuid.UUID]*tenant.Settings{tenantID: st}},
		authorizer: &fakeAuthorizer{},
	}

	svc := settings.NewService(f.repo, &fakePOSProvider{}, f.authorizer, nil)
	h := NewSettingsHandler(svc, nil)

	f.router = gin.New()
	f.router.Use(middleware.Tenant(middleware.TenantConfig{DefaultTenantID: tenantID}))
	api := f.router.Group("/api/v1")
	h.RegisterRoutes(api)
	return f
}

func (f *settingsFixture) do(method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestSettingsHandler_Get(t *testing.T) {
	f := newSettingsFixture(t)

	w := f.do(http.MethodGet, "/api/v1/settings", nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp.Data.(map[string]interface{})

	// secrets come back masked, never verbatim
	token := data["provider_access_token"].(string)
	assert.NotEqual(t, "sq-live-token-1234", token)
	assert.Contains(t, token, "••••")
	assert.Equal(t, "client-1", data["marketplace_client_id"])
	assert.Equal(t, false, data["marketplace_connected"])
	assert.Equal(t, "PERCENT", data["global_markup_kind"])
}

func TestSettingsHandler_Update(t *testing.T) {
	t.Run("applies a partial edit", func(t *testing.T) {
		f := newSettingsFixture(t)

		w := f.do(http.MethodPut, "/api/v1/settings", gin.H{
			"global_markup_kind":     "FIXED",
			"global_markup_value":    2.5,
			"auto_pause_on_stockout": false,
		})

		assert.Equal(t, http.StatusOK, w.Code)

		stored := f.repo.settings[f.tenantID]
		assert.Equal(t, "FIXED", stored.GlobalMarkupKind.String())
		assert.False(t, stored.AutoPauseOnStockout)
		// untouched fields survive
		assert.Equal(t, "sq-live-token-1234", stored.ProviderAccessToken)
	})

	t.Run("a masked secret does not overwrite the stored value", func(t *testing.T) {
		f := newSettingsFixture(t)

		w := f.do(http.MethodPut, "/api/v1/settings", gin.H{
			"provider_access_token": "sq-live-••••••••",
		})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "sq-live-token-1234", f.repo.settings[f.tenantID].ProviderAccessToken)
	})

	t.Run("rejects an unknown environment", func(t *testing.T) {
		f := newSettingsFixture(t)

		w := f.do(http.MethodPut, "/api/v1/settings", gin.H{
			"provider_environment": "staging",
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestSettingsHandler_Connect(t *testing.T) {
	f := newSettingsFixture(t)

	w := f.do(http.MethodGet, "/api/v1/uber/connect", nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	url := resp.Data.(map[string]interface{})["url"].(string)
	assert.Contains(t, url, "https://login.example.com/authorize")
	assert.Contains(t, url, f.tenantID.String())
}

func TestSettingsHandler_Callback(t *testing.T) {
	t.Run("redeems the code and stores the grant", func(t *testing.T) {
		f := newSettingsFixture(t)

		w := f.do(http.MethodGet, "/api/v1/uber/callback?code=auth-code-1&state="+f.tenantID.String(), nil)

		assert.Equal(t, http.StatusOK, w.Code)
		require.Len(t, f.authorizer.exchangedFor, 1)
		assert.Equal(t, f.tenantID, f.authorizer.exchangedFor[0])
		assert.Equal(t, "auth-code-1", f.authorizer.exchangedTo[0])

		stored := f.repo.settings[f.tenantID]
		assert.Equal(t, "at-1", stored.MarketplaceAccessToken)
		assert.Equal(t, "rt-1", stored.MarketplaceRefreshToken)
		require.NotNil(t, stored.MarketplaceTokenExpiry)
	})

	t.Run("state routes the grant to the tenant that started the flow", func(t *testing.T) {
		f := newSettingsFixture(t)
		otherTenant := uuid.New()

		w := f.do(http.MethodGet, "/api/v1/uber/callback?code=auth-code-2&state="+otherTenant.String(), nil)

		assert.Equal(t, http.StatusOK, w.Code)
		require.Len(t, f.authorizer.exchangedFor, 1)
		assert.Equal(t, otherTenant, f.authorizer.exchangedFor[0])
	})

	t.Run("rejects a missing code", func(t *testing.T) {
		f := newSettingsFixture(t)

		w := f.do(http.MethodGet, "/api/v1/uber/callback", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Empty(t, f.authorizer.exchangedFor)
	})
}

func TestSettingsHandler_TestConnection(t *testing.T) {
	f := newSettingsFixture(t)

	w := f.do(http.MethodGet, "/api/v1/settings/square/test", nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, true, data["connected"])
	assert.Equal(t, "Test Location", data["location_name"])
}
