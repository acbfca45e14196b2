package uber

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/menubridge/backend/internal/domain/integration"
	"github.com/menubridge/backend/internal/domain/tenant"
)

// maxResponseSize limits the size of API responses we read (10MB)
const maxResponseSize = 10 * 1024 * 1024

// defaultCurrency is used when a listing push carries no currency code
const defaultCurrency = "USD"

// Adapter implements the marketplace and OAuth ports against the Uber Eats
// API. Per-tenant credentials and tokens live in stored tenant settings;
// expired access tokens are refreshed transparently, single-flighted per
// tenant so concurrent calls share one refresh.
type Adapter struct {
	config     *Config
	settings   tenant.SettingsRepository
	httpClient *http.Client
	refresh    singleflight.Group
}

// NewAdapter creates a new Uber adapter
func NewAdapter(config *Config, settings tenant.SettingsRepository) *Adapter {
	if config == nil {
		config = NewConfig("")
	}
	return &Adapter{
		config:   config,
		settings: settings,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// loadSettings loads tenant settings, mapping absence onto the platform
// not-configured error
func (a *Adapter) loadSettings(ctx context.Context, tenantID uuid.UUID) (*tenant.Settings, error) {
	settings, err := a.settings.FindByTenant(ctx, tenantID)
	if err != nil {
		if errors.Is(err, tenant.ErrSettingsNotFound) {
			return nil, fmt.Errorf("%w: no settings for tenant %s", integration.ErrPlatformNotConfigured, tenantID)
		}
		return nil, err
	}
	return settings, nil
}

// accessToken returns a usable access token for a tenant, refreshing it when
// the stored one is missing or inside the expiry buffer
func (a *Adapter) accessToken(ctx context.Context, tenantID uuid.UUID) (string, error) {
	settings, err := a.loadSettings(ctx, tenantID)
	if err != nil {
		return "", err
	}
	if settings.MarketplaceTokenValid(time.Now()) {
		return settings.MarketplaceAccessToken, nil
	}

	token, err, _ := a.refresh.Do(tenantID.String(), func() (interface{}, error) {
		return a.refreshToken(ctx, tenantID)
	})
	if err != nil {
		return "", err
	}
	return token.(string), nil
}

// refreshToken performs a refresh-token grant and persists the result. The
// settings are reloaded first so a refresh completed by another caller is
// picked up instead of repeated.
func (a *Adapter) refreshToken(ctx context.Context, tenantID uuid.UUID) (string, error) {
	settings, err := a.loadSettings(ctx, tenantID)
	if err != nil {
		return "", err
	}
	if settings.MarketplaceTokenValid(time.Now()) {
		return settings.MarketplaceAccessToken, nil
	}

	if settings.MarketplaceRefreshToken == "" {
		return "", fmt.Errorf("%w: %v", integration.ErrPlatformNotConfigured, tenant.ErrNoMarketplaceToken)
	}
	if settings.MarketplaceClientID == "" || settings.MarketplaceClientSecret == "" {
		return "", fmt.Errorf("%w: %v", integration.ErrPlatformNotConfigured, tenant.ErrNoMarketplaceClient)
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", settings.MarketplaceRefreshToken)
	form.Set("client_id", settings.MarketplaceClientID)
	form.Set("client_secret", settings.MarketplaceClientSecret)

	grant, err := a.tokenGrant(ctx, form)
	if err != nil {
		return "", fmt.Errorf("%w: %v", integration.ErrTokenRefreshFailed, err)
	}

	settings.ApplyTokenGrant(grant.AccessToken, grant.RefreshToken, grant.ExpiresIn, time.Now())
	if err := a.settings.Save(ctx, settings); err != nil {
		return "", err
	}
	return grant.AccessToken, nil
}

// tokenGrant posts a form to the OAuth token endpoint
func (a *Adapter) tokenGrant(ctx context.Context, form url.Values) (*integration.TokenGrant, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.config.tokenURL(), strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("uber: failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", integration.ErrPlatformRequestFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("uber: failed to read token response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: HTTP %d", integration.ErrPlatformAuthFailed, resp.StatusCode)
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, fmt.Errorf("%w: failed to parse token response: %v", integration.ErrPlatformInvalidResponse, err)
	}
	if tr.AccessToken == "" {
		return nil, fmt.Errorf("%w: token response has no access token", integration.ErrPlatformInvalidResponse)
	}

	return &integration.TokenGrant{
		AccessToken:  tr.AccessToken,
		RefreshToken: tr.RefreshToken,
		ExpiresIn:    tr.ExpiresIn,
	}, nil
}

// ---------------------------------------------------------------------------
// Marketplace port
// ---------------------------------------------------------------------------

// PushItem creates or updates one listing and returns the listing ID
func (a *Adapter) PushItem(ctx context.Context, tenantID uuid.UUID, push *integration.ListingPush) (string, error) {
	if err := push.Validate(); err != nil {
		return "", err
	}

	settings, err := a.loadSettings(ctx, tenantID)
	if err != nil {
		return "", err
	}
	if settings.MarketplaceStoreID == "" {
		return "", fmt.Errorf("%w: %v", integration.ErrPlatformNotConfigured, tenant.ErrNoMarketplaceStore)
	}

	token, err := a.accessToken(ctx, tenantID)
	if err != nil {
		return "", err
	}

	currency := push.Currency
	if currency == "" {
		currency = defaultCurrency
	}

	payload := listingPayload{
		Title:     translatedText{Translations: map[string]string{"en": push.Name}},
		PriceInfo: priceInfo{Price: push.PriceMinor, CurrencyCode: currency},
		TaxInfo:   taxInfo{TaxRate: 0, TaxType: "GST"},
		ImageURL:  push.ImageURL,
	}
	if push.Description != "" {
		payload.Description = &translatedText{Translations: map[string]string{"en": push.Description}}
	}

	itemsPath := fmt.Sprintf("/eats/stores/%s/menus/items", url.PathEscape(settings.MarketplaceStoreID))

	if push.MarketplaceItemID != "" {
		path := itemsPath + "/" + url.PathEscape(push.MarketplaceItemID)
		if _, err := a.doRequest(ctx, token, http.MethodPut, path, payload); err != nil {
			return "", err
		}
		return push.MarketplaceItemID, nil
	}

	body, err := a.doRequest(ctx, token, http.MethodPost, itemsPath, payload)
	if err != nil {
		return "", err
	}

	var resp createItemResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("%w: failed to parse item response: %v", integration.ErrPlatformInvalidResponse, err)
	}
	if resp.ListingID() == "" {
		return "", fmt.Errorf("%w: item response has no ID", integration.ErrPlatformInvalidResponse)
	}
	return resp.ListingID(), nil
}

// SetItemPaused pauses or unpauses a listing
func (a *Adapter) SetItemPaused(ctx context.Context, tenantID uuid.UUID, marketplaceItemID string, paused bool) error {
	if marketplaceItemID == "" {
		return errors.New("uber: marketplace item ID is required")
	}

	settings, err := a.loadSettings(ctx, tenantID)
	if err != nil {
		return err
	}
	if settings.MarketplaceStoreID == "" {
		return fmt.Errorf("%w: %v", integration.ErrPlatformNotConfigured, tenant.ErrNoMarketplaceStore)
	}

	token, err := a.accessToken(ctx, tenantID)
	if err != nil {
		return err
	}

	path := fmt.Sprintf("/eats/stores/%s/menus/items/%s/pause",
		url.PathEscape(settings.MarketplaceStoreID), url.PathEscape(marketplaceItemID))
	_, err = a.doRequest(ctx, token, http.MethodPatch, path, pausePayload{Paused: paused})
	return err
}

// ---------------------------------------------------------------------------
// OAuth port
// ---------------------------------------------------------------------------

// AuthorizeURL builds the user-facing authorization URL; state carries the
// tenant ID through the redirect
func (a *Adapter) AuthorizeURL(ctx context.Context, tenantID uuid.UUID) (string, error) {
	settings, err := a.loadSettings(ctx, tenantID)
	if err != nil {
		return "", err
	}
	if settings.MarketplaceClientID == "" {
		return "", fmt.Errorf("%w: %v", integration.ErrPlatformNotConfigured, tenant.ErrNoMarketplaceClient)
	}

	params := url.Values{}
	params.Set("response_type", "code")
	params.Set("client_id", settings.MarketplaceClientID)
	params.Set("redirect_uri", a.config.RedirectURL)
	params.Set("scope", OAuthScope)
	params.Set("state", tenantID.String())

	return AuthorizeBaseURL + "?" + params.Encode(), nil
}

// ExchangeAuthCode redeems an authorization code; the caller persists the
// returned grant on the tenant settings
func (a *Adapter) ExchangeAuthCode(ctx context.Context, tenantID uuid.UUID, code string) (*integration.TokenGrant, error) {
	settings, err := a.loadSettings(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if settings.MarketplaceClientID == "" || settings.MarketplaceClientSecret == "" {
		return nil, fmt.Errorf("%w: %v", integration.ErrPlatformNotConfigured, tenant.ErrNoMarketplaceClient)
	}

	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", a.config.RedirectURL)
	form.Set("client_id", settings.MarketplaceClientID)
	form.Set("client_secret", settings.MarketplaceClientSecret)

	return a.tokenGrant(ctx, form)
}

// doRequest performs one authenticated API call and returns the raw body
func (a *Adapter) doRequest(ctx context.Context, token, method, path string, payload interface{}) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("uber: failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.config.apiBaseURL()+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("uber: failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", integration.ErrPlatformRequestFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("uber: failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, fmt.Errorf("%w: HTTP %d", integration.ErrPlatformAuthFailed, resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: HTTP %d %s", integration.ErrPlatformRequestFailed, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return body, nil
}

// Ensure Adapter implements both marketplace ports
var (
	_ integration.Marketplace           = (*Adapter)(nil)
	_ integration.MarketplaceAuthorizer = (*Adapter)(nil)
)
