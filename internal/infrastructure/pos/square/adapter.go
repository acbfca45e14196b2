package square

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"github.com/menubridge/backend/internal/domain/integration"
	"github.com/menubridge/backend/internal/domain/menu"
	"github.com/menubridge/backend/internal/domain/tenant"
)

// maxResponseSize limits the size of API responses we read (10MB)
const maxResponseSize = 10 * 1024 * 1024

// defaultCurrency is used when the inbound order carries no currency code
const defaultCurrency = "USD"

// Adapter implements the POS provider port against the Square API. Per-tenant
// credentials are resolved from stored tenant settings on every call.
type Adapter struct {
	config     *Config
	settings   tenant.SettingsRepository
	httpClient *http.Client
}

// NewAdapter creates a new Square adapter
func NewAdapter(config *Config, settings tenant.SettingsRepository) *Adapter {
	if config == nil {
		config = NewConfig()
	}
	return &Adapter{
		config:   config,
		settings: settings,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// tenantCredentials loads a tenant's settings and resolves call credentials
func (a *Adapter) tenantCredentials(ctx context.Context, tenantID uuid.UUID) (*credentials, error) {
	settings, err := a.settings.FindByTenant(ctx, tenantID)
	if err != nil {
		if errors.Is(err, tenant.ErrSettingsNotFound) {
			return nil, fmt.Errorf("%w: no settings for tenant %s", integration.ErrPlatformNotConfigured, tenantID)
		}
		return nil, err
	}

	creds, err := a.config.credentialsFromSettings(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", integration.ErrPlatformNotConfigured, err)
	}
	return creds, nil
}

// PullCatalog retrieves the full catalog for a tenant, exhausting pagination,
// and resolves image and category references into the returned snapshots
func (a *Adapter) PullCatalog(ctx context.Context, tenantID uuid.UUID) ([]integration.CatalogItemSnapshot, error) {
	creds, err := a.tenantCredentials(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	var objects []catalogObject
	cursor := ""
	for {
		page, err := a.listCatalogPage(ctx, creds, cursor)
		if err != nil {
			return nil, err
		}
		objects = append(objects, page.Objects...)
		if page.Cursor == "" {
			break
		}
		cursor = page.Cursor
	}

	imageURLs := make(map[string]string)
	categoryNames := make(map[string]string)
	for _, obj := range objects {
		switch obj.Type {
		case objectTypeImage:
			if obj.ImageData != nil && obj.ImageData.URL != "" {
				imageURLs[obj.ID] = obj.ImageData.URL
			}
		case objectTypeCategory:
			if obj.CategoryData != nil && obj.CategoryData.Name != "" {
				categoryNames[obj.ID] = obj.CategoryData.Name
			}
		}
	}

	snapshots := make([]integration.CatalogItemSnapshot, 0, len(objects))
	for _, obj := range objects {
		if obj.Type != objectTypeItem || obj.ItemData == nil || obj.ID == "" {
			continue
		}
		data := obj.ItemData

		snap := integration.CatalogItemSnapshot{
			ProviderItemID: obj.ID,
			Name:           data.Name,
			Description:    data.Description,
			BasePrice:      menu.FromMinorUnits(data.FirstVariationPriceMinor()),
			Category:       categoryNames[data.FirstCategoryID()],
			Available:      !obj.IsDeleted,
		}
		if len(data.ImageIDs) > 0 {
			snap.ImageURL = imageURLs[data.ImageIDs[0]]
		}
		snapshots = append(snapshots, snap)
	}

	return snapshots, nil
}

// listCatalogPage fetches one page of the catalog list
func (a *Adapter) listCatalogPage(ctx context.Context, creds *credentials, cursor string) (*listCatalogResponse, error) {
	query := url.Values{}
	query.Set("types", "ITEM,IMAGE,CATEGORY")
	if cursor != "" {
		query.Set("cursor", cursor)
	}

	body, err := a.doRequest(ctx, creds, http.MethodGet, "/v2/catalog/list?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var page listCatalogResponse
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("%w: failed to parse catalog page: %v", integration.ErrPlatformInvalidResponse, err)
	}
	return &page, nil
}

// orderIdempotencyKey derives a stable idempotency key from the marketplace
// order ID so a redelivered webhook cannot create a second order
func orderIdempotencyKey(marketplaceOrderID string) string {
	return "order-bridge-" + marketplaceOrderID
}

// CreateOrder creates an order on Square from an inbound marketplace order
// and returns the Square order ID
func (a *Adapter) CreateOrder(ctx context.Context, req *integration.ProviderOrderRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	creds, err := a.tenantCredentials(ctx, req.TenantID)
	if err != nil {
		return "", err
	}
	if creds.locationID == "" {
		return "", fmt.Errorf("%w: %v", integration.ErrPlatformNotConfigured, ErrMissingLocationID)
	}

	currency := req.Currency
	if currency == "" {
		currency = defaultCurrency
	}

	lineItems := make([]orderLineItem, 0, len(req.Lines))
	for _, line := range req.Lines {
		lineItems = append(lineItems, orderLineItem{
			Name:     line.Name,
			Quantity: strconv.Itoa(line.Quantity),
			BasePriceMoney: money{
				Amount:   line.UnitPriceMinor,
				Currency: currency,
			},
			Note: "UBER - " + req.CustomerName,
		})
	}

	payload := createOrderRequest{
		IdempotencyKey: orderIdempotencyKey(req.MarketplaceOrderID),
		Order: orderBody{
			LocationID: creds.locationID,
			LineItems:  lineItems,
			TicketName: "UBER - " + req.CustomerName,
			State:      "OPEN",
			Metadata: map[string]string{
				"uber_order_id": req.MarketplaceOrderID,
				"customer_name": req.CustomerName,
				"source":        "uber_eats",
			},
		},
	}

	body, err := a.doRequest(ctx, creds, http.MethodPost, "/v2/orders", payload)
	if err != nil {
		return "", err
	}

	var resp createOrderResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("%w: failed to parse order response: %v", integration.ErrPlatformInvalidResponse, err)
	}
	if resp.Order == nil || resp.Order.ID == "" {
		return "", fmt.Errorf("%w: response has no order", integration.ErrPlatformInvalidResponse)
	}
	return resp.Order.ID, nil
}

// RetrieveLocation fetches the configured location for a connection test
func (a *Adapter) RetrieveLocation(ctx context.Context, tenantID uuid.UUID) (*integration.LocationInfo, error) {
	creds, err := a.tenantCredentials(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if creds.locationID == "" {
		return nil, fmt.Errorf("%w: %v", integration.ErrPlatformNotConfigured, ErrMissingLocationID)
	}

	body, err := a.doRequest(ctx, creds, http.MethodGet, "/v2/locations/"+url.PathEscape(creds.locationID), nil)
	if err != nil {
		return nil, err
	}

	var resp retrieveLocationResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: failed to parse location response: %v", integration.ErrPlatformInvalidResponse, err)
	}
	if resp.Location == nil {
		return nil, fmt.Errorf("%w: response has no location", integration.ErrPlatformInvalidResponse)
	}
	return &integration.LocationInfo{
		Name:         resp.Location.Name,
		BusinessName: resp.Location.BusinessName,
	}, nil
}

// doRequest performs one authenticated API call and returns the raw body.
// Non-2xx responses are mapped onto the shared platform errors, carrying the
// flattened Square error detail when present.
func (a *Adapter) doRequest(ctx context.Context, creds *credentials, method, path string, payload interface{}) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("square: failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, creds.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("square: failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+creds.accessToken)
	req.Header.Set("Square-Version", apiVersion)
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
		return nil, fmt.Errorf("square: failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, fmt.Errorf("%w: HTTP %d %s", integration.ErrPlatformAuthFailed, resp.StatusCode, apiErrorDetail(body))
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: HTTP %d %s", integration.ErrPlatformRequestFailed, resp.StatusCode, apiErrorDetail(body))
	}

	return body, nil
}

// apiErrorDetail extracts the flattened error message from a failed response
func apiErrorDetail(body []byte) string {
	var envelope errorEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return ""
	}
	return envelope.ErrorMessage()
}

// Ensure Adapter implements POSProvider
var _ integration.POSProvider = (*Adapter)(nil)
