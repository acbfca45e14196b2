package square

import (
	"fmt"
	"strings"
)

// Catalog object type discriminators
const (
	objectTypeItem     = "ITEM"
	objectTypeImage    = "IMAGE"
	objectTypeCategory = "CATEGORY"
)

// apiError is one entry of the errors array Square returns on failure
type apiError struct {
	Category string `json:"category"`
	Code     string `json:"code"`
	Detail   string `json:"detail"`
}

// errorEnvelope is the error shape shared by all Square responses
type errorEnvelope struct {
	Errors []apiError `json:"errors"`
}

// ErrorMessage flattens the errors array into a single message
func (e *errorEnvelope) ErrorMessage() string {
	if len(e.Errors) == 0 {
		return ""
	}
	parts := make([]string, 0, len(e.Errors))
	for _, apiErr := range e.Errors {
		if apiErr.Detail != "" {
			parts = append(parts, fmt.Sprintf("%s: %s", apiErr.Code, apiErr.Detail))
			continue
		}
		parts = append(parts, apiErr.Code)
	}
	return strings.Join(parts, "; ")
}

// money is an integer amount of minor currency units
type money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency,omitempty"`
}

// catalogObject is one node of the catalog list response; the populated data
// field depends on the type discriminator. Item variations reuse the same
// envelope on the wire.
type catalogObject struct {
	Type      string `json:"type"`
	ID        string `json:"id"`
	IsDeleted bool   `json:"is_deleted"`

	ItemData          *itemData          `json:"item_data,omitempty"`
	ItemVariationData *itemVariationData `json:"item_variation_data,omitempty"`
	ImageData         *imageData         `json:"image_data,omitempty"`
	CategoryData      *categoryData      `json:"category_data,omitempty"`
}

type itemData struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Variations  []catalogObject `json:"variations"`
	ImageIDs    []string        `json:"image_ids"`
	Categories  []categoryRef   `json:"categories"`
	// CategoryID is the legacy single-category field still present on older
	// catalogs
	CategoryID string `json:"category_id"`
}

// FirstCategoryID prefers the categories array over the legacy field
func (d *itemData) FirstCategoryID() string {
	if len(d.Categories) > 0 {
		return d.Categories[0].ID
	}
	return d.CategoryID
}

// FirstVariationPriceMinor returns the price of the first variation in minor
// units, zero when absent
func (d *itemData) FirstVariationPriceMinor() int64 {
	if len(d.Variations) == 0 {
		return 0
	}
	v := d.Variations[0].ItemVariationData
	if v == nil || v.PriceMoney == nil {
		return 0
	}
	return v.PriceMoney.Amount
}

type categoryRef struct {
	ID string `json:"id"`
}

type imageData struct {
	URL string `json:"url"`
}

type categoryData struct {
	Name string `json:"name"`
}

// itemVariationData carries the price of one item variation
type itemVariationData struct {
	PriceMoney *money `json:"price_money"`
}

// listCatalogResponse is one page of GET /v2/catalog/list
type listCatalogResponse struct {
	errorEnvelope
	Cursor  string          `json:"cursor"`
	Objects []catalogObject `json:"objects"`
}

// createOrderRequest is the body of POST /v2/orders
type createOrderRequest struct {
	IdempotencyKey string    `json:"idempotency_key"`
	Order          orderBody `json:"order"`
}

type orderBody struct {
	LocationID string            `json:"location_id"`
	LineItems  []orderLineItem   `json:"line_items"`
	TicketName string            `json:"ticket_name,omitempty"`
	State      string            `json:"state,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

type orderLineItem struct {
	Name           string `json:"name"`
	Quantity       string `json:"quantity"`
	BasePriceMoney money  `json:"base_price_money"`
	Note           string `json:"note,omitempty"`
}

// createOrderResponse is the body returned by POST /v2/orders
type createOrderResponse struct {
	errorEnvelope
	Order *struct {
		ID string `json:"id"`
	} `json:"order"`
}

// retrieveLocationResponse is the body returned by GET /v2/locations/{id}
type retrieveLocationResponse struct {
	errorEnvelope
	Location *struct {
		Name         string `json:"name"`
		BusinessName string `json:"business_name"`
	} `json:"location"`
}
