package uber

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// tokenResponse is the body of the OAuth token endpoint
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

// translatedText is the localized-string shape of the menu API
type translatedText struct {
	Translations map[string]string `json:"translations"`
}

type priceInfo struct {
	Price        int64  `json:"price"`
	CurrencyCode string `json:"currency_code"`
}

type taxInfo struct {
	TaxRate float64 `json:"tax_rate"`
	TaxType string  `json:"tax_type"`
}

// listingPayload is the body of the menu item create/update calls
type listingPayload struct {
	Title       translatedText  `json:"title"`
	Description *translatedText `json:"description,omitempty"`
	PriceInfo   priceInfo       `json:"price_info"`
	TaxInfo     taxInfo         `json:"tax_info"`
	ImageURL    string          `json:"image_url,omitempty"`
}

// createItemResponse is the body returned by the item create call; the ID
// field name varies between API revisions
type createItemResponse struct {
	ID     string `json:"id"`
	ItemID string `json:"item_id"`
}

// ListingID returns whichever ID field the platform populated
func (r *createItemResponse) ListingID() string {
	if r.ID != "" {
		return r.ID
	}
	return r.ItemID
}

// pausePayload is the body of the item pause call
type pausePayload struct {
	Paused bool `json:"paused"`
}

// ---------------------------------------------------------------------------
// Webhook wire types
// ---------------------------------------------------------------------------

// flexString decodes a field that arrives either as a plain string or as a
// localized-text object
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*s = ""
		return nil
	}

	if data[0] == '"' {
		var plain string
		if err := json.Unmarshal(data, &plain); err != nil {
			return err
		}
		*s = flexString(plain)
		return nil
	}

	var localized translatedText
	if err := json.Unmarshal(data, &localized); err != nil {
		// Unknown shape, drop rather than fail the whole event
		*s = ""
		return nil
	}
	if v, ok := localized.Translations["en"]; ok {
		*s = flexString(v)
		return nil
	}
	for _, v := range localized.Translations {
		*s = flexString(v)
		return nil
	}
	*s = ""
	return nil
}

// flexInt decodes a field that arrives either as a JSON number or as a
// numeric string; malformed values decode to zero
type flexInt int64

func (n *flexInt) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if raw == "" || raw == "null" {
		*n = 0
		return nil
	}
	parsed, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		*n = 0
		return nil
	}
	*n = flexInt(parsed)
	return nil
}

// webhookPayload is the envelope of an inbound order webhook; Uber has
// shipped several variants, so most fields are optional with fallbacks
type webhookPayload struct {
	EventID   string `json:"event_id"`
	EventType string `json:"event_type"`
	OrderID   string `json:"order_id"`
	Meta      struct {
		OrderID string `json:"order_id"`
	} `json:"meta"`
	Order *webhookOrder `json:"order"`
	Data  struct {
		Order *webhookOrder `json:"order"`
	} `json:"data"`
}

// ResolveOrderID prefers the top-level order ID over the meta block
func (p *webhookPayload) ResolveOrderID() string {
	if p.OrderID != "" {
		return p.OrderID
	}
	return p.Meta.OrderID
}

// ResolveOrder returns whichever order block the payload carries
func (p *webhookPayload) ResolveOrder() *webhookOrder {
	if p.Order != nil {
		return p.Order
	}
	return p.Data.Order
}

type webhookOrder struct {
	Eater struct {
		Name string `json:"name"`
	} `json:"eater"`
	Consumer struct {
		Name string `json:"name"`
	} `json:"consumer"`
	Cart struct {
		Items []webhookOrderItem `json:"items"`
	} `json:"cart"`
	Items   []webhookOrderItem `json:"items"`
	Payment struct {
		Charges struct {
			Total struct {
				Amount flexInt `json:"amount"`
			} `json:"total"`
		} `json:"charges"`
	} `json:"payment"`
}

// CustomerName prefers the eater block over the consumer block
func (o *webhookOrder) CustomerName() string {
	if o.Eater.Name != "" {
		return o.Eater.Name
	}
	return o.Consumer.Name
}

// LineItems prefers the cart block over the flat items list
func (o *webhookOrder) LineItems() []webhookOrderItem {
	if len(o.Cart.Items) > 0 {
		return o.Cart.Items
	}
	return o.Items
}

type webhookOrderItem struct {
	Title    flexString `json:"title"`
	Quantity flexInt    `json:"quantity"`
	Price    flexInt    `json:"price"`
}
