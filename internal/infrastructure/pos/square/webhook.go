package square

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/menubridge/backend/internal/domain/integration"
)

// SignatureHeader is the request header carrying the webhook signature
const SignatureHeader = "x-square-hmacsha256-signature"

// EventTypeInventoryCountUpdated is the stock event type the bridge handles
const EventTypeInventoryCountUpdated = "inventory.count.updated"

// VerifySignature checks a webhook body against its signature header value.
// Square signs base64(HMAC-SHA256(key, notificationURL + body)).
func VerifySignature(signatureKey, notificationURL string, body []byte, signature string) error {
	mac := hmac.New(sha256.New, []byte(signatureKey))
	mac.Write([]byte(notificationURL))
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return integration.ErrInvalidSignature
	}
	return nil
}

// stockWebhookPayload is the wire shape of an inventory webhook
type stockWebhookPayload struct {
	EventID string `json:"event_id"`
	Type    string `json:"type"`
	Data    struct {
		Object struct {
			InventoryCounts []inventoryCount `json:"inventory_counts"`
		} `json:"object"`
	} `json:"data"`
}

// inventoryCount is one per-object count; quantity arrives as a string
type inventoryCount struct {
	CatalogObjectID string `json:"catalog_object_id"`
	State           string `json:"state"`
	Quantity        string `json:"quantity"`
}

// ParseStockEvent normalizes an inbound inventory webhook body. The event ID
// falls back to a random one when the payload omits it so deduplication still
// has a key.
func ParseStockEvent(tenantID uuid.UUID, body []byte) (*integration.StockEvent, error) {
	var payload stockWebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: failed to parse stock webhook: %v", integration.ErrPlatformInvalidResponse, err)
	}

	eventID := payload.EventID
	if eventID == "" {
		eventID = uuid.NewString()
	}

	evt := &integration.StockEvent{
		TenantID:  tenantID,
		EventID:   eventID,
		EventType: payload.Type,
	}

	for _, count := range payload.Data.Object.InventoryCounts {
		quantity, err := strconv.ParseInt(count.Quantity, 10, 64)
		if err != nil {
			quantity = 0
		}
		evt.Counts = append(evt.Counts, integration.StockCount{
			ProviderItemID: count.CatalogObjectID,
			State:          count.State,
			Quantity:       quantity,
		})
	}

	return evt, nil
}
