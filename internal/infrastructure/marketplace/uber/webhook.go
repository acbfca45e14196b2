package uber

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/menubridge/backend/internal/domain/integration"
)

// SignatureHeader is the request header carrying the webhook signature
const SignatureHeader = "x-uber-signature"

// Webhook event types the bridge recognizes
const (
	EventTypeOrderScheduled = "orders.order.scheduled"
	EventTypeOrderUpcoming  = "orders.order.upcoming"
	EventTypeOrder          = "eats.order"
	EventTypeOrderCancel    = "orders.order.cancel_order"
)

// VerifySignature checks a webhook body against its signature header value.
// Uber signs hex(HMAC-SHA256(secret, body)).
func VerifySignature(secret string, body []byte, signature string) error {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return integration.ErrInvalidSignature
	}
	return nil
}

// eventKind maps a raw event type onto the normalized kind
func eventKind(eventType string) integration.OrderEventKind {
	switch eventType {
	case EventTypeOrderScheduled, EventTypeOrderUpcoming, EventTypeOrder:
		return integration.OrderEventPlaced
	case EventTypeOrderCancel:
		return integration.OrderEventCancelled
	default:
		return integration.OrderEventIgnored
	}
}

// ParseOrderEvent normalizes an inbound order webhook body. Line item prices
// and the order total arrive in minor units. The event ID falls back to a
// random one when the payload omits it so deduplication still has a key.
func ParseOrderEvent(tenantID uuid.UUID, body []byte) (*integration.OrderEvent, error) {
	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: failed to parse order webhook: %v", integration.ErrPlatformInvalidResponse, err)
	}

	eventID := payload.EventID
	if eventID == "" {
		eventID = uuid.NewString()
	}

	evt := &integration.OrderEvent{
		TenantID:           tenantID,
		EventID:            eventID,
		EventType:          payload.EventType,
		Kind:               eventKind(payload.EventType),
		MarketplaceOrderID: payload.ResolveOrderID(),
		RawPayload:         string(body),
	}

	order := payload.ResolveOrder()
	if order == nil {
		return evt, nil
	}

	evt.CustomerName = order.CustomerName()
	evt.TotalMinor = int64(order.Payment.Charges.Total.Amount)

	for _, item := range order.LineItems() {
		name := string(item.Title)
		if name == "" {
			name = "Item"
		}
		quantity := int(item.Quantity)
		if quantity <= 0 {
			quantity = 1
		}
		evt.Items = append(evt.Items, integration.OrderEventItem{
			Name:           name,
			Quantity:       quantity,
			UnitPriceMinor: int64(item.Price),
		})
	}

	return evt, nil
}
