// Package events maps inbound wire event names to logical order events.
// The upstream protocol is not fully settled, so the same logical event
// arrives under several spellings; the lookup table below is the single
// place that contract lives, built once instead of scattering string
// comparisons through handler code.
package events

import (
	"encoding/json"
	"errors"

	"vn.io.terango/notifier/internal/domain"
)

// Kind is the logical classification of an inbound order event.
type Kind string

const (
	KindOrderCreated       Kind = "ORDER_CREATED"
	KindOrderStatusChanged Kind = "ORDER_STATUS_CHANGED"
)

// Descriptor describes how a wire event is handled once resolved.
// The new_order_update spelling diverges from order_status_changed on
// purpose: it additionally plays the alert sound and targets the store
// dashboard cache. The protocol owner has not confirmed whether that is
// drift, so the two are kept distinct rather than unified.
type Descriptor struct {
	Kind Kind
	// Sound plays the audible alert when this event arrives.
	Sound bool
	// Dashboard additionally invalidates the store dashboard cache key.
	Dashboard bool
}

var wireEvents = map[string]Descriptor{
	"new_order":    {Kind: KindOrderCreated, Sound: true},
	"new-order":    {Kind: KindOrderCreated, Sound: true},
	"orderCreated": {Kind: KindOrderCreated, Sound: true},

	"order_status_changed": {Kind: KindOrderStatusChanged},
	"order-status-changed": {Kind: KindOrderStatusChanged},
	"new_order_update":     {Kind: KindOrderStatusChanged, Sound: true, Dashboard: true},
}

// Resolve looks up the descriptor for a wire event name.
// Unknown names return ok=false and the caller skips the event.
func Resolve(wire string) (Descriptor, bool) {
	d, ok := wireEvents[wire]
	return d, ok
}

// WireNames returns every accepted wire spelling. Used by the broker ingest
// to pre-filter records before decoding.
func WireNames() []string {
	names := make([]string, 0, len(wireEvents))
	for name := range wireEvents {
		names = append(names, name)
	}
	return names
}

// ErrMissingOrderID reports a payload without an order identifier. It is the
// only decode failure: every other field has a derived default.
var ErrMissingOrderID = errors.New("events: payload has no order id")

// orderPayload accepts the field spellings observed across upstream services.
type orderPayload struct {
	OrderID      string  `json:"orderId"`
	OrderIDSnake string  `json:"order_id"`
	ID           string  `json:"id"`
	CustomerName string  `json:"customerName"`
	CustomerSnk  string  `json:"customer_name"`
	Status       string  `json:"status"`
	NewStatus    string  `json:"newStatus"`
	TotalAmount  float64 `json:"totalAmount"`
	AmountSnake  float64 `json:"total_amount"`
	Amount       float64 `json:"amount"`
	ItemCount    int     `json:"itemCount"`
	ItemsSnake   int     `json:"item_count"`
}

// Decode normalizes a raw payload into an OrderEvent for the resolved
// descriptor, applying the derived defaults: customer name "Customer",
// amount and item count 0, and for status events a status of "updated".
// Only a missing order identifier is an error; no event is dropped for
// missing optional fields.
func Decode(d Descriptor, data []byte) (domain.OrderEvent, error) {
	var p orderPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return domain.OrderEvent{}, err
	}

	evt := domain.OrderEvent{
		OrderID:      firstOf(p.OrderID, p.OrderIDSnake, p.ID),
		CustomerName: firstOf(p.CustomerName, p.CustomerSnk),
		Status:       firstOf(p.Status, p.NewStatus),
		TotalAmount:  p.TotalAmount,
		ItemCount:    p.ItemCount,
	}
	if evt.OrderID == "" {
		return domain.OrderEvent{}, ErrMissingOrderID
	}
	if evt.CustomerName == "" {
		evt.CustomerName = "Customer"
	}
	if evt.TotalAmount == 0 {
		if p.AmountSnake != 0 {
			evt.TotalAmount = p.AmountSnake
		} else {
			evt.TotalAmount = p.Amount
		}
	}
	if evt.ItemCount == 0 {
		evt.ItemCount = p.ItemsSnake
	}
	if d.Kind == KindOrderStatusChanged && evt.Status == "" {
		evt.Status = "updated"
	}
	return evt, nil
}

func firstOf(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
