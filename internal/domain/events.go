package domain

import "strings"

// OrderEvent is an inbound order push normalized from any of its accepted
// wire spellings. OrderID is always present; the remaining fields carry the
// defaults applied during decoding when the payload omitted them.
type OrderEvent struct {
	OrderID      string
	CustomerName string
	Status       string
	TotalAmount  float64
	ItemCount    int
}

// ShortID returns the last six characters of the order id, upper-cased.
// Operators reference orders by this suffix everywhere in the dashboard.
func (e OrderEvent) ShortID() string {
	id := e.OrderID
	if len(id) > 6 {
		id = id[len(id)-6:]
	}
	return strings.ToUpper(id)
}

// Data returns the event as the opaque payload attached to feed entries.
// The feed never interprets it; dashboard links do.
func (e OrderEvent) Data() map[string]any {
	d := map[string]any{"orderId": e.OrderID}
	if e.Status != "" {
		d["status"] = e.Status
	}
	return d
}
