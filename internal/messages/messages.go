// Package messages builds the (title, body) string pairs used by every
// order-notification surface: toast, desktop popup, and the persisted feed.
package messages

import "fmt"

// ─── Order builders ──────────────────────────────────────────────────────────

// NewOrder returns the feed title and body for a freshly placed order.
// shortID is the upper-cased six-character order suffix.
func NewOrder(customerName, shortID string, amount float64) (string, string) {
	return fmt.Sprintf(NewOrderTitle, customerName), fmt.Sprintf(NewOrderBody, shortID, amount)
}

// NewOrderSummary returns the one-line toast text for a freshly placed order.
func NewOrderSummary(customerName string, itemCount int, amount float64) string {
	return fmt.Sprintf(NewOrderToast, customerName, itemCount, amount)
}

// OrderStatus returns the feed title and body for a status transition.
func OrderStatus(shortID, status string) (string, string) {
	return fmt.Sprintf(OrderStatusTitle, shortID, status), fmt.Sprintf(OrderStatusBody, shortID, status)
}

// OrderStatusSummary returns the one-line toast text for a status transition.
func OrderStatusSummary(shortID, status string) string {
	return fmt.Sprintf(OrderStatusToast, shortID, status)
}
