package messages

// Dashboard-facing notification strings. Kept in one place so the wording
// shown in toasts, desktop popups, and the persisted feed never drifts apart.
const (
	NewOrderTitle = "New Order: %s"
	NewOrderBody  = "Order #%s • BDT%.2f"
	NewOrderToast = "%s placed an order — %d item(s), BDT%.2f"

	OrderStatusTitle = "Order #%s: %s"
	OrderStatusBody  = "Order #%s changed status to %s"
	OrderStatusToast = "Order #%s is now %s"
)
