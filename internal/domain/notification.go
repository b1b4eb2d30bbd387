package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role selects which logical room the bridge joins and which side effects run.
type Role string

const (
	// RoleAdmin joins the global admin room; order events are appended to the
	// feed and pushed to the desktop notifier in addition to toast/sound.
	RoleAdmin Role = "ADMIN"
	// RoleVendor joins a vendor-scoped room; order events only produce
	// transient toast and sound feedback.
	RoleVendor Role = "VENDOR"
)

// AppNotification is a single entry in the operator's notification feed.
type AppNotification struct {
	ID        uuid.UUID      `json:"id"`
	Title     string         `json:"title"`
	Body      string         `json:"body"`
	Data      map[string]any `json:"data,omitempty"`
	Read      bool           `json:"read"`
	CreatedAt time.Time      `json:"createdAt"`
}

// FeedFilter holds query parameters for listing feed entries.
type FeedFilter struct {
	IsRead *bool
	Limit  int
	Offset int
}
