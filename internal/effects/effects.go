// Package effects fans a normalized order event out to its side effects:
// sound, toast, desktop popup, feed append, cache invalidation, and the
// caller callback. Every effect is best-effort and isolated — one failing
// or panicking effect never prevents the ones after it.
package effects

import (
	"context"

	"github.com/rs/zerolog/log"

	"vn.io.terango/notifier/internal/application"
	"vn.io.terango/notifier/internal/cache"
	"vn.io.terango/notifier/internal/domain"
	"vn.io.terango/notifier/internal/events"
	"vn.io.terango/notifier/internal/messages"
)

// SoundPlayer replays the alert sound from the start on every call.
type SoundPlayer interface {
	Play() error
}

// DesktopNotifier raises an OS-level notification.
type DesktopNotifier interface {
	// Probe checks availability without raising anything. Called once when
	// the bridge connects with the admin role.
	Probe() error
	Push(title, body string) error
}

// Broadcaster pushes transient toasts and new feed entries to connected
// dashboard clients. Implementation is the SSE hub in transport/http.
type Broadcaster interface {
	Toast(ctx context.Context, text string)
	Notification(ctx context.Context, n domain.AppNotification)
}

// Invalidator marks cached query keys stale so visible lists refetch.
type Invalidator interface {
	Invalidate(ctx context.Context, keys ...string) error
}

// Pipeline holds the effect collaborators for one bridge role.
type Pipeline struct {
	role       domain.Role
	feed       *application.Feed
	sound      SoundPlayer
	desktop    DesktopNotifier
	broadcast  Broadcaster
	caches     Invalidator
	onNewOrder func(domain.OrderEvent)
}

// NewPipeline wires a Pipeline. onNewOrder may be nil.
func NewPipeline(
	role domain.Role,
	feed *application.Feed,
	sound SoundPlayer,
	desktop DesktopNotifier,
	broadcast Broadcaster,
	caches Invalidator,
	onNewOrder func(domain.OrderEvent),
) *Pipeline {
	return &Pipeline{
		role:       role,
		feed:       feed,
		sound:      sound,
		desktop:    desktop,
		broadcast:  broadcast,
		caches:     caches,
		onNewOrder: onNewOrder,
	}
}

// step is one independent side effect in an ordered run.
type step struct {
	name string
	run  func(ctx context.Context) error
}

// runSteps executes steps in order. Errors are logged and swallowed; a panic
// in one step is recovered so the remaining steps still run.
func runSteps(ctx context.Context, steps []step) {
	for _, s := range steps {
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Warn().Str("effect", s.name).Any("panic", r).Msg("effect panicked, continuing")
				}
			}()
			if err := s.run(ctx); err != nil {
				log.Debug().Err(err).Str("effect", s.name).Msg("effect failed, continuing")
			}
		}()
	}
}

// OrderCreated runs the new-order effect chain: sound, toast, then for the
// admin role a desktop popup and a feed entry, cache invalidation, and the
// caller callback. The same chain runs regardless of which wire spelling
// carried the event.
func (p *Pipeline) OrderCreated(ctx context.Context, evt domain.OrderEvent) {
	title, body := messages.NewOrder(evt.CustomerName, evt.ShortID(), evt.TotalAmount)
	summary := messages.NewOrderSummary(evt.CustomerName, evt.ItemCount, evt.TotalAmount)

	steps := []step{
		{"sound", func(context.Context) error { return p.sound.Play() }},
		{"toast", func(ctx context.Context) error { p.broadcast.Toast(ctx, summary); return nil }},
	}
	if p.role == domain.RoleAdmin {
		steps = append(steps,
			step{"desktop", func(context.Context) error { return p.desktop.Push(title, summary) }},
			step{"feed", func(ctx context.Context) error {
				n := p.feed.Add(ctx, title, body, evt.Data())
				p.broadcast.Notification(ctx, n)
				return nil
			}},
		)
	}
	steps = append(steps,
		step{"cache", func(ctx context.Context) error {
			return p.caches.Invalidate(ctx, cache.KeyVendorOrders, cache.KeyStoreOrders)
		}},
	)
	if p.onNewOrder != nil {
		steps = append(steps, step{"callback", func(context.Context) error { p.onNewOrder(evt); return nil }})
	}

	runSteps(ctx, steps)
}

// OrderStatusChanged runs the status-change chain: cache invalidation first
// (plus the dashboard key for the update variant), optional sound, toast,
// then the admin-only desktop popup and feed entry.
func (p *Pipeline) OrderStatusChanged(ctx context.Context, evt domain.OrderEvent, desc events.Descriptor) {
	title, body := messages.OrderStatus(evt.ShortID(), evt.Status)
	summary := messages.OrderStatusSummary(evt.ShortID(), evt.Status)

	keys := []string{cache.KeyVendorOrders, cache.KeyStoreOrders}
	if desc.Dashboard {
		keys = append(keys, cache.KeyStoreDashboard)
	}

	steps := []step{
		{"cache", func(ctx context.Context) error { return p.caches.Invalidate(ctx, keys...) }},
	}
	if desc.Sound {
		steps = append(steps, step{"sound", func(context.Context) error { return p.sound.Play() }})
	}
	steps = append(steps,
		step{"toast", func(ctx context.Context) error { p.broadcast.Toast(ctx, summary); return nil }},
	)
	if p.role == domain.RoleAdmin {
		steps = append(steps,
			step{"desktop", func(context.Context) error { return p.desktop.Push(title, summary) }},
			step{"feed", func(ctx context.Context) error {
				n := p.feed.Add(ctx, title, body, evt.Data())
				p.broadcast.Notification(ctx, n)
				return nil
			}},
		)
	}

	runSteps(ctx, steps)
}

// Role returns the role this pipeline was built for.
func (p *Pipeline) Role() domain.Role { return p.role }

// ProbeDesktop checks the desktop notifier once, best-effort. The bridge
// calls it on entering the connected state with the admin role.
func (p *Pipeline) ProbeDesktop() {
	if p.role != domain.RoleAdmin {
		return
	}
	if err := p.desktop.Probe(); err != nil {
		log.Debug().Err(err).Msg("desktop notifications unavailable, degrading to toast only")
	}
}
