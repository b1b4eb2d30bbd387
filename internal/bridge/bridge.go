// Package bridge owns the single realtime connection to the order backend.
// It joins the role-appropriate room, normalizes inbound wire events through
// the events table, and hands each one to the effect pipeline in arrival
// order. No reordering or coalescing: duplicate events under different wire
// spellings each produce their own dispatch.
package bridge

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"vn.io.terango/notifier/internal/domain"
	"vn.io.terango/notifier/internal/effects"
	"vn.io.terango/notifier/internal/events"
)

// Envelope is the wire frame exchanged with the order backend.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Transport is the port for the underlying persistent connection.
// The websocket implementation lives in transport/socket.
type Transport interface {
	// Dial establishes the connection.
	Dial(ctx context.Context) error
	// Emit sends an outbound control event.
	Emit(event string, data any) error
	// Next blocks until the next inbound event or a connection error.
	Next() (Envelope, error)
	// Close tears the connection down and unblocks Next.
	Close() error
}

// Outbound room control events.
const (
	EventJoinAdminRoom   = "join_admin_room"
	EventLeaveAdminRoom  = "leave_admin_room"
	EventJoinVendorRoom  = "join_vendor_room"
	EventLeaveVendorRoom = "leave_vendor_room"
)

// Options configures a Bridge.
type Options struct {
	Role domain.Role
	// VendorID identifies the vendor room; required when Role is RoleVendor.
	VendorID string
	// Enabled gates the whole bridge: when false no connection is made.
	Enabled bool
	// RetryAttempts bounds consecutive reconnection attempts.
	RetryAttempts int
	// RetryDelay is the fixed wait between attempts.
	RetryDelay time.Duration
}

// Bridge maintains one live connection per active session role.
type Bridge struct {
	transport Transport
	pipeline  *effects.Pipeline
	opts      Options

	connected atomic.Bool
	stopped   atomic.Bool
	teardown  sync.Once
}

// New creates a Bridge. Callers are responsible for running at most one
// admin-role bridge per process; nothing here prevents duplicate mounts, and
// each would hold its own connection and room membership.
func New(t Transport, p *effects.Pipeline, opts Options) *Bridge {
	if opts.RetryAttempts <= 0 {
		opts.RetryAttempts = 5
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = 3 * time.Second
	}
	return &Bridge{transport: t, pipeline: p, opts: opts}
}

// Connected reports whether a live connection currently exists. It is true
// only while the transport handshake is up, never during reconnection.
func (b *Bridge) Connected() bool {
	return b.connected.Load()
}

// Start runs the connection loop until the context is cancelled, Stop is
// called, or the retry budget is exhausted. Blocks; run it in a goroutine.
func (b *Bridge) Start(ctx context.Context) {
	if !b.opts.Enabled {
		log.Debug().Msg("bridge disabled, not connecting")
		return
	}
	defer b.Stop()

	// Next blocks without observing ctx; closing the transport is what
	// unblocks it, so cancellation is translated into Stop.
	watchDone := make(chan struct{})
	defer close(watchDone)
	go func() {
		select {
		case <-ctx.Done():
			b.Stop()
		case <-watchDone:
		}
	}()

	attempts := 0
	for !b.stopped.Load() && ctx.Err() == nil {
		if err := b.transport.Dial(ctx); err != nil {
			b.connected.Store(false)
			attempts++
			if attempts > b.opts.RetryAttempts {
				log.Warn().Err(err).Int("attempts", attempts-1).Msg("bridge: retry budget exhausted")
				return
			}
			log.Debug().Err(err).Int("attempt", attempts).Msg("bridge: connect failed, retrying")
			if !b.wait(ctx) {
				return
			}
			continue
		}

		attempts = 0
		b.connected.Store(true)
		b.joinRoom()
		b.pipeline.ProbeDesktop()
		log.Info().Str("role", string(b.opts.Role)).Msg("bridge connected")

		b.readLoop(ctx)

		b.connected.Store(false)
		if b.stopped.Load() || ctx.Err() != nil {
			return
		}
		log.Debug().Msg("bridge: connection lost, reconnecting")
		attempts++
		if attempts > b.opts.RetryAttempts {
			return
		}
		if !b.wait(ctx) {
			return
		}
	}
}

// Stop disables the bridge: it emits the leave-room signal exactly once and
// closes the transport. This runs even mid-reconnect so room membership is
// never leaked server-side. Safe to call multiple times.
func (b *Bridge) Stop() {
	b.stopped.Store(true)
	b.teardown.Do(func() {
		b.leaveRoom()
		if err := b.transport.Close(); err != nil {
			log.Debug().Err(err).Msg("bridge: transport close")
		}
		b.connected.Store(false)
		log.Info().Msg("bridge stopped")
	})
}

// Dispatch normalizes one inbound wire event and runs its effect chain.
// Exported so alternate ingest paths (broker mirror) share the same handling.
func (b *Bridge) Dispatch(ctx context.Context, wire string, payload []byte) {
	desc, ok := events.Resolve(wire)
	if !ok {
		log.Debug().Str("event", wire).Msg("bridge: unrecognized event, skipping")
		return
	}

	evt, err := events.Decode(desc, payload)
	if err != nil {
		log.Warn().Err(err).Str("event", wire).Msg("bridge: undecodable payload, skipping")
		return
	}

	switch desc.Kind {
	case events.KindOrderCreated:
		b.pipeline.OrderCreated(ctx, evt)
	case events.KindOrderStatusChanged:
		b.pipeline.OrderStatusChanged(ctx, evt, desc)
	}
}

func (b *Bridge) readLoop(ctx context.Context) {
	for {
		env, err := b.transport.Next()
		if err != nil {
			return
		}
		b.Dispatch(ctx, env.Event, env.Data)
	}
}

func (b *Bridge) joinRoom() {
	var err error
	if b.opts.Role == domain.RoleVendor {
		err = b.transport.Emit(EventJoinVendorRoom, b.opts.VendorID)
	} else {
		err = b.transport.Emit(EventJoinAdminRoom, nil)
	}
	if err != nil {
		log.Warn().Err(err).Msg("bridge: join room failed")
	}
}

func (b *Bridge) leaveRoom() {
	var err error
	if b.opts.Role == domain.RoleVendor {
		err = b.transport.Emit(EventLeaveVendorRoom, b.opts.VendorID)
	} else {
		err = b.transport.Emit(EventLeaveAdminRoom, nil)
	}
	if err != nil {
		log.Debug().Err(err).Msg("bridge: leave room failed")
	}
}

// wait sleeps the fixed retry delay; false means the context was cancelled.
func (b *Bridge) wait(ctx context.Context) bool {
	select {
	case <-time.After(b.opts.RetryDelay):
		return true
	case <-ctx.Done():
		return false
	}
}
