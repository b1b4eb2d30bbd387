package http_test

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"

	"vn.io.terango/notifier/internal/domain"
	transporthttp "vn.io.terango/notifier/internal/transport/http"
)

func TestHub_ToastReachesEveryClient(t *testing.T) {
	hub := transporthttp.NewHub()

	ch1 := make(chan []byte, 4)
	ch2 := make(chan []byte, 4)
	hub.Register(ch1)
	hub.Register(ch2)

	hub.Toast(context.Background(), "Jane placed an order")

	for _, ch := range []chan []byte{ch1, ch2} {
		select {
		case msg := <-ch:
			frame := string(msg)
			if !strings.HasPrefix(frame, "event: toast\n") || !strings.Contains(frame, "Jane placed an order") {
				t.Fatalf("unexpected frame: %q", frame)
			}
		default:
			t.Fatal("client did not receive toast frame")
		}
	}
}

func TestHub_NotificationFrame(t *testing.T) {
	hub := transporthttp.NewHub()

	ch := make(chan []byte, 4)
	hub.Register(ch)

	hub.Notification(context.Background(), domain.AppNotification{
		ID:    uuid.New(),
		Title: "New Order: Jane",
	})

	msg := <-ch
	if !strings.HasPrefix(string(msg), "event: notification\n") || !strings.Contains(string(msg), "New Order: Jane") {
		t.Fatalf("unexpected frame: %q", msg)
	}
}

func TestHub_UnregisterStopsDelivery(t *testing.T) {
	hub := transporthttp.NewHub()

	ch := make(chan []byte, 4)
	c := hub.Register(ch)
	if hub.ConnectedCount() != 1 {
		t.Fatalf("connected count = %d, want 1", hub.ConnectedCount())
	}

	hub.Unregister(c)
	if hub.ConnectedCount() != 0 {
		t.Fatalf("connected count = %d, want 0", hub.ConnectedCount())
	}

	hub.Toast(context.Background(), "late")
	select {
	case <-ch:
		t.Fatal("unregistered client still received a frame")
	default:
	}
}

func TestHub_SlowClientSkippedNotBlocked(t *testing.T) {
	hub := transporthttp.NewHub()

	full := make(chan []byte) // unbuffered, never drained
	ok := make(chan []byte, 4)
	hub.Register(full)
	hub.Register(ok)

	hub.Toast(context.Background(), "still flowing")

	select {
	case msg := <-ok:
		if !strings.Contains(string(msg), "still flowing") {
			t.Fatalf("unexpected frame: %q", msg)
		}
	default:
		t.Fatal("healthy client starved by a slow one")
	}
}
