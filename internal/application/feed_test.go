package application_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"

	"vn.io.terango/notifier/internal/application"
	"vn.io.terango/notifier/internal/domain"
)

// memKV is an in-memory domain.KV for tests.
type memKV struct {
	mu     sync.Mutex
	data   map[string][]byte
	setErr error
}

func newMemKV() *memKV {
	return &memKV{data: make(map[string][]byte)}
}

func (m *memKV) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[key], nil
}

func (m *memKV) Set(_ context.Context, key string, value []byte) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *memKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *memKV) Close() error { return nil }

const testKey = "test_notifications"

func TestAdd_NewestFirst(t *testing.T) {
	ctx := context.Background()
	feed := application.NewFeed(ctx, newMemKV(), testKey)

	feed.Add(ctx, "first", "b", nil)
	feed.Add(ctx, "second", "b", nil)

	items := feed.List(domain.FeedFilter{})
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].Title != "second" || items[1].Title != "first" {
		t.Fatalf("expected newest-first order, got %q then %q", items[0].Title, items[1].Title)
	}
	if items[0].Read {
		t.Fatal("new entries must start unread")
	}
}

func TestAdd_CapEvictsOldestFirst(t *testing.T) {
	ctx := context.Background()
	feed := application.NewFeed(ctx, newMemKV(), testKey)

	total := application.MaxFeedSize + 5
	for i := 0; i < total; i++ {
		feed.Add(ctx, fmt.Sprintf("n-%d", i), "b", nil)
	}

	if feed.Len() != application.MaxFeedSize {
		t.Fatalf("expected %d items, got %d", application.MaxFeedSize, feed.Len())
	}

	items := feed.List(domain.FeedFilter{})
	if items[0].Title != fmt.Sprintf("n-%d", total-1) {
		t.Fatalf("newest entry wrong: %q", items[0].Title)
	}
	// The five oldest insertions were evicted.
	if got := items[len(items)-1].Title; got != "n-5" {
		t.Fatalf("expected oldest surviving entry n-5, got %q", got)
	}
}

func TestUnreadCount_AlwaysMatchesLiveFilter(t *testing.T) {
	ctx := context.Background()
	feed := application.NewFeed(ctx, newMemKV(), testKey)

	a := feed.Add(ctx, "a", "b", nil)
	feed.Add(ctx, "b", "b", nil)
	feed.Add(ctx, "c", "b", nil)

	if got := feed.UnreadCount(); got != 3 {
		t.Fatalf("expected 3 unread, got %d", got)
	}

	feed.MarkRead(ctx, a.ID)
	if got := feed.UnreadCount(); got != 2 {
		t.Fatalf("expected 2 unread after MarkRead, got %d", got)
	}

	// Marking an already-read entry again is absorbed.
	feed.MarkRead(ctx, a.ID)
	if got := feed.UnreadCount(); got != 2 {
		t.Fatalf("expected 2 unread after repeat MarkRead, got %d", got)
	}

	feed.MarkAllRead(ctx)
	if got := feed.UnreadCount(); got != 0 {
		t.Fatalf("expected 0 unread after MarkAllRead, got %d", got)
	}
}

func TestMarkRead_UnknownID_LeavesListUnchanged(t *testing.T) {
	ctx := context.Background()
	feed := application.NewFeed(ctx, newMemKV(), testKey)

	feed.Add(ctx, "a", "b", nil)
	feed.Add(ctx, "b", "b", nil)
	before := feed.List(domain.FeedFilter{})

	feed.MarkRead(ctx, uuid.New())

	after := feed.List(domain.FeedFilter{})
	if len(after) != len(before) {
		t.Fatalf("length changed: %d != %d", len(after), len(before))
	}
	for i := range before {
		if after[i].ID != before[i].ID || after[i].Read != before[i].Read || after[i].Title != before[i].Title {
			t.Fatalf("entry %d changed", i)
		}
	}
}

func TestClearAll_DoesNotResurrectOnRestart(t *testing.T) {
	ctx := context.Background()
	kv := newMemKV()

	feed := application.NewFeed(ctx, kv, testKey)
	feed.Add(ctx, "a", "b", nil)
	feed.ClearAll(ctx)

	if feed.Len() != 0 {
		t.Fatalf("expected empty feed after ClearAll, got %d", feed.Len())
	}

	// Simulated process restart over the same storage.
	restarted := application.NewFeed(ctx, kv, testKey)
	if restarted.Len() != 0 {
		t.Fatalf("cleared entries resurrected after restart: %d", restarted.Len())
	}
}

func TestRehydrate_SurvivesRestart(t *testing.T) {
	ctx := context.Background()
	kv := newMemKV()

	feed := application.NewFeed(ctx, kv, testKey)
	feed.Add(ctx, "kept", "b", map[string]any{"orderId": "x1"})

	restarted := application.NewFeed(ctx, kv, testKey)
	items := restarted.List(domain.FeedFilter{})
	if len(items) != 1 || items[0].Title != "kept" {
		t.Fatalf("expected rehydrated entry, got %+v", items)
	}
}

func TestRehydrate_CorruptDataTreatedAsEmpty(t *testing.T) {
	ctx := context.Background()
	kv := newMemKV()
	kv.data[testKey] = []byte("{not json")

	feed := application.NewFeed(ctx, kv, testKey)
	if feed.Len() != 0 {
		t.Fatalf("expected empty feed for corrupt data, got %d", feed.Len())
	}
}

func TestPersistFailure_InMemoryStateStaysAuthoritative(t *testing.T) {
	ctx := context.Background()
	kv := newMemKV()
	kv.setErr = errors.New("quota exceeded")

	feed := application.NewFeed(ctx, kv, testKey)
	feed.Add(ctx, "a", "b", nil)

	if feed.Len() != 1 {
		t.Fatalf("expected in-memory entry despite persist failure, got %d", feed.Len())
	}
	if feed.UnreadCount() != 1 {
		t.Fatalf("expected 1 unread, got %d", feed.UnreadCount())
	}
}

func TestList_FilterAndPagination(t *testing.T) {
	ctx := context.Background()
	feed := application.NewFeed(ctx, newMemKV(), testKey)

	a := feed.Add(ctx, "a", "b", nil)
	feed.Add(ctx, "b", "b", nil)
	feed.Add(ctx, "c", "b", nil)
	feed.MarkRead(ctx, a.ID)

	unread := false
	read := feed.List(domain.FeedFilter{IsRead: ptr(true)})
	if len(read) != 1 || read[0].Title != "a" {
		t.Fatalf("expected only read entry a, got %+v", read)
	}
	if got := feed.List(domain.FeedFilter{IsRead: &unread}); len(got) != 2 {
		t.Fatalf("expected 2 unread entries, got %d", len(got))
	}

	page := feed.List(domain.FeedFilter{Limit: 1, Offset: 1})
	if len(page) != 1 || page[0].Title != "b" {
		t.Fatalf("expected second-newest entry b, got %+v", page)
	}
	if got := feed.List(domain.FeedFilter{Offset: 10}); len(got) != 0 {
		t.Fatalf("expected empty page past the end, got %d", len(got))
	}
}

func ptr(b bool) *bool { return &b }
