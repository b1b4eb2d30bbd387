package application

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"vn.io.terango/notifier/internal/domain"
)

// MaxFeedSize caps the feed; inserting past it evicts the oldest entry.
const MaxFeedSize = 200

// Feed is the single source of truth for the operator notification feed.
// It is an explicit service constructed in main and injected where needed,
// never a package-level singleton. Entries are ordered newest-first; the
// in-memory list is authoritative and mirrored to the KV collaborator on
// every mutation, best-effort.
type Feed struct {
	mu    sync.Mutex
	kv    domain.KV
	key   string
	items []domain.AppNotification
}

// NewFeed creates a Feed rehydrated from the KV store. Absent or corrupt
// persisted data yields an empty feed, never an error.
func NewFeed(ctx context.Context, kv domain.KV, key string) *Feed {
	f := &Feed{kv: kv, key: key}

	raw, err := kv.Get(ctx, key)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("feed: rehydrate failed, starting empty")
		return f
	}
	if len(raw) == 0 {
		return f
	}
	if err := json.Unmarshal(raw, &f.items); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("feed: persisted data corrupt, starting empty")
		f.items = nil
		return f
	}
	log.Debug().Int("count", len(f.items)).Msg("feed: rehydrated")
	return f
}

// Add prepends a new unread entry with a fresh id and the current time,
// evicting the oldest entry past capacity, and persists the result.
func (f *Feed) Add(ctx context.Context, title, body string, data map[string]any) domain.AppNotification {
	n := domain.AppNotification{
		ID:        uuid.New(),
		Title:     title,
		Body:      body,
		Data:      data,
		CreatedAt: time.Now(),
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.items = append([]domain.AppNotification{n}, f.items...)
	if len(f.items) > MaxFeedSize {
		f.items = f.items[:MaxFeedSize]
	}
	f.persistLocked(ctx)
	return n
}

// MarkRead flips the matching entry to read. Unknown ids are a no-op; read
// never transitions back to unread.
func (f *Feed) MarkRead(ctx context.Context, id uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := range f.items {
		if f.items[i].ID == id {
			if !f.items[i].Read {
				f.items[i].Read = true
				f.persistLocked(ctx)
			}
			return
		}
	}
}

// MarkAllRead flips every entry to read.
func (f *Feed) MarkAllRead(ctx context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := range f.items {
		f.items[i].Read = true
	}
	f.persistLocked(ctx)
}

// ClearAll empties the feed and removes the persisted copy entirely, so a
// restart never resurrects cleared entries.
func (f *Feed) ClearAll(ctx context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.items = nil
	if err := f.kv.Delete(ctx, f.key); err != nil {
		log.Warn().Err(err).Msg("feed: clear persisted copy failed")
	}
}

// UnreadCount recounts unread entries on every call. It is always a fresh
// filter over the live list, never a cached field that can drift.
func (f *Feed) UnreadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	count := 0
	for i := range f.items {
		if !f.items[i].Read {
			count++
		}
	}
	return count
}

// Len returns the number of entries currently in the feed.
func (f *Feed) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items)
}

// List returns a copy of the entries matching the filter, newest first.
func (f *Feed) List(filter domain.FeedFilter) []domain.AppNotification {
	f.mu.Lock()
	defer f.mu.Unlock()

	matched := make([]domain.AppNotification, 0, len(f.items))
	for _, n := range f.items {
		if filter.IsRead != nil && n.Read != *filter.IsRead {
			continue
		}
		matched = append(matched, n)
	}

	if filter.Offset > 0 {
		if filter.Offset >= len(matched) {
			return []domain.AppNotification{}
		}
		matched = matched[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}
	return matched
}

// persistLocked mirrors the full list to the KV store. Failures are logged
// and swallowed: the in-memory state stays authoritative for the session.
// Callers must hold f.mu.
func (f *Feed) persistLocked(ctx context.Context) {
	raw, err := json.Marshal(f.items)
	if err != nil {
		log.Warn().Err(err).Msg("feed: serialize failed, skipping persist")
		return
	}
	if err := f.kv.Set(ctx, f.key, raw); err != nil {
		log.Warn().Err(err).Msg("feed: persist failed, in-memory state still authoritative")
	}
}
