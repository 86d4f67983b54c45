// Package history keeps the bounded, most-recent-first list of processing
// results and persists it through a key-value store.
//
// The whole list is stored as one JSON array under a single key and is
// rewritten on every change. Persistence is best-effort: failures are logged
// and never reach the caller, and unreadable data loads as an empty list.
//
// Import rules:
//   - CAN import: internal/clock, internal/constants, internal/ctxutil, internal/domain,
//     internal/errors, internal/flock, std lib
//   - MUST NOT import: internal/capture, internal/client, internal/cli
package history

import (
	"context"
	"encoding/json"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mrz1836/minutes/internal/clock"
	"github.com/mrz1836/minutes/internal/constants"
	"github.com/mrz1836/minutes/internal/domain"
	"github.com/mrz1836/minutes/internal/errors"
)

// History is the in-memory result list plus its persistence.
// It is safe for concurrent use; readers always receive copies.
type History struct {
	mu       sync.RWMutex
	kv       KV
	key      string
	capacity int
	clock    clock.Clock
	newID    func() string
	items    []domain.HistoryItem
}

// Option configures a History.
type Option func(*History)

// WithCapacity limits the number of items kept. Values outside
// 1..constants.HistoryCapacity are ignored.
func WithCapacity(n int) Option {
	return func(h *History) {
		if n >= 1 && n <= constants.HistoryCapacity {
			h.capacity = n
		}
	}
}

// WithClock sets the clock used to date new items.
func WithClock(c clock.Clock) Option {
	return func(h *History) {
		h.clock = c
	}
}

// WithIDFunc sets the item ID generator.
func WithIDFunc(fn func() string) Option {
	return func(h *History) {
		h.newID = fn
	}
}

// New creates an empty History over kv. Call Load to read stored items.
func New(kv KV, opts ...Option) *History {
	h := &History{
		kv:       kv,
		key:      constants.HistoryKey,
		capacity: constants.HistoryCapacity,
		clock:    clock.RealClock{},
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Load replaces the in-memory list with the stored one.
// Missing or unparseable data leaves the history empty.
func (h *History) Load(ctx context.Context) {
	logger := zerolog.Ctx(ctx).With().Str("component", "history").Logger()

	var items []domain.HistoryItem
	data, err := h.kv.Get(ctx, h.key)
	switch {
	case err != nil:
		logger.Warn().Err(err).Msg("history unavailable, starting empty")
	case len(data) == 0:
	default:
		if err := json.Unmarshal(data, &items); err != nil {
			logger.Warn().Err(err).Msg("history unreadable, starting empty")
			items = nil
		}
	}

	if len(items) > h.capacity {
		items = items[:h.capacity]
	}

	h.mu.Lock()
	h.items = items
	h.mu.Unlock()

	logger.Debug().Int("items", len(items)).Msg("history loaded")
}

// Save records a new result at the head of the list, evicts anything past
// capacity and persists the list. The created item is returned.
func (h *History) Save(ctx context.Context, result domain.MeetingResult, title string) domain.HistoryItem {
	item := domain.HistoryItem{
		ID:     h.newID(),
		Title:  title,
		Date:   h.clock.Now(),
		Result: result.Clone(),
	}

	h.mu.Lock()
	items := make([]domain.HistoryItem, 0, min(len(h.items)+1, h.capacity))
	items = append(items, item)
	items = append(items, h.items...)
	if len(items) > h.capacity {
		items = items[:h.capacity]
	}
	h.items = items
	snapshot := cloneItems(items)
	h.mu.Unlock()

	h.persist(ctx, snapshot)
	return cloneItem(item)
}

// Delete removes the items at the given positions and persists the list.
// Out-of-range and duplicate positions are ignored. It returns the number of
// items removed.
func (h *History) Delete(ctx context.Context, indices []int) int {
	h.mu.Lock()
	drop := make(map[int]bool, len(indices))
	for _, i := range indices {
		if i >= 0 && i < len(h.items) {
			drop[i] = true
		}
	}
	if len(drop) == 0 {
		h.mu.Unlock()
		return 0
	}

	kept := make([]domain.HistoryItem, 0, len(h.items)-len(drop))
	for i, item := range h.items {
		if !drop[i] {
			kept = append(kept, item)
		}
	}
	h.items = kept
	snapshot := cloneItems(kept)
	h.mu.Unlock()

	h.persist(ctx, snapshot)
	return len(drop)
}

// Items returns a copy of the list, most recent first.
func (h *History) Items() []domain.HistoryItem {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return cloneItems(h.items)
}

// Len returns the number of stored items.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.items)
}

// Get returns a copy of the item at position i.
func (h *History) Get(i int) (domain.HistoryItem, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if i < 0 || i >= len(h.items) {
		return domain.HistoryItem{}, errors.Wrapf(errors.ErrHistoryIndex, "index %d (have %d)", i, len(h.items))
	}
	return cloneItem(h.items[i]), nil
}

// persist writes the list; failures are logged and swallowed.
func (h *History) persist(ctx context.Context, items []domain.HistoryItem) {
	logger := zerolog.Ctx(ctx).With().Str("component", "history").Logger()

	if items == nil {
		items = []domain.HistoryItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to encode history")
		return
	}
	if err := h.kv.Set(ctx, h.key, data); err != nil {
		logger.Warn().Err(err).Msg("failed to persist history")
		return
	}
	logger.Debug().Int("items", len(items)).Msg("history persisted")
}

func cloneItem(item domain.HistoryItem) domain.HistoryItem {
	item.Result = item.Result.Clone()
	return item
}

func cloneItems(items []domain.HistoryItem) []domain.HistoryItem {
	out := slices.Clone(items)
	for i := range out {
		out[i].Result = out[i].Result.Clone()
	}
	return out
}
