package history

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/minutes/internal/clock"
	"github.com/mrz1836/minutes/internal/constants"
	"github.com/mrz1836/minutes/internal/domain"
	"github.com/mrz1836/minutes/internal/errors"
	"github.com/mrz1836/minutes/internal/testutil"
)

// memKV is an in-memory KV with switchable failures.
type memKV struct {
	mu      sync.Mutex
	data    map[string][]byte
	getErr  error
	setErr  error
	setCall int
}

func newMemKV() *memKV {
	return &memKV{data: map[string][]byte{}}
}

func (m *memKV) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.data[key], nil
}

func (m *memKV) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setCall++
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%02d", n)
	}
}

func ids(items []domain.HistoryItem) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.ID
	}
	return out
}

func result(label string) domain.MeetingResult {
	return domain.MeetingResult{Minutes: []string{label}}
}

func TestSave_InsertsAtHead(t *testing.T) {
	fake := clock.NewFake(time.Date(2026, 3, 4, 14, 15, 0, 0, time.UTC))
	h := New(newMemKV(), WithClock(fake), WithIDFunc(sequentialIDs()))

	first := h.Save(context.Background(), result("one"), "Meeting — Mar 4, 2:15 PM")
	fake.Advance(time.Minute)
	h.Save(context.Background(), result("two"), "Image Notes — Mar 4, 2:16 PM")

	items := h.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "id-02", items[0].ID)
	assert.Equal(t, "two", items[0].Result.Minutes[0])
	assert.Equal(t, "Image Notes — Mar 4, 2:16 PM", items[0].Title)
	assert.Equal(t, first.ID, items[1].ID)
	assert.Equal(t, fake.Now().Add(-time.Minute), items[1].Date)
}

func TestSave_EvictsBeyondCapacity(t *testing.T) {
	kv := newMemKV()
	h := New(kv, WithIDFunc(sequentialIDs()))

	for i := 1; i <= 21; i++ {
		h.Save(context.Background(), result(fmt.Sprint(i)), "Meeting")
	}

	items := h.Items()
	require.Len(t, items, constants.HistoryCapacity)
	assert.Equal(t, "21", items[0].Result.Minutes[0], "newest first")
	assert.Equal(t, "2", items[19].Result.Minutes[0], "oldest evicted")

	reloaded := New(kv)
	reloaded.Load(context.Background())
	assert.Equal(t, ids(items), ids(reloaded.Items()))
}

func TestSave_GeneratesUUIDs(t *testing.T) {
	h := New(newMemKV())
	a := h.Save(context.Background(), result("a"), "Meeting")
	b := h.Save(context.Background(), result("b"), "Meeting")

	assert.Len(t, a.ID, 36)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestSave_PersistenceFailureIsSwallowed(t *testing.T) {
	kv := newMemKV()
	kv.setErr = testutil.ErrMockDiskFull
	h := New(kv)

	item := h.Save(context.Background(), result("x"), "Meeting")

	assert.NotEmpty(t, item.ID)
	assert.Equal(t, 1, h.Len(), "memory still updated")
	assert.Equal(t, 1, kv.setCall)
}

func TestLoad_AbsentIsEmpty(t *testing.T) {
	h := New(newMemKV())
	h.Load(context.Background())
	assert.Empty(t, h.Items())
}

func TestLoad_UnparseableIsEmpty(t *testing.T) {
	kv := newMemKV()
	h := New(kv)
	h.Save(context.Background(), result("before"), "Meeting")

	kv.data[constants.HistoryKey] = []byte(`{"not":"a list"}`)
	h.Load(context.Background())

	assert.Empty(t, h.Items())
}

func TestLoad_StoreErrorIsEmpty(t *testing.T) {
	kv := newMemKV()
	kv.getErr = testutil.ErrMockConnectionRefused

	h := New(kv)
	h.Load(context.Background())
	assert.Empty(t, h.Items())
}

func TestLoad_TruncatesToCapacity(t *testing.T) {
	kv := newMemKV()
	full := New(kv)
	for i := range 10 {
		full.Save(context.Background(), result(fmt.Sprint(i)), "Meeting")
	}

	small := New(kv, WithCapacity(3))
	small.Load(context.Background())
	assert.Equal(t, 3, small.Len())
}

func TestDelete(t *testing.T) {
	kv := newMemKV()
	h := New(kv, WithIDFunc(sequentialIDs()))
	for i := range 5 {
		h.Save(context.Background(), result(fmt.Sprint(i)), "Meeting")
	}
	// Order is now id-05 .. id-01.

	removed := h.Delete(context.Background(), []int{0, 2, 2, 9, -1})
	assert.Equal(t, 2, removed)

	items := h.Items()
	require.Len(t, items, 3)
	assert.Equal(t, []string{"id-04", "id-02", "id-01"}, ids(items))

	reloaded := New(kv)
	reloaded.Load(context.Background())
	assert.Equal(t, ids(items), ids(reloaded.Items()))
}

func TestDelete_NothingToRemoveSkipsWrite(t *testing.T) {
	kv := newMemKV()
	h := New(kv)
	h.Save(context.Background(), result("a"), "Meeting")
	calls := kv.setCall

	assert.Zero(t, h.Delete(context.Background(), []int{5}))
	assert.Equal(t, calls, kv.setCall)
}

func TestDelete_AllLeavesEmptyArray(t *testing.T) {
	kv := newMemKV()
	h := New(kv)
	h.Save(context.Background(), result("a"), "Meeting")

	h.Delete(context.Background(), []int{0})
	assert.JSONEq(t, `[]`, string(kv.data[constants.HistoryKey]))
}

func TestItems_ReturnsCopies(t *testing.T) {
	h := New(newMemKV())
	h.Save(context.Background(), result("original"), "Meeting")

	items := h.Items()
	items[0].Title = "changed"
	items[0].Result.Minutes[0] = "changed"

	fresh := h.Items()
	assert.Equal(t, "Meeting", fresh[0].Title)
	assert.Equal(t, "original", fresh[0].Result.Minutes[0])
}

func TestGet(t *testing.T) {
	h := New(newMemKV())
	h.Save(context.Background(), result("a"), "Meeting")

	item, err := h.Get(0)
	require.NoError(t, err)
	assert.Equal(t, "a", item.Result.Minutes[0])

	_, err = h.Get(1)
	require.ErrorIs(t, err, errors.ErrHistoryIndex)
	_, err = h.Get(-1)
	require.ErrorIs(t, err, errors.ErrHistoryIndex)
}

func TestWithCapacity_IgnoresInvalid(t *testing.T) {
	h := New(newMemKV(), WithCapacity(0), WithCapacity(50))
	assert.Equal(t, constants.HistoryCapacity, h.capacity)
}

func TestHistory_OverFileKV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history.json")

	h := New(NewFileKV(path))
	h.Load(context.Background())
	assert.Empty(t, h.Items())

	saved := h.Save(context.Background(), domain.MeetingResult{
		Transcript:  "hello",
		Decisions:   []domain.Decision{{Decision: "ship", Speaker: "Ana"}},
		ActionItems: []domain.ActionItem{{Task: "notes", Owner: "Bo"}},
	}, "Meeting")

	reloaded := New(NewFileKV(path))
	reloaded.Load(context.Background())
	items := reloaded.Items()
	require.Len(t, items, 1)
	assert.Equal(t, saved.ID, items[0].ID)
	assert.Equal(t, "hello", items[0].Result.Transcript)
	assert.True(t, saved.Date.Equal(items[0].Date))
}
