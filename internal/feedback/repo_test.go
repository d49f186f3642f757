package feedback

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"vcc-feedback/internal/slot"
	myErr "vcc-feedback/internal/types/errors"
)

func setupTestStore(t *testing.T) (*SlotRecordStore, *slot.MemoryStorage) {
	slots := slot.NewMemoryStorage()
	logger := zaptest.NewLogger(t).Sugar()

	return NewSlotRecordStore(slots, logger), slots
}

func strPtr(s string) *string { return &s }

func testRecord(id string) Record {
	return Record{
		ID:         id,
		Nickname:   strPtr("taro"),
		Cohort:     nil,
		Rating:     4,
		Body:       "line1\nline2 <b>&</b>",
		Visibility: VisibilityPublic,
		CreatedAt:  time.Date(2026, 10, 18, 9, 30, 0, 123000000, time.UTC),
	}
}

func TestSlotRecordStore_Load_Degrades(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "not json", raw: `"not json"`},
		{name: "plain garbage", raw: `not json`},
		{name: "object instead of array", raw: `{"id":"1"}`},
		{name: "number", raw: `42`},
		{name: "null", raw: `null`},
		{name: "empty string", raw: ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, slots := setupTestStore(t)
			require.NoError(t, slots.Set(context.Background(), StorageKey, tt.raw))

			got := store.Load(context.Background())
			assert.NotNil(t, got)
			assert.Empty(t, got)
		})
	}
}

func TestSlotRecordStore_Load_Absent(t *testing.T) {
	store, _ := setupTestStore(t)

	got := store.Load(context.Background())
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSlotRecordStore_Load_SkipsMalformedElements(t *testing.T) {
	store, slots := setupTestStore(t)
	raw := `[
		{"id":"a","nickname":null,"cohort":null,"rating":5,"body":"ok","visibility":"public","createdAt":"2026-10-18T09:00:00.000Z"},
		{"id":"b","rating":"five"},
		null,
		{},
		{"id":"d","rating":0,"body":"zero","visibility":"public","createdAt":"2026-10-18T09:00:00.000Z"},
		{"id":"e","rating":3,"body":"","visibility":"public","createdAt":"2026-10-18T09:00:00.000Z"},
		{"id":"f","rating":3,"body":"x","visibility":"friends","createdAt":"2026-10-18T09:00:00.000Z"},
		{"id":"c","nickname":"n","cohort":"c1","rating":2,"body":"ok2","visibility":"private","createdAt":"2026-10-18T10:00:00.000Z"}
	]`
	require.NoError(t, slots.Set(context.Background(), StorageKey, raw))

	got := store.Load(context.Background())
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Nil(t, got[0].Nickname)
	assert.Equal(t, "c", got[1].ID)
	assert.Equal(t, "c1", *got[1].Cohort)
	assert.Equal(t, VisibilityPrivate, got[1].Visibility)
}

func TestSlotRecordStore_AppendRoundTrip(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	first := testRecord("00000000-0000-4000-8000-000000000001")
	second := testRecord("00000000-0000-4000-8000-000000000002")
	second.Visibility = VisibilityPrivate
	second.Nickname = nil

	require.NoError(t, store.Append(ctx, first))
	require.NoError(t, store.Append(ctx, second))

	got := store.Load(ctx)
	require.Len(t, got, 2)
	assert.Equal(t, first.ID, got[0].ID)
	assert.Equal(t, *first.Nickname, *got[0].Nickname)
	assert.Equal(t, first.Body, got[0].Body)
	assert.Equal(t, first.Rating, got[0].Rating)
	assert.True(t, first.CreatedAt.Equal(got[0].CreatedAt))
	assert.Equal(t, second.ID, got[1].ID)
	assert.Nil(t, got[1].Nickname)
	assert.Equal(t, VisibilityPrivate, got[1].Visibility)
}

func TestSlotRecordStore_AppendDuplicateID(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	rec := testRecord("dup")
	require.NoError(t, store.Append(ctx, rec))

	err := store.Append(ctx, rec)
	assert.ErrorIs(t, err, myErr.ErrAlreadyExists)
	assert.Len(t, store.Load(ctx), 1)
}

func TestSlotRecordStore_AppendOverMalformed(t *testing.T) {
	store, slots := setupTestStore(t)
	ctx := context.Background()
	require.NoError(t, slots.Set(ctx, StorageKey, `"not json"`))

	require.NoError(t, store.Append(ctx, testRecord("x")))

	got := store.Load(ctx)
	require.Len(t, got, 1)
	assert.Equal(t, "x", got[0].ID)
}

func TestSlotRecordStore_ConcurrentAppend(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	const n = 20
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		go func(i int) {
			errs <- store.Append(ctx, testRecord(fmt.Sprintf("id-%d", i)))
		}(i)
	}
	for i := 0; i < n; i++ {
		assert.NoError(t, <-errs)
	}

	assert.Len(t, store.Load(ctx), n)
}

func TestSlotRecordStore_FindByID(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Append(ctx, testRecord("a")))
	require.NoError(t, store.Append(ctx, testRecord("b")))

	got, ok := store.FindByID(ctx, "b")
	require.True(t, ok)
	assert.Equal(t, "b", got.ID)

	got.Body = "mutated"
	again, ok := store.FindByID(ctx, "b")
	require.True(t, ok)
	assert.NotEqual(t, "mutated", again.Body)

	_, ok = store.FindByID(ctx, "missing")
	assert.False(t, ok)

	_, ok = store.FindByID(ctx, "")
	assert.False(t, ok)
}

func TestSlotRecordStore_AppendDropsNullElements(t *testing.T) {
	store, slots := setupTestStore(t)
	ctx := context.Background()
	require.NoError(t, slots.Set(ctx, StorageKey, `[null]`))

	assert.Empty(t, store.Load(ctx))

	require.NoError(t, store.Append(ctx, testRecord("00000000-0000-4000-8000-000000000001")))

	raw, ok, err := slots.Get(ctx, StorageKey)
	require.NoError(t, err)
	require.True(t, ok)
	var items []json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(raw), &items))
	require.Len(t, items, 1)
	assert.NotEqual(t, "null", string(items[0]))
	require.Len(t, store.Load(ctx), 1)
}
