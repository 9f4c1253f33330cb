package jsonfile

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Freeeeeet/slot_planner/internal/calendar"
	"github.com/Freeeeeet/slot_planner/internal/model"
	"github.com/Freeeeeet/slot_planner/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newReservationStore(t *testing.T) *ReservationStore {
	t.Helper()
	store, err := NewReservationStore(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	return store
}

func newFixedSlotStore(t *testing.T) *FixedSlotStore {
	t.Helper()
	store, err := NewFixedSlotStore(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	return store
}

func reservation(day int, slot, name string) *model.Reservation {
	return &model.Reservation{
		Date:     calendar.NewDate(2025, time.October, day),
		TimeSlot: slot,
		Name:     name,
	}
}

func strPtr(s string) *string { return &s }

func TestNewReservationStoreCreatesEmptyArray(t *testing.T) {
	dir := t.TempDir()
	_, err := NewReservationStore(dir, zap.NewNop())
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, ReservationsFile))
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))
}

func TestReservationUpsertReplacesPayload(t *testing.T) {
	ctx := context.Background()
	store := newReservationStore(t)

	created, err := store.Upsert(ctx, reservation(13, "8h25-9h20", "first"))
	require.NoError(t, err)
	assert.True(t, created)

	created, err = store.Upsert(ctx, reservation(13, "8h25-9h20", "second"))
	require.NoError(t, err)
	assert.False(t, created)

	all, err := store.List(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "second", all[0].Name)
}

func TestReservationSameDateDifferentSlots(t *testing.T) {
	ctx := context.Background()
	store := newReservationStore(t)

	_, err := store.Upsert(ctx, reservation(13, "9h20-10h15", "b"))
	require.NoError(t, err)
	_, err = store.Upsert(ctx, reservation(13, "8h25-9h20", "a"))
	require.NoError(t, err)

	all, err := store.List(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "8h25-9h20", all[0].TimeSlot)
	assert.Equal(t, "9h20-10h15", all[1].TimeSlot)
}

func TestReservationDeleteMissingKeyLeavesStoreUnchanged(t *testing.T) {
	ctx := context.Background()
	store := newReservationStore(t)

	_, err := store.Upsert(ctx, reservation(13, "8h25-9h20", "kept"))
	require.NoError(t, err)

	before, err := os.ReadFile(store.Path())
	require.NoError(t, err)

	removed, err := store.Delete(ctx, model.ReservationKey{
		Date:     calendar.NewDate(2025, time.October, 14),
		TimeSlot: "8h25-9h20",
	})
	require.NoError(t, err)
	assert.False(t, removed)

	after, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestReservationDelete(t *testing.T) {
	ctx := context.Background()
	store := newReservationStore(t)

	r := reservation(13, "8h25-9h20", "gone")
	_, err := store.Upsert(ctx, r)
	require.NoError(t, err)

	removed, err := store.Delete(ctx, r.Key())
	require.NoError(t, err)
	assert.True(t, removed)

	all, err := store.List(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestReservationListByWeek(t *testing.T) {
	ctx := context.Background()
	store := newReservationStore(t)

	for _, day := range []int{12, 13, 19, 20} {
		_, err := store.Upsert(ctx, reservation(day, "8h25-9h20", "x"))
		require.NoError(t, err)
	}

	week := calendar.WeekRange(2025, 42)
	got, err := store.List(ctx, &week)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "2025-10-13", got[0].Date.String())
	assert.Equal(t, "2025-10-19", got[1].Date.String())
}

func TestReservationInsertDuplicate(t *testing.T) {
	ctx := context.Background()
	store := newReservationStore(t)

	require.NoError(t, store.Insert(ctx, reservation(13, "8h25-9h20", "first")))
	err := store.Insert(ctx, reservation(13, "8h25-9h20", "second"))
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	all, err := store.List(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "first", all[0].Name)
}

func TestReservationReadsLegacyWeekRecords(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	legacy := `[
		{"year": 2025, "week": 42, "day_of_week": 0, "time_slot": "8h25-9h20", "text": "Math"},
		{"year": "2025", "week": "42", "day_of_week": "2", "time_slot": "9h20-10h15", "text": "Lab"},
		{"date": "2025-10-20", "time_slot": "8h25-9h20", "name": "Next week"}
	]`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ReservationsFile), []byte(legacy), 0644))

	store, err := NewReservationStore(dir, zap.NewNop())
	require.NoError(t, err)

	all, err := store.List(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "2025-10-13", all[0].Date.String())
	assert.Equal(t, "Math", all[0].Name)
	assert.Equal(t, "2025-10-15", all[1].Date.String())
	assert.Equal(t, "Lab", all[1].Name)

	// любая мутация переписывает файл в канонической форме
	_, err = store.Upsert(ctx, reservation(13, "8h25-9h20", "Math 2"))
	require.NoError(t, err)

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)

	var records []map[string]any
	require.NoError(t, json.Unmarshal(data, &records))
	require.Len(t, records, 3)
	for _, record := range records {
		assert.Contains(t, record, "date")
		assert.NotContains(t, record, "year")
		assert.NotContains(t, record, "text")
	}
}

func TestReservationCorruptFileIsAnError(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ReservationsFile), []byte("{not json"), 0644))

	store, err := NewReservationStore(dir, zap.NewNop())
	require.NoError(t, err)

	_, err = store.List(context.Background(), nil)
	assert.Error(t, err)

	_, err = store.Upsert(context.Background(), reservation(13, "8h25-9h20", "x"))
	assert.Error(t, err)

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Equal(t, "{not json", string(data))
}

func TestAtomicWriteLeavesNoTempFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewReservationStore(dir, zap.NewNop())
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		_, err := store.Upsert(ctx, reservation(13+i, "8h25-9h20", "x"))
		require.NoError(t, err)
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, ReservationsFile, entries[0].Name())
}

func TestFixedSlotsGetDistinctStableIDs(t *testing.T) {
	ctx := context.Background()
	store := newFixedSlotStore(t)

	math := &model.FixedSlot{DayOfWeek: 0, TimeSlot: "8h25-9h20", Subject: strPtr("Math")}
	science := &model.FixedSlot{DayOfWeek: 0, TimeSlot: "9h20-10h15", Subject: strPtr("Science")}

	created, err := store.Upsert(ctx, math)
	require.NoError(t, err)
	assert.True(t, created)
	_, err = store.Upsert(ctx, science)
	require.NoError(t, err)

	assert.NotEqual(t, math.ID, science.ID)

	update := &model.FixedSlot{DayOfWeek: 0, TimeSlot: "8h25-9h20", Subject: strPtr("Algebra")}
	created, err = store.Upsert(ctx, update)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, math.ID, update.ID)

	slots, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, math.ID, slots[0].ID)
	assert.Equal(t, "Algebra", slots[0].SubjectOrEmpty())
	assert.Equal(t, science.ID, slots[1].ID)
}

func TestFixedSlotIDsAreNotReusedAfterDelete(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewFixedSlotStore(dir, zap.NewNop())
	require.NoError(t, err)

	first := &model.FixedSlot{DayOfWeek: 1, TimeSlot: "8h25-9h20"}
	second := &model.FixedSlot{DayOfWeek: 1, TimeSlot: "9h20-10h15"}
	_, err = store.Upsert(ctx, first)
	require.NoError(t, err)
	_, err = store.Upsert(ctx, second)
	require.NoError(t, err)

	removed, err := store.Delete(ctx, second.Key())
	require.NoError(t, err)
	assert.True(t, removed)

	// новый экземпляр хранилища видит тот же счётчик
	reopened, err := NewFixedSlotStore(dir, zap.NewNop())
	require.NoError(t, err)

	third := &model.FixedSlot{DayOfWeek: 2, TimeSlot: "8h25-9h20"}
	_, err = reopened.Upsert(ctx, third)
	require.NoError(t, err)

	assert.Greater(t, third.ID, second.ID)
}

func TestFixedSlotLegacyIDsSeedCounter(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	legacy := `[{"id": 7, "day_of_week": 4, "time_slot": "8h25-9h20", "subject": null}]`
	require.NoError(t, os.WriteFile(filepath.Join(dir, FixedSlotsFile), []byte(legacy), 0644))

	store, err := NewFixedSlotStore(dir, zap.NewNop())
	require.NoError(t, err)

	slot := &model.FixedSlot{DayOfWeek: 4, TimeSlot: "9h20-10h15", Subject: strPtr("Art")}
	_, err = store.Upsert(ctx, slot)
	require.NoError(t, err)
	assert.Equal(t, int64(8), slot.ID)

	slots, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Nil(t, slots[0].Subject)
}

func TestFixedSlotLegacyDuplicateKeysAreMerged(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	legacy := `[
		{"id": 2, "day_of_week": 0, "time_slot": "8h25-9h20", "subject": "Old"},
		{"id": 1, "day_of_week": "0", "time_slot": "8h25-9h20", "subject": "Older"}
	]`
	require.NoError(t, os.WriteFile(filepath.Join(dir, FixedSlotsFile), []byte(legacy), 0644))

	store, err := NewFixedSlotStore(dir, zap.NewNop())
	require.NoError(t, err)

	slots, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, int64(1), slots[0].ID)
	assert.Equal(t, "Older", slots[0].SubjectOrEmpty())

	slot := &model.FixedSlot{DayOfWeek: 0, TimeSlot: "8h25-9h20", Subject: strPtr("New")}
	created, err := store.Upsert(ctx, slot)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, int64(1), slot.ID)

	slots, err = store.List(ctx)
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, "New", slots[0].SubjectOrEmpty())

	var records []map[string]any
	data, err := os.ReadFile(filepath.Join(dir, FixedSlotsFile))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &records))
	assert.Len(t, records, 1)
}

func TestFixedSlotListOrdering(t *testing.T) {
	ctx := context.Background()
	store := newFixedSlotStore(t)

	for _, slot := range []*model.FixedSlot{
		{DayOfWeek: 2, TimeSlot: "8h25-9h20"},
		{DayOfWeek: 0, TimeSlot: "9h20-10h15"},
		{DayOfWeek: 0, TimeSlot: "8h25-9h20"},
	} {
		_, err := store.Upsert(ctx, slot)
		require.NoError(t, err)
	}

	slots, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, slots, 3)
	assert.Equal(t, model.FixedSlotKey{DayOfWeek: 0, TimeSlot: "8h25-9h20"}, slots[0].Key())
	assert.Equal(t, model.FixedSlotKey{DayOfWeek: 0, TimeSlot: "9h20-10h15"}, slots[1].Key())
	assert.Equal(t, model.FixedSlotKey{DayOfWeek: 2, TimeSlot: "8h25-9h20"}, slots[2].Key())
}

func TestNetKeySetAfterMixedOperations(t *testing.T) {
	ctx := context.Background()
	store := newReservationStore(t)

	a := reservation(13, "8h25-9h20", "a")
	b := reservation(14, "8h25-9h20", "b")
	c := reservation(15, "8h25-9h20", "c")

	_, _ = store.Upsert(ctx, a)
	_, _ = store.Upsert(ctx, b)
	_, _ = store.Delete(ctx, a.Key())
	_, _ = store.Upsert(ctx, c)
	_, _ = store.Upsert(ctx, a)
	_, _ = store.Delete(ctx, b.Key())
	_, _ = store.Delete(ctx, b.Key())

	all, err := store.List(ctx, nil)
	require.NoError(t, err)

	var keys []string
	for _, r := range all {
		keys = append(keys, r.Date.String())
	}
	assert.Equal(t, []string{"2025-10-13", "2025-10-15"}, keys)
}
