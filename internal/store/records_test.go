package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/forestguardian/forest-guardian/internal/kv"
	"github.com/forestguardian/forest-guardian/internal/model"
)

func newTestKV(t *testing.T) *kv.SQLiteStore {
	t.Helper()
	dir := t.TempDir()
	s, err := kv.NewSQLiteStore(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("create kv: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestRecords(t *testing.T) *RecordStore {
	t.Helper()
	return NewRecordStore(newTestKV(t), nil)
}

func barkBeetle() AppendParams {
	return AppendParams{
		Label:      "Lýkožrout smrkový",
		Confidence: 0.92,
		Severity:   model.SeverityHigh,
		ImageURI:   "/images/img_a.jpg",
		Mode:       "object_detection",
		TreeType:   "spruce",
	}
}

func healthy() AppendParams {
	return AppendParams{
		Label:      "Healthy",
		Confidence: 0.99,
		Severity:   model.SeverityLow,
		Mode:       "object_detection",
		TreeType:   "oak",
	}
}

func TestListEmpty(t *testing.T) {
	s := newTestRecords(t)

	list, err := s.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestAppendGeneratesFields(t *testing.T) {
	ctx := context.Background()
	s := newTestRecords(t)

	before := time.Now().UTC().Add(-time.Second)
	rec, err := s.Append(ctx, barkBeetle())
	require.NoError(t, err)

	assert.NotEmpty(t, rec.ID)
	assert.True(t, rec.Date.After(before), "date should be set to creation time")
	assert.Equal(t, "Lýkožrout smrkový", rec.Label)
	assert.Equal(t, 0.92, rec.Confidence)
	assert.Equal(t, model.SeverityHigh, rec.Severity)
	assert.Equal(t, "/images/img_a.jpg", rec.ImageURI)
	assert.Equal(t, "spruce", rec.TreeType)
}

func TestAppendNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := newTestRecords(t)

	a, err := s.Append(ctx, barkBeetle())
	require.NoError(t, err)
	b, err := s.Append(ctx, healthy())
	require.NoError(t, err)

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, *b, list[0])
	assert.Equal(t, *a, list[1])
}

func TestSequentialAppendsUniqueIDs(t *testing.T) {
	ctx := context.Background()
	s := newTestRecords(t)

	var appended []string
	for i := 0; i < 50; i++ {
		rec, err := s.Append(ctx, healthy())
		require.NoError(t, err)
		appended = append(appended, rec.ID)
	}

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 50)

	seen := map[string]bool{}
	for i, r := range list {
		assert.False(t, seen[r.ID], "duplicate id %s", r.ID)
		seen[r.ID] = true
		assert.Equal(t, appended[len(appended)-1-i], r.ID, "position %d", i)
	}
}

func TestAppendValidation(t *testing.T) {
	ctx := context.Background()
	s := newTestRecords(t)

	tests := []struct {
		name string
		p    AppendParams
	}{
		{"empty label", AppendParams{Label: " ", Confidence: 0.5, Severity: model.SeverityLow}},
		{"negative confidence", AppendParams{Label: "x", Confidence: -0.1, Severity: model.SeverityLow}},
		{"confidence above one", AppendParams{Label: "x", Confidence: 1.01, Severity: model.SeverityLow}},
		{"unknown severity", AppendParams{Label: "x", Confidence: 0.5, Severity: "critical"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Append(ctx, tt.p)
			assert.ErrorIs(t, err, ErrInvalidRecord)
		})
	}

	list, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list, "rejected records must not be stored")
}

func TestRemove(t *testing.T) {
	ctx := context.Background()
	s := newTestRecords(t)

	a, _ := s.Append(ctx, barkBeetle())
	b, _ := s.Append(ctx, healthy())

	require.NoError(t, s.Remove(ctx, a.ID))

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, b.ID, list[0].ID)

	_, err = s.Get(ctx, a.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRemoveUnknownIsNoop(t *testing.T) {
	ctx := context.Background()
	f := kv.NewFaultStore(kv.NewMemoryStore())
	s := NewRecordStore(f, nil)

	s.Append(ctx, barkBeetle())
	s.Append(ctx, healthy())
	before, _ := s.List(ctx)
	writes := f.Sets()

	require.NoError(t, s.Remove(ctx, "does-not-exist"))

	after, _ := s.List(ctx)
	assert.Equal(t, before, after)
	assert.Equal(t, writes, f.Sets(), "no write expected for an unknown id")
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	backend := newTestKV(t)
	s := NewRecordStore(backend, nil)

	s.Append(ctx, barkBeetle())
	s.Append(ctx, healthy())
	require.NoError(t, s.Clear(ctx))

	list, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, ok, err := backend.Get(ctx, RecordsKey)
	require.NoError(t, err)
	assert.False(t, ok, "slot should be removed")

	require.NoError(t, s.Clear(ctx), "clearing an empty history is fine")
}

func TestGet(t *testing.T) {
	ctx := context.Background()
	s := newTestRecords(t)

	a, _ := s.Append(ctx, barkBeetle())
	got, err := s.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, *a, *got)
}

func TestListMalformedIsEmpty(t *testing.T) {
	ctx := context.Background()
	backend := kv.NewMemoryStore()
	require.NoError(t, backend.Set(ctx, RecordsKey, "{not json"))

	s := NewRecordStore(backend, nil)
	list, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	// Appending over a corrupt slot starts a fresh history.
	_, err = s.Append(ctx, healthy())
	require.NoError(t, err)
	list, _ = s.List(ctx)
	assert.Len(t, list, 1)
}

func TestListNullIsEmpty(t *testing.T) {
	ctx := context.Background()
	backend := kv.NewMemoryStore()
	require.NoError(t, backend.Set(ctx, RecordsKey, "null"))

	list, err := NewRecordStore(backend, nil).List(ctx)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestReadFailureSurfaces(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("storage unavailable")
	f := kv.NewFaultStore(kv.NewMemoryStore())
	s := NewRecordStore(f, nil)
	s.Append(ctx, healthy())

	f.FailGet(boom)

	_, err := s.List(ctx)
	assert.ErrorIs(t, err, ErrRead)
	assert.ErrorIs(t, err, boom)

	_, err = s.Append(ctx, barkBeetle())
	assert.ErrorIs(t, err, ErrRead)

	err = s.Remove(ctx, "x")
	assert.ErrorIs(t, err, ErrRead)

	var pe *PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, OpRead, pe.Op)
	assert.Equal(t, RecordsKey, pe.Key)
}

func TestWriteFailureDoesNotSave(t *testing.T) {
	ctx := context.Background()
	f := kv.NewFaultStore(kv.NewMemoryStore())
	s := NewRecordStore(f, nil)
	a, _ := s.Append(ctx, healthy())

	f.FailSet(errors.New("quota exceeded"))

	rec, err := s.Append(ctx, barkBeetle())
	assert.Nil(t, rec)
	assert.ErrorIs(t, err, ErrWrite)
	assert.NotErrorIs(t, err, ErrRead)

	assert.ErrorIs(t, s.Remove(ctx, a.ID), ErrWrite)

	f.FailSet(nil)
	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, a.ID, list[0].ID)
}

func TestClearFailureMayLeaveData(t *testing.T) {
	ctx := context.Background()
	f := kv.NewFaultStore(kv.NewMemoryStore())
	s := NewRecordStore(f, nil)
	s.Append(ctx, healthy())

	f.FailRemove(errors.New("storage unavailable"))
	err := s.Clear(ctx)
	assert.ErrorIs(t, err, ErrWrite)
	assert.True(t, DataMayRemain(err))

	list, _ := s.List(ctx)
	assert.Len(t, list, 1)
}

func TestRecordRoundTrip(t *testing.T) {
	ctx := context.Background()
	backend := newTestKV(t)

	rec, err := NewRecordStore(backend, nil).Append(ctx, AppendParams{
		Label:          "Požerky (Matečné chodby)",
		Confidence:     0.88,
		Severity:       model.SeverityMedium,
		ImageURI:       "/images/img_b.jpg",
		Mode:           "segmentation",
		TreeType:       "pine",
		Description:    "galleries under bark",
		Recommendation: "Sledovat vývoj, zkontrolovat výletové otvory.",
	})
	require.NoError(t, err)

	// A fresh store over the same slot simulates an app restart.
	list, err := NewRecordStore(backend, nil).List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, *rec, list[0])
}

// Concurrent appends race on the whole-slot read-modify-write; losing one
// of them is accepted behaviour.
func TestConcurrentAppendsAtLeastOneSurvives(t *testing.T) {
	ctx := context.Background()
	s := NewRecordStore(kv.NewMemoryStore(), nil)

	var g errgroup.Group
	g.Go(func() error {
		_, err := s.Append(ctx, barkBeetle())
		return err
	})
	g.Go(func() error {
		_, err := s.Append(ctx, healthy())
		return err
	})
	require.NoError(t, g.Wait())

	list, err := s.List(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(list), 1)
	assert.LessOrEqual(t, len(list), 2)
}
