package progress

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/incidentlab/internal/store"
)

func TestMemoryStore_CopiesOnSaveAndLoad(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	p := New()
	p.HintsViewed = []string{"a"}
	require.NoError(t, s.Save(ctx, "p1", map[string]*CaseProgress{"c1": p}))
	p.HintsViewed[0] = "changed"

	got, err := s.Load(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, got["c1"].HintsViewed)

	got["c1"].CluesRevealed = 5
	again, err := s.Load(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, InitialClues, again["c1"].CluesRevealed)
}

func TestMemoryStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMemoryStore().Load(ctx, "p1")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRepoStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	db, err := store.Open(filepath.Join(t.TempDir(), "progress.db"))
	require.NoError(t, err)
	defer db.Close()

	s := NewRepoStore(db.ProgressRepo())
	score := 1313
	start := time.UnixMilli(time.Now().UnixMilli())
	savedAt := start.Add(time.Hour)
	s.now = func() time.Time { return savedAt }
	in := map[string]*CaseProgress{
		"solved": {
			CluesRevealed:      4,
			RootCauseAttempts:  2,
			RootCauseCorrect:   true,
			SubmittedRootCause: "pool exhausted",
			SolutionAttempts:   1,
			Solved:             true,
			HintsViewed:        []string{"h1", "h2"},
			StartTime:          start,
			Score:              &score,
		},
		"fresh": New(),
	}
	require.NoError(t, s.Save(ctx, "p1", in))

	out, err := s.Load(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, out, 2)

	recs, err := db.ProgressRepo().Load(ctx, "p1")
	require.NoError(t, err)
	for _, rec := range recs {
		assert.True(t, savedAt.Equal(rec.UpdatedAt), "%s updated at %v", rec.CaseID, rec.UpdatedAt)
	}

	got := out["solved"]
	assert.True(t, got.StartTime.Equal(start))
	got.StartTime = start
	assert.Equal(t, in["solved"], got)
	assert.Equal(t, StateNotStarted, out["fresh"].State())
	assert.Nil(t, out["fresh"].Score)

	require.NoError(t, s.Save(ctx, "p1", map[string]*CaseProgress{}))
	out, err = s.Load(ctx, "p1")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestTracker_WithRepoStore(t *testing.T) {
	ctx := context.Background()
	db, err := store.Open(filepath.Join(t.TempDir(), "tracker.db"))
	require.NoError(t, err)
	defer db.Close()

	tr, err := NewTracker(Options{
		Store:   NewRepoStore(db.ProgressRepo()),
		Catalog: fakeCatalog{},
		Events:  db.EventRepo(),
	})
	require.NoError(t, err)

	res, err := tr.SubmitRootCause(ctx, "p1", testCase, "log volume filled the disk")
	require.NoError(t, err)
	assert.Equal(t, "correct", string(res.Verdict))

	p, err := tr.Progress(ctx, "p1", testCase)
	require.NoError(t, err)
	assert.True(t, p.RootCauseCorrect)

	events, err := db.EventRepo().QueryEvaluations(ctx, "p1", testCase, store.QueryOpts{})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, 1, events[0].Attempt)
}
