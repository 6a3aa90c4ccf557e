package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "history.db")
	h, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })

	return h
}

func TestRecordAndGetRun(t *testing.T) {
	h := newTestDB(t)

	started := time.Date(2026, 8, 21, 16, 0, 0, 0, time.UTC)
	run := Run{
		RunID:      newRunID(),
		Kind:       KindBackup,
		StartedAt:  started,
		FinishedAt: started.Add(90 * time.Second),
		OK:         false,
		Errors:     2,
		Detail:     "2 trades skipped",
	}
	require.NoError(t, h.RecordRun(run))

	got, err := h.GetRun(run.RunID)
	require.NoError(t, err)
	assert.Equal(t, run.RunID, got.RunID)
	assert.Equal(t, KindBackup, got.Kind)
	assert.False(t, got.OK)
	assert.Equal(t, 2, got.Errors)
	assert.Equal(t, "2 trades skipped", got.Detail)
	assert.True(t, got.StartedAt.Equal(started))
}

func TestGetRunMissing(t *testing.T) {
	h := newTestDB(t)

	_, err := h.GetRun("nope")
	assert.ErrorContains(t, err, "not found")
}

func TestListRunsNewestFirst(t *testing.T) {
	h := newTestDB(t)

	now := time.Now().UTC()
	var ids []string
	for i := 0; i < 3; i++ {
		runID := newRunID()
		ids = append(ids, runID)
		require.NoError(t, h.RecordRun(Run{
			RunID:      runID,
			Kind:       KindImport,
			StartedAt:  now,
			FinishedAt: now,
			OK:         true,
		}))
	}

	runs, err := h.ListRuns(2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, ids[2], runs[0].RunID)
	assert.Equal(t, ids[1], runs[1].RunID)
}

func TestRecordRunAssignsID(t *testing.T) {
	h := newTestDB(t)

	now := time.Now().UTC()
	require.NoError(t, h.RecordRun(Run{
		Kind:       KindBackup,
		StartedAt:  now,
		FinishedAt: now,
		OK:         true,
	}))

	runs, err := h.ListRuns(1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Len(t, runs[0].RunID, 26)
}
