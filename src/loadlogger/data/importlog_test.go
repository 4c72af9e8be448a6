package data

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/gridstate/load-logger/src/loadlogger/timeutil"
	"github.com/gridstate/load-logger/src/loadlogger/types"
)

func seedRun(t *testing.T, db *gorm.DB, startedAgo time.Duration, status string) types.ImportLog {
	t.Helper()
	started := timeutil.Now().Add(-startedAgo)
	completed := started.Add(30 * time.Second)
	entry := types.ImportLog{
		StartedAt:   started,
		CompletedAt: &completed,
		Status:      status,
	}
	require.NoError(t, db.Create(&entry).Error)
	return entry
}

func TestLastImportEmpty(t *testing.T) {
	db := openTestDB(t)

	last, err := LastImport(db)
	require.NoError(t, err)
	require.Nil(t, last)

	last, err = LastSuccessfulImport(db)
	require.NoError(t, err)
	require.Nil(t, last)
}

func TestLastImportOrdering(t *testing.T) {
	db := openTestDB(t)
	seedRun(t, db, 3*time.Hour, types.ImportSuccess)
	seedRun(t, db, 2*time.Hour, types.ImportSuccess)
	newest := seedRun(t, db, 1*time.Hour, types.ImportFailed)

	last, err := LastImport(db)
	require.NoError(t, err)
	require.Equal(t, newest.ID, last.ID)

	lastOK, err := LastSuccessfulImport(db)
	require.NoError(t, err)
	require.Equal(t, types.ImportSuccess, lastOK.Status)
	require.NotEqual(t, newest.ID, lastOK.ID)
}

func TestImportHistoryNewestFirst(t *testing.T) {
	db := openTestDB(t)
	for i := 0; i < 5; i++ {
		seedRun(t, db, time.Duration(i+1)*time.Hour, types.ImportSuccess)
	}

	entries, err := ImportHistory(db, 3)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	require.True(t, entries[0].StartedAt.After(entries[1].StartedAt))
	require.True(t, entries[1].StartedAt.After(entries[2].StartedAt))
}

func TestImportStatsSince(t *testing.T) {
	db := openTestDB(t)
	seedRun(t, db, 1*time.Hour, types.ImportSuccess)
	seedRun(t, db, 2*time.Hour, types.ImportSuccess)
	seedRun(t, db, 3*time.Hour, types.ImportFailed)
	seedRun(t, db, 48*time.Hour, types.ImportFailed) // outside the window

	stats, err := ImportStatsSince(db, 24)
	require.NoError(t, err)
	require.EqualValues(t, 3, stats.Total)
	require.EqualValues(t, 2, stats.Successful)
	require.EqualValues(t, 1, stats.Failed)
	require.InDelta(t, 66.6, stats.SuccessRate, 0.1)
}
