package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/gridstate/load-logger/src/loadlogger/data"
	"github.com/gridstate/load-logger/src/loadlogger/importer"
	"github.com/gridstate/load-logger/src/loadlogger/upstream"
)

type stubClient struct{}

func (stubClient) CheckConnectivity(ctx context.Context) bool { return true }
func (stubClient) CheckInternet(ctx context.Context) bool     { return true }
func (stubClient) Cooperatives(ctx context.Context) ([]upstream.Cooperative, error) {
	return nil, nil
}
func (stubClient) AreaGrid(ctx context.Context, areaID uint32) (*upstream.AreaGridResponse, error) {
	return &upstream.AreaGridResponse{ID: areaID}, nil
}
func (stubClient) AreaSubstations(ctx context.Context, areaID uint32) (*upstream.AreaLoadTableResponse, error) {
	return &upstream.AreaLoadTableResponse{ID: areaID}, nil
}

type stubAlerter struct{}

func (stubAlerter) SendFailureAlert(message string) error { return nil }
func (stubAlerter) SendRecoveryNotice() error             { return nil }

func newTestScheduler(t *testing.T) *Scheduler {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, data.Migrate(db))

	imp := importer.New(db, stubClient{}, stubAlerter{})
	return New(imp, data.NewSettings(db))
}

func TestNextMark(t *testing.T) {
	loc := time.UTC
	cases := []struct {
		now   time.Time
		every time.Duration
		want  time.Time
	}{
		{time.Date(2024, 6, 1, 9, 7, 42, 0, loc), 5 * time.Minute, time.Date(2024, 6, 1, 9, 10, 0, 0, loc)},
		{time.Date(2024, 6, 1, 9, 0, 0, 0, loc), 5 * time.Minute, time.Date(2024, 6, 1, 9, 5, 0, 0, loc)},
		{time.Date(2024, 6, 1, 9, 59, 59, 0, loc), 5 * time.Minute, time.Date(2024, 6, 1, 10, 0, 0, 0, loc)},
		{time.Date(2024, 6, 1, 9, 7, 0, 0, loc), 15 * time.Minute, time.Date(2024, 6, 1, 9, 15, 0, 0, loc)},
		{time.Date(2024, 6, 1, 9, 31, 0, 0, loc), time.Hour, time.Date(2024, 6, 1, 10, 0, 0, 0, loc)},
	}
	for _, c := range cases {
		got := NextMark(c.now, c.every)
		require.True(t, got.Equal(c.want), "NextMark(%v, %v) = %v, want %v", c.now, c.every, got, c.want)
	}
}

func TestStartStop(t *testing.T) {
	s := newTestScheduler(t)
	require.False(t, s.Running())
	require.Nil(t, s.NextRun())

	s.Start()
	require.True(t, s.Running())

	// The run loop publishes its first fire time shortly after Start.
	deadline := time.Now().Add(2 * time.Second)
	for s.NextRun() == nil && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	next := s.NextRun()
	require.NotNil(t, next)
	require.True(t, next.After(time.Now()))

	s.Stop()
	require.False(t, s.Running())
	require.Nil(t, s.NextRun())

	// Stopping again is harmless.
	s.Stop()
	require.False(t, s.Running())
}

func TestStartTwiceIsNoOp(t *testing.T) {
	s := newTestScheduler(t)
	s.Start()
	defer s.Stop()

	s.Start()
	require.True(t, s.Running())
}

func TestRestart(t *testing.T) {
	s := newTestScheduler(t)
	s.Start()
	defer s.Stop()

	s.Restart()
	require.True(t, s.Running())
}

func TestTriggerImportDelegates(t *testing.T) {
	s := newTestScheduler(t)

	res, err := s.TriggerImport(context.Background())
	require.NoError(t, err)
	require.True(t, res.Success)
}
