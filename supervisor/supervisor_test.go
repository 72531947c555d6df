package supervisor

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aryanbdps9/gpumcts/games"
)

func newTestSupervisor(t *testing.T) *Supervisor {
	t.Helper()
	cfg := DefaultConfig(games.GameConnect4)
	cfg.NodePoolSize = 4096
	cfg.NumWorkers = 4
	s, err := CreateContext(cfg, prometheus.NewRegistry())
	require.NoError(t, err)
	s.InitTree()
	return s
}

func TestCreateContextRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig(games.GameGomoku)
	cfg.NumWorkers = 0
	_, err := CreateContext(cfg, prometheus.NewRegistry())
	assert.Error(t, err)
}

func TestRunIterationsGrowsRootVisits(t *testing.T) {
	s := newTestSupervisor(t)
	tel, err := s.RunIterations(context.Background(), 200)
	require.NoError(t, err)
	assert.Greater(t, tel.IterationsRun, int64(0))
	assert.EqualValues(t, tel.IterationsRun, tel.RootVisits)
}

func TestRunIterationsRejectsBelowMinBatch(t *testing.T) {
	s := newTestSupervisor(t)
	s.cfg.MinBatchIterations = 50
	_, err := s.RunIterations(context.Background(), 10)
	assert.ErrorIs(t, err, ErrBatchTooSmall)
}

func TestGetChildrenStatsAfterSearch(t *testing.T) {
	s := newTestSupervisor(t)
	_, err := s.RunIterations(context.Background(), 200)
	require.NoError(t, err)

	stats, err := s.GetChildrenStats()
	require.NoError(t, err)
	assert.NotEmpty(t, stats)
}

func TestAdvanceRootRejectsUnknownMove(t *testing.T) {
	s := newTestSupervisor(t)
	err := s.AdvanceRoot(games.MoveID(9999))
	assert.ErrorIs(t, err, ErrRerootInvariant)
}

func TestAdvanceRootMovesRootForward(t *testing.T) {
	s := newTestSupervisor(t)
	_, err := s.RunIterations(context.Background(), 300)
	require.NoError(t, err)

	stats, err := s.GetChildrenStats()
	require.NoError(t, err)
	require.NotEmpty(t, stats)

	before := s.pool.LiveCount()
	err = s.AdvanceRoot(stats[0].Move)
	require.NoError(t, err)
	assert.LessOrEqual(t, s.pool.LiveCount(), before)
}

func TestSetHaltStopsFurtherIterations(t *testing.T) {
	s := newTestSupervisor(t)
	s.SetHalt(true)
	tel, err := s.RunIterations(context.Background(), 1000)
	require.NoError(t, err)
	assert.Zero(t, tel.IterationsRun)
}
