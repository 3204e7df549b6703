package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yudhapane/fpl-oracle/internal/domain/scoring"
	"github.com/yudhapane/fpl-oracle/internal/platform/logging"
)

func newTestPredictionService(
	provider *fakeProvider,
	cs CleanSheetProbabilityProvider,
	goal GoalProbabilityProvider,
) *PredictionService {
	snapSvc, store := newTestSnapshotService(provider, nil)
	return NewPredictionService(snapSvc, store, scoring.DefaultCoefficients(), cs, goal, logging.NewNop(), PredictionServiceConfig{})
}

func TestPredictionService_Predict(t *testing.T) {
	svc := newTestPredictionService(snapshotFixtureSet(), nil, nil)
	ctx := context.Background()

	out, err := svc.Predict(ctx, 10, 0)
	require.NoError(t, err)
	require.Equal(t, int64(10), out.PlayerID)
	require.Equal(t, defaultHorizon, out.Horizon, "zero horizon must use the default window")
	require.Len(t, out.Fixtures, 1)
	require.Greater(t, out.ExpectedPoints, 0.0)
	require.Equal(t, scoring.TrendStable, out.Trend)
}

func TestPredictionService_PredictValidation(t *testing.T) {
	svc := newTestPredictionService(snapshotFixtureSet(), nil, nil)
	ctx := context.Background()

	cases := []struct {
		name     string
		playerID int64
		horizon  int
		wantErr  error
	}{
		{name: "unknown player", playerID: 999, horizon: 5, wantErr: ErrNotFound},
		{name: "non-positive player id", playerID: 0, horizon: 5, wantErr: ErrInvalidInput},
		{name: "horizon too large", playerID: 10, horizon: maxHorizon + 1, wantErr: ErrInvalidInput},
		{name: "negative horizon", playerID: 10, horizon: -1, wantErr: ErrInvalidInput},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Predict(ctx, tc.playerID, tc.horizon)
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestPredictionService_CleanSheetEnrichmentWins(t *testing.T) {
	cs := &fakeCSProvider{probs: []CleanSheetProbability{
		{FixtureID: 500, TeamID: 1, Pct: 64},
	}}
	goal := &fakeGoalProvider{probs: []GoalProbability{
		{FixtureID: 500, PlayerID: 10, Pct: 41},
	}}
	svc := newTestPredictionService(snapshotFixtureSet(), cs, goal)

	out, err := svc.Predict(context.Background(), 10, 1)
	require.NoError(t, err)
	require.Len(t, out.Fixtures, 1)
	require.InDelta(t, 64.0, out.Fixtures[0].CleanSheetPct, 1e-9)

	require.Equal(t, 1, cs.calls)
	require.Equal(t, 0, goal.calls, "the odds feed must not be consulted while the stats snapshot is healthy")
}

func TestPredictionService_GoalOddsFallback(t *testing.T) {
	cs := &fakeCSProvider{err: errors.New("statsnap down")}
	goal := &fakeGoalProvider{probs: []GoalProbability{
		{FixtureID: 500, PlayerID: 10, Pct: 41},
	}}
	svc := newTestPredictionService(snapshotFixtureSet(), cs, goal)

	out, err := svc.Predict(context.Background(), 10, 1)
	require.NoError(t, err)
	require.Len(t, out.Fixtures, 1)
	require.InDelta(t, 41.0, out.Fixtures[0].GoalPct, 1e-9)

	require.Equal(t, 1, cs.calls)
	require.Equal(t, 1, goal.calls)
}

func TestPredictionService_EnrichmentForOtherTeamIgnored(t *testing.T) {
	cs := &fakeCSProvider{probs: []CleanSheetProbability{
		{FixtureID: 500, TeamID: 2, Pct: 64},
	}}
	svc := newTestPredictionService(snapshotFixtureSet(), cs, nil)

	// Player 10 belongs to team 1; the team-2 probability must not leak in.
	out, err := svc.Predict(context.Background(), 10, 1)
	require.NoError(t, err)
	require.Len(t, out.Fixtures, 1)
	require.NotEqual(t, 64.0, out.Fixtures[0].CleanSheetPct)
}

func TestPredictionService_BothProvidersDownFallsBackToHeuristics(t *testing.T) {
	cs := &fakeCSProvider{err: errors.New("statsnap down")}
	goal := &fakeGoalProvider{err: errors.New("oddsfeed down")}
	svc := newTestPredictionService(snapshotFixtureSet(), cs, goal)

	out, err := svc.Predict(context.Background(), 10, 1)
	require.NoError(t, err, "enrichment failures must not fail the prediction")
	require.Len(t, out.Fixtures, 1)
	require.Greater(t, out.Fixtures[0].CleanSheetPct, 0.0)
}

func TestPredictionService_PlayerMetrics(t *testing.T) {
	provider := snapshotFixtureSet()
	svc := newTestPredictionService(provider, nil, nil)
	ctx := context.Background()

	metrics, err := svc.PlayerMetrics(ctx, 10)
	require.NoError(t, err)
	require.Equal(t, int64(10), metrics.PlayerID)
	require.Equal(t, "Player 10", metrics.Name)
	require.Equal(t, 8.0, metrics.CostMillions)
	require.Equal(t, 6, metrics.SampleSize)
	require.InDelta(t, 90.0, metrics.AvgMinutes, 1e-9)
	require.InDelta(t, 1.0, metrics.MinutesProbability, 1e-9)
	require.Equal(t, scoring.TrendStable, metrics.Trend)
	require.Positive(t, metrics.Confidence.Score)

	// Served from the metrics cache on repeat.
	_, err = svc.PlayerMetrics(ctx, 10)
	require.NoError(t, err)
	require.Equal(t, 1, provider.detailCalls)

	_, err = svc.PlayerMetrics(ctx, 0)
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.PlayerMetrics(ctx, 999)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestPredictionService_TeamMetrics(t *testing.T) {
	svc := newTestPredictionService(snapshotFixtureSet(), nil, nil)
	ctx := context.Background()

	metrics, err := svc.TeamMetrics(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, int64(1), metrics.TeamID)
	require.Equal(t, "Arsenal", metrics.Name)
	require.Equal(t, "ARS", metrics.Short)
	require.Equal(t, 1, metrics.Form.Played)

	_, err = svc.TeamMetrics(ctx, 0)
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.TeamMetrics(ctx, 99)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestPredictionService_FixtureContext(t *testing.T) {
	svc := newTestPredictionService(snapshotFixtureSet(), nil, nil)
	ctx := context.Background()

	fc, err := svc.FixtureContext(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, int64(1), fc.Fixture.ID)
	require.Equal(t, "Arsenal", fc.HomeTeam.Name)
	require.Equal(t, "Brentford", fc.AwayTeam.Name)
	require.False(t, fc.Live, "finished fixture must not read as live")
	require.False(t, fc.HalfTime)
	require.GreaterOrEqual(t, fc.HomeCleanSheetPct, 5.0)
	require.LessOrEqual(t, fc.HomeCleanSheetPct, 60.0)

	_, err = svc.FixtureContext(ctx, 0)
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.FixtureContext(ctx, 404)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestPredictionService_FixtureContextHalfTime(t *testing.T) {
	t.Run("interval minutes flag half-time", func(t *testing.T) {
		provider := snapshotFixtureSet()
		provider.fixtures[0].Finished = false // fixture 1 is in play
		provider.live = []LiveStat{{PlayerID: 10, Minutes: 46}}
		svc := newTestPredictionService(provider, nil, nil)

		fc, err := svc.FixtureContext(context.Background(), 1)
		require.NoError(t, err)
		require.True(t, fc.Live)
		require.True(t, fc.HalfTime)
	})

	t.Run("mid-half minutes do not", func(t *testing.T) {
		provider := snapshotFixtureSet()
		provider.fixtures[0].Finished = false
		provider.live = []LiveStat{{PlayerID: 10, Minutes: 30}}
		svc := newTestPredictionService(provider, nil, nil)

		fc, err := svc.FixtureContext(context.Background(), 1)
		require.NoError(t, err)
		require.True(t, fc.Live)
		require.False(t, fc.HalfTime)
	})

	t.Run("live stats failure degrades to no flag", func(t *testing.T) {
		provider := snapshotFixtureSet()
		provider.fixtures[0].Finished = false
		provider.liveErr = errors.New("live feed down")
		svc := newTestPredictionService(provider, nil, nil)

		fc, err := svc.FixtureContext(context.Background(), 1)
		require.NoError(t, err)
		require.True(t, fc.Live)
		require.False(t, fc.HalfTime)
	})
}
