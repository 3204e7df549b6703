package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yudhapane/fpl-oracle/internal/domain/fixture"
	"github.com/yudhapane/fpl-oracle/internal/domain/player"
	"github.com/yudhapane/fpl-oracle/internal/domain/team"
)

func snapshotFixtureSet() *fakeProvider {
	return &fakeProvider{
		bootstrap: LeagueBootstrap{
			Teams: []team.Team{
				testTeam(1, "Arsenal", "ARS"),
				testTeam(2, "Brentford", "BRE"),
			},
			Players: []player.Player{
				testPlayer(10, 1, player.PositionMidfielder, 80),
				testPlayer(11, 2, player.PositionForward, 65),
			},
			CurrentGameweek: 6,
			NextGameweek:    7,
		},
		fixtures: []fixture.Fixture{
			{ID: 1, Gameweek: 5, KickoffAt: testKickoff.AddDate(0, 0, -7), HomeTeamID: 1, AwayTeamID: 2, HomeScore: 2, AwayScore: 0, Started: true, Finished: true},
			{ID: 2, Gameweek: 7, KickoffAt: testKickoff.AddDate(0, 0, 7), HomeTeamID: 2, AwayTeamID: 1},
		},
		details: map[int64]player.Detail{
			10: testDetail(10, 5),
			11: testDetail(11, 3),
		},
		live: []LiveStat{{PlayerID: 10, Minutes: 46, TotalPoints: 2}},
	}
}

func TestSnapshotService_Snapshot(t *testing.T) {
	provider := snapshotFixtureSet()
	svc, _ := newTestSnapshotService(provider, nil)
	ctx := context.Background()

	snap, err := svc.Snapshot(ctx)
	require.NoError(t, err)

	require.Equal(t, 6, snap.CurrentGameweek)
	require.Equal(t, 7, snap.NextGameweek)
	require.Len(t, snap.Teams, 2)
	require.Len(t, snap.Players, 2)
	require.Len(t, snap.Fixtures, 2)
	require.Equal(t, "Arsenal", snap.Teams[1].Name)
	require.Equal(t, player.PositionForward, snap.Players[11].Position)

	// The single finished fixture feeds the form aggregates.
	homeForm, ok := snap.Forms.Team(1)
	require.True(t, ok)
	require.Equal(t, 1, homeForm.Played)
	require.Equal(t, "W", homeForm.LastFive)
}

func TestSnapshotService_SnapshotCached(t *testing.T) {
	provider := snapshotFixtureSet()
	svc, _ := newTestSnapshotService(provider, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.Snapshot(ctx)
		require.NoError(t, err)
	}

	require.Equal(t, 1, provider.bootstrapCalls, "bootstrap must be served from cache after the first call")
	require.Equal(t, 1, provider.fixturesCalls, "fixtures must be served from cache after the first call")
}

func TestSnapshotService_SnapshotPropagatesProviderFailure(t *testing.T) {
	provider := snapshotFixtureSet()
	provider.bootstrapErr = errors.New("upstream down")
	svc, _ := newTestSnapshotService(provider, nil)

	_, err := svc.Snapshot(context.Background())
	require.ErrorContains(t, err, "upstream down")
}

func TestSnapshotService_Invalidate(t *testing.T) {
	provider := snapshotFixtureSet()
	svc, _ := newTestSnapshotService(provider, nil)
	ctx := context.Background()

	_, err := svc.Snapshot(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, provider.bootstrapCalls)

	svc.Invalidate(ctx)

	_, err = svc.Snapshot(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, provider.bootstrapCalls, "invalidate must force a refetch")
	require.Equal(t, 2, provider.fixturesCalls)
}

func TestSnapshotService_PlayerDetail(t *testing.T) {
	provider := snapshotFixtureSet()
	svc, _ := newTestSnapshotService(provider, nil)
	ctx := context.Background()

	detail, err := svc.PlayerDetail(ctx, 10)
	require.NoError(t, err)
	require.Equal(t, int64(10), detail.PlayerID)
	require.Len(t, detail.History, 6)

	// Cached on repeat.
	_, err = svc.PlayerDetail(ctx, 10)
	require.NoError(t, err)
	require.Equal(t, 1, provider.detailCalls)

	t.Run("rejects non-positive id", func(t *testing.T) {
		_, err := svc.PlayerDetail(ctx, 0)
		require.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("unknown player surfaces not found", func(t *testing.T) {
		_, err := svc.PlayerDetail(ctx, 999)
		require.ErrorIs(t, err, ErrNotFound)
	})
}

func TestSnapshotService_LiveStats(t *testing.T) {
	provider := snapshotFixtureSet()
	svc, _ := newTestSnapshotService(provider, nil)
	ctx := context.Background()

	stats, err := svc.LiveStats(ctx, 6)
	require.NoError(t, err)
	require.Len(t, stats, 1)
	require.Equal(t, int64(10), stats[0].PlayerID)

	_, err = svc.LiveStats(ctx, 6)
	require.NoError(t, err)
	require.Equal(t, 1, provider.liveCalls)

	_, err = svc.LiveStats(ctx, 0)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestSnapshotService_ArchivesRawPayloads(t *testing.T) {
	provider := snapshotFixtureSet()
	archiver := &fakeArchiver{}
	svc, _ := newTestSnapshotService(provider, archiver)
	ctx := context.Background()

	_, err := svc.Snapshot(ctx)
	require.NoError(t, err)

	// Bootstrap and fixtures each contribute one payload.
	require.Equal(t, 2, archiver.count())

	_, err = svc.PlayerDetail(ctx, 10)
	require.NoError(t, err)
	require.Equal(t, 3, archiver.count())
}

func TestSnapshotService_ArchiveFailureDoesNotBlock(t *testing.T) {
	provider := snapshotFixtureSet()
	archiver := &fakeArchiver{err: errors.New("db down")}
	svc, _ := newTestSnapshotService(provider, archiver)

	snap, err := svc.Snapshot(context.Background())
	require.NoError(t, err, "archive failures must not fail the snapshot")
	require.NotEmpty(t, snap.Players)
}
