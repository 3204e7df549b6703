package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/yudhapane/fpl-oracle/internal/domain/fixture"
	"github.com/yudhapane/fpl-oracle/internal/domain/player"
	"github.com/yudhapane/fpl-oracle/internal/domain/rawdata"
	"github.com/yudhapane/fpl-oracle/internal/domain/team"
	"github.com/yudhapane/fpl-oracle/internal/platform/cache"
	"github.com/yudhapane/fpl-oracle/internal/platform/logging"
)

var testKickoff = time.Date(2025, 8, 16, 15, 0, 0, 0, time.UTC)

// fakeProvider is an in-memory SportDataProvider with call accounting.
type fakeProvider struct {
	mu sync.Mutex

	bootstrap LeagueBootstrap
	fixtures  []fixture.Fixture
	details   map[int64]player.Detail
	live      []LiveStat

	bootstrapErr error
	fixturesErr  error
	detailErr    error
	liveErr      error

	bootstrapCalls int
	fixturesCalls  int
	detailCalls    int
	liveCalls      int
}

func testPayload(endpoint string) []rawdata.Payload {
	return []rawdata.Payload{{
		Source:      "fpl",
		Endpoint:    endpoint,
		EntityKey:   endpoint,
		PayloadJSON: "{}",
		PayloadHash: "deadbeef",
		FetchedAt:   testKickoff,
	}}
}

func (f *fakeProvider) FetchBootstrap(context.Context) (LeagueBootstrap, []rawdata.Payload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bootstrapCalls++
	if f.bootstrapErr != nil {
		return LeagueBootstrap{}, nil, f.bootstrapErr
	}
	return f.bootstrap, testPayload("/bootstrap-static/"), nil
}

func (f *fakeProvider) FetchFixtures(context.Context) ([]fixture.Fixture, []rawdata.Payload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fixturesCalls++
	if f.fixturesErr != nil {
		return nil, nil, f.fixturesErr
	}
	return f.fixtures, testPayload("/fixtures/"), nil
}

func (f *fakeProvider) FetchPlayerDetail(_ context.Context, playerID int64) (player.Detail, []rawdata.Payload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.detailCalls++
	if f.detailErr != nil {
		return player.Detail{}, nil, f.detailErr
	}
	detail, ok := f.details[playerID]
	if !ok {
		return player.Detail{}, nil, fmt.Errorf("%w: player=%d", ErrNotFound, playerID)
	}
	return detail, testPayload(fmt.Sprintf("/element-summary/%d/", playerID)), nil
}

func (f *fakeProvider) FetchEventLive(_ context.Context, gameweek int) ([]LiveStat, []rawdata.Payload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.liveCalls++
	if f.liveErr != nil {
		return nil, nil, f.liveErr
	}
	return f.live, testPayload(fmt.Sprintf("/event/%d/live/", gameweek)), nil
}

// fakeArchiver records archived payloads.
type fakeArchiver struct {
	mu       sync.Mutex
	payloads []rawdata.Payload
	err      error
}

func (a *fakeArchiver) Archive(_ context.Context, payloads []rawdata.Payload) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return a.err
	}
	a.payloads = append(a.payloads, payloads...)
	return nil
}

func (a *fakeArchiver) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.payloads)
}

// fakeCSProvider is a scripted CleanSheetProbabilityProvider.
type fakeCSProvider struct {
	mu    sync.Mutex
	probs []CleanSheetProbability
	err   error
	calls int
}

func (p *fakeCSProvider) FetchCleanSheetProbabilities(context.Context, int) ([]CleanSheetProbability, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return p.probs, nil
}

// fakeGoalProvider is a scripted GoalProbabilityProvider.
type fakeGoalProvider struct {
	mu    sync.Mutex
	probs []GoalProbability
	err   error
	calls int
}

func (p *fakeGoalProvider) FetchGoalProbabilities(context.Context, int) ([]GoalProbability, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return p.probs, nil
}

func testTeam(id int64, name, short string) team.Team {
	return team.Team{
		ID:    id,
		Name:  name,
		Short: short,
		Strength: team.StrengthRatings{
			Overall:     1100,
			AttackHome:  1100,
			AttackAway:  1080,
			DefenceHome: 1120,
			DefenceAway: 1090,
		},
	}
}

func testPlayer(id, teamID int64, pos player.Position, cost int) player.Player {
	return player.Player{
		ID:              id,
		TeamID:          teamID,
		Name:            fmt.Sprintf("Player %d", id),
		Position:        pos,
		Cost:            cost,
		Status:          player.StatusAvailable,
		ChanceOfPlaying: -1,
		TotalPoints:     40,
		OwnershipPct:    12.5,
		XGPer90:         0.2,
		XAPer90:         0.1,
	}
}

func testDetail(playerID int64, points int) player.Detail {
	history := make([]player.HistoryEntry, 0, 6)
	for gw := 1; gw <= 6; gw++ {
		history = append(history, player.HistoryEntry{
			Gameweek: gw,
			Minutes:  90,
			Points:   points,
		})
	}
	return player.Detail{
		PlayerID: playerID,
		History:  history,
		Upcoming: []player.UpcomingFixture{{
			FixtureID:  500,
			Gameweek:   7,
			OpponentID: 2,
			Home:       true,
			Difficulty: 3,
			KickoffAt:  testKickoff.AddDate(0, 0, 7),
		}},
	}
}

// newTestSnapshotService wires a snapshot service over the fake provider with
// an isolated cache store.
func newTestSnapshotService(provider *fakeProvider, archiver rawdata.Archiver) (*SnapshotService, *cache.Store) {
	store := cache.NewStore()
	svc := NewSnapshotService(provider, store, archiver, logging.NewNop(), SnapshotServiceConfig{})
	return svc, store
}
