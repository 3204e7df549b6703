package usecase

import (
	"context"

	"github.com/yudhapane/fpl-oracle/internal/domain/fixture"
	"github.com/yudhapane/fpl-oracle/internal/domain/player"
	"github.com/yudhapane/fpl-oracle/internal/domain/rawdata"
	"github.com/yudhapane/fpl-oracle/internal/domain/team"
)

// LeagueBootstrap is the static league dataset from the primary provider:
// every club, every player, and the gameweek cursor.
type LeagueBootstrap struct {
	Teams           []team.Team
	Players         []player.Player
	CurrentGameweek int
	NextGameweek    int
}

// LiveStat is one player's in-play stat line for a gameweek.
type LiveStat struct {
	PlayerID    int64
	Minutes     int
	TotalPoints int
	Bonus       int
}

// SportDataProvider is the primary upstream data source. Raw payloads ride
// along with every fetch so the caller can archive them.
type SportDataProvider interface {
	FetchBootstrap(ctx context.Context) (LeagueBootstrap, []rawdata.Payload, error)
	FetchFixtures(ctx context.Context) ([]fixture.Fixture, []rawdata.Payload, error)
	FetchPlayerDetail(ctx context.Context, playerID int64) (player.Detail, []rawdata.Payload, error)
	FetchEventLive(ctx context.Context, gameweek int) ([]LiveStat, []rawdata.Payload, error)
}

// CleanSheetProbability is one modeled clean-sheet chance, in percent.
type CleanSheetProbability struct {
	FixtureID int64
	TeamID    int64
	Pct       float64
}

// GoalProbability is one odds-implied anytime-scorer chance, in percent.
type GoalProbability struct {
	FixtureID int64
	PlayerID  int64
	Pct       float64
}

// CleanSheetProbabilityProvider is the optional modeled-probability source.
// Any error reads as "no enrichment available".
type CleanSheetProbabilityProvider interface {
	FetchCleanSheetProbabilities(ctx context.Context, gameweek int) ([]CleanSheetProbability, error)
}

// GoalProbabilityProvider is the optional odds-implied probability source.
type GoalProbabilityProvider interface {
	FetchGoalProbabilities(ctx context.Context, gameweek int) ([]GoalProbability, error)
}
