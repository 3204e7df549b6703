package player

import (
	"fmt"
	"time"
)

// Position represents football position categories used in fantasy rules.
type Position string

const (
	PositionGoalkeeper Position = "GK"
	PositionDefender   Position = "DEF"
	PositionMidfielder Position = "MID"
	PositionForward    Position = "FWD"
)

var AllPositions = map[Position]struct{}{
	PositionGoalkeeper: {},
	PositionDefender:   {},
	PositionMidfielder: {},
	PositionForward:    {},
}

// Squad status codes as reported by the provider.
const (
	StatusAvailable = "a"
	StatusDoubtful  = "d"
	StatusInjured   = "i"
)

// Player is a selectable athlete in the competition pool.
type Player struct {
	ID       int64
	TeamID   int64
	Name     string
	Position Position
	// Cost is in tenths of a million, the provider's native unit.
	Cost   int
	Status string
	// ChanceOfPlaying is 0-100; negative means the provider reported nothing,
	// which reads as fully available.
	ChanceOfPlaying int
	TotalPoints     int
	OwnershipPct    float64
	XGPer90         float64
	XAPer90         float64
	// PenaltiesOrder is 1 for the primary taker, 0 when not a taker.
	PenaltiesOrder int
	CornersOrder   int
}

func (p Player) Validate() error {
	if p.ID <= 0 {
		return fmt.Errorf("player id must be greater than zero")
	}
	if p.TeamID <= 0 {
		return fmt.Errorf("player team id must be greater than zero")
	}
	if _, ok := AllPositions[p.Position]; !ok {
		return fmt.Errorf("invalid player position: %s", p.Position)
	}
	return nil
}

// Available reports whether the player can be expected to feature at all.
func (p Player) Available() bool {
	return p.Status != StatusInjured
}

// PlayingChance normalizes ChanceOfPlaying into [0,1].
func (p Player) PlayingChance() float64 {
	if p.ChanceOfPlaying < 0 {
		return 1
	}
	if p.ChanceOfPlaying > 100 {
		return 1
	}
	return float64(p.ChanceOfPlaying) / 100
}

// CostMillions converts the provider cost unit into millions.
func (p Player) CostMillions() float64 {
	return float64(p.Cost) / 10
}

// HistoryEntry is one played match from the player's per-gameweek history.
type HistoryEntry struct {
	Gameweek int
	Minutes  int
	Points   int
	Bonus    int
	XG       float64
	XA       float64
}

// UpcomingFixture is one scheduled match from the player's fixture list.
type UpcomingFixture struct {
	FixtureID  int64
	Gameweek   int
	OpponentID int64
	Home       bool
	Difficulty int
	KickoffAt  time.Time
}

// Detail bundles a player's match history and remaining fixtures.
type Detail struct {
	PlayerID int64
	History  []HistoryEntry
	Upcoming []UpcomingFixture
}
