package fixture

import (
	"fmt"
	"time"
)

// Fixture is one scheduled or played match.
type Fixture struct {
	ID         int64
	Gameweek   int
	KickoffAt  time.Time
	HomeTeamID int64
	AwayTeamID int64
	// Difficulty ratings are the provider's 1-5 FDR, one per side.
	HomeDifficulty int
	AwayDifficulty int
	Started        bool
	Finished       bool
	HomeScore      int
	AwayScore      int
}

func (f Fixture) Validate() error {
	if f.ID <= 0 {
		return fmt.Errorf("fixture id must be greater than zero")
	}
	if f.HomeTeamID <= 0 || f.AwayTeamID <= 0 {
		return fmt.Errorf("fixture team ids must be greater than zero")
	}
	return nil
}

// Result codes from one side's perspective.
const (
	ResultWin  = "W"
	ResultDraw = "D"
	ResultLoss = "L"
)

// ResultFor returns the W/D/L outcome for teamID, which must be one of the
// fixture's sides; the empty string is returned for unfinished matches.
func (f Fixture) ResultFor(teamID int64) string {
	if !f.Finished {
		return ""
	}

	scored, conceded := f.HomeScore, f.AwayScore
	if teamID == f.AwayTeamID {
		scored, conceded = f.AwayScore, f.HomeScore
	}

	switch {
	case scored > conceded:
		return ResultWin
	case scored < conceded:
		return ResultLoss
	default:
		return ResultDraw
	}
}
