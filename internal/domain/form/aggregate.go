package form

import (
	"sort"
	"strings"
	"time"

	"github.com/yudhapane/fpl-oracle/internal/domain/fixture"
)

const (
	// maxFixtureWindow caps how far back aggregates look.
	maxFixtureWindow = 200
	// rollingWindow is the sample for rate stats.
	rollingWindow = 10
	// momentumWindow is the sample for recency-weighted momentum.
	momentumWindow = 5
	// maxMomentumWeight is the highest reachable weighted points sum:
	// 3 points times weights 5+4+3+2+1.
	maxMomentumWeight = 45

	pointsWin  = 3
	pointsDraw = 1
)

// VenueRates are rolling per-venue rate stats over the last rollingWindow
// matches. Matches is the sample size; zero means "unknown, use defaults".
type VenueRates struct {
	Matches             int
	CleanSheetRate      float64
	GoalsForPerGame     float64
	GoalsAgainstPerGame float64
}

// TeamForm is the derived rolling state for one team. It is rebuilt wholesale
// on every aggregate refresh and never mutated in place.
type TeamForm struct {
	TeamID     int64
	Played     int
	Overall    VenueRates
	Home       VenueRates
	Away       VenueRates
	Momentum   float64
	LastFive   string
	FormPoints int
}

// HasData reports whether any finished match backed this aggregate. Callers
// fall back to neutral defaults when false.
func (f TeamForm) HasData() bool {
	return f.Played > 0
}

// Snapshot is an immutable per-team aggregate map.
type Snapshot struct {
	BuiltAt time.Time
	byTeam  map[int64]TeamForm
}

func (s Snapshot) Team(id int64) (TeamForm, bool) {
	f, ok := s.byTeam[id]
	return f, ok
}

func (s Snapshot) Len() int {
	return len(s.byTeam)
}

type teamMatch struct {
	home     bool
	scored   int
	conceded int
	result   string
}

// Build derives a fresh Snapshot from finished fixtures. Only the
// maxFixtureWindow most recent finished fixtures contribute.
func Build(fixtures []fixture.Fixture, builtAt time.Time) Snapshot {
	finished := make([]fixture.Fixture, 0, len(fixtures))
	for _, f := range fixtures {
		if f.Finished {
			finished = append(finished, f)
		}
	}

	// Most recent first; fixture id breaks kickoff ties deterministically.
	sort.SliceStable(finished, func(i, j int) bool {
		if !finished[i].KickoffAt.Equal(finished[j].KickoffAt) {
			return finished[i].KickoffAt.After(finished[j].KickoffAt)
		}
		return finished[i].ID > finished[j].ID
	})
	if len(finished) > maxFixtureWindow {
		finished = finished[:maxFixtureWindow]
	}

	matchesByTeam := make(map[int64][]teamMatch)
	for _, f := range finished {
		matchesByTeam[f.HomeTeamID] = append(matchesByTeam[f.HomeTeamID], teamMatch{
			home:     true,
			scored:   f.HomeScore,
			conceded: f.AwayScore,
			result:   f.ResultFor(f.HomeTeamID),
		})
		matchesByTeam[f.AwayTeamID] = append(matchesByTeam[f.AwayTeamID], teamMatch{
			home:     false,
			scored:   f.AwayScore,
			conceded: f.HomeScore,
			result:   f.ResultFor(f.AwayTeamID),
		})
	}

	byTeam := make(map[int64]TeamForm, len(matchesByTeam))
	for teamID, matches := range matchesByTeam {
		byTeam[teamID] = buildTeamForm(teamID, matches)
	}

	return Snapshot{BuiltAt: builtAt, byTeam: byTeam}
}

func buildTeamForm(teamID int64, matches []teamMatch) TeamForm {
	f := TeamForm{
		TeamID: teamID,
		Played: len(matches),
	}

	recent := matches
	if len(recent) > momentumWindow {
		recent = recent[:momentumWindow]
	}

	var lastFive strings.Builder
	weighted := 0
	for age, m := range recent {
		pts := resultPoints(m.result)
		weighted += (momentumWindow - age) * pts
		f.FormPoints += pts
		lastFive.WriteString(m.result)
	}
	f.LastFive = lastFive.String()
	f.Momentum = clamp01(float64(weighted) / maxMomentumWeight)

	window := matches
	if len(window) > rollingWindow {
		window = window[:rollingWindow]
	}

	var home, away []teamMatch
	for _, m := range window {
		if m.home {
			home = append(home, m)
		} else {
			away = append(away, m)
		}
	}

	f.Overall = buildRates(window)
	f.Home = buildRates(home)
	f.Away = buildRates(away)

	return f
}

func buildRates(matches []teamMatch) VenueRates {
	rates := VenueRates{Matches: len(matches)}
	if len(matches) == 0 {
		return rates
	}

	cleanSheets := 0
	scored := 0
	conceded := 0
	for _, m := range matches {
		if m.conceded == 0 {
			cleanSheets++
		}
		scored += m.scored
		conceded += m.conceded
	}

	games := float64(len(matches))
	rates.CleanSheetRate = float64(cleanSheets) / games
	rates.GoalsForPerGame = float64(scored) / games
	rates.GoalsAgainstPerGame = float64(conceded) / games
	return rates
}

func resultPoints(result string) int {
	switch result {
	case fixture.ResultWin:
		return pointsWin
	case fixture.ResultDraw:
		return pointsDraw
	default:
		return 0
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
