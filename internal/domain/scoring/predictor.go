package scoring

import (
	"github.com/yudhapane/fpl-oracle/internal/domain/form"
	"github.com/yudhapane/fpl-oracle/internal/domain/player"
	"github.com/yudhapane/fpl-oracle/internal/domain/team"
)

// Trend classifies the direction of a player's recent returns.
type Trend string

const (
	TrendRising  Trend = "rising"
	TrendStable  Trend = "stable"
	TrendFalling Trend = "falling"
)

// FixtureProjection is the per-fixture slice of a prediction.
type FixtureProjection struct {
	FixtureID       int64
	Gameweek        int
	OpponentID      int64
	Home            bool
	Difficulty      int
	ExpectedPoints  float64
	CleanSheetPct   float64
	GoalPct         float64
	AssistPct       float64
}

// Prediction is the expected-points view of one player over a horizon.
// It is computed fresh per request and never persisted.
type Prediction struct {
	PlayerID           int64
	Horizon            int
	Fixtures           []FixtureProjection
	ExpectedPoints     float64
	PointsPerGameweek  float64
	Confidence         Confidence
	Trend              Trend
	ValueScore         float64
	MinutesProbability float64
	AvgMinutes         float64
}

// PredictInput carries everything Predict needs from a league snapshot.
// History is chronological (most recent last); Upcoming is soonest first.
// The override maps come from optional probability providers and win over
// the heuristic models when a fixture key is present.
type PredictInput struct {
	Player   player.Player
	History  []player.HistoryEntry
	Upcoming []player.UpcomingFixture
	Horizon  int
	Forms    form.Snapshot
	Teams    map[int64]team.Team

	CleanSheetPctOverride map[int64]float64
	GoalPctOverride       map[int64]float64
}

// Predict computes expected points per upcoming fixture and aggregates them
// over the horizon. It is deterministic for a fixed input snapshot.
func Predict(c Coefficients, in PredictInput) Prediction {
	horizon := in.Horizon
	if horizon < 1 {
		horizon = 1
	}

	upcoming := in.Upcoming
	if len(upcoming) > horizon {
		upcoming = upcoming[:horizon]
	}

	avgMinutes := recentAverage(in.History, c.MinutesWindow, func(h player.HistoryEntry) float64 { return float64(h.Minutes) })
	if avgMinutes <= 0 {
		avgMinutes = c.DefaultAvgMinutes
	}
	avgBonus := recentAverage(in.History, c.MinutesWindow, func(h player.HistoryEntry) float64 { return float64(h.Bonus) })

	playingChance := in.Player.PlayingChance()
	minutesProb := minFloat(avgMinutes/c.FullMatchMinutes, 1) * playingChance

	trend := ClassifyTrend(c, in.History)

	ownForm, _ := in.Forms.Team(in.Player.TeamID)
	ownStrength := in.Teams[in.Player.TeamID].Strength

	momentum := c.DefaultMomentum
	if ownForm.HasData() {
		momentum = ownForm.Momentum
	}

	formMult := 1.0
	switch trend {
	case TrendRising:
		formMult = c.FormRisingMult
	case TrendFalling:
		formMult = c.FormFallingMult
	}
	momentumMult := c.MomentumMultiplier(momentum)

	table := c.PointsFor(in.Player.Position)

	projections := make([]FixtureProjection, 0, len(upcoming))
	total := 0.0
	for _, uf := range upcoming {
		oppForm, _ := in.Forms.Team(uf.OpponentID)
		oppStrength := in.Teams[uf.OpponentID].Strength

		csPct, ok := in.CleanSheetPctOverride[uf.FixtureID]
		if !ok {
			csPct = CleanSheetChance(c, ownForm, ownStrength, oppForm, oppStrength, uf.Home)
		}
		goalPct, ok := in.GoalPctOverride[uf.FixtureID]
		if !ok {
			goalPct = GoalChance(c, in.Player.XGPer90, in.Player.PenaltiesOrder, oppForm, uf.Home)
		}
		assistPct := AssistChance(in.Player.XAPer90, oppForm, uf.Home)

		expected := c.AppearancePoints * minutesProb
		expected += table.CleanSheet * (csPct / 100) * minutesProb
		expected += table.Goal * (goalPct / 100) * minutesProb
		expected += table.Assist * (assistPct / 100) * minutesProb
		expected += avgBonus * minutesProb

		expected *= c.DifficultyMultiplier(uf.Difficulty, in.Player.Position)
		expected *= formMult
		expected *= momentumMult

		if expected < 0 {
			expected = 0
		}

		projections = append(projections, FixtureProjection{
			FixtureID:      uf.FixtureID,
			Gameweek:       uf.Gameweek,
			OpponentID:     uf.OpponentID,
			Home:           uf.Home,
			Difficulty:     uf.Difficulty,
			ExpectedPoints: expected,
			CleanSheetPct:  csPct,
			GoalPct:        goalPct,
			AssistPct:      assistPct,
		})
		total += expected
	}

	// A thin fixture list is rescaled to the full horizon so players with
	// blank gameweeks stay comparable.
	if len(projections) > 0 && len(projections) < horizon {
		total *= float64(horizon) / float64(len(projections))
	}

	value := 0.0
	if cost := in.Player.CostMillions(); cost > 0 {
		value = total / cost
	}

	return Prediction{
		PlayerID:           in.Player.ID,
		Horizon:            horizon,
		Fixtures:           projections,
		ExpectedPoints:     total,
		PointsPerGameweek:  total / float64(horizon),
		Confidence:         ScoreConfidence(c, avgMinutes, len(in.History), playingChance, trend),
		Trend:              trend,
		ValueScore:         value,
		MinutesProbability: minutesProb,
		AvgMinutes:         avgMinutes,
	}
}

// ClassifyTrend compares the mean points of the last TrendSample matches to
// the sample before it. Fewer than TrendMinMatches matches reads as stable.
func ClassifyTrend(c Coefficients, history []player.HistoryEntry) Trend {
	if len(history) < c.TrendMinMatches {
		return TrendStable
	}

	recentStart := len(history) - c.TrendSample
	recent := meanPoints(history[recentStart:])

	priorStart := recentStart - c.TrendSample
	if priorStart < 0 {
		priorStart = 0
	}
	prior := meanPoints(history[priorStart:recentStart])

	diff := recent - prior
	switch {
	case diff > c.TrendThreshold:
		return TrendRising
	case diff < -c.TrendThreshold:
		return TrendFalling
	default:
		return TrendStable
	}
}

func meanPoints(entries []player.HistoryEntry) float64 {
	if len(entries) == 0 {
		return 0
	}
	sum := 0.0
	for _, e := range entries {
		sum += float64(e.Points)
	}
	return sum / float64(len(entries))
}

// recentAverage averages extract over the last window played matches; zero
// when no match in the history carries minutes.
func recentAverage(history []player.HistoryEntry, window int, extract func(player.HistoryEntry) float64) float64 {
	sum := 0.0
	count := 0
	for i := len(history) - 1; i >= 0 && count < window; i-- {
		if history[i].Minutes <= 0 {
			continue
		}
		sum += extract(history[i])
		count++
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
