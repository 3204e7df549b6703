package scoring

import (
	"reflect"
	"testing"

	"github.com/yudhapane/fpl-oracle/internal/domain/player"
	"github.com/yudhapane/fpl-oracle/internal/domain/team"
)

func midfielder() player.Player {
	return player.Player{
		ID:              10,
		TeamID:          1,
		Name:            "Test Mid",
		Position:        player.PositionMidfielder,
		Cost:            80,
		Status:          player.StatusAvailable,
		ChanceOfPlaying: -1,
		XGPer90:         0.4,
		XAPer90:         0.3,
	}
}

func steadyHistory(matches, minutes, points int) []player.HistoryEntry {
	out := make([]player.HistoryEntry, 0, matches)
	for i := 0; i < matches; i++ {
		out = append(out, player.HistoryEntry{
			Gameweek: i + 1,
			Minutes:  minutes,
			Points:   points,
		})
	}
	return out
}

func upcomingFixture(id int64, gw, difficulty int, home bool) player.UpcomingFixture {
	return player.UpcomingFixture{
		FixtureID:  id,
		Gameweek:   gw,
		OpponentID: 2,
		Home:       home,
		Difficulty: difficulty,
	}
}

func TestPredict_Deterministic(t *testing.T) {
	c := DefaultCoefficients()
	in := PredictInput{
		Player:  midfielder(),
		History: steadyHistory(8, 90, 5),
		Upcoming: []player.UpcomingFixture{
			upcomingFixture(100, 9, 2, true),
			upcomingFixture(101, 10, 4, false),
		},
		Horizon: 2,
		Teams: map[int64]team.Team{
			1: {ID: 1, Strength: team.StrengthRatings{DefenceHome: 1200, DefenceAway: 1150}},
			2: {ID: 2, Strength: team.StrengthRatings{AttackHome: 1180, AttackAway: 1100}},
		},
	}

	first := Predict(c, in)
	second := Predict(c, in)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("identical inputs produced different predictions:\n%+v\n%+v", first, second)
	}
}

func TestPredict_EasierFixtureScoresHigher(t *testing.T) {
	c := DefaultCoefficients()
	positions := []player.Position{
		player.PositionGoalkeeper,
		player.PositionDefender,
		player.PositionMidfielder,
		player.PositionForward,
	}

	for _, pos := range positions {
		t.Run(string(pos), func(t *testing.T) {
			p := midfielder()
			p.Position = pos

			predictAt := func(difficulty int) float64 {
				return Predict(c, PredictInput{
					Player:   p,
					History:  steadyHistory(6, 90, 4),
					Upcoming: []player.UpcomingFixture{upcomingFixture(100, 9, difficulty, true)},
					Horizon:  1,
					Teams:    map[int64]team.Team{},
				}).ExpectedPoints
			}

			easy := predictAt(1)
			hard := predictAt(5)
			if easy <= hard {
				t.Fatalf("difficulty 1 expected %f to beat difficulty 5 expected %f", easy, hard)
			}
		})
	}
}

func TestPredict_NoHistoryUsesBaselineMinutes(t *testing.T) {
	c := DefaultCoefficients()
	out := Predict(c, PredictInput{
		Player:   midfielder(),
		Upcoming: []player.UpcomingFixture{upcomingFixture(100, 9, 3, true)},
		Horizon:  1,
		Teams:    map[int64]team.Team{},
	})

	if !almostEqual(out.AvgMinutes, c.DefaultAvgMinutes) {
		t.Fatalf("AvgMinutes = %f, want baseline %f", out.AvgMinutes, c.DefaultAvgMinutes)
	}
	if want := c.DefaultAvgMinutes / c.FullMatchMinutes; !almostEqual(out.MinutesProbability, want) {
		t.Fatalf("MinutesProbability = %f, want %f", out.MinutesProbability, want)
	}
}

func TestPredict_ZeroMinuteMatchesSkipped(t *testing.T) {
	c := DefaultCoefficients()
	history := []player.HistoryEntry{
		{Gameweek: 1, Minutes: 90, Points: 6},
		{Gameweek: 2, Minutes: 0, Points: 0},
		{Gameweek: 3, Minutes: 90, Points: 5},
		{Gameweek: 4, Minutes: 0, Points: 0},
	}

	out := Predict(c, PredictInput{
		Player:   midfielder(),
		History:  history,
		Upcoming: []player.UpcomingFixture{upcomingFixture(100, 9, 3, true)},
		Horizon:  1,
		Teams:    map[int64]team.Team{},
	})

	if !almostEqual(out.AvgMinutes, 90) {
		t.Fatalf("AvgMinutes = %f, want 90 (blank gameweeks skipped)", out.AvgMinutes)
	}
}

func TestPredict_PartialHorizonRescaled(t *testing.T) {
	c := DefaultCoefficients()
	out := Predict(c, PredictInput{
		Player:   midfielder(),
		History:  steadyHistory(6, 90, 4),
		Upcoming: []player.UpcomingFixture{upcomingFixture(100, 9, 3, true)},
		Horizon:  4,
		Teams:    map[int64]team.Team{},
	})

	if len(out.Fixtures) != 1 {
		t.Fatalf("projected %d fixtures, want 1", len(out.Fixtures))
	}
	if want := out.Fixtures[0].ExpectedPoints * 4; !almostEqual(out.ExpectedPoints, want) {
		t.Fatalf("ExpectedPoints = %f, want %f (single fixture scaled to horizon)", out.ExpectedPoints, want)
	}
	if !almostEqual(out.PointsPerGameweek, out.Fixtures[0].ExpectedPoints) {
		t.Fatalf("PointsPerGameweek = %f, want %f", out.PointsPerGameweek, out.Fixtures[0].ExpectedPoints)
	}
}

func TestPredict_HorizonTruncatesFixtureList(t *testing.T) {
	c := DefaultCoefficients()
	out := Predict(c, PredictInput{
		Player:  midfielder(),
		History: steadyHistory(6, 90, 4),
		Upcoming: []player.UpcomingFixture{
			upcomingFixture(100, 9, 3, true),
			upcomingFixture(101, 10, 3, false),
			upcomingFixture(102, 11, 3, true),
		},
		Horizon: 2,
		Teams:   map[int64]team.Team{},
	})

	if len(out.Fixtures) != 2 {
		t.Fatalf("projected %d fixtures, want 2", len(out.Fixtures))
	}
	if out.Fixtures[1].FixtureID != 101 {
		t.Fatalf("second projection fixture = %d, want 101", out.Fixtures[1].FixtureID)
	}
}

func TestPredict_OverridesWinOverHeuristics(t *testing.T) {
	c := DefaultCoefficients()
	in := PredictInput{
		Player:   midfielder(),
		History:  steadyHistory(6, 90, 4),
		Upcoming: []player.UpcomingFixture{upcomingFixture(100, 9, 3, true)},
		Horizon:  1,
		Teams:    map[int64]team.Team{},
		CleanSheetPctOverride: map[int64]float64{100: 72.5},
		GoalPctOverride:       map[int64]float64{100: 33.3},
	}

	out := Predict(c, in)
	if !almostEqual(out.Fixtures[0].CleanSheetPct, 72.5) {
		t.Fatalf("CleanSheetPct = %f, want override 72.5", out.Fixtures[0].CleanSheetPct)
	}
	if !almostEqual(out.Fixtures[0].GoalPct, 33.3) {
		t.Fatalf("GoalPct = %f, want override 33.3", out.Fixtures[0].GoalPct)
	}
}

func TestPredict_ValueScore(t *testing.T) {
	c := DefaultCoefficients()
	in := PredictInput{
		Player:   midfielder(),
		History:  steadyHistory(6, 90, 4),
		Upcoming: []player.UpcomingFixture{upcomingFixture(100, 9, 3, true)},
		Horizon:  1,
		Teams:    map[int64]team.Team{},
	}

	out := Predict(c, in)
	if want := out.ExpectedPoints / 8.0; !almostEqual(out.ValueScore, want) {
		t.Fatalf("ValueScore = %f, want %f", out.ValueScore, want)
	}

	in.Player.Cost = 0
	free := Predict(c, in)
	if !almostEqual(free.ValueScore, 0) {
		t.Fatalf("ValueScore = %f, want 0 for unpriced player", free.ValueScore)
	}
}

func TestClassifyTrend(t *testing.T) {
	c := DefaultCoefficients()

	points := func(vals ...int) []player.HistoryEntry {
		out := make([]player.HistoryEntry, 0, len(vals))
		for i, v := range vals {
			out = append(out, player.HistoryEntry{Gameweek: i + 1, Minutes: 90, Points: v})
		}
		return out
	}

	cases := []struct {
		name    string
		history []player.HistoryEntry
		want    Trend
	}{
		{name: "too few matches", history: points(10, 10, 10), want: TrendStable},
		{name: "rising", history: points(1, 1, 1, 6, 6, 6), want: TrendRising},
		{name: "falling", history: points(8, 8, 8, 2, 2, 2), want: TrendFalling},
		{name: "flat", history: points(4, 4, 4, 4, 4, 4), want: TrendStable},
		{name: "within threshold", history: points(4, 4, 4, 5, 5, 5), want: TrendStable},
		{name: "short prior sample", history: points(1, 8, 8, 8), want: TrendRising},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ClassifyTrend(c, tc.history); got != tc.want {
				t.Fatalf("ClassifyTrend = %s, want %s", got, tc.want)
			}
		})
	}
}
