package fplapi

import (
	"strconv"
	"strings"
	"time"
)

// Raw provider envelopes. Numeric stats the provider serializes as strings
// are kept as strings here and parsed during mapping.

type bootstrapEnvelope struct {
	Events   []eventItem   `json:"events"`
	Teams    []teamItem    `json:"teams"`
	Elements []elementItem `json:"elements"`
}

type eventItem struct {
	ID        int  `json:"id"`
	IsCurrent bool `json:"is_current"`
	IsNext    bool `json:"is_next"`
	Finished  bool `json:"finished"`
}

type teamItem struct {
	ID                  int64  `json:"id"`
	Name                string `json:"name"`
	ShortName           string `json:"short_name"`
	Strength            int    `json:"strength"`
	StrengthAttackHome  int    `json:"strength_attack_home"`
	StrengthAttackAway  int    `json:"strength_attack_away"`
	StrengthDefenceHome int    `json:"strength_defence_home"`
	StrengthDefenceAway int    `json:"strength_defence_away"`
}

type elementItem struct {
	ID                       int64   `json:"id"`
	Team                     int64   `json:"team"`
	WebName                  string  `json:"web_name"`
	ElementType              int     `json:"element_type"`
	NowCost                  int     `json:"now_cost"`
	Status                   string  `json:"status"`
	ChanceOfPlayingNextRound *int    `json:"chance_of_playing_next_round"`
	TotalPoints              int     `json:"total_points"`
	SelectedByPercent        string  `json:"selected_by_percent"`
	ExpectedGoalsPer90       float64 `json:"expected_goals_per_90"`
	ExpectedAssistsPer90     float64 `json:"expected_assists_per_90"`
	PenaltiesOrder           *int    `json:"penalties_order"`
	CornersOrder             *int    `json:"corners_and_indirect_freekicks_order"`
}

type fixtureItem struct {
	ID             int64   `json:"id"`
	Event          *int    `json:"event"`
	KickoffTime    *string `json:"kickoff_time"`
	TeamH          int64   `json:"team_h"`
	TeamA          int64   `json:"team_a"`
	TeamHDifficulty int    `json:"team_h_difficulty"`
	TeamADifficulty int    `json:"team_a_difficulty"`
	Started        bool    `json:"started"`
	Finished       bool    `json:"finished"`
	TeamHScore     *int    `json:"team_h_score"`
	TeamAScore     *int    `json:"team_a_score"`
}

type elementSummaryEnvelope struct {
	History  []historyItem         `json:"history"`
	Fixtures []upcomingFixtureItem `json:"fixtures"`
}

type historyItem struct {
	Round           int    `json:"round"`
	Minutes         int    `json:"minutes"`
	TotalPoints     int    `json:"total_points"`
	Bonus           int    `json:"bonus"`
	ExpectedGoals   string `json:"expected_goals"`
	ExpectedAssists string `json:"expected_assists"`
}

type upcomingFixtureItem struct {
	ID          int64   `json:"id"`
	Event       *int    `json:"event"`
	IsHome      bool    `json:"is_home"`
	TeamH       int64   `json:"team_h"`
	TeamA       int64   `json:"team_a"`
	Difficulty  int     `json:"difficulty"`
	KickoffTime *string `json:"kickoff_time"`
}

type eventLiveEnvelope struct {
	Elements []liveElementItem `json:"elements"`
}

type liveElementItem struct {
	ID    int64         `json:"id"`
	Stats liveStatsItem `json:"stats"`
}

type liveStatsItem struct {
	Minutes     int `json:"minutes"`
	TotalPoints int `json:"total_points"`
	Bonus       int `json:"bonus"`
}

func parseProviderFloat(raw string) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return value
}

func parseProviderTime(raw *string) time.Time {
	if raw == nil {
		return time.Time{}
	}
	parsed, err := time.Parse(time.RFC3339, strings.TrimSpace(*raw))
	if err != nil {
		return time.Time{}
	}
	return parsed.UTC()
}

func intOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
