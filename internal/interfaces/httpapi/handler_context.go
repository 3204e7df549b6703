package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/yudhapane/fpl-oracle/internal/domain/fixture"
	"github.com/yudhapane/fpl-oracle/internal/domain/form"
	"github.com/yudhapane/fpl-oracle/internal/domain/team"
	"github.com/yudhapane/fpl-oracle/internal/usecase"
)

type strengthRatingsDTO struct {
	Overall     int `json:"overall"`
	AttackHome  int `json:"attackHome"`
	AttackAway  int `json:"attackAway"`
	DefenceHome int `json:"defenceHome"`
	DefenceAway int `json:"defenceAway"`
}

type venueRatesDTO struct {
	Matches             int     `json:"matches"`
	CleanSheetRate      float64 `json:"cleanSheetRate"`
	GoalsForPerGame     float64 `json:"goalsForPerGame"`
	GoalsAgainstPerGame float64 `json:"goalsAgainstPerGame"`
}

type teamFormDTO struct {
	Played     int           `json:"played"`
	Momentum   float64       `json:"momentum"`
	LastFive   string        `json:"lastFive"`
	FormPoints int           `json:"formPoints"`
	Overall    venueRatesDTO `json:"overall"`
	Home       venueRatesDTO `json:"home"`
	Away       venueRatesDTO `json:"away"`
}

type teamMetricsDTO struct {
	TeamID   int64              `json:"teamId"`
	Name     string             `json:"name"`
	Short    string             `json:"short"`
	Strength strengthRatingsDTO `json:"strength"`
	Form     teamFormDTO        `json:"form"`
}

type teamRefDTO struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Short string `json:"short"`
}

type fixtureDTO struct {
	ID             int64  `json:"id"`
	Gameweek       int    `json:"gameweek"`
	KickoffAt      string `json:"kickoffAt"`
	HomeTeamID     int64  `json:"homeTeamId"`
	AwayTeamID     int64  `json:"awayTeamId"`
	HomeDifficulty int    `json:"homeDifficulty"`
	AwayDifficulty int    `json:"awayDifficulty"`
	Started        bool   `json:"started"`
	Finished       bool   `json:"finished"`
	HomeScore      int    `json:"homeScore"`
	AwayScore      int    `json:"awayScore"`
}

type fixtureContextDTO struct {
	Fixture           fixtureDTO  `json:"fixture"`
	HomeTeam          teamRefDTO  `json:"homeTeam"`
	AwayTeam          teamRefDTO  `json:"awayTeam"`
	HomeForm          teamFormDTO `json:"homeForm"`
	AwayForm          teamFormDTO `json:"awayForm"`
	HomeCleanSheetPct float64     `json:"homeCleanSheetPct"`
	AwayCleanSheetPct float64     `json:"awayCleanSheetPct"`
	Live              bool        `json:"live"`
	HalfTime          bool        `json:"halfTime"`
}

func (h *Handler) GetTeamMetrics(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetTeamMetrics")
	defer span.End()

	teamID, err := parseIDParam(r, "teamID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	metrics, err := h.predictionService.TeamMetrics(ctx, teamID)
	if err != nil {
		h.logger.WarnContext(ctx, "get team metrics failed", "team_id", teamID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, teamMetricsToDTO(ctx, metrics))
}

func (h *Handler) GetFixtureContext(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetFixtureContext")
	defer span.End()

	fixtureID, err := parseIDParam(r, "fixtureID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	fc, err := h.predictionService.FixtureContext(ctx, fixtureID)
	if err != nil {
		h.logger.WarnContext(ctx, "get fixture context failed", "fixture_id", fixtureID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, fixtureContextToDTO(ctx, fc))
}

func teamMetricsToDTO(ctx context.Context, v usecase.TeamMetrics) teamMetricsDTO {
	ctx, span := startSpan(ctx, "httpapi.teamMetricsToDTO")
	defer span.End()

	return teamMetricsDTO{
		TeamID:   v.TeamID,
		Name:     v.Name,
		Short:    v.Short,
		Strength: strengthToDTO(v.Strength),
		Form:     teamFormToDTO(v.Form),
	}
}

func fixtureContextToDTO(ctx context.Context, v usecase.FixtureContext) fixtureContextDTO {
	ctx, span := startSpan(ctx, "httpapi.fixtureContextToDTO")
	defer span.End()

	return fixtureContextDTO{
		Fixture:           fixtureToDTO(v.Fixture),
		HomeTeam:          teamToRefDTO(v.HomeTeam),
		AwayTeam:          teamToRefDTO(v.AwayTeam),
		HomeForm:          teamFormToDTO(v.HomeForm),
		AwayForm:          teamFormToDTO(v.AwayForm),
		HomeCleanSheetPct: round2(v.HomeCleanSheetPct),
		AwayCleanSheetPct: round2(v.AwayCleanSheetPct),
		Live:              v.Live,
		HalfTime:          v.HalfTime,
	}
}

func fixtureToDTO(v fixture.Fixture) fixtureDTO {
	return fixtureDTO{
		ID:             v.ID,
		Gameweek:       v.Gameweek,
		KickoffAt:      v.KickoffAt.UTC().Format(time.RFC3339),
		HomeTeamID:     v.HomeTeamID,
		AwayTeamID:     v.AwayTeamID,
		HomeDifficulty: v.HomeDifficulty,
		AwayDifficulty: v.AwayDifficulty,
		Started:        v.Started,
		Finished:       v.Finished,
		HomeScore:      v.HomeScore,
		AwayScore:      v.AwayScore,
	}
}

func teamToRefDTO(v team.Team) teamRefDTO {
	return teamRefDTO{ID: v.ID, Name: v.Name, Short: v.Short}
}

func strengthToDTO(v team.StrengthRatings) strengthRatingsDTO {
	return strengthRatingsDTO{
		Overall:     v.Overall,
		AttackHome:  v.AttackHome,
		AttackAway:  v.AttackAway,
		DefenceHome: v.DefenceHome,
		DefenceAway: v.DefenceAway,
	}
}

func teamFormToDTO(v form.TeamForm) teamFormDTO {
	return teamFormDTO{
		Played:     v.Played,
		Momentum:   round2(v.Momentum),
		LastFive:   v.LastFive,
		FormPoints: v.FormPoints,
		Overall:    venueRatesToDTO(v.Overall),
		Home:       venueRatesToDTO(v.Home),
		Away:       venueRatesToDTO(v.Away),
	}
}

func venueRatesToDTO(v form.VenueRates) venueRatesDTO {
	return venueRatesDTO{
		Matches:             v.Matches,
		CleanSheetRate:      round2(v.CleanSheetRate),
		GoalsForPerGame:     round2(v.GoalsForPerGame),
		GoalsAgainstPerGame: round2(v.GoalsAgainstPerGame),
	}
}
