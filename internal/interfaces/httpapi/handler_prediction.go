package httpapi

import (
	"context"
	"net/http"

	"github.com/yudhapane/fpl-oracle/internal/domain/scoring"
	"github.com/yudhapane/fpl-oracle/internal/usecase"
)

type confidenceDTO struct {
	Score     int      `json:"score"`
	Positives []string `json:"positives,omitempty"`
	Negatives []string `json:"negatives,omitempty"`
}

type fixtureProjectionDTO struct {
	FixtureID      int64   `json:"fixtureId"`
	Gameweek       int     `json:"gameweek"`
	OpponentID     int64   `json:"opponentId"`
	Home           bool    `json:"home"`
	Difficulty     int     `json:"difficulty"`
	ExpectedPoints float64 `json:"expectedPoints"`
	CleanSheetPct  float64 `json:"cleanSheetPct"`
	GoalPct        float64 `json:"goalPct"`
	AssistPct      float64 `json:"assistPct"`
}

type predictionDTO struct {
	PlayerID           int64                  `json:"playerId"`
	Horizon            int                    `json:"horizon"`
	ExpectedPoints     float64                `json:"expectedPoints"`
	PointsPerGameweek  float64                `json:"pointsPerGameweek"`
	ValueScore         float64                `json:"valueScore"`
	MinutesProbability float64                `json:"minutesProbability"`
	AvgMinutes         float64                `json:"avgMinutes"`
	Trend              string                 `json:"trend"`
	Confidence         confidenceDTO          `json:"confidence"`
	Fixtures           []fixtureProjectionDTO `json:"fixtures"`
}

type playerMetricsDTO struct {
	PlayerID           int64         `json:"playerId"`
	Name               string        `json:"name"`
	TeamID             int64         `json:"teamId"`
	Position           string        `json:"position"`
	CostMillions       float64       `json:"costMillions"`
	Status             string        `json:"status"`
	OwnershipPct       float64       `json:"ownershipPct"`
	TotalPoints        int           `json:"totalPoints"`
	XGPer90            float64       `json:"xgPer90"`
	XAPer90            float64       `json:"xaPer90"`
	AvgMinutes         float64       `json:"avgMinutes"`
	MinutesProbability float64       `json:"minutesProbability"`
	SampleSize         int           `json:"sampleSize"`
	Trend              string        `json:"trend"`
	Confidence         confidenceDTO `json:"confidence"`
}

func (h *Handler) GetPlayerPrediction(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPlayerPrediction")
	defer span.End()

	playerID, err := parseIDParam(r, "playerID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	horizon, err := parseHorizonQuery(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	prediction, err := h.predictionService.Predict(ctx, playerID, horizon)
	if err != nil {
		h.logger.WarnContext(ctx, "predict player failed", "player_id", playerID, "horizon", horizon, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, predictionToDTO(ctx, prediction))
}

func (h *Handler) GetPlayerMetrics(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPlayerMetrics")
	defer span.End()

	playerID, err := parseIDParam(r, "playerID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	metrics, err := h.predictionService.PlayerMetrics(ctx, playerID)
	if err != nil {
		h.logger.WarnContext(ctx, "get player metrics failed", "player_id", playerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, playerMetricsToDTO(ctx, metrics))
}

func predictionToDTO(ctx context.Context, v scoring.Prediction) predictionDTO {
	ctx, span := startSpan(ctx, "httpapi.predictionToDTO")
	defer span.End()

	fixtures := make([]fixtureProjectionDTO, 0, len(v.Fixtures))
	for _, fx := range v.Fixtures {
		fixtures = append(fixtures, fixtureProjectionDTO{
			FixtureID:      fx.FixtureID,
			Gameweek:       fx.Gameweek,
			OpponentID:     fx.OpponentID,
			Home:           fx.Home,
			Difficulty:     fx.Difficulty,
			ExpectedPoints: round2(fx.ExpectedPoints),
			CleanSheetPct:  round2(fx.CleanSheetPct),
			GoalPct:        round2(fx.GoalPct),
			AssistPct:      round2(fx.AssistPct),
		})
	}

	return predictionDTO{
		PlayerID:           v.PlayerID,
		Horizon:            v.Horizon,
		ExpectedPoints:     round2(v.ExpectedPoints),
		PointsPerGameweek:  round2(v.PointsPerGameweek),
		ValueScore:         round2(v.ValueScore),
		MinutesProbability: round2(v.MinutesProbability),
		AvgMinutes:         round2(v.AvgMinutes),
		Trend:              string(v.Trend),
		Confidence:         confidenceToDTO(v.Confidence),
		Fixtures:           fixtures,
	}
}

func playerMetricsToDTO(ctx context.Context, v usecase.PlayerMetrics) playerMetricsDTO {
	ctx, span := startSpan(ctx, "httpapi.playerMetricsToDTO")
	defer span.End()

	return playerMetricsDTO{
		PlayerID:           v.PlayerID,
		Name:               v.Name,
		TeamID:             v.TeamID,
		Position:           string(v.Position),
		CostMillions:       round2(v.CostMillions),
		Status:             v.Status,
		OwnershipPct:       v.OwnershipPct,
		TotalPoints:        v.TotalPoints,
		XGPer90:            v.XGPer90,
		XAPer90:            v.XAPer90,
		AvgMinutes:         round2(v.AvgMinutes),
		MinutesProbability: round2(v.MinutesProbability),
		SampleSize:         v.SampleSize,
		Trend:              string(v.Trend),
		Confidence:         confidenceToDTO(v.Confidence),
	}
}

func confidenceToDTO(v scoring.Confidence) confidenceDTO {
	return confidenceDTO{
		Score:     v.Score,
		Positives: append([]string(nil), v.Positives...),
		Negatives: append([]string(nil), v.Negatives...),
	}
}

func round2(v float64) float64 {
	if v < 0 {
		return float64(int(v*100-0.5)) / 100
	}
	return float64(int(v*100+0.5)) / 100
}
