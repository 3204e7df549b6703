package httpapi

import (
	"context"
	"fmt"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/yudhapane/fpl-oracle/internal/domain/transfer"
	"github.com/yudhapane/fpl-oracle/internal/usecase"
)

type transferCandidateDTO struct {
	OutID              int64    `json:"outId"`
	OutName            string   `json:"outName"`
	InID               int64    `json:"inId"`
	InName             string   `json:"inName"`
	Position           string   `json:"position"`
	NetGain            float64  `json:"netGain"`
	CostDelta          int      `json:"costDelta"`
	BankAfter          int      `json:"bankAfter"`
	Reasons            []string `json:"reasons,omitempty"`
	SquadExpectedAfter float64  `json:"squadExpectedAfter"`
	InExpectedPoints   float64  `json:"inExpectedPoints"`
	OutExpectedPoints  float64  `json:"outExpectedPoints"`
	InOwnershipPct     float64  `json:"inOwnershipPct"`
	InValueScore       float64  `json:"inValueScore"`
	InConfidence       int      `json:"inConfidence"`
}

type transferTargetDTO struct {
	PlayerID       int64   `json:"playerId"`
	Name           string  `json:"name"`
	TeamID         int64   `json:"teamId"`
	Position       string  `json:"position"`
	CostMillions   float64 `json:"costMillions"`
	ExpectedPoints float64 `json:"expectedPoints"`
	ValueScore     float64 `json:"valueScore"`
	OwnershipPct   float64 `json:"ownershipPct"`
	Confidence     int     `json:"confidence"`
	Trend          string  `json:"trend"`
}

type squadProjectionDTO struct {
	PlayerID       int64   `json:"playerId"`
	Name           string  `json:"name"`
	Position       string  `json:"position"`
	ExpectedPoints float64 `json:"expectedPoints"`
}

type squadBaselineDTO struct {
	ExpectedPoints float64              `json:"expectedPoints"`
	PerPlayer      []squadProjectionDTO `json:"perPlayer"`
}

type recommendationDTO struct {
	Strategy             string                         `json:"strategy"`
	Horizon              int                            `json:"horizon"`
	Baseline             squadBaselineDTO               `json:"baseline"`
	BestTransfer         *transferCandidateDTO          `json:"bestTransfer,omitempty"`
	Alternatives         []transferCandidateDTO         `json:"alternatives"`
	TopTargetsByPosition map[string][]transferTargetDTO `json:"topTargetsByPosition"`
}

func (h *Handler) RecommendTransfers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RecommendTransfers")
	defer span.End()

	var req recommendTransfersRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	squad := make([]usecase.RecommendSquadPlayer, 0, len(req.Squad))
	for _, sp := range req.Squad {
		squad = append(squad, usecase.RecommendSquadPlayer{
			PlayerID:  sp.PlayerID,
			SellPrice: sp.SellPrice,
		})
	}

	recommendation, err := h.transferService.Recommend(ctx, usecase.RecommendInput{
		Squad:          squad,
		Bank:           req.Bank,
		Horizon:        req.Horizon,
		IncludeInjured: req.IncludeInjured,
		Strategy:       req.Strategy,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "recommend transfers failed", "strategy", req.Strategy, "horizon", req.Horizon, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, recommendationToDTO(ctx, recommendation))
}

func recommendationToDTO(ctx context.Context, v usecase.Recommendation) recommendationDTO {
	ctx, span := startSpan(ctx, "httpapi.recommendationToDTO")
	defer span.End()

	perPlayer := make([]squadProjectionDTO, 0, len(v.Baseline.PerPlayer))
	for _, pp := range v.Baseline.PerPlayer {
		perPlayer = append(perPlayer, squadProjectionDTO{
			PlayerID:       pp.PlayerID,
			Name:           pp.Name,
			Position:       string(pp.Position),
			ExpectedPoints: round2(pp.ExpectedPoints),
		})
	}

	alternatives := make([]transferCandidateDTO, 0, len(v.Alternatives))
	for _, cand := range v.Alternatives {
		alternatives = append(alternatives, candidateToDTO(cand))
	}

	targetsByPosition := make(map[string][]transferTargetDTO, len(v.TopTargetsByPosition))
	for pos, targets := range v.TopTargetsByPosition {
		items := make([]transferTargetDTO, 0, len(targets))
		for _, target := range targets {
			items = append(items, targetToDTO(target))
		}
		targetsByPosition[string(pos)] = items
	}

	out := recommendationDTO{
		Strategy: string(v.Strategy),
		Horizon:  v.Horizon,
		Baseline: squadBaselineDTO{
			ExpectedPoints: round2(v.Baseline.ExpectedPoints),
			PerPlayer:      perPlayer,
		},
		Alternatives:         alternatives,
		TopTargetsByPosition: targetsByPosition,
	}
	if v.BestTransfer != nil {
		best := candidateToDTO(*v.BestTransfer)
		out.BestTransfer = &best
	}

	return out
}

func candidateToDTO(v transfer.Candidate) transferCandidateDTO {
	return transferCandidateDTO{
		OutID:              v.OutID,
		OutName:            v.OutName,
		InID:               v.InID,
		InName:             v.InName,
		Position:           string(v.Position),
		NetGain:            round2(v.NetGain),
		CostDelta:          v.CostDelta,
		BankAfter:          v.BankAfter,
		Reasons:            append([]string(nil), v.Reasons...),
		SquadExpectedAfter: round2(v.SquadExpectedAfter),
		InExpectedPoints:   round2(v.InExpectedPoints),
		OutExpectedPoints:  round2(v.OutExpectedPoints),
		InOwnershipPct:     v.InOwnershipPct,
		InValueScore:       round2(v.InValueScore),
		InConfidence:       v.InConfidence,
	}
}

func targetToDTO(v usecase.TransferTarget) transferTargetDTO {
	return transferTargetDTO{
		PlayerID:       v.PlayerID,
		Name:           v.Name,
		TeamID:         v.TeamID,
		Position:       string(v.Position),
		CostMillions:   round2(v.CostMillions),
		ExpectedPoints: round2(v.ExpectedPoints),
		ValueScore:     round2(v.ValueScore),
		OwnershipPct:   v.OwnershipPct,
		Confidence:     v.Confidence,
		Trend:          string(v.Trend),
	}
}
