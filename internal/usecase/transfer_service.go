package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/yudhapane/fpl-oracle/internal/domain/player"
	"github.com/yudhapane/fpl-oracle/internal/domain/scoring"
	"github.com/yudhapane/fpl-oracle/internal/domain/transfer"
	"github.com/yudhapane/fpl-oracle/internal/platform/logging"
)

const (
	defaultTransferWorkers       = 8
	defaultTopTransfers          = 5
	defaultTopTargetsPerPosition = 3
	neutralAvgFDR                = 3.0
	neutralMomentum              = 0.5
)

type TransferServiceConfig struct {
	// Workers sizes the evaluation pool; every squad member and candidate
	// needs a full prediction.
	Workers               int
	TopTransfers          int
	TopTargetsPerPosition int
}

func normalizeTransferConfig(cfg TransferServiceConfig) TransferServiceConfig {
	if cfg.Workers <= 0 {
		cfg.Workers = defaultTransferWorkers
	}
	if cfg.TopTransfers <= 0 {
		cfg.TopTransfers = defaultTopTransfers
	}
	if cfg.TopTargetsPerPosition <= 0 {
		cfg.TopTargetsPerPosition = defaultTopTargetsPerPosition
	}
	return cfg
}

// TransferService generates ranked single-transfer recommendations.
type TransferService struct {
	snapshots   *SnapshotService
	predictions *PredictionService
	rules       transfer.Rules
	logger      *logging.Logger
	cfg         TransferServiceConfig
}

func NewTransferService(
	snapshots *SnapshotService,
	predictions *PredictionService,
	rules transfer.Rules,
	logger *logging.Logger,
	cfg TransferServiceConfig,
) *TransferService {
	if logger == nil {
		logger = logging.Default()
	}
	return &TransferService{
		snapshots:   snapshots,
		predictions: predictions,
		rules:       rules,
		logger:      logger,
		cfg:         normalizeTransferConfig(cfg),
	}
}

// RecommendSquadPlayer identifies one current squad member. SellPrice zero
// means "sell at current cost".
type RecommendSquadPlayer struct {
	PlayerID  int64
	SellPrice int
}

type RecommendInput struct {
	Squad          []RecommendSquadPlayer
	Bank           int
	Horizon        int
	IncludeInjured bool
	Strategy       string
}

// TransferTarget is one ranked buy suggestion within a position.
type TransferTarget struct {
	PlayerID       int64
	Name           string
	TeamID         int64
	Position       player.Position
	CostMillions   float64
	ExpectedPoints float64
	ValueScore     float64
	OwnershipPct   float64
	Confidence     int
	Trend          scoring.Trend
}

// SquadPlayerProjection is one squad member's share of the baseline.
type SquadPlayerProjection struct {
	PlayerID       int64
	Name           string
	Position       player.Position
	ExpectedPoints float64
}

// SquadBaseline is the squad's projected total without any transfer.
type SquadBaseline struct {
	ExpectedPoints float64
	PerPlayer      []SquadPlayerProjection
}

type Recommendation struct {
	Strategy             transfer.Strategy
	Horizon              int
	Baseline             SquadBaseline
	BestTransfer         *transfer.Candidate
	Alternatives         []transfer.Candidate
	TopTargetsByPosition map[player.Position][]TransferTarget
}

// evaluation is one player's prediction plus the comparison axes the
// justification rules read.
type evaluation struct {
	player     player.Player
	prediction scoring.Prediction
	avgFDR     float64
	momentum   float64
}

// Recommend evaluates the squad and per-position candidate pools, then ranks
// every swap that clears the affordability, club-cap, and justification bars.
func (s *TransferService) Recommend(ctx context.Context, in RecommendInput) (Recommendation, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TransferService.Recommend")
	defer span.End()

	strategy, err := transfer.ParseStrategy(in.Strategy)
	if err != nil {
		return Recommendation{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	horizon, err := normalizeHorizon(in.Horizon)
	if err != nil {
		return Recommendation{}, err
	}

	snap, err := s.snapshots.Snapshot(ctx)
	if err != nil {
		return Recommendation{}, fmt.Errorf("build snapshot: %w", err)
	}

	squad := make([]transfer.SquadPlayer, 0, len(in.Squad))
	for _, sp := range in.Squad {
		pl, ok := snap.Players[sp.PlayerID]
		if !ok {
			return Recommendation{}, fmt.Errorf("%w: squad player=%d", ErrNotFound, sp.PlayerID)
		}
		sellPrice := sp.SellPrice
		if sellPrice <= 0 {
			sellPrice = pl.Cost
		}
		squad = append(squad, transfer.SquadPlayer{
			PlayerID:  pl.ID,
			TeamID:    pl.TeamID,
			Position:  pl.Position,
			Cost:      pl.Cost,
			SellPrice: sellPrice,
		})
	}
	if err := transfer.ValidateSquad(squad, s.rules); err != nil {
		return Recommendation{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if in.Bank < 0 {
		return Recommendation{}, fmt.Errorf("%w: bank must not be negative", ErrInvalidInput)
	}

	inSquad := make(map[int64]struct{}, len(squad))
	for _, sp := range squad {
		inSquad[sp.PlayerID] = struct{}{}
	}

	pools := s.candidatePools(snap, inSquad, in.IncludeInjured, strategy)

	evalIDs := make([]int64, 0, len(squad)+len(pools)*s.rules.CandidatePoolSize)
	for _, sp := range squad {
		evalIDs = append(evalIDs, sp.PlayerID)
	}
	for _, pool := range pools {
		for _, pl := range pool {
			evalIDs = append(evalIDs, pl.ID)
		}
	}

	evals, err := s.evaluateAll(ctx, snap, evalIDs, horizon, inSquad)
	if err != nil {
		return Recommendation{}, err
	}

	baseline := SquadBaseline{PerPlayer: make([]SquadPlayerProjection, 0, len(squad))}
	for _, sp := range squad {
		ev, ok := evals[sp.PlayerID]
		if !ok {
			return Recommendation{}, fmt.Errorf("%w: evaluate squad player=%d", ErrDependencyUnavailable, sp.PlayerID)
		}
		baseline.ExpectedPoints += ev.prediction.ExpectedPoints
		baseline.PerPlayer = append(baseline.PerPlayer, SquadPlayerProjection{
			PlayerID:       sp.PlayerID,
			Name:           ev.player.Name,
			Position:       sp.Position,
			ExpectedPoints: ev.prediction.ExpectedPoints,
		})
	}
	sort.SliceStable(baseline.PerPlayer, func(i, j int) bool {
		return baseline.PerPlayer[i].ExpectedPoints > baseline.PerPlayer[j].ExpectedPoints
	})

	candidates := s.buildCandidates(squad, pools, evals, baseline.ExpectedPoints, in.Bank)
	transfer.SortCandidates(strategy, candidates)

	out := Recommendation{
		Strategy:             strategy,
		Horizon:              horizon,
		Baseline:             baseline,
		TopTargetsByPosition: s.topTargets(pools, evals, strategy),
	}
	if len(candidates) > 0 {
		best := candidates[0]
		out.BestTransfer = &best
		rest := candidates[1:]
		if len(rest) > s.cfg.TopTransfers {
			rest = rest[:s.cfg.TopTransfers]
		}
		out.Alternatives = append([]transfer.Candidate(nil), rest...)
	}

	return out, nil
}

// candidatePools pre-sorts eligible players per strategy and keeps the top
// slice per position.
func (s *TransferService) candidatePools(snap LeagueSnapshot, inSquad map[int64]struct{}, includeInjured bool, strategy transfer.Strategy) map[player.Position][]player.Player {
	eligible := make(map[player.Position][]player.Player, len(player.AllPositions))
	for _, pl := range snap.Players {
		if _, taken := inSquad[pl.ID]; taken {
			continue
		}
		if _, known := player.AllPositions[pl.Position]; !known {
			continue
		}
		if !includeInjured && !pl.Available() {
			continue
		}
		eligible[pl.Position] = append(eligible[pl.Position], pl)
	}

	less := preSortLess(strategy)
	for pos, pool := range eligible {
		sort.SliceStable(pool, func(i, j int) bool { return less(pool[i], pool[j]) })
		if len(pool) > s.rules.CandidatePoolSize {
			pool = pool[:s.rules.CandidatePoolSize]
		}
		eligible[pos] = pool
	}
	return eligible
}

func preSortLess(strategy transfer.Strategy) func(a, b player.Player) bool {
	byPoints := func(a, b player.Player) bool {
		if a.TotalPoints != b.TotalPoints {
			return a.TotalPoints > b.TotalPoints
		}
		return a.ID < b.ID
	}

	switch strategy {
	case transfer.StrategyValue:
		return func(a, b player.Player) bool {
			av, bv := pointsPerMillion(a), pointsPerMillion(b)
			if av != bv {
				return av > bv
			}
			return byPoints(a, b)
		}
	case transfer.StrategyDifferential:
		return func(a, b player.Player) bool {
			if a.OwnershipPct != b.OwnershipPct {
				return a.OwnershipPct < b.OwnershipPct
			}
			return byPoints(a, b)
		}
	default:
		return byPoints
	}
}

func pointsPerMillion(p player.Player) float64 {
	cost := p.CostMillions()
	if cost <= 0 {
		return 0
	}
	return float64(p.TotalPoints) / cost
}

// evaluateAll predicts every listed player through a bounded worker pool.
// Failed candidate evaluations are skipped; failed squad evaluations surface
// through the caller's lookup.
func (s *TransferService) evaluateAll(ctx context.Context, snap LeagueSnapshot, ids []int64, horizon int, inSquad map[int64]struct{}) (map[int64]evaluation, error) {
	pool, err := ants.NewPool(s.cfg.Workers)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var (
		mu      sync.Mutex
		evals   = make(map[int64]evaluation, len(ids))
		workers sync.WaitGroup
	)

	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		id := id
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			ev, evalErr := s.evaluate(ctx, snap, id, horizon)
			if evalErr != nil {
				if _, squadMember := inSquad[id]; squadMember {
					s.logger.WarnContext(ctx, "evaluate squad player failed", "player_id", id, "error", evalErr)
				} else {
					s.logger.DebugContext(ctx, "skip candidate, evaluation failed", "player_id", id, "error", evalErr)
				}
				return
			}

			mu.Lock()
			evals[id] = ev
			mu.Unlock()
		}); err != nil {
			workers.Done()
			return nil, fmt.Errorf("submit evaluation to worker pool: %w", err)
		}
	}

	workers.Wait()
	return evals, nil
}

func (s *TransferService) evaluate(ctx context.Context, snap LeagueSnapshot, playerID int64, horizon int) (evaluation, error) {
	pl, ok := snap.Players[playerID]
	if !ok {
		return evaluation{}, fmt.Errorf("%w: player=%d", ErrNotFound, playerID)
	}

	prediction, err := s.predictions.predictFromSnapshot(ctx, snap, playerID, horizon)
	if err != nil {
		return evaluation{}, err
	}

	avgFDR := neutralAvgFDR
	if len(prediction.Fixtures) > 0 {
		sum := 0
		for _, fx := range prediction.Fixtures {
			sum += fx.Difficulty
		}
		avgFDR = float64(sum) / float64(len(prediction.Fixtures))
	}

	momentum := neutralMomentum
	if teamForm, ok := snap.Forms.Team(pl.TeamID); ok && teamForm.HasData() {
		momentum = teamForm.Momentum
	}

	return evaluation{
		player:     pl,
		prediction: prediction,
		avgFDR:     avgFDR,
		momentum:   momentum,
	}, nil
}

func (s *TransferService) buildCandidates(
	squad []transfer.SquadPlayer,
	pools map[player.Position][]player.Player,
	evals map[int64]evaluation,
	baseline float64,
	bank int,
) []transfer.Candidate {
	candidates := make([]transfer.Candidate, 0, 64)

	for _, sp := range squad {
		outEval, ok := evals[sp.PlayerID]
		if !ok {
			continue
		}

		for _, cand := range pools[sp.Position] {
			inEval, ok := evals[cand.ID]
			if !ok {
				continue
			}
			if !transfer.Affordable(bank, sp.SellPrice, cand.Cost) {
				continue
			}
			if transfer.BreaksClubCap(squad, sp.PlayerID, cand.TeamID, s.rules) {
				continue
			}

			netGain := inEval.prediction.ExpectedPoints - outEval.prediction.ExpectedPoints
			reasons := transfer.Reasons(transfer.ReasonInput{
				NetGain:        netGain,
				OutAvgFDR:      outEval.avgFDR,
				InAvgFDR:       inEval.avgFDR,
				OutMinutesProb: outEval.prediction.MinutesProbability,
				InMinutesProb:  inEval.prediction.MinutesProbability,
				OutMomentum:    outEval.momentum,
				InMomentum:     inEval.momentum,
				OutValueScore:  outEval.prediction.ValueScore,
				InValueScore:   inEval.prediction.ValueScore,
				OutTrendRising: outEval.prediction.Trend == scoring.TrendRising,
				InTrendRising:  inEval.prediction.Trend == scoring.TrendRising,
				OutConfidence:  outEval.prediction.Confidence.Score,
				InConfidence:   inEval.prediction.Confidence.Score,
			}, s.rules)

			candidate := transfer.Candidate{
				OutID:              sp.PlayerID,
				OutName:            outEval.player.Name,
				InID:               cand.ID,
				InName:             inEval.player.Name,
				Position:           sp.Position,
				NetGain:            netGain,
				CostDelta:          cand.Cost - sp.SellPrice,
				BankAfter:          bank + sp.SellPrice - cand.Cost,
				Reasons:            reasons,
				SquadExpectedAfter: baseline + netGain,
				InExpectedPoints:   inEval.prediction.ExpectedPoints,
				OutExpectedPoints:  outEval.prediction.ExpectedPoints,
				InOwnershipPct:     inEval.player.OwnershipPct,
				InValueScore:       inEval.prediction.ValueScore,
				InConfidence:       inEval.prediction.Confidence.Score,
			}
			if !transfer.Keep(candidate, s.rules) {
				continue
			}
			candidates = append(candidates, candidate)
		}
	}

	return candidates
}

func (s *TransferService) topTargets(
	pools map[player.Position][]player.Player,
	evals map[int64]evaluation,
	strategy transfer.Strategy,
) map[player.Position][]TransferTarget {
	out := make(map[player.Position][]TransferTarget, len(pools))

	for pos, pool := range pools {
		targets := make([]TransferTarget, 0, len(pool))
		for _, pl := range pool {
			ev, ok := evals[pl.ID]
			if !ok {
				continue
			}
			targets = append(targets, TransferTarget{
				PlayerID:       pl.ID,
				Name:           pl.Name,
				TeamID:         pl.TeamID,
				Position:       pos,
				CostMillions:   pl.CostMillions(),
				ExpectedPoints: ev.prediction.ExpectedPoints,
				ValueScore:     ev.prediction.ValueScore,
				OwnershipPct:   pl.OwnershipPct,
				Confidence:     ev.prediction.Confidence.Score,
				Trend:          ev.prediction.Trend,
			})
		}

		sort.SliceStable(targets, func(i, j int) bool {
			return targetLess(strategy, targets[i], targets[j])
		})
		if len(targets) > s.cfg.TopTargetsPerPosition {
			targets = targets[:s.cfg.TopTargetsPerPosition]
		}
		out[pos] = targets
	}

	return out
}

func targetLess(strategy transfer.Strategy, a, b TransferTarget) bool {
	byPoints := func(a, b TransferTarget) bool {
		if a.ExpectedPoints != b.ExpectedPoints {
			return a.ExpectedPoints > b.ExpectedPoints
		}
		return a.PlayerID < b.PlayerID
	}

	switch strategy {
	case transfer.StrategyValue:
		if a.ValueScore != b.ValueScore {
			return a.ValueScore > b.ValueScore
		}
	case transfer.StrategySafety:
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
	case transfer.StrategyDifferential:
		if a.OwnershipPct != b.OwnershipPct {
			return a.OwnershipPct < b.OwnershipPct
		}
	}
	return byPoints(a, b)
}
