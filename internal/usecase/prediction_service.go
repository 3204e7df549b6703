package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/yudhapane/fpl-oracle/internal/domain/fixture"
	"github.com/yudhapane/fpl-oracle/internal/domain/form"
	"github.com/yudhapane/fpl-oracle/internal/domain/player"
	"github.com/yudhapane/fpl-oracle/internal/domain/scoring"
	"github.com/yudhapane/fpl-oracle/internal/domain/team"
	"github.com/yudhapane/fpl-oracle/internal/platform/cache"
	"github.com/yudhapane/fpl-oracle/internal/platform/logging"
)

const (
	defaultHorizon = 5
	maxHorizon     = 15

	cacheKeyPlayerMetricsFmt  = "metrics:player:%d"
	cacheKeyTeamMetricsFmt    = "metrics:team:%d"
	cacheKeyFixtureContextFmt = "metrics:fixture:%d"

	halfTimeMinutesLow  = 45
	halfTimeMinutesHigh = 47
)

type PredictionServiceConfig struct {
	// MetricsTTL covers the derived player/team/fixture metric caches.
	MetricsTTL time.Duration
	// LiveTTL caps the cache on fixture context while a match is in play.
	LiveTTL time.Duration
}

func normalizePredictionConfig(cfg PredictionServiceConfig) PredictionServiceConfig {
	if cfg.MetricsTTL <= 0 {
		cfg.MetricsTTL = defaultStaticTTL
	}
	if cfg.LiveTTL <= 0 {
		cfg.LiveTTL = defaultLiveTTL
	}
	return cfg
}

// PredictionService computes expected points and the derived metric views.
// Predictions are always computed fresh from the current snapshot; only the
// metric views are cached.
type PredictionService struct {
	snapshots    *SnapshotService
	store        *cache.Store
	coeff        scoring.Coefficients
	csProvider   CleanSheetProbabilityProvider
	goalProvider GoalProbabilityProvider
	logger       *logging.Logger
	cfg          PredictionServiceConfig
}

func NewPredictionService(
	snapshots *SnapshotService,
	store *cache.Store,
	coeff scoring.Coefficients,
	csProvider CleanSheetProbabilityProvider,
	goalProvider GoalProbabilityProvider,
	logger *logging.Logger,
	cfg PredictionServiceConfig,
) *PredictionService {
	if logger == nil {
		logger = logging.Default()
	}
	return &PredictionService{
		snapshots:    snapshots,
		store:        store,
		coeff:        coeff,
		csProvider:   csProvider,
		goalProvider: goalProvider,
		logger:       logger,
		cfg:          normalizePredictionConfig(cfg),
	}
}

// Predict projects one player's points over the horizon. A zero horizon uses
// the default window.
func (s *PredictionService) Predict(ctx context.Context, playerID int64, horizon int) (scoring.Prediction, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PredictionService.Predict")
	defer span.End()

	horizon, err := normalizeHorizon(horizon)
	if err != nil {
		return scoring.Prediction{}, err
	}
	if playerID <= 0 {
		return scoring.Prediction{}, fmt.Errorf("%w: player id must be greater than zero", ErrInvalidInput)
	}

	snap, err := s.snapshots.Snapshot(ctx)
	if err != nil {
		return scoring.Prediction{}, fmt.Errorf("build snapshot: %w", err)
	}

	return s.predictFromSnapshot(ctx, snap, playerID, horizon)
}

func (s *PredictionService) predictFromSnapshot(ctx context.Context, snap LeagueSnapshot, playerID int64, horizon int) (scoring.Prediction, error) {
	pl, ok := snap.Players[playerID]
	if !ok {
		return scoring.Prediction{}, fmt.Errorf("%w: player=%d", ErrNotFound, playerID)
	}

	detail, err := s.snapshots.PlayerDetail(ctx, playerID)
	if err != nil {
		return scoring.Prediction{}, fmt.Errorf("player detail player_id=%d: %w", playerID, err)
	}

	csOverride, goalOverride := s.enrichmentOverrides(ctx, snap, pl)

	return scoring.Predict(s.coeff, scoring.PredictInput{
		Player:                pl,
		History:               detail.History,
		Upcoming:              detail.Upcoming,
		Horizon:               horizon,
		Forms:                 snap.Forms,
		Teams:                 snap.Teams,
		CleanSheetPctOverride: csOverride,
		GoalPctOverride:       goalOverride,
	}), nil
}

// enrichmentOverrides consults at most one optional provider per request: the
// modeled stats snapshot when it is configured and healthy, otherwise the
// odds feed. Provider failures degrade silently to the heuristic models.
func (s *PredictionService) enrichmentOverrides(ctx context.Context, snap LeagueSnapshot, pl player.Player) (map[int64]float64, map[int64]float64) {
	gameweek := snap.NextGameweek
	if gameweek <= 0 {
		gameweek = snap.CurrentGameweek
	}
	if gameweek <= 0 {
		return nil, nil
	}

	if s.csProvider != nil {
		probs, err := s.csProvider.FetchCleanSheetProbabilities(ctx, gameweek)
		if err == nil {
			csOverride := make(map[int64]float64, len(probs))
			for _, p := range probs {
				if p.TeamID == pl.TeamID {
					csOverride[p.FixtureID] = p.Pct
				}
			}
			return csOverride, nil
		}
		s.logger.DebugContext(ctx, "clean-sheet provider unavailable, falling back", "gameweek", gameweek, "error", err)
	}

	if s.goalProvider != nil {
		probs, err := s.goalProvider.FetchGoalProbabilities(ctx, gameweek)
		if err == nil {
			goalOverride := make(map[int64]float64, len(probs))
			for _, p := range probs {
				if p.PlayerID == pl.ID {
					goalOverride[p.FixtureID] = p.Pct
				}
			}
			return nil, goalOverride
		}
		s.logger.DebugContext(ctx, "goal odds provider unavailable, falling back", "gameweek", gameweek, "error", err)
	}

	return nil, nil
}

// PlayerMetrics is the cached derived view of one player's underlying stats.
type PlayerMetrics struct {
	PlayerID           int64
	Name               string
	TeamID             int64
	Position           player.Position
	CostMillions       float64
	Status             string
	OwnershipPct       float64
	TotalPoints        int
	XGPer90            float64
	XAPer90            float64
	AvgMinutes         float64
	MinutesProbability float64
	SampleSize         int
	Trend              scoring.Trend
	Confidence         scoring.Confidence
}

func (s *PredictionService) PlayerMetrics(ctx context.Context, playerID int64) (PlayerMetrics, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PredictionService.PlayerMetrics")
	defer span.End()

	if playerID <= 0 {
		return PlayerMetrics{}, fmt.Errorf("%w: player id must be greater than zero", ErrInvalidInput)
	}

	key := fmt.Sprintf(cacheKeyPlayerMetricsFmt, playerID)
	value, err := s.store.GetOrLoad(ctx, key, s.cfg.MetricsTTL, func(ctx context.Context) (any, error) {
		return s.buildPlayerMetrics(ctx, playerID)
	})
	if err != nil {
		return PlayerMetrics{}, err
	}

	metrics, ok := value.(PlayerMetrics)
	if !ok {
		return PlayerMetrics{}, fmt.Errorf("unexpected cached value type %T for %s", value, key)
	}
	return metrics, nil
}

func (s *PredictionService) buildPlayerMetrics(ctx context.Context, playerID int64) (PlayerMetrics, error) {
	snap, err := s.snapshots.Snapshot(ctx)
	if err != nil {
		return PlayerMetrics{}, fmt.Errorf("build snapshot: %w", err)
	}

	pl, ok := snap.Players[playerID]
	if !ok {
		return PlayerMetrics{}, fmt.Errorf("%w: player=%d", ErrNotFound, playerID)
	}

	detail, err := s.snapshots.PlayerDetail(ctx, playerID)
	if err != nil {
		return PlayerMetrics{}, fmt.Errorf("player detail player_id=%d: %w", playerID, err)
	}

	prediction := scoring.Predict(s.coeff, scoring.PredictInput{
		Player:   pl,
		History:  detail.History,
		Upcoming: detail.Upcoming,
		Horizon:  1,
		Forms:    snap.Forms,
		Teams:    snap.Teams,
	})

	return PlayerMetrics{
		PlayerID:           pl.ID,
		Name:               pl.Name,
		TeamID:             pl.TeamID,
		Position:           pl.Position,
		CostMillions:       pl.CostMillions(),
		Status:             pl.Status,
		OwnershipPct:       pl.OwnershipPct,
		TotalPoints:        pl.TotalPoints,
		XGPer90:            pl.XGPer90,
		XAPer90:            pl.XAPer90,
		AvgMinutes:         prediction.AvgMinutes,
		MinutesProbability: prediction.MinutesProbability,
		SampleSize:         len(detail.History),
		Trend:              prediction.Trend,
		Confidence:         prediction.Confidence,
	}, nil
}

// TeamMetrics is the cached derived view of one club's strength and form.
type TeamMetrics struct {
	TeamID   int64
	Name     string
	Short    string
	Strength team.StrengthRatings
	Form     form.TeamForm
}

func (s *PredictionService) TeamMetrics(ctx context.Context, teamID int64) (TeamMetrics, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PredictionService.TeamMetrics")
	defer span.End()

	if teamID <= 0 {
		return TeamMetrics{}, fmt.Errorf("%w: team id must be greater than zero", ErrInvalidInput)
	}

	key := fmt.Sprintf(cacheKeyTeamMetricsFmt, teamID)
	value, err := s.store.GetOrLoad(ctx, key, s.cfg.MetricsTTL, func(ctx context.Context) (any, error) {
		snap, err := s.snapshots.Snapshot(ctx)
		if err != nil {
			return nil, fmt.Errorf("build snapshot: %w", err)
		}

		t, ok := snap.Teams[teamID]
		if !ok {
			return nil, fmt.Errorf("%w: team=%d", ErrNotFound, teamID)
		}

		teamForm, _ := snap.Forms.Team(teamID)
		return TeamMetrics{
			TeamID:   t.ID,
			Name:     t.Name,
			Short:    t.Short,
			Strength: t.Strength,
			Form:     teamForm,
		}, nil
	})
	if err != nil {
		return TeamMetrics{}, err
	}

	metrics, ok := value.(TeamMetrics)
	if !ok {
		return TeamMetrics{}, fmt.Errorf("unexpected cached value type %T for %s", value, key)
	}
	return metrics, nil
}

// FixtureContext is the cached derived view of one match: both clubs, their
// form, modeled clean-sheet chances, and the live state.
type FixtureContext struct {
	Fixture           fixture.Fixture
	HomeTeam          team.Team
	AwayTeam          team.Team
	HomeForm          form.TeamForm
	AwayForm          form.TeamForm
	HomeCleanSheetPct float64
	AwayCleanSheetPct float64
	Live              bool
	HalfTime          bool
}

func (s *PredictionService) FixtureContext(ctx context.Context, fixtureID int64) (FixtureContext, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PredictionService.FixtureContext")
	defer span.End()

	if fixtureID <= 0 {
		return FixtureContext{}, fmt.Errorf("%w: fixture id must be greater than zero", ErrInvalidInput)
	}

	snap, err := s.snapshots.Snapshot(ctx)
	if err != nil {
		return FixtureContext{}, fmt.Errorf("build snapshot: %w", err)
	}

	var fx fixture.Fixture
	found := false
	for _, item := range snap.Fixtures {
		if item.ID == fixtureID {
			fx = item
			found = true
			break
		}
	}
	if !found {
		return FixtureContext{}, fmt.Errorf("%w: fixture=%d", ErrNotFound, fixtureID)
	}

	// Live fixtures stay on the short TTL so the half-time flag tracks play.
	ttl := s.cfg.MetricsTTL
	live := fx.Started && !fx.Finished
	if live {
		ttl = s.cfg.LiveTTL
	}

	key := fmt.Sprintf(cacheKeyFixtureContextFmt, fixtureID)
	value, err := s.store.GetOrLoad(ctx, key, ttl, func(ctx context.Context) (any, error) {
		return s.buildFixtureContext(ctx, snap, fx, live)
	})
	if err != nil {
		return FixtureContext{}, err
	}

	fc, ok := value.(FixtureContext)
	if !ok {
		return FixtureContext{}, fmt.Errorf("unexpected cached value type %T for %s", value, key)
	}
	return fc, nil
}

func (s *PredictionService) buildFixtureContext(ctx context.Context, snap LeagueSnapshot, fx fixture.Fixture, live bool) (FixtureContext, error) {
	homeForm, _ := snap.Forms.Team(fx.HomeTeamID)
	awayForm, _ := snap.Forms.Team(fx.AwayTeamID)
	homeTeam := snap.Teams[fx.HomeTeamID]
	awayTeam := snap.Teams[fx.AwayTeamID]

	out := FixtureContext{
		Fixture:           fx,
		HomeTeam:          homeTeam,
		AwayTeam:          awayTeam,
		HomeForm:          homeForm,
		AwayForm:          awayForm,
		HomeCleanSheetPct: scoring.CleanSheetChance(s.coeff, homeForm, homeTeam.Strength, awayForm, awayTeam.Strength, true),
		AwayCleanSheetPct: scoring.CleanSheetChance(s.coeff, awayForm, awayTeam.Strength, homeForm, homeTeam.Strength, false),
		Live:              live,
	}

	if live && fx.Gameweek > 0 {
		stats, err := s.snapshots.LiveStats(ctx, fx.Gameweek)
		if err != nil {
			s.logger.WarnContext(ctx, "live stats unavailable for fixture context", "fixture_id", fx.ID, "gameweek", fx.Gameweek, "error", err)
		} else {
			out.HalfTime = anyHalfTimeMinutes(stats, snap.Players, fx.HomeTeamID, fx.AwayTeamID)
		}
	}

	return out, nil
}

// anyHalfTimeMinutes flags half-time when any involved player's minutes sit
// in the frozen 45-47 band the provider reports during the interval.
func anyHalfTimeMinutes(stats []LiveStat, players map[int64]player.Player, homeTeamID, awayTeamID int64) bool {
	for _, stat := range stats {
		pl, ok := players[stat.PlayerID]
		if !ok {
			continue
		}
		if pl.TeamID != homeTeamID && pl.TeamID != awayTeamID {
			continue
		}
		if stat.Minutes >= halfTimeMinutesLow && stat.Minutes <= halfTimeMinutesHigh {
			return true
		}
	}
	return false
}

func normalizeHorizon(horizon int) (int, error) {
	if horizon == 0 {
		return defaultHorizon, nil
	}
	if horizon < 1 || horizon > maxHorizon {
		return 0, fmt.Errorf("%w: horizon must be between 1 and %d", ErrInvalidInput, maxHorizon)
	}
	return horizon, nil
}
