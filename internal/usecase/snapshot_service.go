package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/sourcegraph/conc/pool"
	"github.com/yudhapane/fpl-oracle/internal/domain/fixture"
	"github.com/yudhapane/fpl-oracle/internal/domain/form"
	"github.com/yudhapane/fpl-oracle/internal/domain/player"
	"github.com/yudhapane/fpl-oracle/internal/domain/rawdata"
	"github.com/yudhapane/fpl-oracle/internal/domain/team"
	"github.com/yudhapane/fpl-oracle/internal/platform/cache"
	"github.com/yudhapane/fpl-oracle/internal/platform/logging"
)

const (
	cacheKeyBootstrap  = "fpl:bootstrap"
	cacheKeyFixtures   = "fpl:fixtures"
	cacheKeyFormEpoch  = "form:epoch"
	cacheKeyPlayerFmt  = "fpl:player:%d"
	cacheKeyLiveFmt    = "fpl:live:%d"
	defaultStaticTTL   = 5 * time.Minute
	defaultLiveTTL     = 30 * time.Second
	defaultFormEpoch   = 30 * time.Minute
)

// LeagueSnapshot is the immutable dataset every prediction and recommendation
// reads from. It is assembled from independently cached pieces and passed by
// value; nothing downstream mutates it.
type LeagueSnapshot struct {
	BuiltAt         time.Time
	CurrentGameweek int
	NextGameweek    int
	Teams           map[int64]team.Team
	Players         map[int64]player.Player
	Fixtures        []fixture.Fixture
	Forms           form.Snapshot
}

type SnapshotServiceConfig struct {
	// StaticTTL covers bootstrap, fixtures, and per-player detail payloads.
	StaticTTL time.Duration
	// LiveTTL covers in-play gameweek stats.
	LiveTTL time.Duration
	// FormEpoch is how long a built form snapshot stays authoritative.
	FormEpoch time.Duration
}

func normalizeSnapshotConfig(cfg SnapshotServiceConfig) SnapshotServiceConfig {
	if cfg.StaticTTL <= 0 {
		cfg.StaticTTL = defaultStaticTTL
	}
	if cfg.LiveTTL <= 0 {
		cfg.LiveTTL = defaultLiveTTL
	}
	if cfg.FormEpoch <= 0 {
		cfg.FormEpoch = defaultFormEpoch
	}
	return cfg
}

// SnapshotService owns upstream fetching, caching, and form aggregation. Team
// form is rebuilt wholesale once per epoch from the freshest fixture list,
// never patched incrementally.
type SnapshotService struct {
	provider SportDataProvider
	store    *cache.Store
	archiver rawdata.Archiver
	logger   *logging.Logger
	cfg      SnapshotServiceConfig
	now      func() time.Time
}

func NewSnapshotService(
	provider SportDataProvider,
	store *cache.Store,
	archiver rawdata.Archiver,
	logger *logging.Logger,
	cfg SnapshotServiceConfig,
) *SnapshotService {
	if archiver == nil {
		archiver = rawdata.NopArchiver{}
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &SnapshotService{
		provider: provider,
		store:    store,
		archiver: archiver,
		logger:   logger,
		cfg:      normalizeSnapshotConfig(cfg),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Snapshot assembles the current league snapshot. Bootstrap and fixtures are
// fetched in parallel on a cold cache; the form aggregate piggybacks on the
// fixture list under its own, longer epoch.
func (s *SnapshotService) Snapshot(ctx context.Context) (LeagueSnapshot, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SnapshotService.Snapshot")
	defer span.End()

	var (
		bootstrap LeagueBootstrap
		fixtures  []fixture.Fixture
	)

	p := pool.New().WithContext(ctx).WithCancelOnError()
	p.Go(func(ctx context.Context) error {
		loaded, err := s.bootstrap(ctx)
		if err != nil {
			return err
		}
		bootstrap = loaded
		return nil
	})
	p.Go(func(ctx context.Context) error {
		loaded, err := s.fixtures(ctx)
		if err != nil {
			return err
		}
		fixtures = loaded
		return nil
	})
	if err := p.Wait(); err != nil {
		return LeagueSnapshot{}, err
	}

	forms, err := s.forms(ctx, fixtures)
	if err != nil {
		return LeagueSnapshot{}, err
	}

	teams := make(map[int64]team.Team, len(bootstrap.Teams))
	for _, t := range bootstrap.Teams {
		teams[t.ID] = t
	}
	players := make(map[int64]player.Player, len(bootstrap.Players))
	for _, pl := range bootstrap.Players {
		players[pl.ID] = pl
	}

	return LeagueSnapshot{
		BuiltAt:         s.now(),
		CurrentGameweek: bootstrap.CurrentGameweek,
		NextGameweek:    bootstrap.NextGameweek,
		Teams:           teams,
		Players:         players,
		Fixtures:        fixtures,
		Forms:           forms,
	}, nil
}

// PlayerDetail returns a player's match history and remaining fixtures.
func (s *SnapshotService) PlayerDetail(ctx context.Context, playerID int64) (player.Detail, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SnapshotService.PlayerDetail")
	defer span.End()

	if playerID <= 0 {
		return player.Detail{}, fmt.Errorf("%w: player id must be greater than zero", ErrInvalidInput)
	}

	key := fmt.Sprintf(cacheKeyPlayerFmt, playerID)
	value, err := s.store.GetOrLoad(ctx, key, s.cfg.StaticTTL, func(ctx context.Context) (any, error) {
		detail, payloads, err := s.provider.FetchPlayerDetail(ctx, playerID)
		if err != nil {
			return nil, err
		}
		s.archive(ctx, payloads)
		return detail, nil
	})
	if err != nil {
		return player.Detail{}, err
	}

	detail, ok := value.(player.Detail)
	if !ok {
		return player.Detail{}, fmt.Errorf("unexpected cached value type %T for %s", value, key)
	}
	return detail, nil
}

// LiveStats returns the in-play stat lines for a gameweek under the short
// live TTL.
func (s *SnapshotService) LiveStats(ctx context.Context, gameweek int) ([]LiveStat, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SnapshotService.LiveStats")
	defer span.End()

	if gameweek <= 0 {
		return nil, fmt.Errorf("%w: gameweek must be greater than zero", ErrInvalidInput)
	}

	key := fmt.Sprintf(cacheKeyLiveFmt, gameweek)
	value, err := s.store.GetOrLoad(ctx, key, s.cfg.LiveTTL, func(ctx context.Context) (any, error) {
		stats, payloads, err := s.provider.FetchEventLive(ctx, gameweek)
		if err != nil {
			return nil, err
		}
		s.archive(ctx, payloads)
		return stats, nil
	})
	if err != nil {
		return nil, err
	}

	stats, ok := value.([]LiveStat)
	if !ok {
		return nil, fmt.Errorf("unexpected cached value type %T for %s", value, key)
	}
	return stats, nil
}

// Invalidate drops every cached upstream payload and the form epoch.
func (s *SnapshotService) Invalidate(ctx context.Context) {
	s.store.DeletePrefix(ctx, "fpl:")
	s.store.Delete(ctx, cacheKeyFormEpoch)
}

func (s *SnapshotService) bootstrap(ctx context.Context) (LeagueBootstrap, error) {
	value, err := s.store.GetOrLoad(ctx, cacheKeyBootstrap, s.cfg.StaticTTL, func(ctx context.Context) (any, error) {
		loaded, payloads, err := s.provider.FetchBootstrap(ctx)
		if err != nil {
			return nil, err
		}
		s.archive(ctx, payloads)
		return loaded, nil
	})
	if err != nil {
		return LeagueBootstrap{}, err
	}

	loaded, ok := value.(LeagueBootstrap)
	if !ok {
		return LeagueBootstrap{}, fmt.Errorf("unexpected cached value type %T for %s", value, cacheKeyBootstrap)
	}
	return loaded, nil
}

func (s *SnapshotService) fixtures(ctx context.Context) ([]fixture.Fixture, error) {
	value, err := s.store.GetOrLoad(ctx, cacheKeyFixtures, s.cfg.StaticTTL, func(ctx context.Context) (any, error) {
		loaded, payloads, err := s.provider.FetchFixtures(ctx)
		if err != nil {
			return nil, err
		}
		s.archive(ctx, payloads)
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}

	loaded, ok := value.([]fixture.Fixture)
	if !ok {
		return nil, fmt.Errorf("unexpected cached value type %T for %s", value, cacheKeyFixtures)
	}
	return loaded, nil
}

func (s *SnapshotService) forms(ctx context.Context, fixtures []fixture.Fixture) (form.Snapshot, error) {
	value, err := s.store.GetOrLoad(ctx, cacheKeyFormEpoch, s.cfg.FormEpoch, func(ctx context.Context) (any, error) {
		return form.Build(fixtures, s.now()), nil
	})
	if err != nil {
		return form.Snapshot{}, err
	}

	built, ok := value.(form.Snapshot)
	if !ok {
		return form.Snapshot{}, fmt.Errorf("unexpected cached value type %T for %s", value, cacheKeyFormEpoch)
	}
	return built, nil
}

func (s *SnapshotService) archive(ctx context.Context, payloads []rawdata.Payload) {
	if len(payloads) == 0 {
		return
	}
	if err := s.archiver.Archive(ctx, payloads); err != nil {
		s.logger.WarnContext(ctx, "archive raw payloads failed", "count", len(payloads), "error", err)
	}
}
