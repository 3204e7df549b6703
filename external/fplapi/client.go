package fplapi

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/yudhapane/fpl-oracle/internal/domain/fixture"
	"github.com/yudhapane/fpl-oracle/internal/domain/player"
	"github.com/yudhapane/fpl-oracle/internal/domain/rawdata"
	"github.com/yudhapane/fpl-oracle/internal/domain/team"
	"github.com/yudhapane/fpl-oracle/internal/platform/logging"
	"github.com/yudhapane/fpl-oracle/internal/platform/resilience"
	"github.com/yudhapane/fpl-oracle/internal/usecase"
)

const (
	defaultBaseURL   = "https://fantasy.premierleague.com/api"
	sourceName       = "fpl"
	maxResponseBytes = 16 << 20
)

var errFPLTransient = crerr.New("fpl transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

type Client struct {
	httpClient     *http.Client
	baseURL        string
	retry          resilience.RetryPolicy
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
	now            func() time.Time
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 20 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	retry := resilience.DefaultRetryPolicy()
	if cfg.MaxRetries > 0 {
		retry.MaxAttempts = cfg.MaxRetries
	}

	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		retry:          retry,
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg),
		circuitEnabled: breakerCfg.Enabled,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

func (c *Client) FetchBootstrap(ctx context.Context) (usecase.LeagueBootstrap, []rawdata.Payload, error) {
	path := "/bootstrap-static/"
	var envelope bootstrapEnvelope
	raw, err := c.doJSON(ctx, path, &envelope)
	if err != nil {
		return usecase.LeagueBootstrap{}, nil, fmt.Errorf("fetch bootstrap: %w", err)
	}

	out := usecase.LeagueBootstrap{
		Teams:   make([]team.Team, 0, len(envelope.Teams)),
		Players: make([]player.Player, 0, len(envelope.Elements)),
	}

	for _, item := range envelope.Events {
		if item.IsCurrent {
			out.CurrentGameweek = item.ID
		}
		if item.IsNext {
			out.NextGameweek = item.ID
		}
	}
	if out.CurrentGameweek <= 0 && out.NextGameweek > 0 {
		out.CurrentGameweek = out.NextGameweek - 1
	}

	for _, item := range envelope.Teams {
		if item.ID <= 0 {
			continue
		}
		out.Teams = append(out.Teams, team.Team{
			ID:    item.ID,
			Name:  strings.TrimSpace(item.Name),
			Short: strings.TrimSpace(item.ShortName),
			Strength: team.StrengthRatings{
				Overall:     item.Strength,
				AttackHome:  item.StrengthAttackHome,
				AttackAway:  item.StrengthAttackAway,
				DefenceHome: item.StrengthDefenceHome,
				DefenceAway: item.StrengthDefenceAway,
			},
		})
	}
	sort.SliceStable(out.Teams, func(i, j int) bool { return out.Teams[i].ID < out.Teams[j].ID })

	for _, item := range envelope.Elements {
		if item.ID <= 0 {
			continue
		}
		chance := -1
		if item.ChanceOfPlayingNextRound != nil {
			chance = *item.ChanceOfPlayingNextRound
		}
		out.Players = append(out.Players, player.Player{
			ID:              item.ID,
			TeamID:          item.Team,
			Name:            strings.TrimSpace(item.WebName),
			Position:        mapElementType(item.ElementType),
			Cost:            item.NowCost,
			Status:          strings.TrimSpace(item.Status),
			ChanceOfPlaying: chance,
			TotalPoints:     item.TotalPoints,
			OwnershipPct:    parseProviderFloat(item.SelectedByPercent),
			XGPer90:         item.ExpectedGoalsPer90,
			XAPer90:         item.ExpectedAssistsPer90,
			PenaltiesOrder:  intOrZero(item.PenaltiesOrder),
			CornersOrder:    intOrZero(item.CornersOrder),
		})
	}
	sort.SliceStable(out.Players, func(i, j int) bool { return out.Players[i].ID < out.Players[j].ID })

	return out, []rawdata.Payload{c.buildPayload(path, raw)}, nil
}

func (c *Client) FetchFixtures(ctx context.Context) ([]fixture.Fixture, []rawdata.Payload, error) {
	path := "/fixtures/"
	var items []fixtureItem
	raw, err := c.doJSON(ctx, path, &items)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch fixtures: %w", err)
	}

	out := make([]fixture.Fixture, 0, len(items))
	for _, item := range items {
		if item.ID <= 0 {
			continue
		}
		row := fixture.Fixture{
			ID:             item.ID,
			Gameweek:       intOrZero(item.Event),
			KickoffAt:      parseProviderTime(item.KickoffTime),
			HomeTeamID:     item.TeamH,
			AwayTeamID:     item.TeamA,
			HomeDifficulty: item.TeamHDifficulty,
			AwayDifficulty: item.TeamADifficulty,
			Started:        item.Started,
			Finished:       item.Finished,
		}
		if item.TeamHScore != nil {
			row.HomeScore = *item.TeamHScore
		}
		if item.TeamAScore != nil {
			row.AwayScore = *item.TeamAScore
		}
		out = append(out, row)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].KickoffAt.Equal(out[j].KickoffAt) {
			return out[i].KickoffAt.Before(out[j].KickoffAt)
		}
		return out[i].ID < out[j].ID
	})

	return out, []rawdata.Payload{c.buildPayload(path, raw)}, nil
}

func (c *Client) FetchPlayerDetail(ctx context.Context, playerID int64) (player.Detail, []rawdata.Payload, error) {
	if playerID <= 0 {
		return player.Detail{}, nil, fmt.Errorf("%w: player id must be greater than zero", usecase.ErrInvalidInput)
	}

	path := fmt.Sprintf("/element-summary/%d/", playerID)
	var envelope elementSummaryEnvelope
	raw, err := c.doJSON(ctx, path, &envelope)
	if err != nil {
		return player.Detail{}, nil, fmt.Errorf("fetch player detail player_id=%d: %w", playerID, err)
	}

	out := player.Detail{
		PlayerID: playerID,
		History:  make([]player.HistoryEntry, 0, len(envelope.History)),
		Upcoming: make([]player.UpcomingFixture, 0, len(envelope.Fixtures)),
	}

	for _, item := range envelope.History {
		out.History = append(out.History, player.HistoryEntry{
			Gameweek: item.Round,
			Minutes:  item.Minutes,
			Points:   item.TotalPoints,
			Bonus:    item.Bonus,
			XG:       parseProviderFloat(item.ExpectedGoals),
			XA:       parseProviderFloat(item.ExpectedAssists),
		})
	}
	sort.SliceStable(out.History, func(i, j int) bool {
		return out.History[i].Gameweek < out.History[j].Gameweek
	})

	for _, item := range envelope.Fixtures {
		if item.ID <= 0 {
			continue
		}
		opponent := item.TeamH
		if item.IsHome {
			opponent = item.TeamA
		}
		out.Upcoming = append(out.Upcoming, player.UpcomingFixture{
			FixtureID:  item.ID,
			Gameweek:   intOrZero(item.Event),
			OpponentID: opponent,
			Home:       item.IsHome,
			Difficulty: item.Difficulty,
			KickoffAt:  parseProviderTime(item.KickoffTime),
		})
	}
	sort.SliceStable(out.Upcoming, func(i, j int) bool {
		if !out.Upcoming[i].KickoffAt.Equal(out.Upcoming[j].KickoffAt) {
			return out.Upcoming[i].KickoffAt.Before(out.Upcoming[j].KickoffAt)
		}
		return out.Upcoming[i].FixtureID < out.Upcoming[j].FixtureID
	})

	return out, []rawdata.Payload{c.buildPayload(path, raw)}, nil
}

func (c *Client) FetchEventLive(ctx context.Context, gameweek int) ([]usecase.LiveStat, []rawdata.Payload, error) {
	if gameweek <= 0 {
		return nil, nil, fmt.Errorf("%w: gameweek must be greater than zero", usecase.ErrInvalidInput)
	}

	path := fmt.Sprintf("/event/%d/live/", gameweek)
	var envelope eventLiveEnvelope
	raw, err := c.doJSON(ctx, path, &envelope)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch event live gameweek=%d: %w", gameweek, err)
	}

	out := make([]usecase.LiveStat, 0, len(envelope.Elements))
	for _, item := range envelope.Elements {
		if item.ID <= 0 {
			continue
		}
		out = append(out, usecase.LiveStat{
			PlayerID:    item.ID,
			Minutes:     item.Stats.Minutes,
			TotalPoints: item.Stats.TotalPoints,
			Bonus:       item.Stats.Bonus,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].PlayerID < out[j].PlayerID })

	return out, []rawdata.Payload{c.buildPayload(path, raw)}, nil
}

func (c *Client) doJSON(ctx context.Context, path string, target any) ([]byte, error) {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "fpl circuit breaker rejected request", "state", c.breaker.State())
			return nil, fmt.Errorf("%w: fantasy data provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	fullURL := c.baseURL + path

	out, err, _ := c.flight.Do(path, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if c.circuitEnabled {
			if reqErr != nil && crerr.Is(reqErr, errFPLTransient) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		if crerr.Is(err, errFPLTransient) {
			return nil, fmt.Errorf("%w: %v", usecase.ErrDependencyUnavailable, err)
		}
		return nil, err
	}

	raw, ok := out.([]byte)
	if !ok {
		return nil, fmt.Errorf("unexpected response payload type %T", out)
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return nil, fmt.Errorf("decode provider payload: %w", err)
	}

	return raw, nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var raw []byte
	err := c.retry.Do(ctx, isTransient, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("%w: send request: %v", errFPLTransient, err)
		}
		body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		_ = resp.Body.Close()
		if readErr != nil {
			return fmt.Errorf("%w: read response body: %v", errFPLTransient, readErr)
		}

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			raw = body
			return nil
		case resp.StatusCode == http.StatusNotFound:
			return fmt.Errorf("%w: provider status=404", usecase.ErrNotFound)
		case isRetryableStatus(resp.StatusCode):
			return fmt.Errorf("%w: provider status=%d body=%s", errFPLTransient, resp.StatusCode, abbreviateBody(body))
		default:
			return fmt.Errorf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(body))
		}
	})
	if err != nil {
		c.logger.WarnContext(ctx, "fpl request failed", "url", fullURL, "error", err)
		return nil, err
	}
	return raw, nil
}

func (c *Client) buildPayload(path string, raw []byte) rawdata.Payload {
	sum := sha256.Sum256(raw)
	return rawdata.Payload{
		Source:      sourceName,
		Endpoint:    path,
		EntityKey:   path,
		PayloadJSON: string(raw),
		PayloadHash: hex.EncodeToString(sum[:]),
		FetchedAt:   c.now(),
	}
}

func isTransient(err error) bool {
	return crerr.Is(err, errFPLTransient)
}

func isRetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

func abbreviateBody(raw []byte) string {
	const limit = 256
	body := strings.TrimSpace(string(raw))
	if len(body) > limit {
		return body[:limit] + "..."
	}
	return body
}

func mapElementType(elementType int) player.Position {
	switch elementType {
	case 1:
		return player.PositionGoalkeeper
	case 2:
		return player.PositionDefender
	case 3:
		return player.PositionMidfielder
	case 4:
		return player.PositionForward
	default:
		return ""
	}
}
