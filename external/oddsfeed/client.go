package oddsfeed

import (
	"context"
	"fmt"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/valyala/bytebufferpool"
	"github.com/valyala/fasthttp"
	"github.com/yudhapane/fpl-oracle/internal/platform/logging"
	"github.com/yudhapane/fpl-oracle/internal/usecase"
)

type ClientConfig struct {
	BaseURL string
	Timeout time.Duration
	Logger  *logging.Logger
}

// Client pulls bookmaker-implied scoring probabilities. The feed is polled on
// a tight cadence during live gameweeks, so requests go through fasthttp with
// pooled buffers instead of net/http.
type Client struct {
	client  *fasthttp.Client
	baseURL string
	timeout time.Duration
	logger  *logging.Logger
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &Client{
		client: &fasthttp.Client{
			ReadTimeout:  timeout,
			WriteTimeout: timeout,
		},
		baseURL: strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		timeout: timeout,
		logger:  logger,
	}
}

type goalOddsEnvelope struct {
	Odds []goalOddsItem `json:"odds"`
}

type goalOddsItem struct {
	FixtureID int64   `json:"fixture_id"`
	PlayerID  int64   `json:"player_id"`
	GoalPct   float64 `json:"anytime_scorer_pct"`
}

// FetchGoalProbabilities returns every priced anytime-scorer probability for
// a gameweek. Errors mean "no enrichment", never a failed prediction.
func (c *Client) FetchGoalProbabilities(ctx context.Context, gameweek int) ([]usecase.GoalProbability, error) {
	if gameweek <= 0 {
		return nil, fmt.Errorf("%w: gameweek must be greater than zero", usecase.ErrInvalidInput)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(fmt.Sprintf("%s/v1/goal-odds?gameweek=%d", c.baseURL, gameweek))
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("accept", "application/json")

	if err := c.client.DoTimeout(req, resp, c.timeout); err != nil {
		c.logger.WarnContext(ctx, "oddsfeed request failed", "gameweek", gameweek, "error", err)
		return nil, fmt.Errorf("%w: %v", usecase.ErrDependencyUnavailable, err)
	}
	if status := resp.StatusCode(); status < 200 || status >= 300 {
		return nil, fmt.Errorf("%w: oddsfeed status=%d", usecase.ErrDependencyUnavailable, status)
	}

	// The response buffer is recycled on release; copy it into a pooled
	// buffer before decoding.
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	buf.Set(resp.Body())

	var envelope goalOddsEnvelope
	if err := sonic.Unmarshal(buf.B, &envelope); err != nil {
		return nil, fmt.Errorf("%w: decode payload: %v", usecase.ErrDependencyUnavailable, err)
	}

	out := make([]usecase.GoalProbability, 0, len(envelope.Odds))
	for _, item := range envelope.Odds {
		if item.FixtureID <= 0 || item.PlayerID <= 0 {
			continue
		}
		if item.GoalPct < 0 || item.GoalPct > 100 {
			continue
		}
		out = append(out, usecase.GoalProbability{
			FixtureID: item.FixtureID,
			PlayerID:  item.PlayerID,
			Pct:       item.GoalPct,
		})
	}
	return out, nil
}
