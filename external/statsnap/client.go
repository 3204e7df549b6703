package statsnap

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/yudhapane/fpl-oracle/internal/platform/logging"
	"github.com/yudhapane/fpl-oracle/internal/usecase"
)

const maxResponseBytes = 4 << 20

// ErrDisabled is returned once the provider has served a malformed payload;
// the client stays off for the rest of the process lifetime.
var ErrDisabled = crerr.New("statsnap provider disabled")

type ClientConfig struct {
	HTTPClient *http.Client
	BaseURL    string
	Timeout    time.Duration
	Logger     *logging.Logger
}

// Client fetches modeled clean-sheet probabilities from the stats snapshot
// service. It is an optional enrichment source: callers treat every error as
// "no data" and fall back to the heuristic model.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *logging.Logger
	disabled   atomic.Bool
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
		httpClient.Timeout = 10 * time.Second
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		logger:     logger,
	}
}

type cleanSheetEnvelope struct {
	Fixtures []cleanSheetItem `json:"fixtures"`
}

type cleanSheetItem struct {
	FixtureID int64   `json:"fixture_id"`
	TeamID    int64   `json:"team_id"`
	Pct       float64 `json:"clean_sheet_pct"`
}

// FetchCleanSheetProbabilities returns every modeled probability for a
// gameweek. A malformed response disables the client permanently so a broken
// deploy upstream cannot keep poisoning predictions.
func (c *Client) FetchCleanSheetProbabilities(ctx context.Context, gameweek int) ([]usecase.CleanSheetProbability, error) {
	if c.disabled.Load() {
		return nil, ErrDisabled
	}
	if gameweek <= 0 {
		return nil, fmt.Errorf("%w: gameweek must be greater than zero", usecase.ErrInvalidInput)
	}

	fullURL := fmt.Sprintf("%s/v1/clean-sheets?gameweek=%d", c.baseURL, gameweek)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", usecase.ErrDependencyUnavailable, err)
	}
	raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	_ = resp.Body.Close()
	if readErr != nil {
		return nil, fmt.Errorf("%w: read response body: %v", usecase.ErrDependencyUnavailable, readErr)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: statsnap status=%d", usecase.ErrDependencyUnavailable, resp.StatusCode)
	}

	var envelope cleanSheetEnvelope
	if err := sonic.Unmarshal(raw, &envelope); err != nil {
		c.disabled.Store(true)
		c.logger.WarnContext(ctx, "statsnap payload malformed, disabling provider", "gameweek", gameweek, "error", err)
		return nil, fmt.Errorf("%w: decode payload: %v", ErrDisabled, err)
	}

	out := make([]usecase.CleanSheetProbability, 0, len(envelope.Fixtures))
	for _, item := range envelope.Fixtures {
		if item.FixtureID <= 0 || item.TeamID <= 0 {
			continue
		}
		if item.Pct < 0 || item.Pct > 100 {
			continue
		}
		out = append(out, usecase.CleanSheetProbability{
			FixtureID: item.FixtureID,
			TeamID:    item.TeamID,
			Pct:       item.Pct,
		})
	}
	return out, nil
}

// Disabled reports whether a malformed payload has switched the client off.
func (c *Client) Disabled() bool {
	return c.disabled.Load()
}
