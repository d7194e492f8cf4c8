package fantasyfeed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/mapl11/fantasy-cricket/internal/domain/scoring"
	"github.com/mapl11/fantasy-cricket/internal/platform/logging"
	"github.com/mapl11/fantasy-cricket/internal/platform/resilience"
	"github.com/mapl11/fantasy-cricket/internal/usecase"
)

// Client reads per-user match scores from the fantasy feed service. Implements
// scoring.Source over its REST API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	logger     *logging.Logger
	breaker    *resilience.CircuitBreaker
	flight     resilience.SingleFlight
}

func NewClient(httpClient *http.Client, baseURL, apiKey string, logger *logging.Logger) *Client {
	if logger == nil {
		logger = logging.NewNop()
	}

	if httpClient == nil {
		httpClient = &http.Client{}
	}

	breakerCfg := resilience.DefaultCircuitBreakerConfig()

	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimSuffix(strings.TrimSpace(baseURL), "/"),
		apiKey:     strings.TrimSpace(apiKey),
		logger:     logger,
		breaker:    resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
	}
}

func (c *Client) FantasyEntry(ctx context.Context, userID, matchID string) (scoring.FantasyEntry, bool, error) {
	endpoint := fmt.Sprintf("%s/v1/matches/%s/users/%s/fantasy-entry",
		c.baseURL, url.PathEscape(matchID), url.PathEscape(userID))

	var decoded fantasyEntryResponse
	found, err := c.getJSON(ctx, endpoint, &decoded)
	if err != nil || !found {
		return scoring.FantasyEntry{}, false, err
	}

	return scoring.FantasyEntry{
		FantasyTeamID: decoded.FantasyTeamID,
		Points:        decoded.Points,
	}, true, nil
}

func (c *Client) PredictionPoints(ctx context.Context, userID, matchID string) (int, bool, error) {
	endpoint := fmt.Sprintf("%s/v1/matches/%s/users/%s/prediction-points",
		c.baseURL, url.PathEscape(matchID), url.PathEscape(userID))

	var decoded predictionPointsResponse
	found, err := c.getJSON(ctx, endpoint, &decoded)
	if err != nil || !found {
		return 0, false, err
	}

	return decoded.Points, true, nil
}

func (c *Client) UsersWithFantasyEntry(ctx context.Context, matchID string) ([]string, error) {
	endpoint := fmt.Sprintf("%s/v1/matches/%s/fantasy-entries", c.baseURL, url.PathEscape(matchID))

	var decoded fantasyEntrantsResponse
	found, err := c.getJSON(ctx, endpoint, &decoded)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}

	return decoded.UserIDs, nil
}

// getJSON reports found=false on a 404 without error so callers can treat a
// missing entry as a zero score. Calls go through the circuit breaker;
// concurrent fetches of the same endpoint share one round trip.
func (c *Client) getJSON(ctx context.Context, endpoint string, out any) (bool, error) {
	if err := c.breaker.Allow(); err != nil {
		c.logger.WarnContext(ctx, "fantasy feed circuit breaker rejected request", "state", c.breaker.State())
		return false, fmt.Errorf("%w: fantasy feed is temporarily unavailable", usecase.ErrDependencyUnavailable)
	}

	shared, err, _ := c.flight.Do(endpoint, func() (any, error) {
		resp, reqErr := c.fetch(ctx, endpoint)
		if reqErr != nil || resp.status >= http.StatusInternalServerError {
			c.breaker.RecordFailure()
		} else {
			c.breaker.RecordSuccess()
		}
		return resp, reqErr
	})
	if err != nil {
		return false, err
	}

	resp, ok := shared.(feedResponse)
	if !ok {
		return false, crerr.Newf("unexpected response payload type %T", shared)
	}

	if resp.status == http.StatusNotFound {
		return false, nil
	}
	if resp.status != http.StatusOK {
		c.logger.WarnContext(ctx, "fantasy feed non-200",
			"status_code", resp.status,
			"endpoint", endpoint,
		)
		return false, fmt.Errorf("%w: fantasy feed returned status %d", usecase.ErrDependencyUnavailable, resp.status)
	}

	if err := sonic.Unmarshal(resp.body, out); err != nil {
		return false, crerr.Wrap(err, "unmarshal fantasy feed response")
	}

	return true, nil
}

type feedResponse struct {
	status int
	body   []byte
}

func (c *Client) fetch(ctx context.Context, endpoint string) (feedResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return feedResponse{}, crerr.Wrap(err, "create fantasy feed request")
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return feedResponse{}, fmt.Errorf("%w: request fantasy feed: %v", usecase.ErrDependencyUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return feedResponse{}, crerr.Wrap(err, "read fantasy feed response")
	}

	return feedResponse{status: resp.StatusCode, body: body}, nil
}

type fantasyEntryResponse struct {
	FantasyTeamID string `json:"fantasy_team_id"`
	Points        int    `json:"points"`
}

type predictionPointsResponse struct {
	Points int `json:"points"`
}

type fantasyEntrantsResponse struct {
	UserIDs []string `json:"user_ids"`
}

var _ scoring.Source = (*Client)(nil)
