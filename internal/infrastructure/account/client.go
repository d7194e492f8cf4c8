package account

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/mapl11/fantasy-cricket/internal/domain/user"
	"github.com/mapl11/fantasy-cricket/internal/platform/logging"
	"github.com/mapl11/fantasy-cricket/internal/platform/resilience"
	"github.com/mapl11/fantasy-cricket/internal/usecase"
)

// Client verifies access tokens against the account service's introspection
// endpoint.
type Client struct {
	httpClient    *http.Client
	introspectURL string
	apiKey        string
	logger        *logging.Logger
	breaker       *resilience.CircuitBreaker
	flight        resilience.SingleFlight
}

func NewClient(httpClient *http.Client, baseURL, introspectPath, apiKey string, logger *logging.Logger) *Client {
	if logger == nil {
		logger = logging.NewNop()
	}

	if httpClient == nil {
		httpClient = &http.Client{}
	}

	breakerCfg := resilience.DefaultCircuitBreakerConfig()

	return &Client{
		httpClient:    httpClient,
		introspectURL: buildURL(baseURL, introspectPath),
		apiKey:        strings.TrimSpace(apiKey),
		logger:        logger,
		breaker:       resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
	}
}

func (c *Client) VerifyAccessToken(ctx context.Context, token string) (user.Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return user.Principal{}, fmt.Errorf("%w: token is required", usecase.ErrUnauthorized)
	}

	if err := c.breaker.Allow(); err != nil {
		c.logger.WarnContext(ctx, "account circuit breaker rejected request", "state", c.breaker.State())
		return user.Principal{}, fmt.Errorf("%w: account service is temporarily unavailable", usecase.ErrDependencyUnavailable)
	}

	// Concurrent verifications of the same token share one round trip.
	shared, err, _ := c.flight.Do("introspect:"+token, func() (any, error) {
		resp, reqErr := c.introspect(ctx, token)
		if reqErr != nil || resp.status >= http.StatusInternalServerError {
			c.breaker.RecordFailure()
		} else {
			c.breaker.RecordSuccess()
		}
		return resp, reqErr
	})
	if err != nil {
		return user.Principal{}, err
	}

	resp, ok := shared.(introspectResult)
	if !ok {
		return user.Principal{}, crerr.Newf("unexpected response payload type %T", shared)
	}

	if resp.status == http.StatusUnauthorized || resp.status == http.StatusForbidden {
		return user.Principal{}, fmt.Errorf("%w: introspection denied", usecase.ErrUnauthorized)
	}
	if resp.status != http.StatusOK {
		c.logger.WarnContext(ctx, "account introspection non-200",
			"status_code", resp.status,
		)
		return user.Principal{}, crerr.Newf("account introspection failed with status %d", resp.status)
	}

	var decoded introspectResponse
	if err := sonic.Unmarshal(resp.body, &decoded); err != nil {
		return user.Principal{}, crerr.Wrap(err, "unmarshal introspect response")
	}

	if !decoded.Active {
		return user.Principal{}, fmt.Errorf("%w: inactive token", usecase.ErrUnauthorized)
	}
	if strings.TrimSpace(decoded.UserID) == "" {
		return user.Principal{}, crerr.New("invalid introspect response: user_id is empty")
	}

	return user.Principal{
		UserID:      decoded.UserID,
		DisplayName: decoded.DisplayName,
	}, nil
}

type introspectResult struct {
	status int
	body   []byte
}

func (c *Client) introspect(ctx context.Context, token string) (introspectResult, error) {
	encoded, err := sonic.Marshal(introspectRequest{Token: token})
	if err != nil {
		return introspectResult{}, crerr.Wrap(err, "marshal introspect request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.introspectURL, bytes.NewReader(encoded))
	if err != nil {
		return introspectResult{}, crerr.Wrap(err, "create introspect request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return introspectResult{}, fmt.Errorf("%w: request introspection: %v", usecase.ErrDependencyUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return introspectResult{}, crerr.Wrap(err, "read introspect response")
	}

	return introspectResult{status: resp.StatusCode, body: body}, nil
}

type introspectRequest struct {
	Token string `json:"token"`
}

type introspectResponse struct {
	Active      bool   `json:"active"`
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
}

func buildURL(baseURL, path string) string {
	baseURL = strings.TrimSuffix(strings.TrimSpace(baseURL), "/")
	path = strings.TrimSpace(path)
	if path == "" {
		return baseURL
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	return baseURL + path
}
