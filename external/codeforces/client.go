package codeforces

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/contest-radar/internal/domain/contest"
	"github.com/riskibarqy/contest-radar/internal/platform/logging"
	"github.com/riskibarqy/contest-radar/internal/platform/resilience"
	"github.com/riskibarqy/contest-radar/internal/usecase"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	defaultBaseURL    = "https://codeforces.com"
	contestPageBase   = "https://codeforces.com/contests/"
	maxResponseBytes  = 32 << 20
	defaultRetryDelay = time.Second
)

var errCodeforcesTransient = crerr.New("codeforces transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Timeout        time.Duration
	MaxRetries     int
	RetryBackoff   time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client reads contests and user statistics from the public Codeforces API.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	maxRetries   int
	retryBackoff time.Duration
	logger       *logging.Logger
	breaker      *resilience.CircuitBreaker
	flight       resilience.SingleFlight
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 20 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	retryBackoff := cfg.RetryBackoff
	if retryBackoff <= 0 {
		retryBackoff = defaultRetryDelay
	}

	logger = logger.Named("codeforces")
	return &Client{
		httpClient:   httpClient,
		baseURL:      baseURL,
		maxRetries:   max(cfg.MaxRetries, 0),
		retryBackoff: retryBackoff,
		logger:       logger,
		breaker:      resilience.NewCircuitBreakerFromConfig(cfg.CircuitBreaker).LogTransitions(logger),
	}
}

func (c *Client) Platform() contest.Platform {
	return contest.PlatformCodeforces
}

// FetchContests returns contests in phase BEFORE. Rows without a start time are skipped.
func (c *Client) FetchContests(ctx context.Context) ([]contest.Contest, error) {
	var items []contestItem
	if err := c.doJSON(ctx, "/api/contest.list", nil, &items); err != nil {
		return nil, fmt.Errorf("fetch contest list: %w", err)
	}

	out := make([]contest.Contest, 0, 16)
	for _, item := range items {
		if item.Phase != "BEFORE" || item.StartTimeSeconds == nil || strings.TrimSpace(item.Name) == "" {
			continue
		}
		duration := max(item.DurationSeconds, 0)
		start := time.Unix(*item.StartTimeSeconds, 0).UTC()
		out = append(out, contest.Contest{
			Platform:        contest.PlatformCodeforces,
			Name:            strings.TrimSpace(item.Name),
			URL:             contestPageBase + strconv.FormatInt(item.ID, 10),
			StartTime:       start,
			EndTime:         start.Add(time.Duration(duration) * time.Second),
			DurationSeconds: duration,
		})
	}
	return out, nil
}

// FetchSolvedCount counts distinct problems with at least one accepted submission.
func (c *Client) FetchSolvedCount(ctx context.Context, handle string) (int, error) {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return 0, fmt.Errorf("%w: codeforces handle is required", usecase.ErrInvalidInput)
	}

	var submissions []submissionItem
	if err := c.doJSON(ctx, "/api/user.status", map[string]string{"handle": handle}, &submissions); err != nil {
		return 0, fmt.Errorf("fetch submissions handle=%s: %w", handle, err)
	}

	solved := make(map[string]struct{}, len(submissions)/2)
	for _, sub := range submissions {
		if sub.Verdict != "OK" {
			continue
		}
		solved[sub.Problem.key()] = struct{}{}
	}
	return len(solved), nil
}

// FetchRating returns the current rating, 0 for unrated accounts.
func (c *Client) FetchRating(ctx context.Context, handle string) (int, error) {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return 0, fmt.Errorf("%w: codeforces handle is required", usecase.ErrInvalidInput)
	}

	var users []userItem
	if err := c.doJSON(ctx, "/api/user.info", map[string]string{"handles": handle}, &users); err != nil {
		return 0, fmt.Errorf("fetch user info handle=%s: %w", handle, err)
	}
	if len(users) == 0 {
		return 0, usecase.SourceUnavailable(fmt.Errorf("user info for %s returned no rows", handle))
	}
	return users[0].Rating, nil
}

func (c *Client) doJSON(ctx context.Context, path string, query map[string]string, target any) error {
	values := url.Values{}
	for key, value := range query {
		values.Set(key, value)
	}
	fullURL := c.baseURL + path
	if encoded := values.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	out, err, _ := c.flight.Do(fullURL, func() (any, error) {
		var raw []byte
		err := c.breaker.Execute(func() error {
			var reqErr error
			raw, reqErr = c.executeRequest(ctx, fullURL)
			return reqErr
		}, isCodeforcesCircuitFailure)
		return raw, err
	})
	if err != nil {
		return usecase.SourceUnavailable(err)
	}

	raw, ok := out.([]byte)
	if !ok {
		return usecase.SourceUnavailable(fmt.Errorf("unexpected response payload type %T", out))
	}

	var envelope apiEnvelope
	if err := sonic.Unmarshal(raw, &envelope); err != nil {
		return usecase.SourceUnavailable(fmt.Errorf("decode codeforces envelope: %w", err))
	}
	if envelope.Status != "OK" {
		return usecase.SourceUnavailable(fmt.Errorf("codeforces status=%q comment=%q", envelope.Status, envelope.Comment))
	}
	if err := sonic.Unmarshal(envelope.Result, target); err != nil {
		return usecase.SourceUnavailable(fmt.Errorf("decode codeforces result: %w", err))
	}
	return nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %v", errCodeforcesTransient, err)
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = fmt.Errorf("%w: read response body: %v", errCodeforcesTransient, readErr)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case resp.StatusCode == http.StatusBadRequest:
				// Codeforces answers unknown handles with 400 and a FAILED envelope.
				return raw, nil
			case isRetryableStatus(resp.StatusCode):
				lastErr = fmt.Errorf("%w: codeforces status=%d body=%s", errCodeforcesTransient, resp.StatusCode, abbreviateBody(raw))
			default:
				return nil, fmt.Errorf("codeforces status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
			}
		}

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if attempt == c.maxRetries {
			break
		}
		timer := time.NewTimer(time.Duration(attempt+1) * c.retryBackoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("codeforces request failed")
	}
	c.logger.WarnContext(ctx, "codeforces request failed", "url", fullURL, "attempts", c.maxRetries+1, "error", lastErr)
	return nil, lastErr
}

func isCodeforcesCircuitFailure(err error) bool {
	if err == nil {
		return false
	}
	return stderrors.Is(err, errCodeforcesTransient) || stderrors.Is(err, context.DeadlineExceeded)
}

func isRetryableStatus(code int) bool {
	return code == http.StatusRequestTimeout || code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}
