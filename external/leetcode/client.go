package leetcode

import (
	"context"
	stderrors "errors"
	"fmt"
	"math"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/contest-radar/internal/domain/contest"
	"github.com/riskibarqy/contest-radar/internal/platform/logging"
	"github.com/riskibarqy/contest-radar/internal/platform/resilience"
	"github.com/riskibarqy/contest-radar/internal/usecase"
	"github.com/valyala/bytebufferpool"
	"github.com/valyala/fasthttp"
)

const (
	defaultBaseURL    = "https://leetcode.com"
	contestPageBase   = "https://leetcode.com/contest/"
	defaultTimeout    = 20 * time.Second
	defaultRetryDelay = time.Second

	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

var errLeetCodeTransient = crerr.New("leetcode transient failure")

type ClientConfig struct {
	HTTPClient     *fasthttp.Client
	BaseURL        string
	Timeout        time.Duration
	MaxRetries     int
	RetryBackoff   time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client talks to the LeetCode GraphQL endpoint the web app uses.
type Client struct {
	httpClient   *fasthttp.Client
	baseURL      string
	timeout      time.Duration
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

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &fasthttp.Client{
			Name:                "contest-radar",
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxIdleConnDuration: time.Minute,
		}
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	retryBackoff := cfg.RetryBackoff
	if retryBackoff <= 0 {
		retryBackoff = defaultRetryDelay
	}

	logger = logger.Named("leetcode")
	return &Client{
		httpClient:   httpClient,
		baseURL:      baseURL,
		timeout:      timeout,
		maxRetries:   max(cfg.MaxRetries, 0),
		retryBackoff: retryBackoff,
		logger:       logger,
		breaker:      resilience.NewCircuitBreakerFromConfig(cfg.CircuitBreaker).LogTransitions(logger),
	}
}

func (c *Client) Platform() contest.Platform {
	return contest.PlatformLeetCode
}

func (c *Client) FetchContests(ctx context.Context) ([]contest.Contest, error) {
	var data upcomingContestsData
	err := c.doGraphQL(ctx, graphQLRequest{
		OperationName: "upcomingContests",
		Query:         upcomingContestsQuery,
	}, contestPageBase, &data)
	if err != nil {
		return nil, fmt.Errorf("fetch upcoming contests: %w", err)
	}

	out := make([]contest.Contest, 0, len(data.UpcomingContests))
	for _, item := range data.UpcomingContests {
		name := strings.TrimSpace(item.Title)
		if name == "" || item.StartTime <= 0 {
			continue
		}
		duration := max(item.Duration, 0)
		start := time.Unix(item.StartTime, 0).UTC()
		out = append(out, contest.Contest{
			Platform:        contest.PlatformLeetCode,
			Name:            name,
			URL:             contestPageBase + strings.TrimSpace(item.TitleSlug),
			StartTime:       start,
			EndTime:         start.Add(time.Duration(duration) * time.Second),
			DurationSeconds: duration,
		})
	}
	return out, nil
}

// FetchSolvedCount returns the accepted count for difficulty "All".
func (c *Client) FetchSolvedCount(ctx context.Context, handle string) (int, error) {
	p, err := c.fetchProfile(ctx, handle)
	if err != nil {
		return 0, err
	}
	return p.Solved, nil
}

// FetchRating returns the contest rating rounded to the nearest integer.
func (c *Client) FetchRating(ctx context.Context, handle string) (int, error) {
	p, err := c.fetchProfile(ctx, handle)
	if err != nil {
		return 0, err
	}
	return p.Rating, nil
}

func (c *Client) fetchProfile(ctx context.Context, handle string) (profile, error) {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return profile{}, fmt.Errorf("%w: leetcode handle is required", usecase.ErrInvalidInput)
	}

	out, err, _ := c.flight.DoContext(ctx, "profile:"+handle, func() (any, error) {
		var data userProfileData
		err := c.doGraphQL(ctx, graphQLRequest{
			OperationName: "getUserProfile",
			Query:         userProfileQuery,
			Variables:     map[string]any{"username": handle},
		}, defaultBaseURL+"/"+handle+"/", &data)
		if err != nil {
			return profile{}, err
		}
		return profileFromData(data), nil
	})
	if err != nil {
		return profile{}, fmt.Errorf("fetch profile handle=%s: %w", handle, err)
	}

	p, ok := out.(profile)
	if !ok {
		return profile{}, usecase.SourceUnavailable(fmt.Errorf("unexpected profile payload type %T", out))
	}
	return p, nil
}

// profileFromData maps an unknown user (matchedUser null) to zero counts.
func profileFromData(data userProfileData) profile {
	var p profile
	if data.MatchedUser == nil {
		return p
	}
	for _, row := range data.MatchedUser.SubmitStats.AcSubmissionNum {
		if strings.EqualFold(row.Difficulty, "All") {
			p.Solved = max(row.Count, 0)
			break
		}
	}
	if data.UserContestRanking != nil {
		p.Rating = max(int(math.Round(data.UserContestRanking.Rating)), 0)
	}
	return p
}

func (c *Client) doGraphQL(ctx context.Context, request graphQLRequest, referer string, target any) error {
	body := bytebufferpool.Get()
	defer bytebufferpool.Put(body)
	if err := sonic.ConfigDefault.NewEncoder(body).Encode(request); err != nil {
		return fmt.Errorf("%w: encode graphql request: %v", usecase.ErrInvalidInput, err)
	}

	var raw []byte
	err := c.breaker.Execute(func() error {
		var reqErr error
		raw, reqErr = c.executeRequest(ctx, body.B, referer)
		return reqErr
	}, isLeetCodeCircuitFailure)
	if err != nil {
		return usecase.SourceUnavailable(err)
	}

	var envelope graphQLEnvelope
	if err := sonic.Unmarshal(raw, &envelope); err != nil {
		return usecase.SourceUnavailable(fmt.Errorf("decode leetcode envelope: %w", err))
	}
	if len(envelope.Errors) > 0 {
		return usecase.SourceUnavailable(fmt.Errorf("leetcode graphql error: %s", envelope.Errors[0].Message))
	}
	if len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		return usecase.SourceUnavailable(fmt.Errorf("leetcode response has no data"))
	}
	if err := sonic.Unmarshal(envelope.Data, target); err != nil {
		return usecase.SourceUnavailable(fmt.Errorf("decode leetcode data: %w", err))
	}
	return nil
}

func (c *Client) executeRequest(ctx context.Context, body []byte, referer string) ([]byte, error) {
	endpoint := c.baseURL + "/graphql"

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		raw, status, err := c.do(ctx, endpoint, body, referer)
		switch {
		case err != nil:
			lastErr = fmt.Errorf("%w: send request: %v", errLeetCodeTransient, err)
		case status >= 200 && status < 300:
			return raw, nil
		case isRetryableStatus(status):
			lastErr = fmt.Errorf("%w: leetcode status=%d body=%s", errLeetCodeTransient, status, abbreviateBody(raw))
		default:
			return nil, fmt.Errorf("leetcode status=%d body=%s", status, abbreviateBody(raw))
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
		lastErr = fmt.Errorf("leetcode request failed")
	}
	c.logger.WarnContext(ctx, "leetcode request failed", "url", endpoint, "attempts", c.maxRetries+1, "error", lastErr)
	return nil, lastErr
}

// do sends one POST. A context deadline bounds the call through DoDeadline.
func (c *Client) do(ctx context.Context, endpoint string, body []byte, referer string) ([]byte, int, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	req.SetRequestURI(endpoint)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Referer", referer)
	req.SetBody(body)

	var err error
	if deadline, ok := ctx.Deadline(); ok {
		err = c.httpClient.DoDeadline(req, resp, deadline)
	} else {
		err = c.httpClient.DoTimeout(req, resp, c.timeout)
	}
	if err != nil {
		if stderrors.Is(err, fasthttp.ErrTimeout) && ctx.Err() != nil {
			return nil, 0, ctx.Err()
		}
		return nil, 0, err
	}

	raw := append([]byte(nil), resp.Body()...)
	return raw, resp.StatusCode(), nil
}

func isLeetCodeCircuitFailure(err error) bool {
	if err == nil {
		return false
	}
	return stderrors.Is(err, errLeetCodeTransient) || stderrors.Is(err, context.DeadlineExceeded)
}

func isRetryableStatus(code int) bool {
	return code == fasthttp.StatusRequestTimeout || code == fasthttp.StatusTooManyRequests || code >= fasthttp.StatusInternalServerError
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}
