package codechef

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/riskibarqy/contest-radar/internal/domain/contest"
	"github.com/riskibarqy/contest-radar/internal/platform/logging"
	"github.com/riskibarqy/contest-radar/internal/platform/resilience"
	"github.com/riskibarqy/contest-radar/internal/usecase"
)

const defaultBaseURL = "https://www.codechef.com"

type ClientConfig struct {
	Renderer       PageRenderer
	BaseURL        string
	Selectors      Selectors
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
	Now            func() time.Time
}

type profile struct {
	Solved int
	Rating int
}

// Client scrapes CodeChef pages rendered by a headless browser.
type Client struct {
	renderer  PageRenderer
	baseURL   *url.URL
	selectors Selectors
	logger    *logging.Logger
	breaker   *resilience.CircuitBreaker
	flight    resilience.SingleFlight
	now       func() time.Time
}

func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.Renderer == nil {
		return nil, fmt.Errorf("%w: codechef renderer is required", usecase.ErrInvalidInput)
	}

	raw := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if raw == "" {
		raw = defaultBaseURL
	}
	base, err := url.Parse(raw)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("%w: invalid codechef base url %q", usecase.ErrInvalidInput, cfg.BaseURL)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	logger = logger.Named("codechef")
	return &Client{
		renderer:  cfg.Renderer,
		baseURL:   base,
		selectors: cfg.Selectors.withDefaults(),
		logger:    logger,
		breaker:   resilience.NewCircuitBreakerFromConfig(cfg.CircuitBreaker).LogTransitions(logger),
		now:       now,
	}, nil
}

func (c *Client) Platform() contest.Platform {
	return contest.PlatformCodeChef
}

// FetchContests reads the upcoming table. Start times are derived from the countdown and
// every contest is assumed to last two hours.
func (c *Client) FetchContests(ctx context.Context) ([]contest.Contest, error) {
	html, err := c.render(ctx, "/contests", c.selectors.ContestTable)
	if err != nil {
		return nil, fmt.Errorf("render contests page: %w", err)
	}

	items, err := parseContests(html, c.baseURL, c.now().UTC(), c.selectors)
	if err != nil {
		return nil, usecase.SourceUnavailable(err)
	}
	c.logger.DebugContext(ctx, "codechef contests scraped", "count", len(items))
	return items, nil
}

func (c *Client) FetchSolvedCount(ctx context.Context, handle string) (int, error) {
	p, err := c.fetchProfile(ctx, handle)
	if err != nil {
		return 0, err
	}
	return p.Solved, nil
}

// FetchRating returns 0 when the profile shows no rating.
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
		return profile{}, fmt.Errorf("%w: codechef handle is required", usecase.ErrInvalidInput)
	}

	out, err, _ := c.flight.DoContext(ctx, "profile:"+handle, func() (any, error) {
		html, err := c.render(ctx, "/users/"+url.PathEscape(handle), c.selectors.ProfileReady)
		if err != nil {
			return profile{}, err
		}
		p, err := parseProfile(html, c.selectors)
		if err != nil {
			return profile{}, usecase.SourceUnavailable(err)
		}
		return p, nil
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

func (c *Client) render(ctx context.Context, path, waitSelector string) (string, error) {
	pageURL := c.baseURL.String() + path

	var html string
	call := func() error {
		var err error
		html, err = c.renderer.Render(ctx, pageURL, waitSelector)
		return err
	}

	if err := c.breaker.Execute(call, isRenderCircuitFailure(ctx)); err != nil {
		c.logger.WarnContext(ctx, "codechef render failed", "url", pageURL, "error", err)
		return "", usecase.SourceUnavailable(err)
	}
	return html, nil
}

// isRenderCircuitFailure ignores failures caused by the caller giving up.
func isRenderCircuitFailure(ctx context.Context) func(error) bool {
	return func(err error) bool {
		if err == nil {
			return false
		}
		if ctx.Err() != nil && stderrors.Is(err, ctx.Err()) {
			return false
		}
		return true
	}
}
