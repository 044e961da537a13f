package codechef

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/riskibarqy/contest-radar/internal/platform/logging"
)

// PageRenderer returns the HTML of a page after client-side rendering has produced waitSelector.
type PageRenderer interface {
	Render(ctx context.Context, url, waitSelector string) (string, error)
}

type ChromeConfig struct {
	ExecPath  string
	UserAgent string
	Timeout   time.Duration
	Logger    *logging.Logger
}

// ChromeRenderer drives one headless Chrome process and opens a tab per render.
type ChromeRenderer struct {
	cfg    ChromeConfig
	logger *logging.Logger

	mu            sync.Mutex
	browserCtx    context.Context
	cancelAlloc   context.CancelFunc
	cancelBrowser context.CancelFunc
}

func NewChromeRenderer(cfg ChromeConfig) *ChromeRenderer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 45 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &ChromeRenderer{cfg: cfg, logger: logger.Named("chrome")}
}

func (r *ChromeRenderer) Render(ctx context.Context, url, waitSelector string) (string, error) {
	browserCtx, err := r.browser()
	if err != nil {
		return "", err
	}

	tabCtx, cancelTab := chromedp.NewContext(browserCtx)
	defer cancelTab()
	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, r.cfg.Timeout)
	defer cancelTimeout()
	stop := context.AfterFunc(ctx, cancelTab)
	defer stop()

	var html string
	err = chromedp.Run(tabCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady(waitSelector, chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		if tabCtx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("render %s waiting for %q: %w", url, waitSelector, context.DeadlineExceeded)
		}
		return "", fmt.Errorf("render %s: %w", url, err)
	}
	return html, nil
}

// Close shuts the browser down. A later Render starts a new one.
func (r *ChromeRenderer) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancelBrowser != nil {
		r.cancelBrowser()
		r.cancelAlloc()
	}
	r.browserCtx = nil
	r.cancelBrowser = nil
	r.cancelAlloc = nil
}

func (r *ChromeRenderer) browser() (context.Context, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.browserCtx != nil && r.browserCtx.Err() == nil {
		return r.browserCtx, nil
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.Flag("disable-setuid-sandbox", true),
	)
	if r.cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(r.cfg.ExecPath))
	}
	if r.cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(r.cfg.UserAgent))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, fmt.Errorf("start headless chrome: %w", err)
	}

	r.logger.Info("headless chrome started", "exec_path", r.cfg.ExecPath)
	r.browserCtx = browserCtx
	r.cancelAlloc = cancelAlloc
	r.cancelBrowser = cancelBrowser
	return browserCtx, nil
}
