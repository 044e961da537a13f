package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/riskibarqy/contest-radar/external/codechef"
	"github.com/riskibarqy/contest-radar/external/codeforces"
	"github.com/riskibarqy/contest-radar/external/leetcode"
	"github.com/riskibarqy/contest-radar/internal/config"
	"github.com/riskibarqy/contest-radar/internal/domain/contest"
	"github.com/riskibarqy/contest-radar/internal/infrastructure/repository/memory"
	basecache "github.com/riskibarqy/contest-radar/internal/platform/cache"
	"github.com/riskibarqy/contest-radar/internal/platform/logging"
	"github.com/riskibarqy/contest-radar/internal/platform/resilience"
	"github.com/riskibarqy/contest-radar/internal/usecase"
)

// Worker owns the refresh pipeline: stores, platform clients, services and the scheduler.
type Worker struct {
	cfg       config.Config
	logger    *logging.Logger
	stores    stores
	renderer  *codechef.ChromeRenderer
	scheduler *usecase.RefreshScheduler

	Contests  *usecase.ContestRefreshService
	UserStats *usecase.UserStatsService
}

func NewWorker(ctx context.Context, cfg config.Config, metrics usecase.RefreshMetrics, logger *logging.Logger) (*Worker, error) {
	if logger == nil {
		logger = logging.Default()
	}

	st, err := buildStores(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	if cfg.SeedMockUsers {
		if _, err := seedUsersIfEmpty(ctx, st.users, st.seeder, memory.SeedUsers(), logger); err != nil {
			_ = st.close()
			return nil, err
		}
	}

	breaker := resilience.CircuitBreakerConfig{
		Enabled:          cfg.SourceCircuitEnabled,
		FailureThreshold: cfg.SourceCircuitFailureCount,
		OpenTimeout:      cfg.SourceCircuitOpenTimeout,
		HalfOpenMaxReq:   cfg.SourceCircuitHalfOpenMaxReq,
	}

	cf := codeforces.NewClient(codeforces.ClientConfig{
		BaseURL:        cfg.CodeforcesBaseURL,
		Timeout:        cfg.CodeforcesTimeout,
		MaxRetries:     cfg.CodeforcesMaxRetries,
		Logger:         logger,
		CircuitBreaker: breaker,
	})
	lc := leetcode.NewClient(leetcode.ClientConfig{
		BaseURL:        cfg.LeetCodeBaseURL,
		Timeout:        cfg.LeetCodeTimeout,
		MaxRetries:     cfg.LeetCodeMaxRetries,
		Logger:         logger,
		CircuitBreaker: breaker,
	})
	renderer := codechef.NewChromeRenderer(codechef.ChromeConfig{
		ExecPath: cfg.CodeChefChromePath,
		Timeout:  cfg.CodeChefRenderTimeout,
		Logger:   logger,
	})
	cc, err := codechef.NewClient(codechef.ClientConfig{
		Renderer:       renderer,
		BaseURL:        cfg.CodeChefBaseURL,
		Logger:         logger,
		CircuitBreaker: breaker,
	})
	if err != nil {
		_ = st.close()
		return nil, err
	}

	contests := usecase.NewContestRefreshService(
		[]usecase.ContestSource{cf, lc, cc},
		usecase.NewContestSyncService(st.contests, logger),
		st.runs,
		usecase.ContestRefreshConfig{SourceTimeout: cfg.SourceFetchTimeout},
		metrics,
		logger,
	)
	userStats := usecase.NewUserStatsService(
		st.users,
		[]usecase.UserStatsProvider{cf, lc, cc},
		st.runs,
		usecase.UserStatsConfig{
			MaxWorkers:  cfg.UserRefreshMaxWorkers,
			CallTimeout: cfg.UserStatsCallTimeout,
			SlotWait:    cfg.UserStatsSlotWait,
			SourceConcurrency: map[contest.Platform]int{
				contest.PlatformCodeforces: cfg.SourceConcurrency.Codeforces,
				contest.PlatformLeetCode:   cfg.SourceConcurrency.LeetCode,
				contest.PlatformCodeChef:   cfg.SourceConcurrency.CodeChef,
			},
		},
		metrics,
		logger,
	)

	scheduler, err := usecase.NewRefreshScheduler([]usecase.ScheduledJob{
		usecase.ContestRefreshJob(contests, usecase.ScheduleSpec(cfg.ContestRefreshCron, cfg.ContestRefreshInterval)),
		usecase.UserStatsRefreshJob(userStats, usecase.ScheduleSpec(cfg.UserStatsRefreshCron, cfg.UserStatsRefreshInterval)),
	}, metrics, logger)
	if err != nil {
		_ = st.close()
		return nil, err
	}

	return &Worker{
		cfg:       cfg,
		logger:    logger.Named("worker"),
		stores:    st,
		renderer:  renderer,
		scheduler: scheduler,
		Contests:  contests,
		UserStats: userStats,
	}, nil
}

// Start runs both jobs once in the background and then on their schedules.
func (w *Worker) Start(ctx context.Context) error {
	if err := w.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	w.logger.Info("worker started",
		"contest_schedule", usecase.ScheduleSpec(w.cfg.ContestRefreshCron, w.cfg.ContestRefreshInterval),
		"user_stats_schedule", usecase.ScheduleSpec(w.cfg.UserStatsRefreshCron, w.cfg.UserStatsRefreshInterval),
	)
	return nil
}

// Stop waits for in-flight runs up to ctx's deadline, then closes the browser and the store.
func (w *Worker) Stop(ctx context.Context) error {
	var errs []error
	if err := w.scheduler.Stop(ctx); err != nil {
		errs = append(errs, fmt.Errorf("stop scheduler: %w", err))
	}
	w.renderer.Close()
	if err := w.stores.close(); err != nil {
		errs = append(errs, fmt.Errorf("close store: %w", err))
	}
	w.logger.Info("worker stopped")
	return errors.Join(errs...)
}

// Healthy reports whether the backing store answers.
func (w *Worker) Healthy(ctx context.Context) error {
	return w.stores.ping(ctx)
}

// Cache returns the repository read cache, or nil when caching is disabled.
func (w *Worker) Cache() *basecache.Store {
	return w.stores.cache
}

// RunNow triggers a job outside its schedule. It returns false when the job is
// unknown or already running.
func (w *Worker) RunNow(job string) bool {
	return w.scheduler.RunNow(job)
}
