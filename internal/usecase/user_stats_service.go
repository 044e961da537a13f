package usecase

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/contest-radar/internal/domain/contest"
	"github.com/riskibarqy/contest-radar/internal/domain/refreshrun"
	"github.com/riskibarqy/contest-radar/internal/domain/user"
	"github.com/riskibarqy/contest-radar/internal/platform/logging"
	"github.com/riskibarqy/contest-radar/internal/platform/resilience"
	"github.com/sourcegraph/conc"
)

type UserStatsConfig struct {
	MaxWorkers int
	// CallTimeout bounds one provider call and starts once the platform slot is held.
	CallTimeout time.Duration
	// SlotWait bounds how long a user waits for a platform slot.
	SlotWait time.Duration
	// SourceConcurrency caps how many users are fetched per platform at once.
	SourceConcurrency map[contest.Platform]int
}

func DefaultSourceConcurrency() map[contest.Platform]int {
	return map[contest.Platform]int{
		contest.PlatformCodeforces: 4,
		contest.PlatformLeetCode:   4,
		contest.PlatformCodeChef:   2,
	}
}

type UserOutcome struct {
	UserID       string
	Username     string
	SolvedCounts user.SolvedCounts
	Ratings      user.Ratings
	Degraded     []contest.Platform
	Err          error
}

type UserStatsRefreshResult struct {
	RunID    string
	Users    []UserOutcome
	Updated  int
	Failed   int
	Degraded int
}

// UserStatsService refreshes solved counts and ratings for every user. A
// platform that cannot be read contributes 0 for that cycle.
type UserStatsService struct {
	users     user.Repository
	providers map[contest.Platform]UserStatsProvider
	limiters  map[contest.Platform]*resilience.Limiter
	runs      *runRecorder
	cfg       UserStatsConfig
	metrics   RefreshMetrics
	logger    *logging.Logger
	now       func() time.Time
}

func NewUserStatsService(
	users user.Repository,
	providers []UserStatsProvider,
	runRepo refreshrun.Repository,
	cfg UserStatsConfig,
	metrics RefreshMetrics,
	logger *logging.Logger,
) *UserStatsService {
	if logger == nil {
		logger = logging.Default()
	}
	if metrics == nil {
		metrics = NewNoopRefreshMetrics()
	}
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = 8
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = 30 * time.Second
	}
	if cfg.SlotWait <= 0 {
		cfg.SlotWait = 15 * time.Minute
	}
	if cfg.SourceConcurrency == nil {
		cfg.SourceConcurrency = DefaultSourceConcurrency()
	}

	byPlatform := make(map[contest.Platform]UserStatsProvider, len(providers))
	limiters := make(map[contest.Platform]*resilience.Limiter, len(providers))
	for _, provider := range providers {
		if provider == nil {
			continue
		}
		platform := provider.Platform()
		byPlatform[platform] = provider
		if size := cfg.SourceConcurrency[platform]; size > 0 {
			limiters[platform] = resilience.NewLimiter(size)
		}
	}

	logger = logger.Named("user_stats")
	return &UserStatsService{
		users:     users,
		providers: byPlatform,
		limiters:  limiters,
		runs:      newRunRecorder(runRepo, logger),
		cfg:       cfg,
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *UserStatsService) RefreshAll(ctx context.Context) (UserStatsRefreshResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.UserStatsService.RefreshAll")
	defer span.End()

	run := s.runs.begin(ctx, refreshrun.JobUserStats)
	result := UserStatsRefreshResult{RunID: run.RunID}

	users, err := s.users.List(ctx)
	if err != nil {
		err = fmt.Errorf("list users: %w", err)
		s.runs.finish(ctx, run, err)
		return result, err
	}

	outcomes := make([]UserOutcome, len(users))
	var failed, degraded atomic.Int32

	pool, err := ants.NewPool(min(s.cfg.MaxWorkers, max(len(users), 1)))
	if err != nil {
		err = fmt.Errorf("create worker pool: %w", err)
		s.runs.finish(ctx, run, err)
		return result, err
	}
	defer pool.Release()

	var workers sync.WaitGroup
	for i, item := range users {
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			outcome := s.RefreshOne(ctx, item)
			if outcome.Err != nil {
				failed.Add(1)
			}
			if len(outcome.Degraded) > 0 {
				degraded.Add(1)
			}
			outcomes[i] = outcome
		}); err != nil {
			workers.Done()
			workers.Wait()
			err = fmt.Errorf("submit user refresh to worker pool: %w", err)
			s.runs.finish(ctx, run, err)
			return result, err
		}
	}
	workers.Wait()

	result.Users = outcomes
	result.Failed = int(failed.Load())
	result.Degraded = int(degraded.Load())
	result.Updated = len(outcomes) - result.Failed

	run.Records = result.Updated
	run.Failures = result.Failed
	s.runs.finish(ctx, run, nil)

	s.logger.InfoContext(ctx, "user stats refresh finished",
		"run_id", result.RunID,
		"users", len(outcomes),
		"updated", result.Updated,
		"failed", result.Failed,
		"degraded", result.Degraded,
	)
	return result, nil
}

type platformStats struct {
	platform contest.Platform
	solved   Outcome
	rating   Outcome
}

// RefreshOne fetches and saves stats for a single user. Missing handles
// produce 0 without calling the platform.
func (s *UserStatsService) RefreshOne(ctx context.Context, item user.User) UserOutcome {
	ctx, span := startUsecaseSpan(ctx, "usecase.UserStatsService.RefreshOne")
	defer span.End()

	outcome := UserOutcome{UserID: item.ID, Username: item.Username}

	platforms := contest.Platforms()
	stats := make([]platformStats, len(platforms))
	var wg conc.WaitGroup
	for i, platform := range platforms {
		stats[i] = platformStats{platform: platform, solved: Ok(0), rating: Ok(0)}

		handle := item.Handles.Handle(platform)
		provider, ok := s.providers[platform]
		if handle == "" || !ok {
			continue
		}

		wg.Go(func() {
			stats[i] = s.fetchPlatform(ctx, platform, provider, handle)
		})
	}
	wg.Wait()

	var counts user.SolvedCounts
	var ratings user.Ratings
	for _, st := range stats {
		counts.Set(st.platform, st.solved.ValueOrZero())
		ratings.Set(st.platform, st.rating.ValueOrZero())

		for _, part := range []struct {
			stat string
			o    Outcome
		}{{"solved", st.solved}, {"rating", st.rating}} {
			if !part.o.IsDegraded() {
				continue
			}
			o := part.o
			s.logger.WarnContext(ctx, "platform stats degraded",
				"platform", st.platform,
				"user", item.Username,
				"stat", part.stat,
				"reason", o.Reason,
				"error", o.Err,
			)
			s.metrics.ObserveStatsDegraded(st.platform, o.Reason)
			if !slices.Contains(outcome.Degraded, st.platform) {
				outcome.Degraded = append(outcome.Degraded, st.platform)
			}
		}
	}
	counts.Recompute()
	outcome.SolvedCounts = counts
	outcome.Ratings = ratings

	if err := s.users.UpdateStats(ctx, item.ID, counts, ratings, s.now().UTC()); err != nil {
		outcome.Err = WriteFailure(fmt.Errorf("update stats user=%s: %w", item.ID, err))
		s.logger.ErrorContext(ctx, "save user stats failed", "user", item.Username, "user_id", item.ID, "error", outcome.Err)
	}
	return outcome
}

// fetchPlatform holds one platform slot for both stats of a user. Providers
// share a single upstream request between the two calls.
func (s *UserStatsService) fetchPlatform(ctx context.Context, platform contest.Platform, provider UserStatsProvider, handle string) platformStats {
	st := platformStats{platform: platform}

	release, err := s.acquireSlot(ctx, platform)
	if err != nil {
		st.solved = Degraded(degradedThrottled, err)
		st.rating = Degraded(degradedThrottled, err)
		return st
	}
	defer release()

	var wg conc.WaitGroup
	wg.Go(func() {
		st.solved = s.call(ctx, platform, func(callCtx context.Context) (int, error) {
			return provider.FetchSolvedCount(callCtx, handle)
		})
	})
	wg.Go(func() {
		st.rating = s.call(ctx, platform, func(callCtx context.Context) (int, error) {
			return provider.FetchRating(callCtx, handle)
		})
	})
	wg.Wait()
	return st
}

func (s *UserStatsService) acquireSlot(ctx context.Context, platform contest.Platform) (func(), error) {
	waitCtx, cancel := context.WithTimeout(ctx, s.cfg.SlotWait)
	defer cancel()

	release, err := s.limiters[platform].Acquire(waitCtx)
	if err != nil {
		return nil, fmt.Errorf("wait for %s slot: %w", platform, err)
	}
	return release, nil
}

func (s *UserStatsService) call(ctx context.Context, platform contest.Platform, fn func(context.Context) (int, error)) (out Outcome) {
	callCtx, cancel := context.WithTimeout(ctx, s.cfg.CallTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			out = Degraded(degradedUnknown, fmt.Errorf("%s stats call panicked: %v", platform, r))
		}
	}()

	value, err := fn(callCtx)
	if err != nil {
		return Degraded(degradedReason(err), err)
	}
	return Ok(value)
}
