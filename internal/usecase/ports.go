package usecase

import (
	"context"
	"time"

	"github.com/riskibarqy/contest-radar/internal/domain/contest"
)

// ContestSource fetches the upcoming contests of one platform.
type ContestSource interface {
	Platform() contest.Platform
	FetchContests(ctx context.Context) ([]contest.Contest, error)
}

// UserStatsProvider reads per-handle statistics from one platform.
type UserStatsProvider interface {
	Platform() contest.Platform
	FetchSolvedCount(ctx context.Context, handle string) (int, error)
	FetchRating(ctx context.Context, handle string) (int, error)
}

type RefreshMetrics interface {
	ObserveSourceFetch(platform contest.Platform, err error, records int, elapsed time.Duration)
	ObserveStatsDegraded(platform contest.Platform, reason string)
	ObserveJobRun(job string, err error, elapsed time.Duration)
	ObserveJobSkipped(job string)
}

type noopRefreshMetrics struct{}

func NewNoopRefreshMetrics() RefreshMetrics {
	return noopRefreshMetrics{}
}

func (noopRefreshMetrics) ObserveSourceFetch(contest.Platform, error, int, time.Duration) {}
func (noopRefreshMetrics) ObserveStatsDegraded(contest.Platform, string)                  {}
func (noopRefreshMetrics) ObserveJobRun(string, error, time.Duration)                     {}
func (noopRefreshMetrics) ObserveJobSkipped(string)                                       {}
