package usecase

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/contest-radar/internal/domain/contest"
	"github.com/riskibarqy/contest-radar/internal/platform/logging"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type stubContestSource struct {
	platform contest.Platform
	items    []contest.Contest
	err      error
	block    bool
}

func (s stubContestSource) Platform() contest.Platform {
	return s.platform
}

func (s stubContestSource) FetchContests(ctx context.Context) ([]contest.Contest, error) {
	if s.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.items, nil
}

type stubStatsProvider struct {
	platform contest.Platform
	solved   map[string]int
	ratings  map[string]int
	err      error
	block    bool
	calls    atomic.Int32

	mu      sync.Mutex
	handles []string
}

func (p *stubStatsProvider) Platform() contest.Platform {
	return p.platform
}

func (p *stubStatsProvider) FetchSolvedCount(ctx context.Context, handle string) (int, error) {
	return p.fetch(ctx, handle, p.solved)
}

func (p *stubStatsProvider) FetchRating(ctx context.Context, handle string) (int, error) {
	return p.fetch(ctx, handle, p.ratings)
}

func (p *stubStatsProvider) fetch(ctx context.Context, handle string, values map[string]int) (int, error) {
	p.calls.Add(1)
	p.mu.Lock()
	p.handles = append(p.handles, handle)
	p.mu.Unlock()

	if p.block {
		<-ctx.Done()
		return 0, ctx.Err()
	}
	if p.err != nil {
		return 0, p.err
	}
	return values[handle], nil
}

func observedLogger(t *testing.T) (*logging.Logger, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	return logging.FromZap(zap.New(core)), logs
}

func contestAt(platform contest.Platform, name string, start time.Time) contest.Contest {
	return contest.Contest{
		Platform:        platform,
		Name:            name,
		URL:             "https://example.com/" + string(platform),
		StartTime:       start,
		EndTime:         start.Add(2 * time.Hour),
		DurationSeconds: 7200,
	}
}
