package usecase

import (
	"context"
	"fmt"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/contest-radar/internal/domain/contest"
	"github.com/riskibarqy/contest-radar/internal/domain/refreshrun"
	"github.com/riskibarqy/contest-radar/internal/platform/logging"
	"github.com/sourcegraph/conc"
)

type ContestRefreshConfig struct {
	// SourceTimeout bounds each adapter call independently.
	SourceTimeout time.Duration
}

type SourceOutcome struct {
	Platform contest.Platform
	Count    int
	Elapsed  time.Duration
	Err      error
}

func (o SourceOutcome) Failed() bool {
	return o.Err != nil
}

type ContestRefreshResult struct {
	RunID        string
	Sources      []SourceOutcome
	Fetched      int
	Rejected     int
	Canonical    int
	Reconciled   int
	FailedWrites int
}

func (r ContestRefreshResult) FailedSources() []contest.Platform {
	out := make([]contest.Platform, 0, len(r.Sources))
	for _, src := range r.Sources {
		if src.Failed() {
			out = append(out, src.Platform)
		}
	}
	return out
}

// ContestRefreshService runs one full contest cycle: fetch every source,
// normalize, then reconcile into the store.
type ContestRefreshService struct {
	sources []ContestSource
	syncer  *ContestSyncService
	runs    *runRecorder
	cfg     ContestRefreshConfig
	metrics RefreshMetrics
	logger  *logging.Logger
	now     func() time.Time
}

func NewContestRefreshService(
	sources []ContestSource,
	syncer *ContestSyncService,
	runRepo refreshrun.Repository,
	cfg ContestRefreshConfig,
	metrics RefreshMetrics,
	logger *logging.Logger,
) *ContestRefreshService {
	if logger == nil {
		logger = logging.Default()
	}
	if metrics == nil {
		metrics = NewNoopRefreshMetrics()
	}
	if cfg.SourceTimeout <= 0 {
		cfg.SourceTimeout = 60 * time.Second
	}

	logger = logger.Named("contest_refresh")
	return &ContestRefreshService{
		sources: sources,
		syncer:  syncer,
		runs:    newRunRecorder(runRepo, logger),
		cfg:     cfg,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
	}
}

// Refresh tolerates any subset of failing sources. It returns an error when
// every source failed or the context ended during reconciliation; the result
// is populated either way.
func (s *ContestRefreshService) Refresh(ctx context.Context) (ContestRefreshResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ContestRefreshService.Refresh")
	defer span.End()

	run := s.runs.begin(ctx, refreshrun.JobContests)
	result := ContestRefreshResult{RunID: run.RunID}

	outcomes, batches := s.fetchAll(ctx)
	result.Sources = outcomes

	failedSources := 0
	for _, outcome := range outcomes {
		if outcome.Failed() {
			failedSources++
			s.logger.ErrorContext(ctx, "contest source fetch failed",
				"platform", outcome.Platform,
				"elapsed_ms", outcome.Elapsed.Milliseconds(),
				"error", outcome.Err,
			)
			continue
		}
		result.Fetched += outcome.Count
	}

	valid := make([][]contest.Contest, 0, len(batches))
	for _, batch := range batches {
		kept := make([]contest.Contest, 0, len(batch))
		for _, item := range batch {
			if err := item.Validate(); err != nil {
				result.Rejected++
				s.logger.WarnContext(ctx, "drop invalid contest record", "platform", item.Platform, "error", err)
				continue
			}
			kept = append(kept, item)
		}
		valid = append(valid, kept)
	}

	canonical := DeduplicateContests(valid...)
	result.Canonical = len(canonical)

	synced, syncErr := s.syncer.Sync(ctx, canonical)
	result.Reconciled = synced.Reconciled
	result.FailedWrites = synced.Failed

	var err error
	switch {
	case syncErr != nil:
		err = syncErr
	case len(outcomes) > 0 && failedSources == len(outcomes):
		err = crerr.Mark(fmt.Errorf("all %d contest sources failed", failedSources), ErrSourceUnavailable)
	}

	run.Records = result.Reconciled
	run.Failures = failedSources + result.FailedWrites
	s.runs.finish(ctx, run, err)

	s.logger.InfoContext(ctx, "contest refresh finished",
		"run_id", result.RunID,
		"fetched", result.Fetched,
		"rejected", result.Rejected,
		"canonical", result.Canonical,
		"reconciled", result.Reconciled,
		"failed_sources", failedSources,
		"failed_writes", result.FailedWrites,
	)
	return result, err
}

func (s *ContestRefreshService) fetchAll(ctx context.Context) ([]SourceOutcome, [][]contest.Contest) {
	outcomes := make([]SourceOutcome, len(s.sources))
	batches := make([][]contest.Contest, len(s.sources))

	var wg conc.WaitGroup
	for i, source := range s.sources {
		wg.Go(func() {
			start := s.now()
			items, err := s.fetchOne(ctx, source)
			elapsed := s.now().Sub(start)

			outcomes[i] = SourceOutcome{Platform: source.Platform(), Count: len(items), Elapsed: elapsed, Err: err}
			if err == nil {
				batches[i] = items
			}
			s.metrics.ObserveSourceFetch(source.Platform(), err, len(items), elapsed)
		})
	}
	wg.Wait()

	return outcomes, batches
}

func (s *ContestRefreshService) fetchOne(ctx context.Context, source ContestSource) (items []contest.Contest, err error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.SourceTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			items = nil
			err = SourceUnavailable(fmt.Errorf("fetch %s contests panicked: %v", source.Platform(), r))
		}
	}()

	items, err = source.FetchContests(ctx)
	if err != nil {
		return nil, SourceUnavailable(fmt.Errorf("fetch %s contests: %w", source.Platform(), err))
	}
	return items, nil
}
