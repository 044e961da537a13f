package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/contest-radar/internal/domain/refreshrun"
	"github.com/riskibarqy/contest-radar/internal/platform/id"
	"github.com/riskibarqy/contest-radar/internal/platform/logging"
)

// runRecorder keeps the refresh_runs ledger. Write errors are logged, never returned.
type runRecorder struct {
	repo   refreshrun.Repository
	ids    id.Generator
	logger *logging.Logger
	now    func() time.Time
}

func newRunRecorder(repo refreshrun.Repository, logger *logging.Logger) *runRecorder {
	return &runRecorder{
		repo:   repo,
		ids:    id.NewUUIDGenerator(),
		logger: logger,
		now:    time.Now,
	}
}

func (r *runRecorder) begin(ctx context.Context, job string) refreshrun.Run {
	runID, err := r.ids.NewID()
	if err != nil {
		runID = fmt.Sprintf("%s-%d", job, r.now().UnixNano())
	}
	run := refreshrun.Run{
		RunID:     runID,
		Job:       job,
		Status:    refreshrun.StatusRunning,
		StartedAt: r.now().UTC(),
	}
	r.save(ctx, run)
	return run
}

func (r *runRecorder) finish(ctx context.Context, run refreshrun.Run, err error) {
	finishedAt := r.now().UTC()
	run.FinishedAt = &finishedAt
	run.Status = refreshrun.StatusCompleted
	if err != nil {
		run.Status = refreshrun.StatusFailed
		run.ErrorMessage = err.Error()
	}
	r.save(context.WithoutCancel(ctx), run)
}

func (r *runRecorder) save(ctx context.Context, run refreshrun.Run) {
	if r.repo == nil {
		return
	}
	if err := r.repo.UpsertRun(ctx, run); err != nil {
		r.logger.WarnContext(ctx, "record refresh run failed", "run_id", run.RunID, "status", run.Status, "error", err)
	}
}
