package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/contest-radar/internal/domain/refreshrun"
	qb "github.com/riskibarqy/contest-radar/internal/platform/querybuilder"
)

type RefreshRunRepository struct {
	db *sqlx.DB
}

func NewRefreshRunRepository(db *sqlx.DB) *RefreshRunRepository {
	return &RefreshRunRepository{db: db}
}

func (r *RefreshRunRepository) UpsertRun(ctx context.Context, run refreshrun.Run) error {
	query, args, err := buildRefreshRunUpsertQuery(run)
	if err != nil {
		return fmt.Errorf("build upsert refresh run query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert refresh run run_id=%s status=%s: %w", run.RunID, run.Status, err)
	}
	return nil
}

func buildRefreshRunUpsertQuery(run refreshrun.Run) (string, []any, error) {
	runID := strings.TrimSpace(run.RunID)
	if runID == "" {
		return "", nil, fmt.Errorf("run id is required")
	}

	finishedAt := run.FinishedAt
	if finishedAt != nil {
		at := finishedAt.UTC()
		finishedAt = &at
	}

	return qb.UpsertModel("refresh_runs", refreshRunUpsertModel{
		RunID:        runID,
		Job:          run.Job,
		Status:       string(run.Status),
		StartedAt:    run.StartedAt.UTC(),
		FinishedAt:   finishedAt,
		Records:      run.Records,
		Failures:     run.Failures,
		ErrorMessage: optionalString(run.ErrorMessage),
	}, "run_id")
}
