package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/contest-radar/internal/domain/contest"
	qb "github.com/riskibarqy/contest-radar/internal/platform/querybuilder"
)

var contestColumns = []string{
	"id",
	"platform",
	"name",
	"url",
	"start_time",
	"end_time",
	"duration_seconds",
	"relative_time",
	"created_at",
	"updated_at",
}

type ContestRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewContestRepository(db *sqlx.DB) *ContestRepository {
	return &ContestRepository{db: db, now: time.Now}
}

// Upsert inserts the contest or overwrites the row with the same (platform, name).
func (r *ContestRepository) Upsert(ctx context.Context, item contest.Contest) error {
	query, args, err := buildContestUpsertQuery(item, r.now().UTC())
	if err != nil {
		return fmt.Errorf("build upsert contest query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert contest platform=%s name=%q: %w", item.Platform, item.Name, err)
	}
	return nil
}

func (r *ContestRepository) ListUpcoming(ctx context.Context, now time.Time) ([]contest.Contest, error) {
	query, args, err := buildListUpcomingQuery(now)
	if err != nil {
		return nil, fmt.Errorf("build list upcoming contests query: %w", err)
	}

	var rows []contestTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list upcoming contests: %w", err)
	}

	out := make([]contest.Contest, 0, len(rows))
	for _, row := range rows {
		out = append(out, contestFromRow(row))
	}
	return out, nil
}

func buildContestUpsertQuery(item contest.Contest, updatedAt time.Time) (string, []any, error) {
	model := contestUpsertModel{
		Platform:        string(item.Platform),
		Name:            strings.TrimSpace(item.Name),
		URL:             item.URL,
		StartTime:       item.StartTime.UTC(),
		EndTime:         optionalTime(item.EndTime),
		DurationSeconds: item.DurationSeconds,
		RelativeTime:    optionalString(item.RelativeTime),
		UpdatedAt:       updatedAt,
	}
	return qb.UpsertModel("contests", model, "platform", "name")
}

func buildListUpcomingQuery(now time.Time) (string, []any, error) {
	return qb.Select(contestColumns...).
		From("contests").
		Where(qb.Gte("start_time", now.UTC())).
		OrderBy("start_time", "platform", "name").
		ToSQL()
}

func contestFromRow(row contestTableModel) contest.Contest {
	return contest.Contest{
		Platform:        contest.Platform(row.Platform),
		Name:            row.Name,
		URL:             row.URL,
		StartTime:       row.StartTime.UTC(),
		EndTime:         timeValue(row.EndTime),
		DurationSeconds: row.DurationSeconds,
		RelativeTime:    stringValue(row.RelativeTime),
	}
}
