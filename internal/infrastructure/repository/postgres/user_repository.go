package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/contest-radar/internal/domain/user"
	qb "github.com/riskibarqy/contest-radar/internal/platform/querybuilder"
)

var userColumns = []string{
	"id",
	"username",
	"codeforces_handle",
	"leetcode_handle",
	"codechef_handle",
	"solved_codeforces",
	"solved_leetcode",
	"solved_codechef",
	"solved_total",
	"rating_codeforces",
	"rating_leetcode",
	"rating_codechef",
	"stats_updated_at",
	"created_at",
	"updated_at",
}

var leaderboardColumns = map[user.LeaderboardField]string{
	user.LeaderboardTotal:      "solved_total",
	user.LeaderboardCodeforces: "solved_codeforces",
	user.LeaderboardLeetCode:   "solved_leetcode",
	user.LeaderboardCodeChef:   "solved_codechef",
}

type UserRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db, now: time.Now}
}

func (r *UserRepository) List(ctx context.Context) ([]user.User, error) {
	query, args, err := qb.Select(userColumns...).From("users").OrderBy("created_at", "id").ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list users query: %w", err)
	}

	var rows []userTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return usersFromRows(rows), nil
}

// UpdateStats writes counts with a recomputed total. Handles and identity are left untouched.
func (r *UserRepository) UpdateStats(ctx context.Context, userID string, counts user.SolvedCounts, ratings user.Ratings, at time.Time) error {
	query, args, err := buildUpdateStatsQuery(userID, counts, ratings, at)
	if err != nil {
		return fmt.Errorf("build update user stats query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update stats user=%s: %w", userID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update stats user=%s rows affected: %w", userID, err)
	}
	if affected == 0 {
		return fmt.Errorf("update stats user=%s: %w", userID, user.ErrNotFound)
	}
	return nil
}

func (r *UserRepository) ListLeaderboard(ctx context.Context, field user.LeaderboardField, limit int) ([]user.User, error) {
	query, args, err := buildLeaderboardQuery(field, limit)
	if err != nil {
		return nil, fmt.Errorf("build leaderboard query: %w", err)
	}

	var rows []userTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list leaderboard field=%s: %w", field, err)
	}
	return usersFromRows(rows), nil
}

// Insert adds item unless its ID already exists. It reports whether a row was added.
func (r *UserRepository) Insert(ctx context.Context, item user.User) (bool, error) {
	counts := item.SolvedCounts
	counts.Recompute()
	now := r.now().UTC()

	cols, vals, err := qb.Columns(userInsertModel{
		ID:               item.ID,
		Username:         item.Username,
		CodeforcesHandle: optionalString(item.Handles.Codeforces),
		LeetCodeHandle:   optionalString(item.Handles.LeetCode),
		CodeChefHandle:   optionalString(item.Handles.CodeChef),
		SolvedCodeforces: counts.Codeforces,
		SolvedLeetCode:   counts.LeetCode,
		SolvedCodeChef:   counts.CodeChef,
		SolvedTotal:      counts.Total,
		CreatedAt:        now,
		UpdatedAt:        now,
	})
	if err != nil {
		return false, fmt.Errorf("build insert user columns: %w", err)
	}
	query, args, err := qb.InsertInto("users").Columns(cols...).Values(vals...).OnConflictUpdate([]string{"id"}).ToSQL()
	if err != nil {
		return false, fmt.Errorf("build insert user query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("insert user id=%s: %w", item.ID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert user id=%s rows affected: %w", item.ID, err)
	}
	return affected > 0, nil
}

func buildUpdateStatsQuery(userID string, counts user.SolvedCounts, ratings user.Ratings, at time.Time) (string, []any, error) {
	counts.Recompute()
	return qb.Update("users").
		Set("solved_codeforces", counts.Codeforces).
		Set("solved_leetcode", counts.LeetCode).
		Set("solved_codechef", counts.CodeChef).
		Set("solved_total", counts.Total).
		Set("rating_codeforces", ratings.Codeforces).
		Set("rating_leetcode", ratings.LeetCode).
		Set("rating_codechef", ratings.CodeChef).
		Set("stats_updated_at", at.UTC()).
		Set("updated_at", at.UTC()).
		Where(qb.Eq("id", userID)).
		ToSQL()
}

func buildLeaderboardQuery(field user.LeaderboardField, limit int) (string, []any, error) {
	column, ok := leaderboardColumns[field]
	if !ok {
		column = leaderboardColumns[user.LeaderboardTotal]
	}
	return qb.Select(userColumns...).
		From("users").
		OrderBy(column+" DESC", "username").
		Limit(user.NormalizeLeaderboardLimit(limit)).
		ToSQL()
}

func usersFromRows(rows []userTableModel) []user.User {
	out := make([]user.User, 0, len(rows))
	for _, row := range rows {
		out = append(out, userFromRow(row))
	}
	return out
}

func userFromRow(row userTableModel) user.User {
	counts := user.SolvedCounts{
		Codeforces: row.SolvedCodeforces,
		LeetCode:   row.SolvedLeetCode,
		CodeChef:   row.SolvedCodeChef,
	}
	counts.Recompute()

	var statsUpdatedAt *time.Time
	if row.StatsUpdatedAt != nil {
		at := row.StatsUpdatedAt.UTC()
		statsUpdatedAt = &at
	}

	return user.User{
		ID:       row.ID,
		Username: row.Username,
		Handles: user.CodingHandles{
			Codeforces: stringValue(row.CodeforcesHandle),
			LeetCode:   stringValue(row.LeetCodeHandle),
			CodeChef:   stringValue(row.CodeChefHandle),
		},
		SolvedCounts: counts,
		Ratings: user.Ratings{
			Codeforces: row.RatingCodeforces,
			LeetCode:   row.RatingLeetCode,
			CodeChef:   row.RatingCodeChef,
		},
		StatsUpdatedAt: statsUpdatedAt,
	}
}
