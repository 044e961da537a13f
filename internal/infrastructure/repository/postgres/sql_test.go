package postgres

import (
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/riskibarqy/contest-radar/internal/domain/contest"
	"github.com/riskibarqy/contest-radar/internal/domain/refreshrun"
	"github.com/riskibarqy/contest-radar/internal/domain/user"
)

func TestBuildContestUpsertQuery(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 10, 21, 14, 35, 0, 0, time.UTC)
	updatedAt := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	query, args, err := buildContestUpsertQuery(contest.Contest{
		Platform:        contest.PlatformCodeforces,
		Name:            " Codeforces Round 990 ",
		URL:             "https://codeforces.com/contests/2047",
		StartTime:       start,
		EndTime:         start.Add(2 * time.Hour),
		DurationSeconds: 7200,
	}, updatedAt)
	if err != nil {
		t.Fatalf("build query: %v", err)
	}

	wantPrefix := "INSERT INTO contests (platform, name, url, start_time, end_time, duration_seconds, relative_time, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)"
	if !strings.HasPrefix(query, wantPrefix) {
		t.Fatalf("unexpected insert: %s", query)
	}
	wantConflict := "ON CONFLICT (platform, name) DO UPDATE SET url = EXCLUDED.url, start_time = EXCLUDED.start_time, end_time = EXCLUDED.end_time, duration_seconds = EXCLUDED.duration_seconds, relative_time = EXCLUDED.relative_time, updated_at = EXCLUDED.updated_at"
	if !strings.HasSuffix(query, wantConflict) {
		t.Fatalf("unexpected conflict clause: %s", query)
	}
	if len(args) != 8 || args[0] != "Codeforces" || args[1] != "Codeforces Round 990" {
		t.Fatalf("unexpected args: %v", args)
	}
	if relative, ok := args[6].(*string); !ok || relative != nil {
		t.Fatalf("expected NULL relative time, got %#v", args[6])
	}
}

func TestBuildListUpcomingQuery(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.FixedZone("WIB", 7*3600))
	query, args, err := buildListUpcomingQuery(now)
	if err != nil {
		t.Fatalf("build query: %v", err)
	}
	if !strings.HasSuffix(query, "FROM contests WHERE start_time >= $1 ORDER BY start_time, platform, name") {
		t.Fatalf("unexpected query: %s", query)
	}
	got, ok := args[0].(time.Time)
	if !ok || got.Location() != time.UTC || !got.Equal(now) {
		t.Fatalf("expected UTC bound, got %#v", args[0])
	}
}

func TestBuildUpdateStatsQuery_RecomputesTotal(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	query, args, err := buildUpdateStatsQuery("u1",
		user.SolvedCounts{Codeforces: 10, LeetCode: 20, CodeChef: 5, Total: 999},
		user.Ratings{Codeforces: 1900},
		at,
	)
	if err != nil {
		t.Fatalf("build query: %v", err)
	}
	if !strings.HasPrefix(query, "UPDATE users SET solved_codeforces = $1, solved_leetcode = $2, solved_codechef = $3, solved_total = $4") {
		t.Fatalf("unexpected query: %s", query)
	}
	if !strings.HasSuffix(query, "WHERE id = $10") {
		t.Fatalf("unexpected where clause: %s", query)
	}
	if args[3] != 35 {
		t.Fatalf("expected recomputed total 35, got %v", args[3])
	}
	if args[9] != "u1" {
		t.Fatalf("expected user id as last arg, got %v", args[9])
	}
}

func TestBuildLeaderboardQuery(t *testing.T) {
	t.Parallel()

	cases := []struct {
		field user.LeaderboardField
		limit int
		want  string
	}{
		{user.LeaderboardCodeChef, 10, "ORDER BY solved_codechef DESC, username LIMIT 10"},
		{user.LeaderboardField("solved_total; DROP TABLE users"), 0, "ORDER BY solved_total DESC, username LIMIT 100"},
		{user.LeaderboardLeetCode, 500, "ORDER BY solved_leetcode DESC, username LIMIT 100"},
	}
	for _, tc := range cases {
		query, _, err := buildLeaderboardQuery(tc.field, tc.limit)
		if err != nil {
			t.Fatalf("build query: %v", err)
		}
		if !strings.HasSuffix(query, tc.want) {
			t.Fatalf("field=%q limit=%d: unexpected query %s", tc.field, tc.limit, query)
		}
	}
}

func TestBuildRefreshRunUpsertQuery(t *testing.T) {
	t.Parallel()

	if _, _, err := buildRefreshRunUpsertQuery(refreshrun.Run{RunID: " "}); err == nil {
		t.Fatalf("expected error for empty run id")
	}

	query, args, err := buildRefreshRunUpsertQuery(refreshrun.Run{
		RunID:     "run-1",
		Job:       refreshrun.JobContests,
		Status:    refreshrun.StatusRunning,
		StartedAt: time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("build query: %v", err)
	}
	if !strings.Contains(query, "ON CONFLICT (run_id) DO UPDATE SET job = EXCLUDED.job") {
		t.Fatalf("unexpected query: %s", query)
	}
	if args[0] != "run-1" || args[2] != "running" {
		t.Fatalf("unexpected args: %v", args)
	}
}

func TestUserFromRow(t *testing.T) {
	t.Parallel()

	handle := "tourist"
	got := userFromRow(userTableModel{
		ID:               "u1",
		Username:         "gennady",
		CodeforcesHandle: &handle,
		SolvedCodeforces: 3,
		SolvedLeetCode:   4,
		SolvedTotal:      1,
		RatingCodeforces: 3500,
	})
	if got.Handles.Codeforces != "tourist" || got.Handles.LeetCode != "" {
		t.Fatalf("unexpected handles: %+v", got.Handles)
	}
	if got.SolvedCounts.Total != 7 {
		t.Fatalf("expected total recomputed to 7, got %d", got.SolvedCounts.Total)
	}
	if got.StatsUpdatedAt != nil {
		t.Fatalf("expected nil stats timestamp")
	}
}

func TestIsNotFound(t *testing.T) {
	t.Parallel()

	if !isNotFound(fmt.Errorf("get user: %w", sql.ErrNoRows)) {
		t.Fatalf("expected wrapped ErrNoRows to be not found")
	}
	if isNotFound(fmt.Errorf("boom")) {
		t.Fatalf("expected unrelated error to be ignored")
	}
}
