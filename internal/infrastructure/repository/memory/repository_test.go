package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/contest-radar/internal/domain/contest"
	"github.com/riskibarqy/contest-radar/internal/domain/user"
)

func TestContestRepository_UpsertOverwritesByKey(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	repo := NewContestRepository(nil)

	first := contest.Contest{
		Platform:  contest.PlatformLeetCode,
		Name:      "Biweekly Contest 142",
		URL:       "https://leetcode.com/contest/biweekly-contest-142",
		StartTime: now.Add(48 * time.Hour),
		EndTime:   now.Add(49*time.Hour + 30*time.Minute),
	}
	moved := first
	moved.StartTime = now.Add(72 * time.Hour)
	moved.EndTime = now.Add(73*time.Hour + 30*time.Minute)

	for _, item := range []contest.Contest{first, moved, moved} {
		if err := repo.Upsert(ctx, item); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}

	items := repo.All()
	if len(items) != 1 {
		t.Fatalf("expected one row, got=%d", len(items))
	}
	if !items[0].StartTime.Equal(moved.StartTime) {
		t.Fatalf("expected overwritten start time, got=%s", items[0].StartTime)
	}
}

func TestContestRepository_ListUpcomingOrdersByStart(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	repo := NewContestRepository([]contest.Contest{
		{Platform: contest.PlatformCodeforces, Name: "later", StartTime: now.Add(2 * time.Hour)},
		{Platform: contest.PlatformCodeforces, Name: "past", StartTime: now.Add(-time.Hour)},
		{Platform: contest.PlatformCodeChef, Name: "sooner", StartTime: now.Add(time.Hour)},
	})

	items, err := repo.ListUpcoming(context.Background(), now)
	if err != nil {
		t.Fatalf("list upcoming: %v", err)
	}
	if len(items) != 2 || items[0].Name != "sooner" || items[1].Name != "later" {
		t.Fatalf("unexpected upcoming order: %+v", items)
	}
}

func TestUserRepository_UpdateStatsRecomputesTotal(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewUserRepository([]user.User{{ID: "u1", Username: "tourist"}})

	at := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	counts := user.SolvedCounts{Codeforces: 10, LeetCode: 5, CodeChef: 2, Total: 999}
	if err := repo.UpdateStats(ctx, "u1", counts, user.Ratings{Codeforces: 3800}, at); err != nil {
		t.Fatalf("update stats: %v", err)
	}

	got, _ := repo.Get("u1")
	if got.SolvedCounts.Total != 17 {
		t.Fatalf("expected total recomputed to 17, got=%d", got.SolvedCounts.Total)
	}
	if got.StatsUpdatedAt == nil || !got.StatsUpdatedAt.Equal(at) {
		t.Fatalf("expected stats_updated_at=%s, got=%v", at, got.StatsUpdatedAt)
	}

	err := repo.UpdateStats(ctx, "missing", counts, user.Ratings{}, at)
	if !errors.Is(err, user.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUserRepository_ListLeaderboard(t *testing.T) {
	t.Parallel()

	repo := NewUserRepository(SeedUsers())

	top, err := repo.ListLeaderboard(context.Background(), user.LeaderboardCodeChef, 2)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(top) != 2 || top[0].Username != "java_genius" || top[1].Username != "python_pro" {
		t.Fatalf("unexpected codechef leaderboard: %+v", top)
	}

	all, err := repo.ListLeaderboard(context.Background(), user.ParseLeaderboardField("bogus"), 0)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(all) != 5 || all[0].Username != "algo_queen" {
		t.Fatalf("expected total leaderboard led by algo_queen, got=%+v", all)
	}
}

func TestUserRepository_InsertSkipsExisting(t *testing.T) {
	t.Parallel()

	repo := NewUserRepository(nil)
	item := user.User{ID: "u1", Username: "tourist", SolvedCounts: user.SolvedCounts{Codeforces: 3, LeetCode: 4}}

	added, err := repo.Insert(context.Background(), item)
	if err != nil || !added {
		t.Fatalf("expected insert, added=%v err=%v", added, err)
	}
	item.Username = "renamed"
	added, err = repo.Insert(context.Background(), item)
	if err != nil || added {
		t.Fatalf("expected duplicate insert to be skipped, added=%v err=%v", added, err)
	}

	got, _ := repo.Get("u1")
	if got.Username != "tourist" || got.SolvedCounts.Total != 7 {
		t.Fatalf("unexpected stored user: %+v", got)
	}
}
