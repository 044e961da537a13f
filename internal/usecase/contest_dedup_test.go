package usecase

import (
	"testing"
	"time"

	"github.com/riskibarqy/contest-radar/internal/domain/contest"
)

func TestDeduplicateContests_ExactKeyFirstSeenWins(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 10, 20, 14, 35, 0, 0, time.UTC)
	first := contestAt(contest.PlatformCodeforces, "Codeforces Round 990", start)
	again := contestAt(contest.PlatformCodeforces, " Codeforces Round 990 ", start.Add(time.Hour))
	other := contestAt(contest.PlatformLeetCode, "Codeforces Round 990", start)

	got := DeduplicateContests([]contest.Contest{first}, []contest.Contest{again, other})
	if len(got) != 2 {
		t.Fatalf("expected 2 contests, got=%d", len(got))
	}
	if !got[0].StartTime.Equal(start) {
		t.Fatalf("expected first-seen record to win, got start=%s", got[0].StartTime)
	}
	if got[1].Platform != contest.PlatformLeetCode {
		t.Fatalf("expected same name on another platform to survive, got=%s", got[1].Platform)
	}
}

func TestDeduplicateContests_ExactPlatformsDoNotUseContainment(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 10, 20, 14, 35, 0, 0, time.UTC)
	got := DeduplicateContests([]contest.Contest{
		contestAt(contest.PlatformCodeforces, "Round 1", start),
		contestAt(contest.PlatformCodeforces, "Round 10", start),
		contestAt(contest.PlatformLeetCode, "Weekly Contest 42", start),
		contestAt(contest.PlatformLeetCode, "Weekly Contest 420", start),
	})
	if len(got) != 4 {
		t.Fatalf("expected exact matching for codeforces/leetcode, got=%d", len(got))
	}
}

func TestDeduplicateContests_CodeChefContainment(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 10, 22, 14, 30, 0, 0, time.UTC)
	got := DeduplicateContests([]contest.Contest{
		contestAt(contest.PlatformCodeChef, "Starters 150 (Rated)", start),
		contestAt(contest.PlatformCodeChef, "Starters 150", start),
		contestAt(contest.PlatformCodeChef, "Starters 151", start),
	})
	if len(got) != 2 {
		t.Fatalf("expected 2 codechef contests, got=%d", len(got))
	}
	if got[0].Name != "Starters 150 (Rated)" || got[1].Name != "Starters 151" {
		t.Fatalf("unexpected survivors: %q, %q", got[0].Name, got[1].Name)
	}
}

// The relaxed CodeChef rule merges names that merely share a prefix.
func TestDeduplicateContests_CodeChefKnownFalsePositive(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 10, 22, 14, 30, 0, 0, time.UTC)
	got := DeduplicateContests([]contest.Contest{
		contestAt(contest.PlatformCodeChef, "Weekly 10", start),
		contestAt(contest.PlatformCodeChef, "Weekly 100", start.Add(24*time.Hour)),
	})
	if len(got) != 1 || got[0].Name != "Weekly 10" {
		t.Fatalf("expected Weekly 100 collapsed into Weekly 10, got=%+v", got)
	}
}

func TestDeduplicateContests_PreservesOrderAndTrimsNames(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC)
	got := DeduplicateContests(
		[]contest.Contest{contestAt(contest.PlatformCodeforces, "  B ", start)},
		nil,
		[]contest.Contest{contestAt(contest.PlatformCodeChef, "A", start)},
	)
	if len(got) != 2 || got[0].Name != "B" || got[1].Name != "A" {
		t.Fatalf("unexpected output: %+v", got)
	}
}
