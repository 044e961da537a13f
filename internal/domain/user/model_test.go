package user

import (
	"testing"

	"github.com/riskibarqy/contest-radar/internal/domain/contest"
)

func TestSolvedCounts_SetKeepsTotal(t *testing.T) {
	t.Parallel()

	var counts SolvedCounts
	counts.Set(contest.PlatformCodeforces, 412)
	counts.Set(contest.PlatformLeetCode, 37)
	counts.Set(contest.PlatformCodeChef, -5)

	if counts.CodeChef != 0 {
		t.Fatalf("expected negative count clamped to zero, got=%d", counts.CodeChef)
	}
	if counts.Total != 449 {
		t.Fatalf("expected total=449, got=%d", counts.Total)
	}

	counts.Set(contest.PlatformLeetCode, 0)
	if counts.Total != 412 {
		t.Fatalf("expected total=412 after reset, got=%d", counts.Total)
	}
}

func TestCodingHandles_Handle(t *testing.T) {
	t.Parallel()

	h := CodingHandles{Codeforces: " tourist ", CodeChef: "errichto"}
	if got := h.Handle(contest.PlatformCodeforces); got != "tourist" {
		t.Fatalf("unexpected codeforces handle %q", got)
	}
	if got := h.Handle(contest.PlatformLeetCode); got != "" {
		t.Fatalf("expected empty leetcode handle, got %q", got)
	}
}

func TestParseLeaderboardField(t *testing.T) {
	t.Parallel()

	cases := map[string]LeaderboardField{
		"codeforces":        LeaderboardCodeforces,
		"LeetCode":          LeaderboardLeetCode,
		"codechef":          LeaderboardCodeChef,
		"total":             LeaderboardTotal,
		"password; DROP --": LeaderboardTotal,
	}
	for raw, want := range cases {
		if got := ParseLeaderboardField(raw); got != want {
			t.Fatalf("ParseLeaderboardField(%q)=%q want=%q", raw, got, want)
		}
	}
}

func TestNormalizeLeaderboardLimit(t *testing.T) {
	t.Parallel()

	if got := NormalizeLeaderboardLimit(0); got != MaxLeaderboardSize {
		t.Fatalf("expected default limit, got=%d", got)
	}
	if got := NormalizeLeaderboardLimit(500); got != MaxLeaderboardSize {
		t.Fatalf("expected capped limit, got=%d", got)
	}
	if got := NormalizeLeaderboardLimit(10); got != 10 {
		t.Fatalf("expected limit=10, got=%d", got)
	}
}
