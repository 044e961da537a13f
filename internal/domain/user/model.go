package user

import (
	"strings"
	"time"

	"github.com/riskibarqy/contest-radar/internal/domain/contest"
)

const MaxLeaderboardSize = 100

// CodingHandles are the user's account names on each platform. Empty means not linked.
type CodingHandles struct {
	Codeforces string
	LeetCode   string
	CodeChef   string
}

func (h CodingHandles) Handle(platform contest.Platform) string {
	switch platform {
	case contest.PlatformCodeforces:
		return strings.TrimSpace(h.Codeforces)
	case contest.PlatformLeetCode:
		return strings.TrimSpace(h.LeetCode)
	case contest.PlatformCodeChef:
		return strings.TrimSpace(h.CodeChef)
	default:
		return ""
	}
}

// SolvedCounts holds accepted-problem counts. Total always equals the platform sum
// once Recompute has run.
type SolvedCounts struct {
	Codeforces int
	LeetCode   int
	CodeChef   int
	Total      int
}

func (s *SolvedCounts) Recompute() {
	s.Total = s.Codeforces + s.LeetCode + s.CodeChef
}

func (s *SolvedCounts) Set(platform contest.Platform, n int) {
	n = max(n, 0)
	switch platform {
	case contest.PlatformCodeforces:
		s.Codeforces = n
	case contest.PlatformLeetCode:
		s.LeetCode = n
	case contest.PlatformCodeChef:
		s.CodeChef = n
	}
	s.Recompute()
}

func (s SolvedCounts) Get(platform contest.Platform) int {
	switch platform {
	case contest.PlatformCodeforces:
		return s.Codeforces
	case contest.PlatformLeetCode:
		return s.LeetCode
	case contest.PlatformCodeChef:
		return s.CodeChef
	default:
		return 0
	}
}

type Ratings struct {
	Codeforces int
	LeetCode   int
	CodeChef   int
}

func (r *Ratings) Set(platform contest.Platform, n int) {
	n = max(n, 0)
	switch platform {
	case contest.PlatformCodeforces:
		r.Codeforces = n
	case contest.PlatformLeetCode:
		r.LeetCode = n
	case contest.PlatformCodeChef:
		r.CodeChef = n
	}
}

func (r Ratings) Get(platform contest.Platform) int {
	switch platform {
	case contest.PlatformCodeforces:
		return r.Codeforces
	case contest.PlatformLeetCode:
		return r.LeetCode
	case contest.PlatformCodeChef:
		return r.CodeChef
	default:
		return 0
	}
}

type User struct {
	ID             string
	Username       string
	Handles        CodingHandles
	SolvedCounts   SolvedCounts
	Ratings        Ratings
	StatsUpdatedAt *time.Time
}

type LeaderboardField string

const (
	LeaderboardTotal      LeaderboardField = "total"
	LeaderboardCodeforces LeaderboardField = "codeforces"
	LeaderboardLeetCode   LeaderboardField = "leetcode"
	LeaderboardCodeChef   LeaderboardField = "codechef"
)

// ParseLeaderboardField maps unknown input to LeaderboardTotal.
func ParseLeaderboardField(raw string) LeaderboardField {
	switch field := LeaderboardField(strings.ToLower(strings.TrimSpace(raw))); field {
	case LeaderboardCodeforces, LeaderboardLeetCode, LeaderboardCodeChef:
		return field
	default:
		return LeaderboardTotal
	}
}

func (f LeaderboardField) Score(counts SolvedCounts) int {
	switch f {
	case LeaderboardCodeforces:
		return counts.Codeforces
	case LeaderboardLeetCode:
		return counts.LeetCode
	case LeaderboardCodeChef:
		return counts.CodeChef
	default:
		return counts.Total
	}
}

func NormalizeLeaderboardLimit(limit int) int {
	if limit <= 0 || limit > MaxLeaderboardSize {
		return MaxLeaderboardSize
	}
	return limit
}
