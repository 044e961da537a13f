package usecase

import (
	"strings"

	"github.com/riskibarqy/contest-radar/internal/domain/contest"
)

// DeduplicateContests merges source batches in order, keeping the first record
// seen for each key.
//
// Codeforces and LeetCode match on the exact key. CodeChef titles drift between
// renders ("Starters 150" vs "Starters 150 (Rated)"), so a CodeChef record is
// also a duplicate when either key contains the other. That rule collapses
// "Weekly 10" into "Weekly 100" and is kept on purpose.
func DeduplicateContests(batches ...[]contest.Contest) []contest.Contest {
	total := 0
	for _, batch := range batches {
		total += len(batch)
	}

	out := make([]contest.Contest, 0, total)
	seen := make(map[string]struct{}, total)
	codechefKeys := make([]string, 0)

	for _, batch := range batches {
		for _, item := range batch {
			key := item.Key()
			if _, ok := seen[key]; ok {
				continue
			}
			if item.Platform == contest.PlatformCodeChef && containsRelated(codechefKeys, key) {
				continue
			}

			seen[key] = struct{}{}
			if item.Platform == contest.PlatformCodeChef {
				codechefKeys = append(codechefKeys, key)
			}
			item.Name = strings.TrimSpace(item.Name)
			out = append(out, item)
		}
	}

	return out
}

func containsRelated(keys []string, key string) bool {
	for _, existing := range keys {
		if strings.Contains(existing, key) || strings.Contains(key, existing) {
			return true
		}
	}
	return false
}
