package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/riskibarqy/contest-radar/internal/domain/contest"
)

type ContestRepository struct {
	mu    sync.RWMutex
	byKey map[string]contest.Contest
}

func NewContestRepository(items []contest.Contest) *ContestRepository {
	byKey := make(map[string]contest.Contest, len(items))
	for _, item := range items {
		byKey[item.Key()] = item
	}
	return &ContestRepository{byKey: byKey}
}

func (r *ContestRepository) Upsert(_ context.Context, item contest.Contest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.byKey[item.Key()] = item
	return nil
}

func (r *ContestRepository) ListUpcoming(_ context.Context, now time.Time) ([]contest.Contest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]contest.Contest, 0, len(r.byKey))
	for _, item := range r.byKey {
		if item.StartTime.Before(now) {
			continue
		}
		out = append(out, item)
	}
	sortContests(out)
	return out, nil
}

// All returns every stored contest, past ones included.
func (r *ContestRepository) All() []contest.Contest {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]contest.Contest, 0, len(r.byKey))
	for _, item := range r.byKey {
		out = append(out, item)
	}
	sortContests(out)
	return out
}

func sortContests(items []contest.Contest) {
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].StartTime.Equal(items[j].StartTime) {
			return items[i].StartTime.Before(items[j].StartTime)
		}
		return items[i].Key() < items[j].Key()
	})
}
