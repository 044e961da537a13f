package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/riskibarqy/contest-radar/internal/domain/user"
)

type UserRepository struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]user.User
}

func NewUserRepository(users []user.User) *UserRepository {
	repo := &UserRepository{byID: make(map[string]user.User, len(users))}
	for _, item := range users {
		item.SolvedCounts.Recompute()
		if _, ok := repo.byID[item.ID]; !ok {
			repo.order = append(repo.order, item.ID)
		}
		repo.byID[item.ID] = item
	}
	return repo
}

func (r *UserRepository) List(_ context.Context) ([]user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]user.User, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out, nil
}

func (r *UserRepository) UpdateStats(_ context.Context, userID string, counts user.SolvedCounts, ratings user.Ratings, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.byID[userID]
	if !ok {
		return fmt.Errorf("update stats user=%s: %w", userID, user.ErrNotFound)
	}
	counts.Recompute()
	item.SolvedCounts = counts
	item.Ratings = ratings
	item.StatsUpdatedAt = &at
	r.byID[userID] = item
	return nil
}

func (r *UserRepository) ListLeaderboard(_ context.Context, field user.LeaderboardField, limit int) ([]user.User, error) {
	users, _ := r.List(context.Background())
	sort.SliceStable(users, func(i, j int) bool {
		return field.Score(users[i].SolvedCounts) > field.Score(users[j].SolvedCounts)
	})

	limit = user.NormalizeLeaderboardLimit(limit)
	if len(users) > limit {
		users = users[:limit]
	}
	return users, nil
}

func (r *UserRepository) Get(userID string) (user.User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.byID[userID]
	return item, ok
}

// Insert adds item unless a user with the same ID exists. It reports whether a row was added.
func (r *UserRepository) Insert(_ context.Context, item user.User) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[item.ID]; ok {
		return false, nil
	}
	item.SolvedCounts.Recompute()
	r.order = append(r.order, item.ID)
	r.byID[item.ID] = item
	return true, nil
}
