package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/riskibarqy/contest-radar/internal/domain/contest"
	"github.com/riskibarqy/contest-radar/internal/domain/user"
	basecache "github.com/riskibarqy/contest-radar/internal/platform/cache"
)

const (
	contestKeyPrefix     = "contest:"
	leaderboardKeyPrefix = "user:leaderboard:"
)

type ContestRepository struct {
	next  contest.Repository
	cache *basecache.Store
}

func NewContestRepository(next contest.Repository, cache *basecache.Store) *ContestRepository {
	return &ContestRepository{next: next, cache: cache}
}

func (r *ContestRepository) Upsert(ctx context.Context, item contest.Contest) error {
	if err := r.next.Upsert(ctx, item); err != nil {
		return err
	}
	r.cache.DeletePrefix(ctx, contestKeyPrefix)
	return nil
}

// ListUpcoming caches one read per minute bucket and trims rows that started
// inside the bucket before now.
func (r *ContestRepository) ListUpcoming(ctx context.Context, now time.Time) ([]contest.Contest, error) {
	bucket := now.UTC().Truncate(time.Minute)
	key := contestKeyPrefix + "upcoming:" + strconv.FormatInt(bucket.Unix(), 10)
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		items, err := r.next.ListUpcoming(ctx, bucket)
		if err != nil {
			return nil, err
		}
		return append([]contest.Contest(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]contest.Contest)
	out := make([]contest.Contest, 0, len(items))
	for _, item := range items {
		if item.StartTime.Before(now) {
			continue
		}
		out = append(out, item)
	}
	return out, nil
}

type UserRepository struct {
	next  user.Repository
	cache *basecache.Store
}

func NewUserRepository(next user.Repository, cache *basecache.Store) *UserRepository {
	return &UserRepository{next: next, cache: cache}
}

func (r *UserRepository) List(ctx context.Context) ([]user.User, error) {
	return r.next.List(ctx)
}

func (r *UserRepository) UpdateStats(ctx context.Context, userID string, counts user.SolvedCounts, ratings user.Ratings, at time.Time) error {
	if err := r.next.UpdateStats(ctx, userID, counts, ratings, at); err != nil {
		return err
	}
	r.cache.DeletePrefix(ctx, leaderboardKeyPrefix)
	return nil
}

func (r *UserRepository) ListLeaderboard(ctx context.Context, field user.LeaderboardField, limit int) ([]user.User, error) {
	limit = user.NormalizeLeaderboardLimit(limit)
	key := leaderboardKeyPrefix + string(field) + ":" + strconv.Itoa(limit)
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		items, err := r.next.ListLeaderboard(ctx, field, limit)
		if err != nil {
			return nil, err
		}
		return append([]user.User(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]user.User)
	return append([]user.User(nil), items...), nil
}
