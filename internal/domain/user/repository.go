package user

import (
	"context"
	"time"
)

type Repository interface {
	List(ctx context.Context) ([]User, error)
	// UpdateStats recomputes counts.Total before writing.
	UpdateStats(ctx context.Context, userID string, counts SolvedCounts, ratings Ratings, at time.Time) error
	ListLeaderboard(ctx context.Context, field LeaderboardField, limit int) ([]User, error)
}
