package contest

import (
	"context"
	"time"
)

// Repository persists contests keyed by (Platform, Name). Records are never deleted.
type Repository interface {
	Upsert(ctx context.Context, item Contest) error
	ListUpcoming(ctx context.Context, now time.Time) ([]Contest, error)
}
