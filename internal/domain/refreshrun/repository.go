package refreshrun

import "context"

type Repository interface {
	UpsertRun(ctx context.Context, run Run) error
}
