package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/contest-radar/internal/domain/refreshrun"
)

type RefreshRunRepository struct {
	mu   sync.RWMutex
	runs map[string]refreshrun.Run
}

func NewRefreshRunRepository() *RefreshRunRepository {
	return &RefreshRunRepository{runs: make(map[string]refreshrun.Run)}
}

func (r *RefreshRunRepository) UpsertRun(_ context.Context, run refreshrun.Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.runs[run.RunID] = run
	return nil
}

func (r *RefreshRunRepository) Get(runID string) (refreshrun.Run, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	run, ok := r.runs[runID]
	return run, ok
}
