package usecase

import (
	"context"
	"fmt"

	"github.com/riskibarqy/contest-radar/internal/domain/contest"
	"github.com/riskibarqy/contest-radar/internal/platform/logging"
)

type SyncResult struct {
	Reconciled int
	Failed     int
}

// ContestSyncService writes a canonical contest list into the store. It
// inserts or overwrites by (platform, name) and never deletes.
type ContestSyncService struct {
	repo   contest.Repository
	logger *logging.Logger
}

func NewContestSyncService(repo contest.Repository, logger *logging.Logger) *ContestSyncService {
	if logger == nil {
		logger = logging.Default()
	}
	return &ContestSyncService{
		repo:   repo,
		logger: logger.Named("contest_sync"),
	}
}

// Sync returns an error only when ctx is done; a failed record is logged and skipped.
func (s *ContestSyncService) Sync(ctx context.Context, canonical []contest.Contest) (SyncResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ContestSyncService.Sync")
	defer span.End()

	var result SyncResult
	for _, item := range canonical {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("sync contests after %d records: %w", result.Reconciled, err)
		}

		if err := s.repo.Upsert(ctx, item); err != nil {
			result.Failed++
			s.logger.ErrorContext(ctx, "upsert contest failed",
				"platform", item.Platform,
				"name", item.Name,
				"error", WriteFailure(err),
			)
			continue
		}
		result.Reconciled++
	}

	return result, nil
}
