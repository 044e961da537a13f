package app

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/contest-radar/internal/config"
	"github.com/riskibarqy/contest-radar/internal/domain/contest"
	"github.com/riskibarqy/contest-radar/internal/domain/refreshrun"
	"github.com/riskibarqy/contest-radar/internal/domain/user"
	"github.com/riskibarqy/contest-radar/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/contest-radar/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/contest-radar/internal/infrastructure/repository/postgres"
	basecache "github.com/riskibarqy/contest-radar/internal/platform/cache"
	"github.com/riskibarqy/contest-radar/internal/platform/logging"
)

// userInserter adds a user unless one with the same id exists.
type userInserter interface {
	Insert(ctx context.Context, item user.User) (bool, error)
}

type stores struct {
	contests contest.Repository
	users    user.Repository
	runs     refreshrun.Repository
	seeder   userInserter
	cache    *basecache.Store
	db       *sqlx.DB
}

func (s stores) ping(ctx context.Context) error {
	if s.db == nil {
		return nil
	}
	return s.db.PingContext(ctx)
}

func (s stores) close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func buildStores(ctx context.Context, cfg config.Config, logger *logging.Logger) (stores, error) {
	var out stores
	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		users := memory.NewUserRepository(nil)
		out = stores{
			contests: memory.NewContestRepository(nil),
			users:    users,
			runs:     memory.NewRefreshRunRepository(),
			seeder:   users,
		}
	case config.StoreDriverPostgres:
		db, err := openDB(ctx, cfg)
		if err != nil {
			return stores{}, err
		}
		users := postgres.NewUserRepository(db)
		out = stores{
			contests: postgres.NewContestRepository(db),
			users:    users,
			runs:     postgres.NewRefreshRunRepository(db),
			seeder:   users,
			db:       db,
		}
	default:
		return stores{}, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
	}

	if cfg.CacheEnabled {
		out.cache = basecache.NewStore(cfg.CacheTTL)
		out.contests = cache.NewContestRepository(out.contests, out.cache)
		out.users = cache.NewUserRepository(out.users, out.cache)
	}

	logger.Info("stores ready", "driver", cfg.StoreDriver, "cache_enabled", cfg.CacheEnabled)
	return out, nil
}

// seedUsersIfEmpty loads the demo users into an empty user store. Their
// counts are overwritten by the first stats cycle.
func seedUsersIfEmpty(ctx context.Context, users user.Repository, seeder userInserter, seed []user.User, logger *logging.Logger) (int, error) {
	existing, err := users.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list users before seeding: %w", err)
	}
	if len(existing) > 0 {
		return 0, nil
	}

	inserted := 0
	for _, item := range seed {
		ok, err := seeder.Insert(ctx, item)
		if err != nil {
			return inserted, fmt.Errorf("seed user %s: %w", item.ID, err)
		}
		if ok {
			inserted++
		}
	}
	logger.Info("seeded users", "count", inserted)
	return inserted, nil
}
