package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/riskibarqy/pickem-league/internal/config"
	"github.com/riskibarqy/pickem-league/internal/domain/game"
	"github.com/riskibarqy/pickem-league/internal/domain/league"
	"github.com/riskibarqy/pickem-league/internal/domain/pick"
	"github.com/riskibarqy/pickem-league/internal/domain/score"
	cacherepo "github.com/riskibarqy/pickem-league/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/pickem-league/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/pickem-league/internal/infrastructure/repository/postgres"
	basecache "github.com/riskibarqy/pickem-league/internal/platform/cache"
	"github.com/riskibarqy/pickem-league/internal/platform/logging"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
)

const (
	dbMaxOpenConns    = 20
	dbMaxIdleConns    = 10
	dbConnMaxLifetime = 30 * time.Minute
	dbPingTimeout     = 5 * time.Second
	leagueCacheSize   = 4096
)

type repositories struct {
	games   game.Repository
	picks   pick.Repository
	scores  score.Repository
	leagues league.Repository
	close   func() error
}

func openRepositories(ctx context.Context, cfg config.Config, logger *logging.Logger) (repositories, error) {
	var repos repositories
	switch cfg.StorageDriver {
	case config.StorageMemory:
		logger.Warn("using in-memory storage, data is lost on restart")
		repos = repositories{
			games:   memory.NewGameRepository(memory.SeedGames()),
			picks:   memory.NewPickRepository(nil),
			scores:  memory.NewScoreRepository(),
			leagues: memory.NewLeagueRepository(memory.SeedLeagues(), memory.SeedMembers()),
			close:   func() error { return nil },
		}
	case config.StoragePostgres:
		db, err := openDB(ctx, cfg)
		if err != nil {
			return repositories{}, err
		}
		if cfg.AppEnv == config.EnvDev {
			if err := postgres.BootstrapSeed(ctx, db); err != nil {
				_ = db.Close()
				return repositories{}, fmt.Errorf("bootstrap seed: %w", err)
			}
		}
		repos = repositories{
			games:   postgres.NewGameRepository(db),
			picks:   postgres.NewPickRepository(db),
			scores:  postgres.NewScoreRepository(db),
			leagues: postgres.NewLeagueRepository(db),
			close:   db.Close,
		}
	default:
		return repositories{}, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}

	if cfg.CacheEnabled {
		repos.leagues = cacherepo.NewLeagueRepository(
			repos.leagues,
			basecache.NewStore(cfg.CacheTTL, basecache.WithMaxEntries(leagueCacheSize)),
		)
	}
	return repos, nil
}

func openDB(ctx context.Context, cfg config.Config) (*sqlx.DB, error) {
	dsn := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)

	db, err := otelsqlx.Open("postgres", dsn,
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(dbNameFromURL(dsn)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(dbMaxOpenConns)
	db.SetMaxIdleConns(dbMaxIdleConns)
	db.SetConnMaxLifetime(dbConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, dbPingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}
