package main

import (
	"context"
	"io"

	"xiuh/internal/adapters/storage/dynamo"
	"xiuh/internal/adapters/storage/memory"
	"xiuh/internal/adapters/storage/postgres"
	"xiuh/internal/adapters/storage/sqlite"
	"xiuh/internal/domain/pets"
	"xiuh/internal/domain/timezones"
	"xiuh/internal/platform/cache"
	"xiuh/internal/platform/config"
	"xiuh/internal/platform/logger"
	"xiuh/internal/router"

	"github.com/pkg/errors"
)

type store struct {
	repos  router.Repos
	closer io.Closer
}

func (s *store) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

func openStore(ctx context.Context, cfg config.Config, log logger.Logger) (*store, error) {
	switch cfg.Backend {
	case config.BackendPostgres:
		db, err := postgres.Open(cfg.DBDSN)
		if err != nil {
			return nil, err
		}
		if err := postgres.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
		return &store{
			repos: router.Repos{
				Pets:      postgres.NewPetsRepo(db),
				Inventory: postgres.NewInventoryRepo(db),
				Daily:     postgres.NewDailyRepo(db),
				Timezones: postgres.NewTimezonesRepo(db),
			},
			closer: db,
		}, nil

	case config.BackendSQLite:
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return &store{
			repos: router.Repos{
				Pets:      sqlite.NewPetsRepo(db),
				Inventory: sqlite.NewInventoryRepo(db),
				Daily:     sqlite.NewDailyRepo(db),
				Timezones: sqlite.NewTimezonesRepo(db),
			},
			closer: db,
		}, nil

	case config.BackendDynamo:
		client, err := dynamo.NewClient(ctx, cfg.AWSRegion, cfg.DynamoEndpoint)
		if err != nil {
			return nil, err
		}
		s := dynamo.New(client, cfg.DynamoTable, cfg.TimezoneTable)
		return &store{
			repos: router.Repos{
				Pets:      dynamo.NewPetsRepo(s),
				Inventory: dynamo.NewInventoryRepo(s),
				Daily:     dynamo.NewDailyRepo(s),
				Timezones: dynamo.NewTimezonesRepo(s),
			},
		}, nil

	case config.BackendMemory:
		log.Warn("using in-memory store, data is lost on restart", nil)
		return &store{repos: router.MemoryRepos(memory.NewStore())}, nil
	}
	return nil, errors.Errorf("unknown backend %q", cfg.Backend)
}

func newCaches(cfg config.Config) (cache.Cache[pets.Pet], cache.Cache[timezones.UserTimezone], error) {
	petCache, err := cache.NewTTL[pets.Pet](cfg.CacheSize, cfg.PetCacheTTL, nil)
	if err != nil {
		return nil, nil, errors.Wrap(err, "pet cache")
	}
	tzCache, err := cache.NewTTL[timezones.UserTimezone](cfg.CacheSize, cfg.TimezoneCacheTTL, nil)
	if err != nil {
		return nil, nil, errors.Wrap(err, "timezone cache")
	}
	return petCache, tzCache, nil
}
