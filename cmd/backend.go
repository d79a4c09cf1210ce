package main

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/tahfidz-portal/config"
	"github.com/oksasatya/tahfidz-portal/internal/application"
	"github.com/oksasatya/tahfidz-portal/internal/domain/repository"
	"github.com/oksasatya/tahfidz-portal/internal/infrastructure/demo"
	"github.com/oksasatya/tahfidz-portal/internal/infrastructure/live"
	pginfra "github.com/oksasatya/tahfidz-portal/internal/infrastructure/postgres"
)

// demoBackends gives every client its own emulator over local storage.
// The shared data client only serves catalog lookups.
func demoBackends(cfg *config.Config, rdb *redis.Client, logger *logrus.Logger) (application.BackendFactory, repository.DataClient) {
	factory := func(clientID string) (repository.AuthClient, repository.DataClient, error) {
		var store repository.Storage
		if cfg.DemoStorage == "redis" {
			store = demo.NewRedisStorage(rdb, clientID)
		} else {
			store = demo.NewFileStorage(cfg.DemoStorageDir, clientID)
		}
		em := demo.NewEmulator(store, logger)
		return em, em, nil
	}
	return factory, demo.NewEmulator(nil, logger)
}

// liveBackends shares one postgres data client; auth state is per client
// and cached in redis. directory may be nil.
func liveBackends(cfg *config.Config, pool *pgxpool.Pool, rdb *redis.Client, directory *application.ProfileDirectory, logger *logrus.Logger) (application.BackendFactory, repository.DataClient) {
	identities := pginfra.NewIdentityRepository(pool)
	accounts := pginfra.NewAccountRepository(pool)
	orgs := pginfra.NewOrganizationRepository(pool)
	sessions := live.NewRedisSessions(rdb)
	data := pginfra.NewDataClient(pool)

	factory := func(clientID string) (repository.AuthClient, repository.DataClient, error) {
		c := live.NewAuthClient(clientID, identities, accounts, orgs, sessions, cfg.SessionTTL, logger)
		if directory != nil {
			c.Directory = directory
		}
		return c, data, nil
	}
	return factory, data
}
