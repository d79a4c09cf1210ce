package main

import (
	"context"
	"errors"
	"log"
	"sort"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/tahfidz-portal/config"
	"github.com/oksasatya/tahfidz-portal/internal/application"
	"github.com/oksasatya/tahfidz-portal/internal/domain/entity"
	"github.com/oksasatya/tahfidz-portal/internal/domain/repository"
	"github.com/oksasatya/tahfidz-portal/internal/infrastructure/demo"
	pginfra "github.com/oksasatya/tahfidz-portal/internal/infrastructure/postgres"
	"github.com/oksasatya/tahfidz-portal/pkg/helpers"
)

// Seeds the live backend with the demo organizations and accounts so both
// modes can be exercised with the same logins.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	if cfg.IsDemoMode() {
		log.Fatal("BACKEND_URL and BACKEND_ANON_KEY are required to seed")
	}
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env, cfg.LogLevel)

	ctx := context.Background()
	pool, err := pginfra.NewPool(ctx, cfg.BackendURL, pginfra.PoolOptions{MaxConns: 2, AppName: cfg.AppName + "-seed"})
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	orgRepo := pginfra.NewOrganizationRepository(pool)
	identities := pginfra.NewIdentityRepository(pool)
	accounts := pginfra.NewAccountRepository(pool)
	profiles := pginfra.NewProfileRepository(pool)

	// member directory; seeded and existing profiles are (re)indexed
	var directory *application.ProfileDirectory
	if addrs := cfg.ESAddrs(); len(addrs) > 0 {
		es, err := helpers.NewESClient(addrs, cfg.ElasticsearchUser, cfg.ElasticsearchPass)
		if err != nil {
			log.Fatalf("failed to init elasticsearch client: %v", err)
		}
		if err := helpers.EnsureIndex(ctx, es, cfg.ESProfilesIndex, application.DirectoryMapping); err != nil {
			log.Fatalf("failed to ensure profiles index: %v", err)
		}
		directory = application.NewProfileDirectory(es, cfg.ESProfilesIndex, logger)
	}
	index := func(p *entity.Profile) {
		if err := directory.IndexProfile(ctx, p); err != nil {
			logger.WithError(err).WithField("profile_id", p.ID).Warn("profile not indexed")
		}
	}

	// catalog id -> database id
	orgIDs := map[string]string{}
	for catalogID, o := range demo.Organizations {
		org := o
		if err := orgRepo.Upsert(ctx, &org); err != nil {
			log.Fatalf("failed to upsert organization %s: %v", org.Slug, err)
		}
		orgIDs[catalogID] = org.ID
		logger.WithFields(logrus.Fields{"slug": org.Slug, "id": org.ID}).Info("organization ensured")
	}

	emails := make([]string, 0, len(demo.Accounts))
	for e := range demo.Accounts {
		emails = append(emails, e)
	}
	sort.Strings(emails)

	for _, email := range emails {
		acc := demo.Accounts[email]
		hash, err := helpers.HashPassword(acc.Password)
		if err != nil {
			log.Fatalf("failed to hash password: %v", err)
		}
		profile := acc.Profile
		if profile.HasOrganization() {
			orgID := orgIDs[profile.OrgID()]
			profile.OrganizationID = &orgID
		}
		id, err := accounts.CreateAccount(ctx, email, hash, &profile)
		if errors.Is(err, repository.ErrEmailTaken) {
			existing, err := reindexExisting(ctx, identities, profiles, email)
			if err != nil {
				log.Fatalf("failed to load existing account %s: %v", email, err)
			}
			if existing != nil {
				index(existing)
			}
			logger.WithField("email", email).Info("account exists, reindexed")
			continue
		}
		if err != nil {
			log.Fatalf("failed to seed account %s: %v", email, err)
		}
		index(&profile)
		logger.WithFields(logrus.Fields{"email": email, "id": id.ID, "role": profile.Role}).Info("account seeded")
	}
}

// reindexExisting loads the profile of an already seeded account; nil when
// the identity has no profile.
func reindexExisting(ctx context.Context, identities repository.IdentityRepository, profiles repository.ProfileRepository, email string) (*entity.Profile, error) {
	rec, err := identities.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	p, err := profiles.GetByID(ctx, rec.Identity.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	return p, err
}
