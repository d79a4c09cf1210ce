package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/tahfidz-portal/internal/domain/entity"
	"github.com/oksasatya/tahfidz-portal/internal/domain/repository"
)

type IdentityRepository struct {
	pool *pgxpool.Pool
}

func NewIdentityRepository(pool *pgxpool.Pool) *IdentityRepository {
	return &IdentityRepository{pool: pool}
}

func insertIdentity(ctx context.Context, q querier, email, passwordHash string) (*entity.Identity, error) {
	id := &entity.Identity{Email: email}
	err := q.QueryRow(ctx, `
		INSERT INTO identities (email, password_hash)
		VALUES ($1, $2)
		RETURNING id
	`, email, passwordHash).Scan(&id.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, repository.ErrEmailTaken
		}
		return nil, err
	}
	return id, nil
}

func (r *IdentityRepository) GetByEmail(ctx context.Context, email string) (*repository.IdentityRecord, error) {
	rec := &repository.IdentityRecord{}
	err := r.pool.QueryRow(ctx, `
		SELECT id, email, password_hash
		FROM identities
		WHERE email = $1
	`, email).Scan(&rec.Identity.ID, &rec.Identity.Email, &rec.PasswordHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return rec, nil
}

func (r *IdentityRepository) GetByID(ctx context.Context, id string) (*entity.Identity, error) {
	out := &entity.Identity{}
	err := r.pool.QueryRow(ctx, `SELECT id, email FROM identities WHERE id = $1`, id).Scan(&out.ID, &out.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return out, nil
}

var _ repository.IdentityRepository = (*IdentityRepository)(nil)
