package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/tahfidz-portal/internal/domain/entity"
	"github.com/oksasatya/tahfidz-portal/internal/domain/repository"
)

type OrganizationRepository struct {
	pool *pgxpool.Pool
}

func NewOrganizationRepository(pool *pgxpool.Pool) *OrganizationRepository {
	return &OrganizationRepository{pool: pool}
}

func (r *OrganizationRepository) GetByID(ctx context.Context, id string) (*entity.Organization, error) {
	return scanOrganization(r.pool.QueryRow(ctx, `
		SELECT id, name, slug, active, created_at
		FROM organizations
		WHERE id = $1
	`, id))
}

// GetBySlug matches the slug exactly.
func (r *OrganizationRepository) GetBySlug(ctx context.Context, slug string) (*entity.Organization, error) {
	return scanOrganization(r.pool.QueryRow(ctx, `
		SELECT id, name, slug, active, created_at
		FROM organizations
		WHERE slug = $1
	`, slug))
}

// Upsert inserts or renames an organization keyed by slug. Used by the seeder.
func (r *OrganizationRepository) Upsert(ctx context.Context, o *entity.Organization) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO organizations (name, slug, active)
		VALUES ($1, $2, $3)
		ON CONFLICT (slug) DO UPDATE SET name = EXCLUDED.name, active = EXCLUDED.active
		RETURNING id, created_at
	`, o.Name, o.Slug, o.Active)
	return row.Scan(&o.ID, &o.CreatedAt)
}

func scanOrganization(row pgx.Row) (*entity.Organization, error) {
	o := &entity.Organization{}
	if err := row.Scan(&o.ID, &o.Name, &o.Slug, &o.Active, &o.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return o, nil
}

var _ repository.OrganizationRepository = (*OrganizationRepository)(nil)
