package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/tahfidz-portal/internal/domain/entity"
	"github.com/oksasatya/tahfidz-portal/internal/domain/repository"
)

const profileColumns = `id, organization_id, full_name, role, status, email, phone, avatar_url, created_at, updated_at`

type ProfileRepository struct {
	pool *pgxpool.Pool
}

func NewProfileRepository(pool *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

func insertProfile(ctx context.Context, q querier, p *entity.Profile) error {
	row := q.QueryRow(ctx, `
		INSERT INTO profiles (id, organization_id, full_name, role, status, email, phone, avatar_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`, p.ID, p.OrganizationID, p.FullName, p.Role, p.Status, p.Email, p.Phone, p.AvatarURL)

	return row.Scan(&p.CreatedAt, &p.UpdatedAt)
}

func (r *ProfileRepository) GetByID(ctx context.Context, id string) (*entity.Profile, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id)
	return scanProfile(row)
}

func (r *ProfileRepository) Update(ctx context.Context, p *entity.Profile) error {
	p.UpdatedAt = time.Now()

	res, err := r.pool.Exec(ctx, `
		UPDATE profiles
		SET full_name = $1, phone = $2, avatar_url = $3, status = $4, updated_at = $5
		WHERE id = $6
	`, p.FullName, p.Phone, p.AvatarURL, p.Status, p.UpdatedAt, p.ID)
	if err != nil {
		return err
	}

	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func scanProfile(row pgx.Row) (*entity.Profile, error) {
	p := &entity.Profile{}
	var role, status string
	if err := row.Scan(&p.ID, &p.OrganizationID, &p.FullName, &role, &status, &p.Email, &p.Phone, &p.AvatarURL,
		&p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	p.Role = entity.Role(role)
	p.Status = entity.ProfileStatus(status)
	return p, nil
}

var _ repository.ProfileRepository = (*ProfileRepository)(nil)
