package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/tahfidz-portal/internal/domain/entity"
	"github.com/oksasatya/tahfidz-portal/internal/domain/repository"
)

// DataClient is the live row-fetch backend. It is shared by every portal.
type DataClient struct {
	Profiles      *ProfileRepository
	Organizations *OrganizationRepository
}

func NewDataClient(pool *pgxpool.Pool) *DataClient {
	return &DataClient{
		Profiles:      NewProfileRepository(pool),
		Organizations: NewOrganizationRepository(pool),
	}
}

func (c *DataClient) ProfileByID(ctx context.Context, id string) (*entity.Profile, error) {
	return c.Profiles.GetByID(ctx, id)
}

func (c *DataClient) OrganizationByID(ctx context.Context, id string) (*entity.Organization, error) {
	return c.Organizations.GetByID(ctx, id)
}

func (c *DataClient) OrganizationBySlug(ctx context.Context, slug string) (*entity.Organization, error) {
	return c.Organizations.GetBySlug(ctx, slug)
}

var _ repository.DataClient = (*DataClient)(nil)
