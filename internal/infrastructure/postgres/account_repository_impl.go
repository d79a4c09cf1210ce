package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/tahfidz-portal/internal/domain/entity"
	"github.com/oksasatya/tahfidz-portal/internal/domain/repository"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type AccountRepository struct {
	pool *pgxpool.Pool
}

func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

func (r *AccountRepository) withTx(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

// CreateAccount inserts the identity and its profile together; a failed
// profile insert leaves no identity behind.
func (r *AccountRepository) CreateAccount(ctx context.Context, email, passwordHash string, p *entity.Profile) (*entity.Identity, error) {
	var id *entity.Identity
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		created, err := insertIdentity(ctx, tx, email, passwordHash)
		if err != nil {
			return err
		}
		p.ID = created.ID
		if err := insertProfile(ctx, tx, p); err != nil {
			return fmt.Errorf("create profile: %w", err)
		}
		id = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return id, nil
}

var _ repository.AccountRepository = (*AccountRepository)(nil)
