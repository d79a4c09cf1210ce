package postgres

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/tahfidz-portal/internal/domain/repository"
)

// AuditRepository appends rows to auth_audit_log.
type AuditRepository struct {
	pool *pgxpool.Pool
}

func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{pool: pool}
}

func (r *AuditRepository) Insert(ctx context.Context, e repository.AuditEntry) error {
	meta := []byte("{}")
	if len(e.Metadata) > 0 {
		b, err := json.Marshal(e.Metadata)
		if err != nil {
			return err
		}
		meta = b
	}
	var identityID *string
	if e.IdentityID != "" {
		identityID = &e.IdentityID
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO auth_audit_log (identity_id, email, action, ip, user_agent, metadata)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, identityID, e.Email, e.Action, e.IP, e.UserAgent, meta)
	return err
}

var _ repository.AuditRepository = (*AuditRepository)(nil)
