package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/afisha-board/backend/internal/models"
)

type auditLogsRepo struct{ pool *pgxpool.Pool }

func (r *auditLogsRepo) Create(ctx context.Context, l models.AuditLog) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO audit_logs(entity_type, entity_id, action, actor_id, details)
		 VALUES($1,$2,$3,$4,$5)`,
		l.EntityType, l.EntityID, l.Action, l.ActorID, l.Details,
	)
	return err
}
