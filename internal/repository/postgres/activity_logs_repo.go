package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tasknest/tasknest-backend/internal/models"
)

type activityLogsRepo struct{ pool *pgxpool.Pool }

func (r *activityLogsRepo) Create(ctx context.Context, l models.ActivityLog) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO activity_logs(id, entity_type, entity_id, user_id, action, details)
		 VALUES($1,$2,$3,$4,$5,$6)`,
		l.ID, l.EntityType, l.EntityID, l.UserID, l.Action, l.Details,
	)
	return err
}
