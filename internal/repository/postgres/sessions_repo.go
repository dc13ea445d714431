package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tasknest/tasknest-backend/internal/models"
	repo "github.com/tasknest/tasknest-backend/internal/repository"
)

type sessionsRepo struct{ pool *pgxpool.Pool }

func (r *sessionsRepo) Create(ctx context.Context, s models.Session) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO sessions(id, user_id, expires_at) VALUES($1,$2,$3)`,
		s.ID, s.UserID, s.ExpiresAt,
	)
	return err
}

func (r *sessionsRepo) Get(ctx context.Context, id string) (models.Session, error) {
	var s models.Session
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, created_at, expires_at FROM sessions WHERE id=$1`, id,
	).Scan(&s.ID, &s.UserID, &s.CreatedAt, &s.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Session{}, repo.ErrNotFound
	}
	return s, err
}

func (r *sessionsRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}
