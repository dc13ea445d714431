package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tasknest/tasknest-backend/internal/models"
	repo "github.com/tasknest/tasknest-backend/internal/repository"
)

type usersRepo struct{ pool *pgxpool.Pool }

const userCols = `id, username, email, first_name, last_name, password_hash,
	is_active, last_username_change, last_login, date_joined, updated_at`

func scanUser(row pgx.Row) (models.User, error) {
	var u models.User
	var email *string
	err := row.Scan(&u.ID, &u.Username, &email, &u.FirstName, &u.LastName,
		&u.PasswordHash, &u.IsActive, &u.LastUsernameChange, &u.LastLogin,
		&u.DateJoined, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.User{}, repo.ErrNotFound
	}
	if email != nil {
		u.Email = *email
	}
	return u, err
}

// emailOrNil stores absent emails as NULL so the unique constraint only
// applies to users who actually have one.
func emailOrNil(email string) *string {
	if email == "" {
		return nil
	}
	return &email
}

func (r *usersRepo) Create(ctx context.Context, u models.User) (models.User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO users(id, username, email, first_name, last_name, password_hash, is_active)
		 VALUES($1,$2,$3,$4,$5,$6,$7)`,
		u.ID, u.Username, emailOrNil(u.Email), u.FirstName, u.LastName, u.PasswordHash, true,
	)
	if err != nil {
		return models.User{}, mapUniqueViolation(err)
	}
	return r.GetByID(ctx, u.ID)
}

func (r *usersRepo) GetByID(ctx context.Context, id string) (models.User, error) {
	return scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userCols+` FROM users WHERE id=$1`, id))
}

func (r *usersRepo) GetByUsername(ctx context.Context, username string) (models.User, error) {
	return scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userCols+` FROM users WHERE username=$1`, username))
}

func (r *usersRepo) UsernameExists(ctx context.Context, username, excludeID string) (bool, error) {
	return r.exists(ctx, "username", username, excludeID)
}

func (r *usersRepo) EmailExists(ctx context.Context, email, excludeID string) (bool, error) {
	return r.exists(ctx, "email", email, excludeID)
}

// existsQuery builds the uniqueness probe. The exclusion clause is only
// emitted when there is a caller to exclude: the id column is uuid-typed
// and pgx cannot encode an empty string into it.
func existsQuery(col string, exclude bool) string {
	if exclude {
		return `SELECT EXISTS(SELECT 1 FROM users WHERE ` + col + `=$1 AND id<>$2)`
	}
	return `SELECT EXISTS(SELECT 1 FROM users WHERE ` + col + `=$1)`
}

func (r *usersRepo) exists(ctx context.Context, col, value, excludeID string) (bool, error) {
	args := []any{value}
	if excludeID != "" {
		args = append(args, excludeID)
	}
	var exists bool
	err := r.pool.QueryRow(ctx, existsQuery(col, excludeID != ""), args...).Scan(&exists)
	return exists, err
}

func (r *usersRepo) Update(ctx context.Context, u models.User) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users
		    SET username=$2, email=$3, first_name=$4, last_name=$5,
		        last_username_change=$6, updated_at=now()
		  WHERE id=$1`,
		u.ID, u.Username, emailOrNil(u.Email), u.FirstName, u.LastName, u.LastUsernameChange,
	)
	if err != nil {
		return mapUniqueViolation(err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *usersRepo) UpdateLastLogin(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `UPDATE users SET last_login=now() WHERE id=$1`, id)
	return err
}

// mapUniqueViolation translates Postgres unique-constraint failures into the
// repository sentinels so races past the service-level pre-checks still
// surface as field errors, not 500s.
func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		switch pgErr.ConstraintName {
		case "users_username_key":
			return repo.ErrUsernameTaken
		case "users_email_key":
			return repo.ErrEmailTaken
		}
	}
	return err
}
