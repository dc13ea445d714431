package repository

import (
	"context"
	"errors"

	"github.com/tasknest/tasknest-backend/internal/models"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrUsernameTaken = errors.New("username already taken")
	ErrEmailTaken    = errors.New("email already taken")
)

// TaskFilter narrows and orders an owner's task list. Zero values mean
// "not applied".
type TaskFilter struct {
	Status   models.TaskStatus
	Priority models.TaskPriority
	Search   string // matches title or description, case-insensitive
	Ordering string // created_at | due_date | priority | status, "-" prefix for descending
	Limit    int
	Offset   int
}

type Users interface {
	Create(ctx context.Context, u models.User) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
	GetByUsername(ctx context.Context, username string) (models.User, error)
	// UsernameExists and EmailExists ignore the user identified by excludeID,
	// so a user re-submitting their own value passes. An empty excludeID
	// excludes no one.
	UsernameExists(ctx context.Context, username, excludeID string) (bool, error)
	EmailExists(ctx context.Context, email, excludeID string) (bool, error)
	Update(ctx context.Context, u models.User) error
	UpdateLastLogin(ctx context.Context, id string) error
}

type Sessions interface {
	Create(ctx context.Context, s models.Session) error
	Get(ctx context.Context, id string) (models.Session, error)
	Delete(ctx context.Context, id string) error
}

// Tasks is owner-scoped by construction: every single-record method takes the
// owner's ID and matches on it, so a non-owner's lookup is indistinguishable
// from a missing record.
type Tasks interface {
	Create(ctx context.Context, t models.Task) (models.Task, error)
	GetByID(ctx context.Context, id, ownerID string) (models.Task, error)
	List(ctx context.Context, ownerID string, f TaskFilter) ([]models.Task, error)
	Update(ctx context.Context, t models.Task) (models.Task, error)
	Delete(ctx context.Context, id, ownerID string) error
	Overdue(ctx context.Context, ownerID string) ([]models.Task, error)
	DueToday(ctx context.Context, ownerID string) ([]models.Task, error)
}

type ActivityLogs interface {
	Create(ctx context.Context, l models.ActivityLog) error
}
