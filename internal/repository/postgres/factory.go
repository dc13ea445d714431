package postgres

import (
	repo "github.com/tasknest/tasknest-backend/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repositories struct {
	Users        repo.Users
	Sessions     repo.Sessions
	Tasks        repo.Tasks
	ActivityLogs repo.ActivityLogs
}

func NewRepositories(pool *pgxpool.Pool) Repositories {
	return Repositories{
		Users:        &usersRepo{pool},
		Sessions:     &sessionsRepo{pool},
		Tasks:        &tasksRepo{pool},
		ActivityLogs: &activityLogsRepo{pool},
	}
}
