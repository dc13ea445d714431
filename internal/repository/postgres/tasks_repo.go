package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tasknest/tasknest-backend/internal/models"
	repo "github.com/tasknest/tasknest-backend/internal/repository"
)

type tasksRepo struct{ pool *pgxpool.Pool }

const taskCols = `id, user_id, title, description, status, priority,
	due_date, completed_at, created_at, updated_at`

func scanTask(row pgx.Row) (models.Task, error) {
	var t models.Task
	err := row.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Status,
		&t.Priority, &t.DueDate, &t.CompletedAt, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Task{}, repo.ErrNotFound
	}
	return t, err
}

func (r *tasksRepo) Create(ctx context.Context, t models.Task) (models.Task, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return scanTask(r.pool.QueryRow(ctx,
		`INSERT INTO tasks(id, user_id, title, description, status, priority, due_date, completed_at)
		 VALUES($1,$2,$3,$4,$5,$6,$7,$8)
		 RETURNING `+taskCols,
		t.ID, t.UserID, t.Title, t.Description, t.Status, t.Priority, t.DueDate, t.CompletedAt,
	))
}

func (r *tasksRepo) GetByID(ctx context.Context, id, ownerID string) (models.Task, error) {
	return scanTask(r.pool.QueryRow(ctx,
		`SELECT `+taskCols+` FROM tasks WHERE id=$1 AND user_id=$2`, id, ownerID))
}

// orderClauses maps the public ordering keys to SQL. Priority and status
// order by rank, not alphabetically.
var orderClauses = map[string]string{
	"created_at": "created_at",
	"due_date":   "due_date",
	"priority":   "CASE priority WHEN 'low' THEN 1 WHEN 'medium' THEN 2 WHEN 'high' THEN 3 END",
	"status":     "CASE status WHEN 'pending' THEN 1 WHEN 'in_process' THEN 2 WHEN 'completed' THEN 3 END",
}

func orderBy(ordering string) string {
	dir := "ASC"
	key := ordering
	if strings.HasPrefix(ordering, "-") {
		dir = "DESC"
		key = ordering[1:]
	}
	clause, ok := orderClauses[key]
	if !ok {
		return "created_at DESC"
	}
	return clause + " " + dir
}

func (r *tasksRepo) List(ctx context.Context, ownerID string, f repo.TaskFilter) ([]models.Task, error) {
	var (
		where = []string{"user_id=$1"}
		args  = []any{ownerID}
	)
	if f.Status != "" {
		args = append(args, f.Status)
		where = append(where, fmt.Sprintf("status=$%d", len(args)))
	}
	if f.Priority != "" {
		args = append(args, f.Priority)
		where = append(where, fmt.Sprintf("priority=$%d", len(args)))
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		where = append(where, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", len(args), len(args)))
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}
	args = append(args, limit, offset)

	q := fmt.Sprintf(`SELECT %s FROM tasks WHERE %s ORDER BY %s LIMIT $%d OFFSET $%d`,
		taskCols, strings.Join(where, " AND "), orderBy(f.Ordering), len(args)-1, len(args))

	return r.queryTasks(ctx, q, args...)
}

func (r *tasksRepo) Update(ctx context.Context, t models.Task) (models.Task, error) {
	return scanTask(r.pool.QueryRow(ctx,
		`UPDATE tasks
		    SET title=$3, description=$4, status=$5, priority=$6,
		        due_date=$7, completed_at=$8, updated_at=now()
		  WHERE id=$1 AND user_id=$2
		  RETURNING `+taskCols,
		t.ID, t.UserID, t.Title, t.Description, t.Status, t.Priority, t.DueDate, t.CompletedAt,
	))
}

func (r *tasksRepo) Delete(ctx context.Context, id, ownerID string) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM tasks WHERE id=$1 AND user_id=$2`, id, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *tasksRepo) Overdue(ctx context.Context, ownerID string) ([]models.Task, error) {
	return r.queryTasks(ctx,
		`SELECT `+taskCols+` FROM tasks
		  WHERE user_id=$1 AND due_date < CURRENT_DATE AND status <> 'completed'
		  ORDER BY due_date ASC`,
		ownerID)
}

func (r *tasksRepo) DueToday(ctx context.Context, ownerID string) ([]models.Task, error) {
	return r.queryTasks(ctx,
		`SELECT `+taskCols+` FROM tasks
		  WHERE user_id=$1 AND due_date = CURRENT_DATE
		  ORDER BY created_at DESC`,
		ownerID)
}

func (r *tasksRepo) queryTasks(ctx context.Context, q string, args ...any) ([]models.Task, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
