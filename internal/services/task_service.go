package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/tasknest/tasknest-backend/internal/api/validate"
	"github.com/tasknest/tasknest-backend/internal/metrics"
	"github.com/tasknest/tasknest-backend/internal/models"
	repo "github.com/tasknest/tasknest-backend/internal/repository"
	"github.com/tasknest/tasknest-backend/internal/worker"
)

const (
	// PastDueWarning is advisory only; a past due date never blocks a write.
	PastDueWarning = "Warning: Due date is in the past."

	maxTitleLen = 70
)

type TaskService struct {
	tasks    repo.Tasks
	activity repo.ActivityLogs
	wp       *worker.Pool
}

func NewTaskService(tasks repo.Tasks, activity repo.ActivityLogs, wp *worker.Pool) *TaskService {
	return &TaskService{tasks: tasks, activity: activity, wp: wp}
}

type TaskCreateInput struct {
	Title       string
	Description string
	Status      string
	Priority    string
	DueDate     *time.Time
}

// Create validates and stores a new task owned by ownerID. The returned
// warning is non-empty when the due date is already in the past.
func (s *TaskService) Create(ctx context.Context, ownerID string, in TaskCreateInput) (models.Task, string, error) {
	var errs validate.Errs

	title := strings.TrimSpace(in.Title)
	if title == "" {
		errs.Add("title", "cannot be empty or just whitespace")
	} else if e := validate.MaxLen("title", title, maxTitleLen); e != nil {
		errs = append(errs, *e)
	}

	status := models.StatusPending
	if in.Status != "" {
		status = models.TaskStatus(in.Status)
		if !status.Valid() {
			errs.Add("status", statusChoiceMsg())
		}
	}
	priority := models.PriorityMedium
	if in.Priority != "" {
		priority = models.TaskPriority(in.Priority)
		if !priority.Valid() {
			errs.Add("priority", priorityChoiceMsg())
		}
	}
	if len(errs) > 0 {
		return models.Task{}, "", errs
	}

	t := models.Task{
		UserID:      ownerID,
		Title:       title,
		Description: in.Description,
		Priority:    priority,
	}
	// SetStatus keeps completed_at consistent when a task is born completed.
	if err := t.SetStatus(status); err != nil {
		return models.Task{}, "", err
	}
	if in.DueDate != nil {
		d := models.DateOnly(*in.DueDate)
		t.DueDate = &d
	}

	created, err := s.tasks.Create(ctx, t)
	if err != nil {
		return models.Task{}, "", err
	}
	metrics.TasksCreatedTotal.Inc()
	s.record(created, "created", nil)
	return created, pastDueWarning(created.DueDate), nil
}

func (s *TaskService) List(ctx context.Context, ownerID string, f repo.TaskFilter) ([]models.Task, error) {
	var errs validate.Errs
	if f.Status != "" && !f.Status.Valid() {
		errs.Add("status", statusChoiceMsg())
	}
	if f.Priority != "" && !f.Priority.Valid() {
		errs.Add("priority", priorityChoiceMsg())
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return s.tasks.List(ctx, ownerID, f)
}

func (s *TaskService) Get(ctx context.Context, ownerID, id string) (models.Task, error) {
	t, err := s.tasks.GetByID(ctx, id, ownerID)
	if errors.Is(err, repo.ErrNotFound) {
		return models.Task{}, ErrNotFound
	}
	return t, err
}

type TaskUpdateInput struct {
	Title       *string
	Description *string
	Status      *string
	Priority    *string
	DueDate     *time.Time
	ClearDue    bool
}

// Update applies a partial update to an owned task. Status changes go through
// the lifecycle helper so completed_at always tracks the completed state.
func (s *TaskService) Update(ctx context.Context, ownerID, id string, in TaskUpdateInput) (models.Task, string, error) {
	t, err := s.tasks.GetByID(ctx, id, ownerID)
	if errors.Is(err, repo.ErrNotFound) {
		return models.Task{}, "", ErrNotFound
	}
	if err != nil {
		return models.Task{}, "", err
	}
	wasCompleted := t.IsCompleted()

	var errs validate.Errs

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			errs.Add("title", "cannot be empty or just whitespace")
		} else if e := validate.MaxLen("title", title, maxTitleLen); e != nil {
			errs = append(errs, *e)
		} else {
			t.Title = title
		}
	}
	if in.Description != nil {
		t.Description = *in.Description
	}
	if in.Status != nil {
		if err := t.SetStatus(models.TaskStatus(*in.Status)); err != nil {
			errs.Add("status", statusChoiceMsg())
		}
	}
	if in.Priority != nil {
		if err := t.SetPriority(models.TaskPriority(*in.Priority)); err != nil {
			errs.Add("priority", priorityChoiceMsg())
		}
	}
	if in.ClearDue {
		t.DueDate = nil
	} else if in.DueDate != nil {
		d := models.DateOnly(*in.DueDate)
		t.DueDate = &d
	}

	if len(errs) > 0 {
		return models.Task{}, "", errs
	}

	updated, err := s.tasks.Update(ctx, t)
	if errors.Is(err, repo.ErrNotFound) {
		return models.Task{}, "", ErrNotFound
	}
	if err != nil {
		return models.Task{}, "", err
	}
	if !wasCompleted && updated.IsCompleted() {
		metrics.TasksCompletedTotal.Inc()
		s.record(updated, "completed", nil)
	}
	return updated, pastDueWarning(updated.DueDate), nil
}

// Delete removes an owned task permanently and returns its title for the
// response message.
func (s *TaskService) Delete(ctx context.Context, ownerID, id string) (string, error) {
	t, err := s.tasks.GetByID(ctx, id, ownerID)
	if errors.Is(err, repo.ErrNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	if err := s.tasks.Delete(ctx, id, ownerID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}
	s.record(t, "deleted", nil)
	return t.Title, nil
}

// ToggleComplete flips completion. Completed tasks land on pending; pending
// and in_process tasks land on completed.
func (s *TaskService) ToggleComplete(ctx context.Context, ownerID, id string) (models.Task, error) {
	t, err := s.tasks.GetByID(ctx, id, ownerID)
	if errors.Is(err, repo.ErrNotFound) {
		return models.Task{}, ErrNotFound
	}
	if err != nil {
		return models.Task{}, err
	}

	t.ToggleComplete()
	updated, err := s.tasks.Update(ctx, t)
	if errors.Is(err, repo.ErrNotFound) {
		return models.Task{}, ErrNotFound
	}
	if err != nil {
		return models.Task{}, err
	}
	if updated.IsCompleted() {
		metrics.TasksCompletedTotal.Inc()
		s.record(updated, "completed", nil)
	} else {
		s.record(updated, "reopened", nil)
	}
	return updated, nil
}

// Overdue lists the owner's tasks due strictly before today and not yet
// completed.
func (s *TaskService) Overdue(ctx context.Context, ownerID string) ([]models.Task, error) {
	return s.tasks.Overdue(ctx, ownerID)
}

// DueToday lists the owner's tasks due today, any status.
func (s *TaskService) DueToday(ctx context.Context, ownerID string) ([]models.Task, error) {
	return s.tasks.DueToday(ctx, ownerID)
}

// record writes an activity entry through the worker pool. Best effort: a
// failed write is logged and never fails the request.
func (s *TaskService) record(t models.Task, action string, details map[string]any) {
	taskID, userID := t.ID, t.UserID
	s.wp.Submit(func() {
		err := s.activity.Create(context.Background(), models.ActivityLog{
			EntityType: "task",
			EntityID:   &taskID,
			UserID:     &userID,
			Action:     action,
			Details:    details,
		})
		if err != nil {
			slog.Warn("activity log write failed", "action", action, "task", taskID, "err", err)
		}
	})
}

func statusChoiceMsg() string {
	return "must be one of: pending, in_process, completed"
}

func priorityChoiceMsg() string {
	return "must be one of: low, medium, high"
}

func pastDueWarning(due *time.Time) string {
	if due != nil && due.Before(models.Today()) {
		return PastDueWarning
	}
	return ""
}
