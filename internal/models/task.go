package models

import (
	"fmt"
	"time"
)

type TaskStatus string

const (
	StatusPending   TaskStatus = "pending"
	StatusInProcess TaskStatus = "in_process"
	StatusCompleted TaskStatus = "completed"
)

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

// Display labels, kept separate from the closed enum values.
var StatusLabels = map[TaskStatus]string{
	StatusPending:   "Pending",
	StatusInProcess: "In Process",
	StatusCompleted: "Completed",
}

var PriorityLabels = map[TaskPriority]string{
	PriorityLow:    "Low",
	PriorityMedium: "Medium",
	PriorityHigh:   "High",
}

// ValidStatuses and ValidPriorities are in declaration order for stable
// error messages.
var ValidStatuses = []TaskStatus{StatusPending, StatusInProcess, StatusCompleted}
var ValidPriorities = []TaskPriority{PriorityLow, PriorityMedium, PriorityHigh}

func (s TaskStatus) Valid() bool {
	_, ok := StatusLabels[s]
	return ok
}

func (p TaskPriority) Valid() bool {
	_, ok := PriorityLabels[p]
	return ok
}

type Task struct {
	ID          string       `json:"id"`
	UserID      string       `json:"-"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	DueDate     *time.Time   `json:"due_date,omitempty"`
	CompletedAt *time.Time   `json:"completed_at,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// MarkComplete moves the task to completed and stamps completed_at.
func (t *Task) MarkComplete() {
	now := time.Now()
	t.Status = StatusCompleted
	t.CompletedAt = &now
}

// MarkIncomplete moves the task back to pending and clears completed_at.
func (t *Task) MarkIncomplete() {
	t.Status = StatusPending
	t.CompletedAt = nil
}

// ToggleComplete flips completion. A completed task lands on pending; any
// other state (including in_process) lands on completed.
func (t *Task) ToggleComplete() {
	if t.Status == StatusCompleted {
		t.MarkIncomplete()
	} else {
		t.MarkComplete()
	}
}

// SetStatus validates and applies a status, maintaining the rule that
// completed_at is set exactly when status is completed.
func (t *Task) SetStatus(s TaskStatus) error {
	if !s.Valid() {
		return fmt.Errorf("status must be one of: %v", ValidStatuses)
	}
	t.Status = s
	if s == StatusCompleted {
		if t.CompletedAt == nil {
			now := time.Now()
			t.CompletedAt = &now
		}
	} else {
		t.CompletedAt = nil
	}
	return nil
}

func (t *Task) SetPriority(p TaskPriority) error {
	if !p.Valid() {
		return fmt.Errorf("priority must be one of: %v", ValidPriorities)
	}
	t.Priority = p
	return nil
}

func (t *Task) IsCompleted() bool {
	return t.Status == StatusCompleted
}

// IsOverdue reports whether the task has a due date strictly before today
// and is not completed. Completed tasks are never overdue.
func (t *Task) IsOverdue() bool {
	if t.DueDate == nil || t.Status == StatusCompleted {
		return false
	}
	return t.DueDate.Before(Today())
}

// Today returns midnight UTC of the current calendar day. Due dates are
// calendar dates, so all comparisons happen at whole-day granularity.
func Today() time.Time {
	y, m, d := time.Now().UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DateOnly truncates a timestamp to its UTC calendar date.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
