package handlers

import (
	"time"

	"github.com/tasknest/tasknest-backend/internal/models"
)

const dateLayout = "2006-01-02"

type ownerInfo struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
}

// taskResponse is the detail shape: stored fields plus the derived
// predicates and the owner block.
type taskResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	DueDate     *string    `json:"due_date"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at"`
	IsOverdue   bool       `json:"is_overdue"`
	IsCompleted bool       `json:"is_completed"`
	Owner       ownerInfo  `json:"owner"`
}

func taskPayload(t models.Task, owner models.User) taskResponse {
	var due *string
	if t.DueDate != nil {
		s := t.DueDate.Format(dateLayout)
		due = &s
	}
	return taskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		DueDate:     due,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
		CompletedAt: t.CompletedAt,
		IsOverdue:   t.IsOverdue(),
		IsCompleted: t.IsCompleted(),
		Owner: ownerInfo{
			ID:       owner.ID,
			Username: owner.Username,
			FullName: owner.FullName(),
		},
	}
}

func taskListPayload(tasks []models.Task, owner models.User) []taskResponse {
	out := make([]taskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, taskPayload(t, owner))
	}
	return out
}

// accountPayload is the user block returned by register and login.
func accountPayload(u models.User) map[string]any {
	return map[string]any{
		"id":          u.ID,
		"username":    u.Username,
		"email":       u.Email,
		"first_name":  u.FirstName,
		"last_name":   u.LastName,
		"full_name":   u.FullName(),
		"date_joined": u.DateJoined,
		"last_login":  u.LastLogin,
	}
}

// profilePayload adds the username-cooldown state to the account block.
func profilePayload(u models.User) map[string]any {
	p := accountPayload(u)
	p["can_change_username"] = u.CanChangeUsername()
	p["days_until_username_change"] = u.DaysUntilUsernameChange()
	return p
}
