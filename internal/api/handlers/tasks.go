package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tasknest/tasknest-backend/internal/api/httpx"
	"github.com/tasknest/tasknest-backend/internal/api/validate"
	"github.com/tasknest/tasknest-backend/internal/middleware"
	"github.com/tasknest/tasknest-backend/internal/models"
	repo "github.com/tasknest/tasknest-backend/internal/repository"
	"github.com/tasknest/tasknest-backend/internal/services"
)

type TaskHandler struct {
	tasks *services.TaskService
}

func NewTaskHandler(tasks *services.TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

// List handles GET /tasks with ?status ?priority ?search ?ordering ?limit
// ?offset.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.CurrentUser(r.Context())
	q := r.URL.Query()

	f := repo.TaskFilter{
		Status:   models.TaskStatus(q.Get("status")),
		Priority: models.TaskPriority(q.Get("priority")),
		Search:   q.Get("search"),
		Ordering: q.Get("ordering"),
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			f.Limit = n
		}
	}
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			f.Offset = n
		}
	}

	tasks, err := h.tasks.List(r.Context(), actor.ID, f)
	if err != nil {
		httpx.ServiceError(w, err, "Task listing failed.")
		return
	}
	httpx.Success(w, http.StatusOK, "", httpx.M{
		"count": len(tasks),
		"tasks": taskListPayload(tasks, actor),
	})
}

type taskCreateReq struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Status      string  `json:"status"`
	Priority    string  `json:"priority"`
	DueDate     *string `json:"due_date"`
}

// Create handles POST /tasks. The caller becomes the owner.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.CurrentUser(r.Context())

	var req taskCreateReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid request body.", nil)
		return
	}
	in := services.TaskCreateInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
	}
	if req.DueDate != nil {
		d, err := parseDate(*req.DueDate)
		if err != nil {
			httpx.Error(w, http.StatusBadRequest, "Task creation failed.",
				validate.Errs{{Field: "due_date", Msg: "must be a date in YYYY-MM-DD format"}})
			return
		}
		in.DueDate = &d
	}

	t, warning, err := h.tasks.Create(r.Context(), actor.ID, in)
	if err != nil {
		httpx.ServiceError(w, err, "Task creation failed.")
		return
	}
	data := httpx.M{"task": taskPayload(t, actor)}
	if warning != "" {
		data["warning"] = warning
	}
	httpx.Success(w, http.StatusCreated, "Task created successfully.", data)
}

// taskID extracts the {id} route parameter. A malformed id cannot name any
// task, and the id column is uuid-typed, so it must not reach the database
// as a query parameter. It maps to the same error as an unknown id.
func taskID(r *http.Request) (string, error) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		return "", services.ErrNotFound
	}
	return id, nil
}

// Get handles GET /tasks/{id}.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.CurrentUser(r.Context())

	id, err := taskID(r)
	if err != nil {
		httpx.ServiceError(w, err, "Task not found.")
		return
	}
	t, err := h.tasks.Get(r.Context(), actor.ID, id)
	if err != nil {
		httpx.ServiceError(w, err, "Task not found.")
		return
	}
	httpx.Success(w, http.StatusOK, "", httpx.M{"task": taskPayload(t, actor)})
}

type taskUpdateReq struct {
	Title       *string         `json:"title"`
	Description *string         `json:"description"`
	Status      *string         `json:"status"`
	Priority    *string         `json:"priority"`
	DueDate     json.RawMessage `json:"due_date"`
}

// Update handles PATCH /tasks/{id}. due_date distinguishes absent (keep),
// null (clear), and a value (set).
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.CurrentUser(r.Context())

	id, err := taskID(r)
	if err != nil {
		httpx.ServiceError(w, err, "Task update failed.")
		return
	}
	var req taskUpdateReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid request body.", nil)
		return
	}
	in := services.TaskUpdateInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
	}
	if len(req.DueDate) > 0 {
		if bytes.Equal(req.DueDate, []byte("null")) {
			in.ClearDue = true
		} else {
			var s string
			if err := json.Unmarshal(req.DueDate, &s); err != nil {
				httpx.Error(w, http.StatusBadRequest, "Task update failed.",
					validate.Errs{{Field: "due_date", Msg: "must be a date in YYYY-MM-DD format"}})
				return
			}
			d, err := parseDate(s)
			if err != nil {
				httpx.Error(w, http.StatusBadRequest, "Task update failed.",
					validate.Errs{{Field: "due_date", Msg: "must be a date in YYYY-MM-DD format"}})
				return
			}
			in.DueDate = &d
		}
	}

	t, warning, err := h.tasks.Update(r.Context(), actor.ID, id, in)
	if err != nil {
		httpx.ServiceError(w, err, "Task update failed.")
		return
	}
	data := httpx.M{"task": taskPayload(t, actor)}
	if warning != "" {
		data["warning"] = warning
	}
	httpx.Success(w, http.StatusOK, "Task updated successfully.", data)
}

// Delete handles DELETE /tasks/{id}.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.CurrentUser(r.Context())

	id, err := taskID(r)
	if err != nil {
		httpx.ServiceError(w, err, "Task deletion failed.")
		return
	}
	title, err := h.tasks.Delete(r.Context(), actor.ID, id)
	if err != nil {
		httpx.ServiceError(w, err, "Task deletion failed.")
		return
	}
	httpx.Success(w, http.StatusOK, fmt.Sprintf("Task '%s' deleted successfully.", title), nil)
}

// ToggleComplete handles POST /tasks/{id}/complete.
func (h *TaskHandler) ToggleComplete(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.CurrentUser(r.Context())

	id, err := taskID(r)
	if err != nil {
		httpx.ServiceError(w, err, "Task completion toggle failed.")
		return
	}
	t, err := h.tasks.ToggleComplete(r.Context(), actor.ID, id)
	if err != nil {
		httpx.ServiceError(w, err, "Task completion toggle failed.")
		return
	}
	message := "Task marked as incomplete."
	if t.IsCompleted() {
		message = "Task marked as completed."
	}
	httpx.Success(w, http.StatusOK, message, httpx.M{"task": taskPayload(t, actor)})
}

// Overdue handles GET /tasks/overdue.
func (h *TaskHandler) Overdue(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.CurrentUser(r.Context())

	tasks, err := h.tasks.Overdue(r.Context(), actor.ID)
	if err != nil {
		httpx.ServiceError(w, err, "Overdue listing failed.")
		return
	}
	httpx.Success(w, http.StatusOK, "", httpx.M{
		"count": len(tasks),
		"tasks": taskListPayload(tasks, actor),
	})
}

// Today handles GET /tasks/today.
func (h *TaskHandler) Today(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.CurrentUser(r.Context())

	tasks, err := h.tasks.DueToday(r.Context(), actor.ID)
	if err != nil {
		httpx.ServiceError(w, err, "Due-today listing failed.")
		return
	}
	httpx.Success(w, http.StatusOK, "", httpx.M{
		"count": len(tasks),
		"tasks": taskListPayload(tasks, actor),
	})
}

func parseDate(s string) (time.Time, error) {
	return time.ParseInLocation(dateLayout, s, time.UTC)
}
