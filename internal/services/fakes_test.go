package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tasknest/tasknest-backend/internal/models"
	repo "github.com/tasknest/tasknest-backend/internal/repository"
)

// In-memory repository fakes for service tests.

type fakeUsers struct {
	mu    sync.Mutex
	users map[string]models.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: map[string]models.User{}}
}

func (f *fakeUsers) Create(_ context.Context, u models.User) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.IsActive = true
	u.DateJoined = time.Now()
	u.UpdatedAt = u.DateJoined
	for _, other := range f.users {
		if other.Username == u.Username {
			return models.User{}, repo.ErrUsernameTaken
		}
		if u.Email != "" && other.Email == u.Email {
			return models.User{}, repo.ErrEmailTaken
		}
	}
	f.users[u.ID] = u
	return u, nil
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return models.User{}, repo.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) GetByUsername(_ context.Context, username string) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return models.User{}, repo.ErrNotFound
}

// uuidParam rejects values the database could not bind to a uuid column.
// An empty string means the parameter is omitted entirely.
func uuidParam(id string) error {
	if id == "" {
		return nil
	}
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("cannot encode %q as uuid: %w", id, err)
	}
	return nil
}

func (f *fakeUsers) UsernameExists(_ context.Context, username, excludeID string) (bool, error) {
	if err := uuidParam(excludeID); err != nil {
		return false, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == username && u.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUsers) EmailExists(_ context.Context, email, excludeID string) (bool, error) {
	if err := uuidParam(excludeID); err != nil {
		return false, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email && u.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUsers) Update(_ context.Context, u models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.users[u.ID]
	if !ok {
		return repo.ErrNotFound
	}
	cur.Username = u.Username
	cur.Email = u.Email
	cur.FirstName = u.FirstName
	cur.LastName = u.LastName
	cur.LastUsernameChange = u.LastUsernameChange
	cur.UpdatedAt = time.Now()
	f.users[u.ID] = cur
	return nil
}

func (f *fakeUsers) UpdateLastLogin(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return repo.ErrNotFound
	}
	now := time.Now()
	u.LastLogin = &now
	f.users[id] = u
	return nil
}

type fakeSessions struct {
	mu       sync.Mutex
	sessions map[string]models.Session
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{sessions: map[string]models.Session{}}
}

func (f *fakeSessions) Create(_ context.Context, s models.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s.CreatedAt = time.Now()
	f.sessions[s.ID] = s
	return nil
}

func (f *fakeSessions) Get(_ context.Context, id string) (models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return models.Session{}, repo.ErrNotFound
	}
	return s, nil
}

func (f *fakeSessions) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.sessions[id]; !ok {
		return repo.ErrNotFound
	}
	delete(f.sessions, id)
	return nil
}

type fakeTasks struct {
	mu    sync.Mutex
	tasks map[string]models.Task
}

func newFakeTasks() *fakeTasks {
	return &fakeTasks{tasks: map[string]models.Task{}}
}

func (f *fakeTasks) Create(_ context.Context, t models.Task) (models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt
	f.tasks[t.ID] = t
	return t, nil
}

func (f *fakeTasks) GetByID(_ context.Context, id, ownerID string) (models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tasks[id]
	if !ok || t.UserID != ownerID {
		return models.Task{}, repo.ErrNotFound
	}
	return t, nil
}

func (f *fakeTasks) List(_ context.Context, ownerID string, filter repo.TaskFilter) ([]models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Task
	for _, t := range f.tasks {
		if t.UserID != ownerID {
			continue
		}
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		if filter.Priority != "" && t.Priority != filter.Priority {
			continue
		}
		if filter.Search != "" {
			s := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(t.Title), s) &&
				!strings.Contains(strings.ToLower(t.Description), s) {
				continue
			}
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeTasks) Update(_ context.Context, t models.Task) (models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.tasks[t.ID]
	if !ok || cur.UserID != t.UserID {
		return models.Task{}, repo.ErrNotFound
	}
	t.CreatedAt = cur.CreatedAt
	t.UpdatedAt = time.Now()
	f.tasks[t.ID] = t
	return t, nil
}

func (f *fakeTasks) Delete(_ context.Context, id, ownerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tasks[id]
	if !ok || t.UserID != ownerID {
		return repo.ErrNotFound
	}
	delete(f.tasks, id)
	return nil
}

func (f *fakeTasks) Overdue(_ context.Context, ownerID string) ([]models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	today := models.Today()
	var out []models.Task
	for _, t := range f.tasks {
		if t.UserID == ownerID && t.DueDate != nil && t.DueDate.Before(today) && t.Status != models.StatusCompleted {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTasks) DueToday(_ context.Context, ownerID string) ([]models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	today := models.Today()
	var out []models.Task
	for _, t := range f.tasks {
		if t.UserID == ownerID && t.DueDate != nil && t.DueDate.Equal(today) {
			out = append(out, t)
		}
	}
	return out, nil
}

type fakeActivity struct {
	mu   sync.Mutex
	logs []models.ActivityLog
}

func (f *fakeActivity) Create(_ context.Context, l models.ActivityLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logs = append(f.logs, l)
	return nil
}

func (f *fakeActivity) actions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.logs))
	for _, l := range f.logs {
		out = append(out, l.Action)
	}
	return out
}
