package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"taskd/internal/models"
	"taskd/internal/store"
)

// fakeUsers is an in-memory UserStore with the same partial-update contract
// as the GORM implementation.
type fakeUsers struct {
	mu   sync.Mutex
	byID map[uuid.UUID]*models.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: map[uuid.UUID]*models.User{}}
}

func (f *fakeUsers) Create(_ context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.byID {
		if u.Email == user.Email {
			return store.ErrDuplicateEmail
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.CreatedAt = time.Now()
	cp := *user
	f.byID[user.ID] = &cp
	return nil
}

func (f *fakeUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeUsers) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) FindByResetToken(_ context.Context, resetToken string, now time.Time) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.byID {
		if u.ResetToken != nil && *u.ResetToken == resetToken &&
			u.ResetTokenExpiresAt != nil && u.ResetTokenExpiresAt.After(now) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeUsers) List(_ context.Context) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]models.User, 0, len(f.byID))
	for _, u := range f.byID {
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeUsers) UpdateFields(_ context.Context, id uuid.UUID, fields map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.byID[id]
	if !ok {
		return store.ErrNotFound
	}
	for k, v := range fields {
		switch k {
		case "password_hash":
			u.PasswordHash = v.(string)
		case "refresh_token_hash":
			u.RefreshTokenHash = optString(v)
		case "reset_token":
			u.ResetToken = optString(v)
		case "reset_token_expires_at":
			if v == nil {
				u.ResetTokenExpiresAt = nil
			} else {
				t := v.(time.Time)
				u.ResetTokenExpiresAt = &t
			}
		case "first_name":
			u.FirstName = v.(string)
		case "last_name":
			u.LastName = v.(string)
		case "is_active":
			u.IsActive = v.(bool)
		case "preferences":
			u.Preferences = v.(datatypes.JSON)
		}
	}
	u.UpdatedAt = time.Now()
	return nil
}

func (f *fakeUsers) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.byID[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func optString(v any) *string {
	if v == nil {
		return nil
	}
	s := v.(string)
	return &s
}

// fakeTodos is an in-memory TodoStore. Listing applies only the filters the
// tests exercise (completion, priority) plus pagination.
type fakeTodos struct {
	mu        sync.Mutex
	byID      map[uuid.UUID]*models.Todo
	order     []uuid.UUID
	listCalls int
	statCalls int
}

func newFakeTodos() *fakeTodos {
	return &fakeTodos{byID: map[uuid.UUID]*models.Todo{}}
}

func (f *fakeTodos) Create(_ context.Context, todo *models.Todo) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if todo.ID == uuid.Nil {
		todo.ID = uuid.New()
	}
	todo.CreatedAt = time.Now()
	cp := *todo
	f.byID[todo.ID] = &cp
	f.order = append(f.order, todo.ID)
	return nil
}

func (f *fakeTodos) FindByID(_ context.Context, id uuid.UUID) (*models.Todo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	t, ok := f.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTodos) List(_ context.Context, userID uuid.UUID, q store.TodoQuery) ([]models.Todo, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.listCalls++

	var matched []models.Todo
	for _, id := range f.order {
		t := f.byID[id]
		if t.UserID != userID {
			continue
		}
		if q.IsCompleted != nil && t.IsCompleted != *q.IsCompleted {
			continue
		}
		if q.Priority != "" && t.Priority != q.Priority {
			continue
		}
		matched = append(matched, *t)
	}

	total := int64(len(matched))
	start := (q.Page - 1) * q.Limit
	if start >= len(matched) {
		return nil, total, nil
	}
	end := start + q.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (f *fakeTodos) UpdateFields(_ context.Context, id uuid.UUID, fields map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	t, ok := f.byID[id]
	if !ok {
		return store.ErrNotFound
	}
	for k, v := range fields {
		switch k {
		case "title":
			t.Title = v.(string)
		case "description":
			t.Description = v.(string)
		case "due_date":
			d := v.(time.Time)
			t.DueDate = &d
		case "priority":
			t.Priority = v.(string)
		case "tags":
			t.Tags = v.(datatypes.JSON)
		case "is_completed":
			t.IsCompleted = v.(bool)
		}
	}
	t.UpdatedAt = time.Now()
	return nil
}

func (f *fakeTodos) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.byID[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.byID, id)
	for i, oid := range f.order {
		if oid == id {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeTodos) Stats(_ context.Context, userID uuid.UUID) (store.TodoStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.statCalls++

	stats := store.TodoStats{ByPriority: map[string]int64{
		models.PriorityLow:    0,
		models.PriorityMedium: 0,
		models.PriorityHigh:   0,
	}}
	for _, t := range f.byID {
		if t.UserID != userID {
			continue
		}
		stats.Total++
		if t.IsCompleted {
			stats.Completed++
		} else {
			stats.Pending++
		}
		stats.ByPriority[t.Priority]++
	}
	if stats.Total > 0 {
		stats.CompletionRate = float64(stats.Completed) / float64(stats.Total) * 100
	}
	return stats, nil
}
