package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"taskd/internal/cache"
	"taskd/internal/models"
	"taskd/internal/store"
)

const (
	todoCacheTTL  = 5 * time.Minute
	statsCacheTTL = 10 * time.Minute
	maxPageLimit  = 100
)

// CreateTodoInput carries the fields accepted on todo creation.
type CreateTodoInput struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"dueDate"`
	Priority    string     `json:"priority"`
	Tags        []string   `json:"tags"`
}

// UpdateTodoInput carries optional fields; nil means unchanged.
type UpdateTodoInput struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	DueDate     *time.Time `json:"dueDate"`
	Priority    *string    `json:"priority"`
	Tags        *[]string  `json:"tags"`
	IsCompleted *bool      `json:"isCompleted"`
}

// ListMeta describes one page of a filtered listing.
type ListMeta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int64 `json:"totalPages"`
}

// TodoPage is the list response payload.
type TodoPage struct {
	Data []models.Todo `json:"data"`
	Meta ListMeta      `json:"meta"`
}

// Todos implements the per-user todo list with query caching.
type Todos struct {
	todos store.TodoStore
	cache cache.Cache
}

// NewTodos wires the todos service.
func NewTodos(todos store.TodoStore, c cache.Cache) *Todos {
	return &Todos{todos: todos, cache: c}
}

func todoKey(id uuid.UUID) string {
	return fmt.Sprintf("todo:%s", id)
}

func statsKey(userID uuid.UUID) string {
	return fmt.Sprintf("todo:stats:%s", userID)
}

// listKey fingerprints the full query so distinct filter combinations cache
// independently. List pages are not invalidated on writes; they age out.
func listKey(userID uuid.UUID, q store.TodoQuery) string {
	raw, _ := json.Marshal(q)
	sum := sha256.Sum256(raw)
	return fmt.Sprintf("todos:%s:%s", userID, hex.EncodeToString(sum[:8]))
}

// Create persists a new todo for userID and drops the stats cache entry.
func (s *Todos) Create(ctx context.Context, userID uuid.UUID, in CreateTodoInput) (*models.Todo, error) {
	const op = "service.todos.Create"

	if in.Title == "" {
		return nil, fmt.Errorf("%s: %w: title is required", op, ErrInvalidInput)
	}
	priority := in.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !models.ValidPriority(priority) {
		return nil, fmt.Errorf("%s: %w: unknown priority %q", op, ErrInvalidInput, in.Priority)
	}

	todo := &models.Todo{
		ID:          uuid.New(),
		UserID:      userID,
		Title:       in.Title,
		Description: in.Description,
		DueDate:     in.DueDate,
		Priority:    priority,
	}
	if len(in.Tags) > 0 {
		tags, err := json.Marshal(in.Tags)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		todo.Tags = datatypes.JSON(tags)
	}

	if err := s.todos.Create(ctx, todo); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.invalidate(ctx, userID, uuid.Nil)
	return todo, nil
}

// List serves a filtered, sorted, paginated page, cached for five minutes
// per query fingerprint.
func (s *Todos) List(ctx context.Context, userID uuid.UUID, q store.TodoQuery) (*TodoPage, error) {
	const op = "service.todos.List"

	q = normalizeQuery(q)
	if q.Priority != "" && !models.ValidPriority(q.Priority) {
		return nil, fmt.Errorf("%s: %w: unknown priority %q", op, ErrInvalidInput, q.Priority)
	}

	key := listKey(userID, q)
	if cached, ok, err := s.cache.Get(ctx, key); err == nil && ok {
		var page TodoPage
		if json.Unmarshal([]byte(cached), &page) == nil {
			return &page, nil
		}
	}

	todos, total, err := s.todos.List(ctx, userID, q)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if todos == nil {
		todos = []models.Todo{}
	}

	page := &TodoPage{
		Data: todos,
		Meta: ListMeta{
			Total:      total,
			Page:       q.Page,
			Limit:      q.Limit,
			TotalPages: (total + int64(q.Limit) - 1) / int64(q.Limit),
		},
	}

	if raw, err := json.Marshal(page); err == nil {
		_ = s.cache.Set(ctx, key, string(raw), todoCacheTTL)
	}

	return page, nil
}

// Get fetches one todo, enforcing ownership. A todo owned by someone else
// is indistinguishable from a missing one.
func (s *Todos) Get(ctx context.Context, userID, id uuid.UUID) (*models.Todo, error) {
	const op = "service.todos.Get"

	if cached, ok, err := s.cache.Get(ctx, todoKey(id)); err == nil && ok {
		var todo models.Todo
		if json.Unmarshal([]byte(cached), &todo) == nil && todo.UserID == userID {
			return &todo, nil
		}
	}

	todo, err := s.todos.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if todo.UserID != userID {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}

	if raw, err := json.Marshal(todo); err == nil {
		_ = s.cache.Set(ctx, todoKey(id), string(raw), todoCacheTTL)
	}

	return todo, nil
}

// Update applies a partial update after the ownership check.
func (s *Todos) Update(ctx context.Context, userID, id uuid.UUID, in UpdateTodoInput) (*models.Todo, error) {
	const op = "service.todos.Update"

	if _, err := s.Get(ctx, userID, id); err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if in.Title != nil {
		if *in.Title == "" {
			return nil, fmt.Errorf("%s: %w: title is required", op, ErrInvalidInput)
		}
		fields["title"] = *in.Title
	}
	if in.Description != nil {
		fields["description"] = *in.Description
	}
	if in.DueDate != nil {
		fields["due_date"] = *in.DueDate
	}
	if in.Priority != nil {
		if !models.ValidPriority(*in.Priority) {
			return nil, fmt.Errorf("%s: %w: unknown priority %q", op, ErrInvalidInput, *in.Priority)
		}
		fields["priority"] = *in.Priority
	}
	if in.Tags != nil {
		tags, err := json.Marshal(*in.Tags)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		fields["tags"] = datatypes.JSON(tags)
	}
	if in.IsCompleted != nil {
		fields["is_completed"] = *in.IsCompleted
	}

	if len(fields) > 0 {
		if err := s.todos.UpdateFields(ctx, id, fields); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
			}
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	s.invalidate(ctx, userID, id)

	todo, err := s.todos.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return todo, nil
}

// Delete removes a todo after the ownership check.
func (s *Todos) Delete(ctx context.Context, userID, id uuid.UUID) error {
	const op = "service.todos.Delete"

	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}

	if err := s.todos.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	s.invalidate(ctx, userID, id)
	return nil
}

// Stats aggregates completion and priority counts, cached for ten minutes.
func (s *Todos) Stats(ctx context.Context, userID uuid.UUID) (*store.TodoStats, error) {
	const op = "service.todos.Stats"

	if cached, ok, err := s.cache.Get(ctx, statsKey(userID)); err == nil && ok {
		var stats store.TodoStats
		if json.Unmarshal([]byte(cached), &stats) == nil {
			return &stats, nil
		}
	}

	stats, err := s.todos.Stats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if raw, err := json.Marshal(stats); err == nil {
		_ = s.cache.Set(ctx, statsKey(userID), string(raw), statsCacheTTL)
	}

	return &stats, nil
}

// invalidate drops the exact-key cache entries a write makes stale: the
// per-user stats, and the single-todo entry when the id is known. List
// pages cannot be pattern-deleted and simply age out.
func (s *Todos) invalidate(ctx context.Context, userID, id uuid.UUID) {
	_ = s.cache.Delete(ctx, statsKey(userID))
	if id != uuid.Nil {
		_ = s.cache.Delete(ctx, todoKey(id))
	}
}

func normalizeQuery(q store.TodoQuery) store.TodoQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = 10
	}
	if q.Limit > maxPageLimit {
		q.Limit = maxPageLimit
	}
	if q.SortBy == "" {
		q.SortBy = "createdAt"
	}
	if q.SortOrder == "" {
		q.SortOrder = "desc"
	}
	return q
}
