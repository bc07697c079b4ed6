// Package store contains the persistence layer: GORM-backed repositories
// for users and todos plus a raw pgx aggregate for statistics.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"taskd/internal/models"
)

var (
	// ErrNotFound is returned when a lookup or mutate targets a missing row.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateEmail is returned when the unique email constraint fires.
	ErrDuplicateEmail = errors.New("email already exists")
)

// UserStore is the credential store consumed by the services. Partial
// updates only touch the named fields.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	// FindByResetToken matches a live reset token: equal token value and an
	// expiry strictly in the future.
	FindByResetToken(ctx context.Context, resetToken string, now time.Time) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// TodoQuery carries the filter, sort, and pagination parameters for a list.
type TodoQuery struct {
	IsCompleted *bool
	Priority    string
	Search      string
	Tag         string
	SortBy      string
	SortOrder   string
	Page        int
	Limit       int
}

// TodoStats aggregates completion and priority counts for one user.
type TodoStats struct {
	Total          int64            `json:"total"`
	Completed      int64            `json:"completed"`
	Pending        int64            `json:"pending"`
	CompletionRate float64          `json:"completionRate"`
	ByPriority     map[string]int64 `json:"byPriority"`
}

// TodoStore persists todos and serves filtered pages and statistics.
type TodoStore interface {
	Create(ctx context.Context, todo *models.Todo) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Todo, error)
	List(ctx context.Context, userID uuid.UUID, q TodoQuery) ([]models.Todo, int64, error)
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
	Stats(ctx context.Context, userID uuid.UUID) (TodoStats, error)
}
