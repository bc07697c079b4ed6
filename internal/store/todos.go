package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"gorm.io/gorm"

	"taskd/internal/db"
	"taskd/internal/models"
)

// sortColumns maps the API sort names onto database columns. Anything else
// falls back to created_at.
var sortColumns = map[string]string{
	"title":     "title",
	"dueDate":   "due_date",
	"createdAt": "created_at",
	"priority":  "priority",
}

// Todos persists todos through GORM; the statistics aggregate goes straight
// to the pgx pool.
type Todos struct {
	orm  *gorm.DB
	pool *pgxpool.Pool
}

// NewTodos wires a Todos store over the provided handles.
func NewTodos(orm *gorm.DB, pool *pgxpool.Pool) *Todos {
	return &Todos{orm: orm, pool: pool}
}

func (s *Todos) Create(ctx context.Context, todo *models.Todo) error {
	return s.orm.WithContext(ctx).Create(todo).Error
}

func (s *Todos) FindByID(ctx context.Context, id uuid.UUID) (*models.Todo, error) {
	var todo models.Todo
	err := s.orm.WithContext(ctx).Where("id = ?", id).First(&todo).Error
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &todo, nil
}

// List applies the query filters, counts the full match, then fetches one
// page. Two round trips.
func (s *Todos) List(ctx context.Context, userID uuid.UUID, q TodoQuery) ([]models.Todo, int64, error) {
	tx := s.orm.WithContext(ctx).Model(&models.Todo{}).Where("user_id = ?", userID)

	if q.IsCompleted != nil {
		tx = tx.Where("is_completed = ?", *q.IsCompleted)
	}
	if q.Priority != "" {
		tx = tx.Where("priority = ?", q.Priority)
	}
	if q.Search != "" {
		pattern := "%" + q.Search + "%"
		tx = tx.Where("title ILIKE ? OR description ILIKE ?", pattern, pattern)
	}
	if q.Tag != "" {
		member, err := json.Marshal([]string{q.Tag})
		if err != nil {
			return nil, 0, err
		}
		tx = tx.Where("tags @> ?", string(member))
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	column, ok := sortColumns[q.SortBy]
	if !ok {
		column = "created_at"
	}
	direction := "desc"
	if q.SortOrder == "asc" {
		direction = "asc"
	}

	page := q.Page
	if page < 1 {
		page = 1
	}
	limit := q.Limit
	if limit < 1 {
		limit = 10
	}

	var todos []models.Todo
	err := tx.Order(fmt.Sprintf("%s %s", column, direction)).
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&todos).Error
	if err != nil {
		return nil, 0, err
	}

	return todos, total, nil
}

func (s *Todos) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	res := s.orm.WithContext(ctx).Model(&models.Todo{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Todos) Delete(ctx context.Context, id uuid.UUID) error {
	res := s.orm.WithContext(ctx).Where("id = ?", id).Delete(&models.Todo{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Stats computes the completion and per-priority counts in two raw queries.
func (s *Todos) Stats(ctx context.Context, userID uuid.UUID) (TodoStats, error) {
	var totals struct {
		Total     int64 `db:"total"`
		Completed int64 `db:"completed"`
	}
	err := db.Get(ctx, s.pool, &totals, `
        SELECT count(*) AS total,
               count(*) FILTER (WHERE is_completed) AS completed
        FROM todos
        WHERE user_id = $1
    `, userID)
	if err != nil {
		return TodoStats{}, err
	}

	var rows []struct {
		Priority string `db:"priority"`
		Count    int64  `db:"count"`
	}
	err = db.Select(ctx, s.pool, &rows, `
        SELECT priority, count(*) AS count
        FROM todos
        WHERE user_id = $1
        GROUP BY priority
    `, userID)
	if err != nil {
		return TodoStats{}, err
	}

	stats := TodoStats{
		Total:     totals.Total,
		Completed: totals.Completed,
		Pending:   totals.Total - totals.Completed,
		ByPriority: map[string]int64{
			models.PriorityLow:    0,
			models.PriorityMedium: 0,
			models.PriorityHigh:   0,
		},
	}
	for _, row := range rows {
		stats.ByPriority[row.Priority] = row.Count
	}
	if stats.Total > 0 {
		stats.CompletionRate = float64(stats.Completed) / float64(stats.Total) * 100
	}

	return stats, nil
}
