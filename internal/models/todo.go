package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Priority levels accepted for a todo.
const (
	PriorityLow    = "LOW"
	PriorityMedium = "MEDIUM"
	PriorityHigh   = "HIGH"
)

// ValidPriority reports whether p is one of the known priority levels.
func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Todo is a single task owned by a user. Tags is a JSONB string array.
type Todo struct {
	ID          uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"userId"`
	Title       string         `gorm:"type:text;not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	DueDate     *time.Time     `gorm:"type:timestamptz" json:"dueDate,omitempty"`
	Priority    string         `gorm:"type:text;not null;default:MEDIUM" json:"priority"`
	Tags        datatypes.JSON `gorm:"type:jsonb" json:"tags,omitempty"`
	IsCompleted bool           `gorm:"not null;default:false" json:"isCompleted"`
	CreatedAt   time.Time      `gorm:"type:timestamptz;not null;default:now();autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time      `gorm:"type:timestamptz;not null;default:now();autoUpdateTime" json:"updatedAt"`
}
