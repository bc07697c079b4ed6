package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// User is the identity and credential record for a single account.
//
// PasswordHash, RefreshTokenHash, ResetToken, and ResetTokenExpiresAt are
// never serialized to API callers; handlers return a Summary instead.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email        string    `gorm:"type:text;uniqueIndex;not null"`
	PasswordHash string    `gorm:"type:text;not null"`
	FirstName    string    `gorm:"type:text"`
	LastName     string    `gorm:"type:text"`
	IsActive     bool      `gorm:"not null;default:true"`
	Preferences  datatypes.JSON `gorm:"type:jsonb"`

	// RefreshTokenHash holds the bcrypt hash of the single active refresh
	// token, or NULL when logged out. Replaced wholesale on login/refresh.
	RefreshTokenHash *string `gorm:"type:text"`

	// ResetToken and ResetTokenExpiresAt track the one outstanding
	// password-reset token; issuing a new one overwrites the pair.
	ResetToken          *string    `gorm:"type:text;index"`
	ResetTokenExpiresAt *time.Time `gorm:"type:timestamptz"`

	CreatedAt time.Time `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
	UpdatedAt time.Time `gorm:"type:timestamptz;not null;default:now();autoUpdateTime"`

	Todos []Todo `gorm:"constraint:OnDelete:CASCADE"`
}

// UserSummary is the caller-visible projection of a User.
type UserSummary struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

// Summary strips credential material from the record.
func (u User) Summary() UserSummary {
	return UserSummary{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}
