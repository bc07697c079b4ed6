package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/mail"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"taskd/internal/models"
	"taskd/internal/password"
	"taskd/internal/store"
)

// RegisterInput carries the public registration fields.
type RegisterInput struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// UpdateProfileInput carries optional profile fields; nil means unchanged.
type UpdateProfileInput struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Password  *string `json:"password"`
}

// Profile is the authenticated user's own view, preferences included.
type Profile struct {
	models.UserSummary
	Preferences json.RawMessage `json:"preferences,omitempty"`
}

// Users implements account management on top of the credential store.
type Users struct {
	users store.UserStore
}

// NewUsers wires the users service.
func NewUsers(users store.UserStore) *Users {
	return &Users{users: users}
}

// Register creates a new account. Duplicate emails conflict.
func (s *Users) Register(ctx context.Context, in RegisterInput) (*models.UserSummary, error) {
	const op = "service.users.Register"

	if _, err := mail.ParseAddress(in.Email); err != nil {
		return nil, fmt.Errorf("%s: %w: invalid email", op, ErrInvalidInput)
	}
	if len(in.Password) < 8 {
		return nil, fmt.Errorf("%s: %w: password must be at least 8 characters", op, ErrInvalidInput)
	}

	hash, err := password.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user := &models.User{
		Email:        in.Email,
		PasswordHash: hash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		IsActive:     true,
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			return nil, fmt.Errorf("%s: %w", op, ErrEmailTaken)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	summary := user.Summary()
	return &summary, nil
}

// List returns sanitized summaries for every account.
func (s *Users) List(ctx context.Context) ([]models.UserSummary, error) {
	const op = "service.users.List"

	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	summaries := make([]models.UserSummary, 0, len(users))
	for _, u := range users {
		summaries = append(summaries, u.Summary())
	}
	return summaries, nil
}

// Get returns one account's summary.
func (s *Users) Get(ctx context.Context, id uuid.UUID) (*models.UserSummary, error) {
	const op = "service.users.Get"

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	summary := user.Summary()
	return &summary, nil
}

// GetProfile returns the caller's own account, preferences included.
func (s *Users) GetProfile(ctx context.Context, id uuid.UUID) (*Profile, error) {
	const op = "service.users.GetProfile"

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Profile{
		UserSummary: user.Summary(),
		Preferences: json.RawMessage(user.Preferences),
	}, nil
}

// UpdateProfile applies a partial update; a new password is re-hashed.
func (s *Users) UpdateProfile(ctx context.Context, id uuid.UUID, in UpdateProfileInput) (*models.UserSummary, error) {
	const op = "service.users.UpdateProfile"

	fields := map[string]any{}
	if in.FirstName != nil {
		fields["first_name"] = *in.FirstName
	}
	if in.LastName != nil {
		fields["last_name"] = *in.LastName
	}
	if in.Password != nil {
		if len(*in.Password) < 8 {
			return nil, fmt.Errorf("%s: %w: password must be at least 8 characters", op, ErrInvalidInput)
		}
		hash, err := password.Hash(*in.Password)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		fields["password_hash"] = hash
	}

	if len(fields) > 0 {
		if err := s.users.UpdateFields(ctx, id, fields); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
			}
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	return s.Get(ctx, id)
}

// UpdatePreferences swaps the opaque preferences document wholesale.
func (s *Users) UpdatePreferences(ctx context.Context, id uuid.UUID, preferences json.RawMessage) (*Profile, error) {
	const op = "service.users.UpdatePreferences"

	if len(preferences) > 0 && !json.Valid(preferences) {
		return nil, fmt.Errorf("%s: %w: preferences must be valid JSON", op, ErrInvalidInput)
	}

	err := s.users.UpdateFields(ctx, id, map[string]any{
		"preferences": datatypes.JSON(preferences),
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.GetProfile(ctx, id)
}

// Delete removes an account; todos cascade at the schema level.
func (s *Users) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "service.users.Delete"

	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
