package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"taskd/internal/models"
)

// Users is the GORM-backed UserStore.
type Users struct {
	orm *gorm.DB
}

// NewUsers wires a Users store over the provided GORM handle.
func NewUsers(orm *gorm.DB) *Users {
	return &Users{orm: orm}
}

func (s *Users) Create(ctx context.Context, user *models.User) error {
	if err := s.orm.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (s *Users) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.orm.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &user, nil
}

func (s *Users) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := s.orm.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &user, nil
}

func (s *Users) FindByResetToken(ctx context.Context, resetToken string, now time.Time) (*models.User, error) {
	var user models.User
	err := s.orm.WithContext(ctx).
		Where("reset_token = ? AND reset_token_expires_at > ?", resetToken, now).
		First(&user).Error
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &user, nil
}

func (s *Users) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.orm.WithContext(ctx).Order("created_at").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Users) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	res := s.orm.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return ErrDuplicateEmail
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Users) Delete(ctx context.Context, id uuid.UUID) error {
	res := s.orm.WithContext(ctx).Where("id = ?", id).Delete(&models.User{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func mapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
