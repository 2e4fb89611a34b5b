package repository

import (
	"context"
	"errors"
	"time"

	"github.com/YuriiKoshliak/contacts-api/internal/models"
	"gorm.io/gorm"
)

var ErrResetNotFound = errors.New("password reset token not found")

// PasswordResetRepository stores single-use password reset tokens.
type PasswordResetRepository interface {
	CreateReset(ctx context.Context, reset *models.PasswordReset) error
	GetResetByToken(ctx context.Context, token string) (*models.PasswordReset, error)
	MarkUsed(ctx context.Context, resetID string, usedAt time.Time) error

	// DeleteExpired removes tokens past their expiry; returns the number
	// of rows removed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type passwordResetRepository struct {
	db *gorm.DB
}

// NewPasswordResetRepository creates a new password reset repository
func NewPasswordResetRepository(db *gorm.DB) PasswordResetRepository {
	return &passwordResetRepository{db: db}
}

func (r *passwordResetRepository) CreateReset(ctx context.Context, reset *models.PasswordReset) error {
	if reset == nil || reset.UserID == "" || reset.Token == "" {
		return ErrInvalidInput
	}

	return r.db.WithContext(ctx).Create(reset).Error
}

func (r *passwordResetRepository) GetResetByToken(ctx context.Context, token string) (*models.PasswordReset, error) {
	var reset models.PasswordReset
	err := r.db.WithContext(ctx).Where("token = ?", token).First(&reset).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrResetNotFound
	}

	return &reset, err
}

func (r *passwordResetRepository) MarkUsed(ctx context.Context, resetID string, usedAt time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&models.PasswordReset{}).
		Where("id = ? AND used_at IS NULL", resetID).
		Update("used_at", usedAt)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrResetNotFound
	}
	return nil
}

func (r *passwordResetRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("expires_at < ?", now).
		Delete(&models.PasswordReset{})
	return res.RowsAffected, res.Error
}
