package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mateovidal/catalogbase-backend/pkg/db/models"
	"gorm.io/gorm"
)

// TokenRepository persists the short-lived credentials used for email
// verification and password resets.
type TokenRepository struct {
	db *gorm.DB
}

func NewTokenRepository(db *gorm.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

func (r *TokenRepository) CreateVerification(ctx context.Context, token *models.EmailVerificationToken) error {
	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(token).Error
}

// FindVerification matches a code against the (email, token) pair.
func (r *TokenRepository) FindVerification(ctx context.Context, email, token string) (*models.EmailVerificationToken, error) {
	var row models.EmailVerificationToken
	err := r.db.WithContext(ctx).
		Where("email = ? AND token = ?", email, token).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// DeleteVerificationByID removes a single verification code.
func (r *TokenRepository) DeleteVerificationByID(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Delete(&models.EmailVerificationToken{}, "id = ?", id).Error
}

// DeleteVerificationsForEmail drops every outstanding code for the address.
func (r *TokenRepository) DeleteVerificationsForEmail(ctx context.Context, email string) error {
	return r.db.WithContext(ctx).
		Delete(&models.EmailVerificationToken{}, "email = ?", email).Error
}

func (r *TokenRepository) CreateReset(ctx context.Context, token *models.PasswordResetToken) error {
	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(token).Error
}

func (r *TokenRepository) FindReset(ctx context.Context, token string) (*models.PasswordResetToken, error) {
	var row models.PasswordResetToken
	err := r.db.WithContext(ctx).
		Where("token = ?", token).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// DeleteResetsForEmail invalidates every outstanding reset link for the
// address, including the one just consumed.
func (r *TokenRepository) DeleteResetsForEmail(ctx context.Context, email string) error {
	return r.db.WithContext(ctx).
		Delete(&models.PasswordResetToken{}, "email = ?", email).Error
}

// DeleteExpired removes stale rows from both token tables and reports the
// total count deleted. The cron worker calls this on a schedule.
func (r *TokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	var total int64

	res := r.db.WithContext(ctx).
		Delete(&models.EmailVerificationToken{}, "expires_at < ?", now)
	if res.Error != nil {
		return total, res.Error
	}
	total += res.RowsAffected

	res = r.db.WithContext(ctx).
		Delete(&models.PasswordResetToken{}, "expires_at < ?", now)
	if res.Error != nil {
		return total, res.Error
	}
	total += res.RowsAffected

	return total, nil
}
