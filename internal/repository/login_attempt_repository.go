package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/arcanewagers/Auth/internal/model"
)

// LoginAttemptRepository is the append-only ledger of login outcomes.
type LoginAttemptRepository interface {
	Record(ctx context.Context, userID uuid.UUID, success bool, at time.Time) error
	CountSince(ctx context.Context, userID uuid.UUID, since time.Time, failuresOnly bool) (int64, error)
}

type loginAttemptRepository struct {
	db *gorm.DB
}

// NewLoginAttemptRepository builds a GORM-backed ledger.
func NewLoginAttemptRepository(db *gorm.DB) LoginAttemptRepository {
	return &loginAttemptRepository{db: db}
}

func (r *loginAttemptRepository) Record(ctx context.Context, userID uuid.UUID, success bool, at time.Time) error {
	attempt := &model.LoginAttempt{
		UserID:    userID,
		Success:   success,
		Timestamp: at,
	}
	return r.db.WithContext(ctx).Create(attempt).Error
}

// CountSince counts the user's attempts with timestamp strictly after since.
// With failuresOnly false every attempt counts toward the window, successes
// included, matching the reference lockout policy.
func (r *loginAttemptRepository) CountSince(ctx context.Context, userID uuid.UUID, since time.Time, failuresOnly bool) (int64, error) {
	var count int64
	q := r.db.WithContext(ctx).
		Model(&model.LoginAttempt{}).
		Where("user_id = ? AND timestamp > ?", userID, since)
	if failuresOnly {
		q = q.Where("success = ?", false)
	}
	if err := q.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
