package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/you/authstarter/domain"
)

// LoginAttemptRepositoryImpl implements domain.LoginAttemptRepository using
// GORM. Counters are read-then-written without locks; the composite unique
// index plus an upsert keeps concurrent failures from erroring, at the cost
// of possibly undercounting by one.
type LoginAttemptRepositoryImpl struct {
	db *gorm.DB
}

// DBLoginAttempt represents the database model for LoginAttempt (with GORM
// tags).
type DBLoginAttempt struct {
	ID            uint   `gorm:"primaryKey"`
	Email         string `gorm:"uniqueIndex:idx_login_attempts_key;size:255"`
	IPAddress     string `gorm:"uniqueIndex:idx_login_attempts_key;size:64"`
	FailedCount   int
	FirstFailedAt time.Time
	LastFailedAt  time.Time  `gorm:"index"`
	LockedUntil   *time.Time `gorm:"index"`
	UserID        *uint
}

// TableName returns the table name for GORM.
func (DBLoginAttempt) TableName() string {
	return "login_attempts"
}

// NewLoginAttemptRepository creates a new login attempt repository.
func NewLoginAttemptRepository(db *gorm.DB) domain.LoginAttemptRepository {
	return &LoginAttemptRepositoryImpl{db: db}
}

// Find implements domain.LoginAttemptRepository.
func (r *LoginAttemptRepositoryImpl) Find(ctx context.Context, email, ipAddress string) (*domain.LoginAttempt, error) {
	var row DBLoginAttempt
	err := dbFrom(ctx, r.db).
		Where("email = ? AND ip_address = ?", email, ipAddress).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAttemptNotFound
		}
		return nil, err
	}
	return r.dbToDomain(&row), nil
}

// Upsert implements domain.LoginAttemptRepository. On a key collision the
// counter columns are overwritten with the caller's view.
func (r *LoginAttemptRepositoryImpl) Upsert(ctx context.Context, attempt *domain.LoginAttempt) error {
	row := r.domainToDB(attempt)
	return dbFrom(ctx, r.db).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "email"}, {Name: "ip_address"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"failed_count", "first_failed_at", "last_failed_at", "locked_until", "user_id",
		}),
	}).Create(row).Error
}

// Delete implements domain.LoginAttemptRepository.
func (r *LoginAttemptRepositoryImpl) Delete(ctx context.Context, email, ipAddress string) error {
	return dbFrom(ctx, r.db).
		Where("email = ? AND ip_address = ?", email, ipAddress).
		Delete(&DBLoginAttempt{}).Error
}

// DeleteIdle implements domain.LoginAttemptRepository. Rows under an active
// lock are kept regardless of failure age; the service clears those lazily.
func (r *LoginAttemptRepositoryImpl) DeleteIdle(ctx context.Context, lastFailureBefore time.Time) (int64, error) {
	now := time.Now()
	res := dbFrom(ctx, r.db).
		Where("last_failed_at < ? AND (locked_until IS NULL OR locked_until < ?)", lastFailureBefore, now).
		Delete(&DBLoginAttempt{})
	return res.RowsAffected, res.Error
}

// domainToDB converts a domain attempt record to its database model.
func (r *LoginAttemptRepositoryImpl) domainToDB(attempt *domain.LoginAttempt) *DBLoginAttempt {
	return &DBLoginAttempt{
		ID:            attempt.ID,
		Email:         attempt.Email,
		IPAddress:     attempt.IPAddress,
		FailedCount:   attempt.FailedCount,
		FirstFailedAt: attempt.FirstFailedAt,
		LastFailedAt:  attempt.LastFailedAt,
		LockedUntil:   attempt.LockedUntil,
		UserID:        attempt.UserID,
	}
}

// dbToDomain converts a database attempt record to its domain entity.
func (r *LoginAttemptRepositoryImpl) dbToDomain(row *DBLoginAttempt) *domain.LoginAttempt {
	return &domain.LoginAttempt{
		ID:            row.ID,
		Email:         row.Email,
		IPAddress:     row.IPAddress,
		FailedCount:   row.FailedCount,
		FirstFailedAt: row.FirstFailedAt,
		LastFailedAt:  row.LastFailedAt,
		LockedUntil:   row.LockedUntil,
		UserID:        row.UserID,
	}
}
