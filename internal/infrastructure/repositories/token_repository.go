package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/you/authstarter/domain"
)

// DBVerificationToken represents the database model for email verification
// tokens (with GORM tags).
type DBVerificationToken struct {
	ID         uint   `gorm:"primaryKey"`
	UserID     uint   `gorm:"index"`
	TokenHash  string `gorm:"uniqueIndex;size:64"`
	ExpiresAt  time.Time
	ConsumedAt *time.Time `gorm:"index"`
	CreatedAt  time.Time
}

// TableName returns the table name for GORM.
func (DBVerificationToken) TableName() string {
	return "verification_tokens"
}

// DBPasswordResetToken represents the database model for password reset
// tokens (with GORM tags).
type DBPasswordResetToken struct {
	ID         uint   `gorm:"primaryKey"`
	UserID     uint   `gorm:"index"`
	TokenHash  string `gorm:"uniqueIndex;size:64"`
	ExpiresAt  time.Time
	ConsumedAt *time.Time `gorm:"index"`
	CreatedAt  time.Time
}

// TableName returns the table name for GORM.
func (DBPasswordResetToken) TableName() string {
	return "password_reset_tokens"
}

// oneTimeTokenRow is the shape shared by both token tables.
type oneTimeTokenRow struct {
	ID         uint
	UserID     uint
	TokenHash  string
	ExpiresAt  time.Time
	ConsumedAt *time.Time
	CreatedAt  time.Time
}

// OneTimeTokenRepositoryImpl implements domain.OneTimeTokenRepository using
// GORM. One instance serves the verification table, another the reset table.
type OneTimeTokenRepositoryImpl struct {
	db    *gorm.DB
	table string
}

// NewVerificationTokenRepository creates the repository for email
// verification tokens.
func NewVerificationTokenRepository(db *gorm.DB) domain.OneTimeTokenRepository {
	return &OneTimeTokenRepositoryImpl{db: db, table: DBVerificationToken{}.TableName()}
}

// NewPasswordResetTokenRepository creates the repository for password reset
// tokens.
func NewPasswordResetTokenRepository(db *gorm.DB) domain.OneTimeTokenRepository {
	return &OneTimeTokenRepositoryImpl{db: db, table: DBPasswordResetToken{}.TableName()}
}

// Create implements domain.OneTimeTokenRepository.
func (r *OneTimeTokenRepositoryImpl) Create(ctx context.Context, token *domain.OneTimeToken) error {
	row := oneTimeTokenRow{
		UserID:     token.UserID,
		TokenHash:  token.TokenHash,
		ExpiresAt:  token.ExpiresAt,
		ConsumedAt: token.ConsumedAt,
		CreatedAt:  time.Now(),
	}
	if err := dbFrom(ctx, r.db).Table(r.table).Create(&row).Error; err != nil {
		return err
	}
	token.ID = row.ID
	token.CreatedAt = row.CreatedAt
	return nil
}

// FindByHash implements domain.OneTimeTokenRepository.
func (r *OneTimeTokenRepositoryImpl) FindByHash(ctx context.Context, tokenHash string) (*domain.OneTimeToken, error) {
	var row oneTimeTokenRow
	err := dbFrom(ctx, r.db).Table(r.table).
		Where("token_hash = ?", tokenHash).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTokenNotFound
		}
		return nil, err
	}
	return &domain.OneTimeToken{
		ID:         row.ID,
		UserID:     row.UserID,
		TokenHash:  row.TokenHash,
		ExpiresAt:  row.ExpiresAt,
		ConsumedAt: row.ConsumedAt,
		CreatedAt:  row.CreatedAt,
	}, nil
}

// MarkConsumed implements domain.OneTimeTokenRepository. Consumption is a
// one-way transition; an already-consumed row keeps its original timestamp.
func (r *OneTimeTokenRepositoryImpl) MarkConsumed(ctx context.Context, tokenID uint, at time.Time) error {
	return dbFrom(ctx, r.db).Table(r.table).
		Where("id = ? AND consumed_at IS NULL", tokenID).
		Update("consumed_at", at).Error
}

// ConsumeAllForUser implements domain.OneTimeTokenRepository.
func (r *OneTimeTokenRepositoryImpl) ConsumeAllForUser(ctx context.Context, userID uint, at time.Time) error {
	return dbFrom(ctx, r.db).Table(r.table).
		Where("user_id = ? AND consumed_at IS NULL", userID).
		Update("consumed_at", at).Error
}

// DeleteExpired implements domain.OneTimeTokenRepository.
func (r *OneTimeTokenRepositoryImpl) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	res := dbFrom(ctx, r.db).Table(r.table).
		Where("expires_at < ?", before).
		Delete(&oneTimeTokenRow{})
	return res.RowsAffected, res.Error
}
