package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/you/authstarter/domain"
)

// SessionRepositoryImpl implements domain.SessionRepository using GORM.
// Sessions live in the relational store because the refresh-token hash and
// validity flag must share transactions with user and token mutations.
type SessionRepositoryImpl struct {
	db *gorm.DB
}

// DBSession represents the database model for Session (with GORM tags).
type DBSession struct {
	ID               string `gorm:"primaryKey;size:64"`
	UserID           uint   `gorm:"index"`
	RefreshTokenHash string `gorm:"size:64"`
	Valid            bool   `gorm:"index"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// TableName returns the table name for GORM.
func (DBSession) TableName() string {
	return "sessions"
}

// NewSessionRepository creates a new session repository.
func NewSessionRepository(db *gorm.DB) domain.SessionRepository {
	return &SessionRepositoryImpl{db: db}
}

// Create implements domain.SessionRepository.
func (r *SessionRepositoryImpl) Create(ctx context.Context, session *domain.Session) error {
	dbSession := r.domainToDB(session)
	if err := dbFrom(ctx, r.db).Create(dbSession).Error; err != nil {
		return err
	}
	session.CreatedAt = dbSession.CreatedAt
	session.UpdatedAt = dbSession.UpdatedAt
	return nil
}

// FindByID implements domain.SessionRepository.
func (r *SessionRepositoryImpl) FindByID(ctx context.Context, sessionID string) (*domain.Session, error) {
	var dbSession DBSession
	err := dbFrom(ctx, r.db).Where("id = ?", sessionID).First(&dbSession).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}
	return r.dbToDomain(&dbSession), nil
}

// FindByUserID implements domain.SessionRepository, newest first.
func (r *SessionRepositoryImpl) FindByUserID(ctx context.Context, userID uint) ([]*domain.Session, error) {
	var dbSessions []DBSession
	err := dbFrom(ctx, r.db).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&dbSessions).Error
	if err != nil {
		return nil, err
	}

	sessions := make([]*domain.Session, 0, len(dbSessions))
	for i := range dbSessions {
		sessions = append(sessions, r.dbToDomain(&dbSessions[i]))
	}
	return sessions, nil
}

// RotateHash implements domain.SessionRepository. The single UPDATE makes
// the swap atomic; concurrent rotations resolve last-writer-wins.
func (r *SessionRepositoryImpl) RotateHash(ctx context.Context, sessionID, newHash string) error {
	res := dbFrom(ctx, r.db).Model(&DBSession{}).
		Where("id = ? AND valid = ?", sessionID, true).
		Update("refresh_token_hash", newHash)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

// Invalidate implements domain.SessionRepository. Clearing the hash together
// with the flag guarantees a dead session can never match a presented token.
func (r *SessionRepositoryImpl) Invalidate(ctx context.Context, sessionID string) error {
	return dbFrom(ctx, r.db).Model(&DBSession{}).
		Where("id = ?", sessionID).
		Updates(map[string]interface{}{"valid": false, "refresh_token_hash": ""}).Error
}

// InvalidateAllForUser implements domain.SessionRepository.
func (r *SessionRepositoryImpl) InvalidateAllForUser(ctx context.Context, userID uint) (int64, error) {
	res := dbFrom(ctx, r.db).Model(&DBSession{}).
		Where("user_id = ? AND valid = ?", userID, true).
		Updates(map[string]interface{}{"valid": false, "refresh_token_hash": ""})
	return res.RowsAffected, res.Error
}

// DeleteStale implements domain.SessionRepository.
func (r *SessionRepositoryImpl) DeleteStale(ctx context.Context, updatedBefore time.Time) (int64, error) {
	res := dbFrom(ctx, r.db).
		Where("valid = ? OR updated_at < ?", false, updatedBefore).
		Delete(&DBSession{})
	return res.RowsAffected, res.Error
}

// domainToDB converts a domain session to its database model.
func (r *SessionRepositoryImpl) domainToDB(session *domain.Session) *DBSession {
	return &DBSession{
		ID:               session.ID,
		UserID:           session.UserID,
		RefreshTokenHash: session.RefreshTokenHash,
		Valid:            session.Valid,
	}
}

// dbToDomain converts a database session to its domain entity.
func (r *SessionRepositoryImpl) dbToDomain(dbSession *DBSession) *domain.Session {
	return &domain.Session{
		ID:               dbSession.ID,
		UserID:           dbSession.UserID,
		RefreshTokenHash: dbSession.RefreshTokenHash,
		Valid:            dbSession.Valid,
		CreatedAt:        dbSession.CreatedAt,
		UpdatedAt:        dbSession.UpdatedAt,
	}
}
