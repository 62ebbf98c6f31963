package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/you/authstarter/domain"
)

// UserRepositoryImpl implements domain.UserRepository using GORM.
type UserRepositoryImpl struct {
	db *gorm.DB
}

// DBUser represents the database model for User (with GORM tags).
type DBUser struct {
	ID              uint       `gorm:"primaryKey"`
	Email           string     `gorm:"uniqueIndex;size:255"`
	PasswordHash    string     `gorm:"column:password"`
	Role            string     `gorm:"index;size:64"`
	EmailVerifiedAt *time.Time `gorm:"index"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
	DeletedAt       gorm.DeletedAt `gorm:"index"`
}

// TableName returns the table name for GORM.
func (DBUser) TableName() string {
	return "users"
}

// NewUserRepository creates a new user repository.
func NewUserRepository(db *gorm.DB) domain.UserRepository {
	return &UserRepositoryImpl{db: db}
}

// Create implements domain.UserRepository. A unique-constraint violation on
// the email column is reported as domain.ErrDuplicateEmail so the service
// can close the check-then-insert race.
func (r *UserRepositoryImpl) Create(ctx context.Context, user *domain.User) error {
	dbUser := r.domainToDB(user)
	if err := dbFrom(ctx, r.db).Create(dbUser).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrDuplicateEmail
		}
		return err
	}
	user.ID = dbUser.ID
	user.CreatedAt = dbUser.CreatedAt
	user.UpdatedAt = dbUser.UpdatedAt
	return nil
}

// FindByEmail implements domain.UserRepository. The caller passes the email
// already lowercased; rows are stored lowercased on insert.
func (r *UserRepositoryImpl) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var dbUser DBUser
	err := dbFrom(ctx, r.db).Where("email = ?", email).First(&dbUser).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return r.dbToDomain(&dbUser), nil
}

// FindByID implements domain.UserRepository.
func (r *UserRepositoryImpl) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	var dbUser DBUser
	err := dbFrom(ctx, r.db).Where("id = ?", id).First(&dbUser).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return r.dbToDomain(&dbUser), nil
}

// UpdatePasswordHash implements domain.UserRepository.
func (r *UserRepositoryImpl) UpdatePasswordHash(ctx context.Context, userID uint, passwordHash string) error {
	return dbFrom(ctx, r.db).Model(&DBUser{}).Where("id = ?", userID).
		Update("password", passwordHash).Error
}

// MarkEmailVerified implements domain.UserRepository. The verified timestamp
// is set once; an already-verified row is left untouched.
func (r *UserRepositoryImpl) MarkEmailVerified(ctx context.Context, userID uint, at time.Time) error {
	return dbFrom(ctx, r.db).Model(&DBUser{}).
		Where("id = ? AND email_verified_at IS NULL", userID).
		Update("email_verified_at", at).Error
}

// UpdateRole implements domain.UserRepository.
func (r *UserRepositoryImpl) UpdateRole(ctx context.Context, userID uint, role string) error {
	res := dbFrom(ctx, r.db).Model(&DBUser{}).Where("id = ?", userID).Update("role", role)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// domainToDB converts a domain user to its database model.
func (r *UserRepositoryImpl) domainToDB(user *domain.User) *DBUser {
	return &DBUser{
		ID:              user.ID,
		Email:           user.Email,
		PasswordHash:    user.PasswordHash,
		Role:            user.Role,
		EmailVerifiedAt: user.EmailVerifiedAt,
	}
}

// dbToDomain converts a database user to its domain entity.
func (r *UserRepositoryImpl) dbToDomain(dbUser *DBUser) *domain.User {
	return &domain.User{
		ID:              dbUser.ID,
		Email:           dbUser.Email,
		PasswordHash:    dbUser.PasswordHash,
		Role:            dbUser.Role,
		EmailVerifiedAt: dbUser.EmailVerifiedAt,
		CreatedAt:       dbUser.CreatedAt,
		UpdatedAt:       dbUser.UpdatedAt,
	}
}
