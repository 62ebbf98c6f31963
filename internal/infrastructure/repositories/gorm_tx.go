package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/you/authstarter/domain"
)

type txKey struct{}

// GormTxManager implements domain.TxManager on top of gorm transactions.
// The transaction handle travels in the context so repository methods called
// inside the closure join the same transaction transparently.
type GormTxManager struct {
	db *gorm.DB
}

// NewTxManager creates a new transaction manager.
func NewTxManager(db *gorm.DB) domain.TxManager {
	return &GormTxManager{db: db}
}

// WithinTransaction implements domain.TxManager.
func (m *GormTxManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// dbFrom returns the transaction handle carried by ctx, falling back to the
// repository's base handle.
func dbFrom(ctx context.Context, base *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return base.WithContext(ctx)
}
