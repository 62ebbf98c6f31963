package auth

import (
	"fmt"

	"github.com/casbin/casbin/v2"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"gorm.io/gorm"
)

// CasbinService owns the role-based access enforcer. Policies are persisted
// through the GORM adapter in the same database as the rest of the state.
type CasbinService struct {
	Enforcer *casbin.Enforcer
}

// NewCasbinService creates the enforcer backed by the given database.
func NewCasbinService(db *gorm.DB, modelPath string) (*CasbinService, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, fmt.Errorf("casbin adapter: %w", err)
	}

	enforcer, err := casbin.NewEnforcer(modelPath, adapter)
	if err != nil {
		return nil, fmt.Errorf("casbin enforcer: %w", err)
	}

	if err := enforcer.LoadPolicy(); err != nil {
		return nil, fmt.Errorf("casbin load policy: %w", err)
	}

	return &CasbinService{Enforcer: enforcer}, nil
}
