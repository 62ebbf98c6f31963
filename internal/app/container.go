package app

import (
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/you/authstarter/domain"
	"github.com/you/authstarter/internal/config"
	"github.com/you/authstarter/internal/infrastructure/auth"
	"github.com/you/authstarter/internal/infrastructure/database"
	"github.com/you/authstarter/internal/infrastructure/notifications"
	"github.com/you/authstarter/internal/infrastructure/repositories"
	"github.com/you/authstarter/internal/services"
)

// Container holds all dependencies.
type Container struct {
	Config *config.Config
	Logger zerolog.Logger

	// Infrastructure
	DB          *gorm.DB
	RedisClient *redis.Client
	Casbin      *auth.CasbinService

	// Repositories
	UserRepo           domain.UserRepository
	SessionRepo        domain.SessionRepository
	VerificationTokens domain.OneTimeTokenRepository
	ResetTokens        domain.OneTimeTokenRepository
	AttemptRepo        domain.LoginAttemptRepository
	Tx                 domain.TxManager

	// Services
	PasswordSvc domain.PasswordService
	TokenSvc    domain.TokenService
	EmailSvc    domain.EmailService
	AuthSvc     domain.AuthService
	PolicySvc   domain.PolicyService
}

// NewContainer creates and initializes all dependencies.
func NewContainer(cfg *config.Config, logger zerolog.Logger) (*Container, error) {
	c := &Container{Config: cfg, Logger: logger}

	if err := c.initDatabase(); err != nil {
		return nil, err
	}
	c.initRedis()
	c.initRepositories()
	if err := c.initServices(); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Container) initDatabase() error {
	db, err := database.Open(c.Config.DSN)
	if err != nil {
		return err
	}
	if err := database.AutoMigrate(db); err != nil {
		return err
	}
	c.DB = db
	return nil
}

func (c *Container) initRedis() {
	c.RedisClient = database.NewRedis(c.Config.RedisAddr, c.Config.RedisPassword, c.Config.RedisDB).Client
}

func (c *Container) initRepositories() {
	c.UserRepo = repositories.NewUserRepository(c.DB)
	c.SessionRepo = repositories.NewSessionRepository(c.DB)
	c.VerificationTokens = repositories.NewVerificationTokenRepository(c.DB)
	c.ResetTokens = repositories.NewPasswordResetTokenRepository(c.DB)
	c.AttemptRepo = repositories.NewLoginAttemptRepository(c.DB)
	c.Tx = repositories.NewTxManager(c.DB)
}

func (c *Container) initServices() error {
	cas, err := auth.NewCasbinService(c.DB, c.Config.CasbinModelPath)
	if err != nil {
		return err
	}
	c.Casbin = cas

	c.PasswordSvc = auth.NewPasswordService()
	c.TokenSvc = auth.NewJWTService(
		c.Config.JWTAccessSecret,
		c.Config.JWTRefreshSecret,
		c.Config.JWTIssuer,
		c.Config.AccessTTL,
		c.Config.RefreshTTL,
	)

	smtpCfg := notifications.SMTPConfig{
		Host:     c.Config.SMTPHost,
		Port:     c.Config.SMTPPort,
		Username: c.Config.SMTPUsername,
		Password: c.Config.SMTPPassword,
		From:     c.Config.SMTPFrom,
		BaseURL:  c.Config.BaseURL,
	}
	if smtpCfg.Configured() {
		c.EmailSvc = notifications.NewSMTPEmailService(smtpCfg, c.Logger)
	} else {
		c.Logger.Warn().Msg("smtp not configured, emails logged to console")
		c.EmailSvc = notifications.NewConsoleEmailService(c.Logger)
	}

	c.AuthSvc = services.NewAuthService(
		c.UserRepo,
		c.SessionRepo,
		c.VerificationTokens,
		c.ResetTokens,
		c.AttemptRepo,
		c.PasswordSvc,
		c.TokenSvc,
		auth.NewTokenHasher(),
		c.EmailSvc,
		c.Tx,
		c.Logger,
		services.AuthConfig{
			EmailVerificationRequired: c.Config.EmailVerificationRequired,
			VerificationTTL:           c.Config.VerificationTTL,
			PasswordResetTTL:          c.Config.PasswordResetTTL,
			LoginMaxAttempts:          c.Config.LoginMaxAttempts,
			LoginLockout:              c.Config.LoginLockout,
			LoginAttemptWindow:        c.Config.LoginAttemptWindow,
		},
	)
	c.PolicySvc = services.NewPolicyService(cas.Enforcer)

	return nil
}
