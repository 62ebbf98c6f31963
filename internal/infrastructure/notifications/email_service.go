package notifications

import (
	"fmt"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"

	"github.com/you/authstarter/domain"
)

// SMTPConfig holds the SMTP transport settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	// BaseURL is the public application URL used to build links in emails.
	BaseURL string
}

// Configured reports whether enough settings are present to send real mail.
func (c SMTPConfig) Configured() bool {
	return c.Host != "" && c.Port != 0 && c.From != ""
}

// SMTPEmailService implements domain.EmailService over gomail.
type SMTPEmailService struct {
	dialer *gomail.Dialer
	cfg    SMTPConfig
	logger zerolog.Logger
}

// NewSMTPEmailService creates a new SMTP-backed email service.
func NewSMTPEmailService(cfg SMTPConfig, logger zerolog.Logger) domain.EmailService {
	return &SMTPEmailService{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		cfg:    cfg,
		logger: logger,
	}
}

// SendVerificationEmail implements domain.EmailService.
func (s *SMTPEmailService) SendVerificationEmail(to, rawToken string) error {
	link := fmt.Sprintf("%s/verify-email?token=%s", s.cfg.BaseURL, rawToken)
	body := fmt.Sprintf(`<p>Hello!</p>
<p>Thank you for signing up. Please verify your email address by opening the link below:</p>
<p><a href="%s">%s</a></p>
<p>If you didn't create an account, you can safely ignore this email.</p>`, link, link)

	if err := s.send(to, "Verify your email address", body); err != nil {
		return err
	}
	s.logger.Info().Str("email_type", "verification").Str("recipient", to).Msg("verification email sent")
	return nil
}

// SendPasswordResetEmail implements domain.EmailService.
func (s *SMTPEmailService) SendPasswordResetEmail(to, rawToken string) error {
	link := fmt.Sprintf("%s/reset-password?token=%s", s.cfg.BaseURL, rawToken)
	body := fmt.Sprintf(`<p>Hello!</p>
<p>You requested to reset your password. Open the link below to set a new one:</p>
<p><a href="%s">%s</a></p>
<p>If you didn't request a password reset, you can safely ignore this email. Your password will not be changed.</p>`, link, link)

	if err := s.send(to, "Reset your password", body); err != nil {
		return err
	}
	s.logger.Info().Str("email_type", "password-reset").Str("recipient", to).Msg("password reset email sent")
	return nil
}

func (s *SMTPEmailService) send(to, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", s.cfg.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	return s.dialer.DialAndSend(msg)
}

// ConsoleEmailService implements domain.EmailService by logging token
// deliveries. Used in development when SMTP is not configured. Raw tokens
// are logged only by length, never by value.
type ConsoleEmailService struct {
	logger zerolog.Logger
}

// NewConsoleEmailService creates the development fallback email service.
func NewConsoleEmailService(logger zerolog.Logger) domain.EmailService {
	return &ConsoleEmailService{logger: logger}
}

// SendVerificationEmail implements domain.EmailService.
func (s *ConsoleEmailService) SendVerificationEmail(to, rawToken string) error {
	s.logger.Info().
		Str("email_type", "verification").
		Str("recipient", to).
		Int("token_length", len(rawToken)).
		Msg("email (console): verification token ready")
	return nil
}

// SendPasswordResetEmail implements domain.EmailService.
func (s *ConsoleEmailService) SendPasswordResetEmail(to, rawToken string) error {
	s.logger.Info().
		Str("email_type", "password-reset").
		Str("recipient", to).
		Int("token_length", len(rawToken)).
		Msg("email (console): password reset token ready")
	return nil
}
