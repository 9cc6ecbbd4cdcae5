package email

import (
	"context"
	"fmt"
	"net/smtp"

	"badgeforge-backend/internal/config"
	"badgeforge-backend/pkg/logger"
)

type VerificationEmailData struct {
	Email      string
	VerifyLink string
	ExpiresIn  string
}

type BadgeAwardedData struct {
	Email      string
	BadgeName  string
	IssuerName string
	BadgeURL   string
}

type EmailService interface {
	SendVerificationEmail(ctx context.Context, data VerificationEmailData) error
	SendBadgeAwardedEmail(ctx context.Context, data BadgeAwardedData) error
}

type smtpEmailService struct {
	smtpAddr string
	smtpFrom string
	auth     smtp.Auth
}

func NewSMTPEmailService(cfg config.EmailConfig) EmailService {
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.SMTPHost)
	}

	return &smtpEmailService{
		smtpAddr: fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
		smtpFrom: cfg.From,
		auth:     auth,
	}
}

func (s *smtpEmailService) SendVerificationEmail(ctx context.Context, data VerificationEmailData) error {
	subject := "Verify your Badgeforge account"
	body := fmt.Sprintf(`Hello,

Please follow this link to verify your account:
%s

The link is valid for %s.

If you did not register this account, please ignore this email.`, data.VerifyLink, data.ExpiresIn)

	return s.send(data.Email, subject, body)
}

func (s *smtpEmailService) SendBadgeAwardedEmail(ctx context.Context, data BadgeAwardedData) error {
	subject := fmt.Sprintf("You have been awarded the badge %q", data.BadgeName)
	body := fmt.Sprintf(`Congratulations,

%s has awarded you the badge %q.

You can view your badge here:
%s`, data.IssuerName, data.BadgeName, data.BadgeURL)

	return s.send(data.Email, subject, body)
}

func (s *smtpEmailService) send(to, subject, body string) error {
	msg := []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		s.smtpFrom, to, subject, body))

	err := smtp.SendMail(s.smtpAddr, s.auth, s.smtpFrom, []string{to}, msg)
	if err != nil {
		logger.Error("Failed to send email to "+to, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}
