package mailer

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/smtp"
	"time"

	"github.com/domodwyer/mailyak/v3"
	"go.uber.org/zap"
)

const appName = "HD Notes"

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// Config holds SMTP settings
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	// OTPValidity is shown to recipients of one-time codes
	OTPValidity time.Duration
}

// SMTPMailer sends the identity emails over SMTP
type SMTPMailer struct {
	cfg    Config
	auth   smtp.Auth
	logger *zap.Logger
}

// NewSMTPMailer creates a mailer; credentials are optional
func NewSMTPMailer(cfg Config, logger *zap.Logger) *SMTPMailer {
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return &SMTPMailer{cfg: cfg, auth: auth, logger: logger}
}

type otpData struct {
	AppName  string
	Name     string
	Code     string
	ValidFor string
}

type welcomeData struct {
	AppName string
	Name    string
}

// SendOTP mails a one-time code
func (m *SMTPMailer) SendOTP(ctx context.Context, to, name, code string) error {
	body, err := render("otp.html", otpData{
		AppName:  appName,
		Name:     name,
		Code:     code,
		ValidFor: humanize(m.cfg.OTPValidity),
	})
	if err != nil {
		return err
	}

	if err := m.send(ctx, to, fmt.Sprintf("Your OTP for %s - Verification Code", appName), body); err != nil {
		return fmt.Errorf("failed to send otp email: %w", err)
	}

	m.logger.Info("otp email sent", zap.String("to", to))
	return nil
}

// SendWelcome mails the greeting sent once an account is verified
func (m *SMTPMailer) SendWelcome(ctx context.Context, to, name string) error {
	body, err := render("welcome.html", welcomeData{AppName: appName, Name: name})
	if err != nil {
		return err
	}

	if err := m.send(ctx, to, fmt.Sprintf("Welcome to %s!", appName), body); err != nil {
		return fmt.Errorf("failed to send welcome email: %w", err)
	}

	m.logger.Info("welcome email sent", zap.String("to", to))
	return nil
}

func (m *SMTPMailer) send(ctx context.Context, to, subject, body string) error {
	mail := mailyak.New(fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port), m.auth)
	mail.To(to)
	mail.From(m.cfg.From)
	mail.FromName(appName)
	mail.Subject(subject)
	mail.HTML().Set(body)

	done := make(chan error, 1)
	go func() {
		done <- mail.Send()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", name, err)
	}
	return buf.String(), nil
}

func humanize(d time.Duration) string {
	if d <= 0 {
		d = 10 * time.Minute
	}
	if d%time.Minute == 0 {
		if n := int(d / time.Minute); n != 1 {
			return fmt.Sprintf("%d minutes", n)
		}
		return "1 minute"
	}
	return d.String()
}
