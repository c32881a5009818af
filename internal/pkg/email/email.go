// Package email sends account emails to staff over SMTP. Without SMTP
// credentials the messages are only logged.
package email

import (
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// EmailService defines the interface for email operations
type EmailService interface {
	SendVerificationEmail(toEmail, toName, token string) error
	SendWelcomeEmail(toEmail, toName string) error
}

// SMTPConfig holds configuration for SMTP server
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromName  string
	FromEmail string
	UseTLS    bool
	BaseURL   string // Public base URL of the API, used in links
}

// EmailServiceImpl implements EmailService
type EmailServiceImpl struct {
	config SMTPConfig
	logger zerolog.Logger
}

// NewEmailService creates a new EmailService
func NewEmailService(config SMTPConfig, logger zerolog.Logger) EmailService {
	return &EmailServiceImpl{
		config: config,
		logger: logger.With().Str("component", "email").Logger(),
	}
}

func (s *EmailServiceImpl) configured() bool {
	return s.config.Host != "" && s.config.Username != "" && s.config.Password != ""
}

// VerificationURL is the link mailed to a newly registered admin
func (s *EmailServiceImpl) VerificationURL(token string) string {
	return fmt.Sprintf("%s/api/v1/auth/verify-email?token=%s", strings.TrimRight(s.config.BaseURL, "/"), token)
}

// SendVerificationEmail sends an email with a verification link/token
func (s *EmailServiceImpl) SendVerificationEmail(toEmail, toName, token string) error {
	verificationURL := s.VerificationURL(token)
	if !s.configured() {
		s.logger.Warn().
			Str("toEmail", toEmail).
			Str("verificationURL", verificationURL).
			Msg("SMTP not configured - verification email not sent. Use the URL above to activate the account.")
		return nil
	}

	body := fmt.Sprintf(`
		<html>
		<body>
			<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
				<h2 style="color: #333;">Alumni Desk staff account</h2>
				<p>Hello %s,</p>
				<p>An administrator account was registered with this address. Confirm it by clicking the button below:</p>
				<div style="text-align: center; margin: 30px 0;">
					<a href="%s" style="background-color: #4a86e8; color: white; padding: 12px 24px; text-decoration: none; border-radius: 4px; font-weight: bold;">Verify Email</a>
				</div>
				<p>If you did not register, please ignore this email.</p>
				<p>Alumni Relations Office</p>
			</div>
		</body>
		</html>
	`, toName, verificationURL)

	return s.sendHTMLEmail(toEmail, "Verify your Alumni Desk account", body)
}

// SendWelcomeEmail confirms that an account is active
func (s *EmailServiceImpl) SendWelcomeEmail(toEmail, toName string) error {
	if !s.configured() {
		s.logger.Info().Str("toEmail", toEmail).Msg("SMTP not configured - welcome email not sent")
		return nil
	}

	body := fmt.Sprintf(`
		<html>
		<body>
			<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
				<p>Hello %s,</p>
				<p>Your email has been verified and your Alumni Desk account is now active.</p>
				<p>Alumni Relations Office</p>
			</div>
		</body>
		</html>
	`, toName)

	return s.sendHTMLEmail(toEmail, "Your Alumni Desk account is active", body)
}

// buildMessage renders headers in a fixed order followed by the body
func (s *EmailServiceImpl) buildMessage(toEmail, subject, htmlBody string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s <%s>\r\n", s.config.FromName, s.config.FromEmail)
	fmt.Fprintf(&b, "To: %s\r\n", toEmail)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(htmlBody)
	return b.String()
}

// sendHTMLEmail sends an HTML email
func (s *EmailServiceImpl) sendHTMLEmail(toEmail, subject, htmlBody string) error {
	auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)
	message := []byte(s.buildMessage(toEmail, subject, htmlBody))
	serverAddress := s.config.Host + ":" + strconv.Itoa(s.config.Port)

	if !s.config.UseTLS {
		if err := smtp.SendMail(serverAddress, auth, s.config.FromEmail, []string{toEmail}, message); err != nil {
			s.logger.Error().Err(err).Str("server", serverAddress).Msg("Failed to send email")
			return fmt.Errorf("failed to send email: %w", err)
		}
		return nil
	}

	conn, err := tls.Dial("tcp", serverAddress, &tls.Config{ServerName: s.config.Host})
	if err != nil {
		s.logger.Error().Err(err).Str("server", serverAddress).Msg("Failed to connect to SMTP server")
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, s.config.Host)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to create SMTP client")
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer client.Quit()

	if err = client.Auth(auth); err != nil {
		s.logger.Error().Err(err).Msg("SMTP authentication failed")
		return fmt.Errorf("SMTP authentication failed: %w", err)
	}
	if err = client.Mail(s.config.FromEmail); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err = client.Rcpt(toEmail); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to get data writer: %w", err)
	}
	if _, err = w.Write(message); err != nil {
		return fmt.Errorf("failed to write email message: %w", err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}
	return nil
}
