package notify

import (
	"fmt"
	"log/slog"
	"strings"

	"photoshare/internal/config"

	"gopkg.in/gomail.v2"
)

// EmailNotifier 实现邮件通知（确认邮箱 / 重置密码）。
type EmailNotifier struct {
	cfg    *config.EmailConfig
	logger *slog.Logger
}

// NewEmailNotifier 创建一个新的邮件通知器。
func NewEmailNotifier(cfg *config.EmailConfig, logger *slog.Logger) *EmailNotifier {
	return &EmailNotifier{
		cfg:    cfg,
		logger: logger,
	}
}

// SendConfirmation 发送邮箱确认链接。
func (n *EmailNotifier) SendConfirmation(toEmail, username, token string) error {
	link := fmt.Sprintf("%s/api/auth/confirmed_email/%s", strings.TrimRight(n.cfg.BaseURL, "/"), token)
	body := fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif;">
  <div style="max-width: 520px; margin: 0 auto; padding: 16px;">
    <h2>PhotoShare email confirmation</h2>
    <p>Hi %s,</p>
    <p>Confirm your email address by following the link below:</p>
    <p><a href="%s">Confirm email</a></p>
    <p>If you did not sign up, ignore this message.</p>
  </div>
</body>
</html>`, username, link)

	return n.send(toEmail, "[PhotoShare] Confirm your email", body)
}

// SendPasswordReset 发送密码重置链接。
func (n *EmailNotifier) SendPasswordReset(toEmail, username, token string) error {
	link := fmt.Sprintf("%s/api/auth/reset_password/%s", strings.TrimRight(n.cfg.BaseURL, "/"), token)
	body := fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif;">
  <div style="max-width: 520px; margin: 0 auto; padding: 16px;">
    <h2>PhotoShare password reset</h2>
    <p>Hi %s,</p>
    <p>We received a request to reset your password. Follow the link below to choose a new one:</p>
    <p><a href="%s">Reset password</a></p>
    <p>The link expires in a few hours. If you did not ask for a reset, ignore this message.</p>
  </div>
</body>
</html>`, username, link)

	return n.send(toEmail, "[PhotoShare] Reset your password", body)
}

func (n *EmailNotifier) send(toEmail, subject, htmlBody string) error {
	if n.cfg.SMTPHost == "" || n.cfg.SMTPUser == "" || n.cfg.FromEmail == "" {
		n.logger.Warn("email config missing, skip notification")
		return nil
	}
	if strings.TrimSpace(toEmail) == "" {
		n.logger.Warn("email recipient empty, skip notification")
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.cfg.FromEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	d := gomail.NewDialer(n.cfg.SMTPHost, n.cfg.SMTPPort, n.cfg.SMTPUser, n.cfg.SMTPPass)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	n.logger.Info("email sent", slog.String("to", toEmail), slog.String("subject", subject))
	return nil
}
