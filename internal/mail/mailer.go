// Package mail sends transactional email over SMTP.
package mail

import (
	"bytes"
	"fmt"
	"html/template"
	"log/slog"
	"net/smtp"
	"strings"

	"moodblog/internal/config"
	"moodblog/internal/middleware"
)

// Mailer delivers transactional mail. When the SMTP settings are incomplete
// it runs disabled and every send is a logged no-op, so local development
// works without a mail server.
type Mailer struct {
	host     string
	port     string
	username string
	password string
	from     string
	enabled  bool

	// send is swappable for tests.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewMailer builds a Mailer from the application configuration.
func NewMailer(cfg *config.Config) *Mailer {
	enabled := cfg.SMTPHost != "" && cfg.SMTPPort != "" && cfg.SMTPUser != "" && cfg.SMTPPassword != "" && cfg.SMTPFrom != ""
	if !enabled {
		middleware.Logger.Warn("Mailer disabled: incomplete SMTP configuration")
	}
	return &Mailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		username: cfg.SMTPUser,
		password: cfg.SMTPPassword,
		from:     cfg.SMTPFrom,
		enabled:  enabled,
		send:     smtp.SendMail,
	}
}

// Enabled reports whether mail delivery is configured.
func (m *Mailer) Enabled() bool {
	return m.enabled
}

func (m *Mailer) sendAsync(to []string, subject, body string) {
	if !m.enabled {
		return
	}

	go func() {
		auth := smtp.PlainAuth("", m.username, m.password, m.host)
		addr := fmt.Sprintf("%s:%s", m.host, m.port)

		mime := "MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n\n"
		msg := []byte(fmt.Sprintf("To: %s\r\n"+
			"From: MoodBlog <%s>\r\n"+
			"Subject: %s\r\n"+
			"%s\r\n%s", strings.Join(to, ","), m.from, subject, mime, body))

		if err := m.send(addr, auth, m.from, to, msg); err != nil {
			middleware.Logger.Error("Failed to send email",
				slog.String("subject", subject),
				slog.String("error", err.Error()),
			)
			return
		}
		middleware.Logger.Info("Email sent", slog.String("subject", subject))
	}()
}

var resetTemplate = template.Must(template.New("reset").Parse(`<html>
<body style="font-family: sans-serif;">
  <h2>Password reset requested</h2>
  <p>Use this one-time code to reset your MoodBlog password:</p>
  <p style="font-size: 24px; letter-spacing: 4px;"><strong>{{.Code}}</strong></p>
  <p>The code expires in {{.TTLMinutes}} minutes. If you did not request a reset, ignore this email.</p>
</body>
</html>`))

// SendPasswordResetEmail delivers a one-time reset code to the address.
func (m *Mailer) SendPasswordResetEmail(email, code string, ttlMinutes int) {
	var buf bytes.Buffer
	if err := resetTemplate.Execute(&buf, map[string]any{
		"Code":       code,
		"TTLMinutes": ttlMinutes,
	}); err != nil {
		middleware.Logger.Error("Error rendering reset email", slog.String("error", err.Error()))
		return
	}
	m.sendAsync([]string{email}, "Your MoodBlog password reset code", buf.String())
}
