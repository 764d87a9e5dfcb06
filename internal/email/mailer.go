package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"
)

// Mailer dispatches transactional mail. Implementations are called as
// fire-and-forget side effects; callers log failures instead of propagating
// them.
type Mailer interface {
	SendPasswordResetEmail(ctx context.Context, to, token string) error
	SendPasswordChangedEmail(ctx context.Context, to string) error
}

// SMTPMailer sends mail through a plain SMTP relay.
type SMTPMailer struct {
	host        string
	port        string
	user        string
	password    string
	fromEmail   string
	frontendURL string
}

// NewSMTPMailer builds an SMTP-backed mailer.
func NewSMTPMailer(host, port, user, password, frontendURL string) *SMTPMailer {
	return &SMTPMailer{
		host:        host,
		port:        port,
		user:        user,
		password:    password,
		fromEmail:   user,
		frontendURL: frontendURL,
	}
}

var resetTemplate = template.Must(template.New("passwordReset").Parse(`
<html>
<body>
    <h2>Password Reset Request</h2>
    <p>You requested to reset your password. Click the link below to create a new password.</p>
    <p><a href="{{.ResetLink}}">Reset Password</a></p>
    <p>Or copy and paste this link into your browser:</p>
    <p>{{.ResetLink}}</p>
    <p>This link will expire in 1 hour. If you didn't request a password reset, you can safely ignore this email.</p>
</body>
</html>
`))

var changedTemplate = template.Must(template.New("passwordChanged").Parse(`
<html>
<body>
    <h2>Your password was changed</h2>
    <p>Your password has just been reset. If this wasn't you, contact support immediately.</p>
</body>
</html>
`))

// SendPasswordResetEmail mails a reset link carrying the signed reset token.
func (m *SMTPMailer) SendPasswordResetEmail(ctx context.Context, to, token string) error {
	resetLink := fmt.Sprintf("%s/reset-password?token=%s", m.frontendURL, token)

	var buf bytes.Buffer
	if err := resetTemplate.Execute(&buf, struct{ ResetLink string }{resetLink}); err != nil {
		return fmt.Errorf("render reset template: %w", err)
	}
	return m.send(to, "Reset your password", buf.String())
}

// SendPasswordChangedEmail notifies the user after a successful reset.
func (m *SMTPMailer) SendPasswordChangedEmail(ctx context.Context, to string) error {
	var buf bytes.Buffer
	if err := changedTemplate.Execute(&buf, nil); err != nil {
		return fmt.Errorf("render changed template: %w", err)
	}
	return m.send(to, "Your password was changed", buf.String())
}

func (m *SMTPMailer) send(to, subject, body string) error {
	auth := smtp.PlainAuth("", m.user, m.password, m.host)

	msg := []byte(fmt.Sprintf(
		"From: %s\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=UTF-8\r\n"+
			"\r\n"+
			"%s\r\n",
		m.fromEmail, to, subject, body,
	))

	addr := fmt.Sprintf("%s:%s", m.host, m.port)
	return smtp.SendMail(addr, auth, m.fromEmail, []string{to}, msg)
}
