// Package mail renders account and billing notifications.
package mail

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"text/template"
	"time"
)

// Receipt is the data shown on a payment receipt.
type Receipt struct {
	Name      string
	Plan      string
	Period    string
	Amount    float64
	Currency  string
	Reference string
	Last4     string
	ExpiresAt time.Time
}

// Message is a rendered notification.
type Message struct {
	To      string
	Subject string
	Body    string
}

var templates = template.Must(template.New("mail").Funcs(template.FuncMap{
	"date": func(t time.Time) string { return t.Format("January 2, 2006") },
}).Parse(`
{{define "verification"}}Hello {{.Name}},

Use this code to verify your email address: {{.Token}}
The code expires in 24 hours.{{end}}

{{define "reset"}}A password reset was requested for your account.

Use this code to choose a new password: {{.Token}}
The code expires in 1 hour. If you did not ask for this, ignore this message.{{end}}

{{define "welcome"}}Welcome {{.Name}},

Your 3-day trial of the {{.Plan}} plan has started.{{end}}

{{define "receipt"}}Thank you{{if .Name}} {{.Name}}{{end}},

Plan:      {{.Plan}} ({{.Period}})
Amount:    {{printf "%.2f" .Amount}} {{.Currency}}
Card:      **** {{.Last4}}
Reference: {{.Reference}}
Renews:    {{date .ExpiresAt}}{{end}}
`))

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s mail: %w", name, err)
	}
	return buf.String(), nil
}

// LogMailer writes every message to the logger instead of delivering it.
type LogMailer struct {
	logger *slog.Logger
	sent   func(Message)
}

// NewLogMailer creates a mailer that logs at info level.
func NewLogMailer(logger *slog.Logger) *LogMailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogMailer{logger: logger}
}

// OnSend registers a hook that observes every message after it is logged.
func (m *LogMailer) OnSend(fn func(Message)) *LogMailer {
	m.sent = fn
	return m
}

func (m *LogMailer) send(ctx context.Context, to, subject, tmpl string, data any) error {
	body, err := render(tmpl, data)
	if err != nil {
		return err
	}
	msg := Message{To: to, Subject: subject, Body: body}
	m.logger.InfoContext(ctx, "mail sent",
		"to", to,
		"subject", subject,
		"body", body,
	)
	if m.sent != nil {
		m.sent(msg)
	}
	return nil
}

// SendVerification sends the email verification code.
func (m *LogMailer) SendVerification(ctx context.Context, to, name, token string) error {
	return m.send(ctx, to, "Verify your email", "verification", map[string]string{"Name": name, "Token": token})
}

// SendPasswordReset sends the password reset code.
func (m *LogMailer) SendPasswordReset(ctx context.Context, to, token string) error {
	return m.send(ctx, to, "Reset your password", "reset", map[string]string{"Token": token})
}

// SendWelcome greets a newly registered account and names its trial plan.
func (m *LogMailer) SendWelcome(ctx context.Context, to, name, plan string) error {
	return m.send(ctx, to, "Welcome to Consulta", "welcome", map[string]string{"Name": name, "Plan": plan})
}

// SendReceipt confirms a successful payment.
func (m *LogMailer) SendReceipt(ctx context.Context, to string, receipt Receipt) error {
	return m.send(ctx, to, "Your Consulta receipt", "receipt", receipt)
}
