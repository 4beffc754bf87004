// Package clitest builds a local-mode CLI application for command tests.
package clitest

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/felixgeelhaar/consulta/adapter/cli"
	"github.com/felixgeelhaar/consulta/internal/app"
	identityApp "github.com/felixgeelhaar/consulta/internal/identity/application"
	"github.com/felixgeelhaar/consulta/internal/session"
	"github.com/felixgeelhaar/consulta/internal/shared/infrastructure/mail"
	"github.com/felixgeelhaar/consulta/pkg/config"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// Config returns a SQLite configuration rooted in a temp directory with an
// instant, always-approving payment gateway.
func Config(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		AppEnv:             "test",
		DatabaseDriver:     "sqlite",
		SQLitePath:         filepath.Join(dir, "data.db"),
		LocalMode:          true,
		JWTSecret:          "test-secret",
		SessionTTL:         time.Hour,
		SessionPath:        filepath.Join(dir, "session.json"),
		BcryptCost:         bcrypt.MinCost,
		PaymentGateway:     "simulated",
		StripeCurrency:     "eur",
		OutboxPollInterval: 10 * time.Millisecond,
		OutboxBatchSize:    50,
		OutboxMaxRetries:   3,
	}
}

// Mailbox records every mail the container sends.
type Mailbox struct {
	mu   sync.Mutex
	sent []mail.Message
}

func (m *Mailbox) record(msg mail.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
}

// Subjects lists the subjects of sent mail in order.
func (m *Mailbox) Subjects() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.sent))
	for _, msg := range m.sent {
		out = append(out, msg.Subject)
	}
	return out
}

// Code returns the one-time code from the latest mail with subject.
func (m *Mailbox) Code(t *testing.T, subject string) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.sent) - 1; i >= 0; i-- {
		if m.sent[i].Subject != subject {
			continue
		}
		for _, line := range strings.Split(m.sent[i].Body, "\n") {
			if strings.HasPrefix(line, "Use this code") {
				return line[strings.LastIndex(line, ": ")+2:]
			}
		}
	}
	t.Fatalf("no %q mail", subject)
	return ""
}

// NewApp builds a container on cfg, installs the CLI app globally and
// removes it when the test ends.
func NewApp(t *testing.T, cfg *config.Config) (*cli.App, *app.Container, *Mailbox) {
	t.Helper()
	if cfg == nil {
		cfg = Config(t)
	}

	container, err := app.NewContainer(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(container.Close)

	box := &Mailbox{}
	container.Mailer.OnSend(box.record)

	a := cli.NewApp(
		container.Identity,
		container.Billing,
		container.Checkout,
		container.Watcher,
		container.Support,
		container.SessionStore,
		container.SessionResolver,
		container.Sessions,
	)
	a.SetFlush(container.DrainOutbox)

	cli.SetApp(a)
	t.Cleanup(func() { cli.SetApp(nil) })
	return a, container, box
}

// SignIn registers and verifies an account, then stores its session as
// `consulta account login` would.
func SignIn(t *testing.T, a *cli.App, box *Mailbox, email string) uuid.UUID {
	t.Helper()
	ctx := context.Background()

	_, err := a.Identity.Register(ctx, identityApp.RegisterCommand{
		Name:            "Ada",
		Surname:         "Lovelace",
		Email:           email,
		Password:        "engine1",
		ConfirmPassword: "engine1",
	})
	require.NoError(t, err)
	_, err = a.Identity.VerifyEmail(ctx, box.Code(t, "Verify your email"))
	require.NoError(t, err)

	result, err := a.Identity.Login(ctx, email, "engine1")
	require.NoError(t, err)
	require.NoError(t, a.Sessions.Save(&session.Session{
		Token:     result.Token,
		AccountID: result.Account.ID(),
		Email:     email,
		IssuedAt:  time.Now(),
	}))
	return result.Account.ID()
}

// Execute runs root with args and stdin, returning what it printed. Flags
// of every command under root are reset first.
func Execute(t *testing.T, root *cobra.Command, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags(root)

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())
	if err == nil {
		if a := cli.GetApp(); a != nil && a.Flush != nil {
			require.NoError(t, a.Flush(context.Background()))
		}
	}
	return out.String(), err
}

func resetFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})
	for _, child := range cmd.Commands() {
		resetFlags(child)
	}
}
