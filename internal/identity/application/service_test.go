package application_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	billingDomain "github.com/felixgeelhaar/consulta/internal/billing/domain"
	"github.com/felixgeelhaar/consulta/internal/identity/application"
	"github.com/felixgeelhaar/consulta/internal/identity/domain"
	"github.com/felixgeelhaar/consulta/internal/identity/infrastructure/tokens"
	"github.com/felixgeelhaar/consulta/internal/shared/infrastructure/mail"
	"github.com/felixgeelhaar/consulta/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAccounts struct {
	mu   sync.Mutex
	byID map[uuid.UUID]*domain.Account
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{byID: map[uuid.UUID]*domain.Account{}}
}

func (f *fakeAccounts) Save(_ context.Context, a *domain.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, other := range f.byID {
		if id != a.ID() && other.Email().Equals(a.Email()) {
			return domain.ErrEmailTaken
		}
	}
	f.byID[a.ID()] = a
	return nil
}

func (f *fakeAccounts) FindByID(_ context.Context, id uuid.UUID) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byID[id], nil
}

func (f *fakeAccounts) FindByEmail(_ context.Context, email domain.Email) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.byID {
		if a.Email().Equals(email) {
			return a, nil
		}
	}
	return nil, nil
}

func (f *fakeAccounts) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.byID, id)
	return nil
}

type fakeSubscriptions struct {
	subs      map[uuid.UUID]billingDomain.Subscription
	createErr error
}

func (f *fakeSubscriptions) Create(_ context.Context, s billingDomain.Subscription) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.subs[s.AccountID] = s
	return nil
}

func (f *fakeSubscriptions) CompareAndSwap(context.Context, billingDomain.Subscription) error {
	return nil
}

func (f *fakeSubscriptions) FindByAccountID(_ context.Context, id uuid.UUID) (*billingDomain.Subscription, error) {
	s, ok := f.subs[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (f *fakeSubscriptions) DeleteByAccountID(_ context.Context, id uuid.UUID) error {
	delete(f.subs, id)
	return nil
}

type fakeUoW struct {
	committed  int
	rolledBack int
}

func (u *fakeUoW) Begin(ctx context.Context) (context.Context, error) { return ctx, nil }
func (u *fakeUoW) Commit(context.Context) error                       { u.committed++; return nil }
func (u *fakeUoW) Rollback(context.Context) error                     { u.rolledBack++; return nil }

// plainHasher prefixes instead of hashing to keep tests fast.
type plainHasher struct{}

func (plainHasher) Hash(p string) (string, error) { return "hashed:" + p, nil }
func (plainHasher) Compare(hash, p string) error {
	if hash != "hashed:"+p {
		return errors.New("mismatch")
	}
	return nil
}

type fakeSessions struct{}

func (fakeSessions) Issue(id uuid.UUID, email string) (string, error) {
	return "session-" + id.String(), nil
}

func (fakeSessions) Parse(string) (*application.Claims, error) { return nil, errors.New("unused") }

type fixture struct {
	svc      *application.Service
	accounts *fakeAccounts
	subs     *fakeSubscriptions
	outbox   *outbox.MemoryRepository
	uow      *fakeUoW
	sent     []mail.Message
}

var now = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		accounts: newFakeAccounts(),
		subs:     &fakeSubscriptions{subs: map[uuid.UUID]billingDomain.Subscription{}},
		outbox:   outbox.NewMemoryRepository(),
		uow:      &fakeUoW{},
	}
	mailer := mail.NewLogMailer(nil).OnSend(func(m mail.Message) { f.sent = append(f.sent, m) })
	f.svc = application.NewService(application.Deps{
		Accounts:      f.accounts,
		Subscriptions: f.subs,
		Outbox:        f.outbox,
		UoW:           f.uow,
		Hasher:        plainHasher{},
		Tokens:        tokens.NewMemoryStore(),
		Sessions:      fakeSessions{},
		Mailer:        mailer,
	}).WithClock(func() time.Time { return now })
	return f
}

func (f *fixture) register(t *testing.T, email string) *application.RegisterResult {
	t.Helper()
	res, err := f.svc.Register(context.Background(), application.RegisterCommand{
		Name:            "Ada",
		Surname:         "Lovelace",
		Email:           email,
		Password:        "secret1",
		ConfirmPassword: "secret1",
	})
	require.NoError(t, err)
	return res
}

// lastToken pulls the token out of the most recent mail body.
func (f *fixture) lastToken(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, f.sent)
	for _, line := range strings.Split(f.sent[len(f.sent)-1].Body, "\n") {
		if strings.HasPrefix(line, "Use this code") {
			return line[strings.LastIndex(line, ": ")+2:]
		}
	}
	t.Fatal("no token in mail")
	return ""
}

func TestRegister(t *testing.T) {
	f := newFixture(t)
	res := f.register(t, "Ada@Example.com")

	assert.Equal(t, "ada@example.com", res.Account.Email().String())
	assert.False(t, res.Account.EmailVerified())
	assert.Equal(t, billingDomain.PlanUserStandard, res.Subscription.Plan)
	assert.Equal(t, billingDomain.SubscriptionTrial, res.Subscription.Status)
	assert.Equal(t, now.Add(72*time.Hour), res.Subscription.ExpiresAt)

	_, stored := f.subs.subs[res.Account.ID()]
	assert.True(t, stored)
	assert.Equal(t, 1, f.uow.committed)

	keys := []string{}
	for _, m := range f.outbox.Messages() {
		keys = append(keys, m.RoutingKey)
	}
	assert.ElementsMatch(t, []string{domain.RoutingKeyAccountRegistered, billingDomain.RoutingKeySubscriptionStarted}, keys)

	require.Len(t, f.sent, 1)
	assert.Equal(t, "ada@example.com", f.sent[0].To)
	assert.NotEmpty(t, f.lastToken(t))
}

func TestRegister_SelectedPlan(t *testing.T) {
	f := newFixture(t)
	res, err := f.svc.Register(context.Background(), application.RegisterCommand{
		Name: "Ada", Email: "ada@example.com",
		Password: "secret1", ConfirmPassword: "secret1",
		Plan: billingDomain.PlanBusiness,
	})
	require.NoError(t, err)
	assert.Equal(t, billingDomain.PlanBusiness, res.Subscription.Plan)

	_, err = f.svc.Register(context.Background(), application.RegisterCommand{
		Name: "Bob", Email: "bob@example.com",
		Password: "secret1", ConfirmPassword: "secret1",
		Plan: "gold",
	})
	assert.True(t, billingDomain.IsUnknownPlan(err))
	assert.Equal(t, 1, f.uow.committed, "rejected before the transaction")
}

func TestRegister_Rejects(t *testing.T) {
	f := newFixture(t)
	f.register(t, "ada@example.com")

	tests := []struct {
		name string
		cmd  application.RegisterCommand
		want error
	}{
		{"duplicate", application.RegisterCommand{Name: "Ada", Email: "ADA@example.com", Password: "secret1", ConfirmPassword: "secret1"}, domain.ErrEmailTaken},
		{"short password", application.RegisterCommand{Name: "Ada", Email: "x@example.com", Password: "abc", ConfirmPassword: "abc"}, domain.ErrPasswordTooShort},
		{"mismatch", application.RegisterCommand{Name: "Ada", Email: "x@example.com", Password: "secret1", ConfirmPassword: "secret2"}, domain.ErrPasswordMismatch},
		{"bad email", application.RegisterCommand{Name: "Ada", Email: "nope", Password: "secret1", ConfirmPassword: "secret1"}, domain.ErrInvalidEmail},
		{"no name", application.RegisterCommand{Name: " ", Email: "x@example.com", Password: "secret1", ConfirmPassword: "secret1"}, domain.ErrEmptyName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Register(context.Background(), tt.cmd)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestRegister_RollsBackOnSubscriptionFailure(t *testing.T) {
	f := newFixture(t)
	f.subs.createErr = errors.New("disk full")

	_, err := f.svc.Register(context.Background(), application.RegisterCommand{
		Name: "Ada", Email: "ada@example.com", Password: "secret1", ConfirmPassword: "secret1",
	})
	require.Error(t, err)
	assert.Equal(t, 1, f.uow.rolledBack)
	assert.Empty(t, f.sent)
	assert.Empty(t, f.outbox.Messages())
}

func TestVerifyAndLogin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	res := f.register(t, "ada@example.com")
	token := f.lastToken(t)

	_, err := f.svc.Login(ctx, "ada@example.com", "secret1")
	assert.ErrorIs(t, err, domain.ErrEmailNotVerified)

	account, err := f.svc.VerifyEmail(ctx, token)
	require.NoError(t, err)
	assert.True(t, account.EmailVerified())

	_, err = f.svc.VerifyEmail(ctx, token)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)

	_, err = f.svc.Login(ctx, "ada@example.com", "wrong")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	_, err = f.svc.Login(ctx, "nobody@example.com", "secret1")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	login, err := f.svc.Login(ctx, "ADA@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "session-"+res.Account.ID().String(), login.Token)
}

func TestResendVerification(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.register(t, "ada@example.com")

	require.NoError(t, f.svc.ResendVerification(ctx, "ada@example.com"))
	assert.Len(t, f.sent, 2)

	require.NoError(t, f.svc.ResendVerification(ctx, "ghost@example.com"))
	assert.Len(t, f.sent, 2, "unknown addresses get nothing")

	_, err := f.svc.VerifyEmail(ctx, f.lastToken(t))
	require.NoError(t, err)
	require.NoError(t, f.svc.ResendVerification(ctx, "ada@example.com"))
	assert.Len(t, f.sent, 2, "verified accounts get nothing")
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	res := f.register(t, "ada@example.com")
	_, err := f.svc.VerifyEmail(ctx, f.lastToken(t))
	require.NoError(t, err)
	f.register(t, "bob@example.com")

	_, err = f.svc.UpdateProfile(ctx, application.UpdateProfileCommand{
		AccountID: res.Account.ID(), Name: "Ada", Email: "bob@example.com",
	})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)

	_, err = f.svc.UpdateProfile(ctx, application.UpdateProfileCommand{
		AccountID: res.Account.ID(), Name: "Ada", Email: "ada@example.com",
		CurrentPassword: "wrong", NewPassword: "secret2",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = f.svc.UpdateProfile(ctx, application.UpdateProfileCommand{
		AccountID: res.Account.ID(), Name: "Ada", Email: "ada@example.com",
		CurrentPassword: "secret1", NewPassword: "abc",
	})
	assert.ErrorIs(t, err, domain.ErrPasswordTooShort)

	sentBefore := len(f.sent)
	updated, err := f.svc.UpdateProfile(ctx, application.UpdateProfileCommand{
		AccountID: res.Account.ID(), Name: "Augusta", Surname: "King", Email: "augusta@example.com",
		CurrentPassword: "secret1", NewPassword: "secret2",
	})
	require.NoError(t, err)
	assert.Equal(t, "Augusta King", updated.FullName())
	assert.False(t, updated.EmailVerified())
	assert.Equal(t, "hashed:secret2", updated.PasswordHash())
	assert.Len(t, f.sent, sentBefore+1, "new address gets a verification mail")

	_, err = f.svc.UpdateProfile(ctx, application.UpdateProfileCommand{AccountID: uuid.New(), Name: "X", Email: "x@example.com"})
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestPasswordReset(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.register(t, "ada@example.com")
	_, err := f.svc.VerifyEmail(ctx, f.lastToken(t))
	require.NoError(t, err)

	require.NoError(t, f.svc.RequestPasswordReset(ctx, "ghost@example.com"))
	require.NoError(t, f.svc.RequestPasswordReset(ctx, "ada@example.com"))
	token := f.lastToken(t)

	err = f.svc.ResetPassword(ctx, application.ResetPasswordCommand{Token: token, Password: "newpass", ConfirmPassword: "other"})
	assert.ErrorIs(t, err, domain.ErrPasswordMismatch)

	require.NoError(t, f.svc.ResetPassword(ctx, application.ResetPasswordCommand{Token: token, Password: "newpass", ConfirmPassword: "newpass"}))

	err = f.svc.ResetPassword(ctx, application.ResetPasswordCommand{Token: token, Password: "newpass", ConfirmPassword: "newpass"})
	assert.ErrorIs(t, err, domain.ErrInvalidToken)

	_, err = f.svc.Login(ctx, "ada@example.com", "newpass")
	assert.NoError(t, err)
}

func TestDeleteAccount(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	res := f.register(t, "ada@example.com")
	id := res.Account.ID()

	require.NoError(t, f.svc.DeleteAccount(ctx, id))

	a, _ := f.accounts.FindByID(ctx, id)
	assert.Nil(t, a)
	_, ok := f.subs.subs[id]
	assert.False(t, ok)

	msgs := f.outbox.Messages()
	assert.Equal(t, domain.RoutingKeyAccountDeleted, msgs[len(msgs)-1].RoutingKey)

	assert.ErrorIs(t, f.svc.DeleteAccount(ctx, id), domain.ErrAccountNotFound)
}
