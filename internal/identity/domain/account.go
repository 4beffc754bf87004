package domain

import (
	"time"

	sharedDomain "github.com/felixgeelhaar/consulta/internal/shared/domain"
	"github.com/google/uuid"
)

// Account is a registered customer.
type Account struct {
	sharedDomain.BaseAggregateRoot
	email         Email
	name          Name
	surname       string
	passwordHash  string
	emailVerified bool
}

// NewAccount registers an unverified account.
func NewAccount(email Email, name Name, surname, passwordHash string) *Account {
	a := &Account{
		BaseAggregateRoot: sharedDomain.NewBaseAggregateRoot(),
		email:             email,
		name:              name,
		surname:           surname,
		passwordHash:      passwordHash,
	}
	a.AddDomainEvent(NewAccountRegistered(a.ID(), email.String(), name.String(), surname))
	return a
}

// RehydrateAccount rebuilds an account from storage without raising events.
func RehydrateAccount(
	id uuid.UUID,
	email Email,
	name Name,
	surname, passwordHash string,
	emailVerified bool,
	version int,
	createdAt, updatedAt time.Time,
) *Account {
	base := sharedDomain.RehydrateBaseEntity(id, createdAt, updatedAt)
	return &Account{
		BaseAggregateRoot: sharedDomain.RehydrateBaseAggregateRoot(base, version),
		email:             email,
		name:              name,
		surname:           surname,
		passwordHash:      passwordHash,
		emailVerified:     emailVerified,
	}
}

func (a *Account) Email() Email         { return a.email }
func (a *Account) Name() Name           { return a.name }
func (a *Account) Surname() string      { return a.surname }
func (a *Account) PasswordHash() string { return a.passwordHash }
func (a *Account) EmailVerified() bool  { return a.emailVerified }

// FullName joins name and surname for display.
func (a *Account) FullName() string {
	if a.surname == "" {
		return a.name.String()
	}
	return a.name.String() + " " + a.surname
}

// Verify marks the email address as confirmed. Verifying twice is a no-op.
func (a *Account) Verify() {
	if a.emailVerified {
		return
	}
	a.emailVerified = true
	a.Touch()
	a.AddDomainEvent(NewAccountVerified(a.ID(), a.email.String()))
}

// UpdateProfile changes name, surname and email. A changed email must be
// verified again before the next login.
func (a *Account) UpdateProfile(name Name, surname string, email Email) {
	if a.name.Equals(name) && a.surname == surname && a.email.Equals(email) {
		return
	}
	emailChanged := !a.email.Equals(email)
	a.name = name
	a.surname = surname
	a.email = email
	if emailChanged {
		a.emailVerified = false
	}
	a.Touch()
	a.AddDomainEvent(NewProfileUpdated(a.ID(), email.String(), name.String(), surname, emailChanged))
}

// ChangePassword stores a new password hash.
func (a *Account) ChangePassword(passwordHash string) {
	a.passwordHash = passwordHash
	a.Touch()
	a.AddDomainEvent(NewPasswordChanged(a.ID()))
}

// MarkDeleted records the deletion event before the row is removed.
func (a *Account) MarkDeleted() {
	a.AddDomainEvent(NewAccountDeleted(a.ID(), a.email.String()))
}
