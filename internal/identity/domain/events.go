package domain

import (
	sharedDomain "github.com/felixgeelhaar/consulta/internal/shared/domain"
	"github.com/google/uuid"
)

const (
	AggregateType = "Account"

	RoutingKeyAccountRegistered = "identity.account.registered"
	RoutingKeyAccountVerified   = "identity.account.verified"
	RoutingKeyProfileUpdated    = "identity.account.profile_updated"
	RoutingKeyPasswordChanged   = "identity.account.password_changed"
	RoutingKeyAccountDeleted    = "identity.account.deleted"
)

// AccountRegistered is emitted when a new account is created.
type AccountRegistered struct {
	sharedDomain.BaseEvent
	Email   string `json:"email"`
	Name    string `json:"name"`
	Surname string `json:"surname"`
}

// NewAccountRegistered creates an AccountRegistered event.
func NewAccountRegistered(accountID uuid.UUID, email, name, surname string) *AccountRegistered {
	return &AccountRegistered{
		BaseEvent: sharedDomain.NewBaseEvent(accountID, AggregateType, RoutingKeyAccountRegistered),
		Email:     email,
		Name:      name,
		Surname:   surname,
	}
}

// AccountRegisteredPayload is the wire form consumers decode.
type AccountRegisteredPayload struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Surname string `json:"surname"`
}

// AccountVerified is emitted when the email address is confirmed.
type AccountVerified struct {
	sharedDomain.BaseEvent
	Email string `json:"email"`
}

// NewAccountVerified creates an AccountVerified event.
func NewAccountVerified(accountID uuid.UUID, email string) *AccountVerified {
	return &AccountVerified{
		BaseEvent: sharedDomain.NewBaseEvent(accountID, AggregateType, RoutingKeyAccountVerified),
		Email:     email,
	}
}

// ProfileUpdated is emitted when name, surname or email change.
type ProfileUpdated struct {
	sharedDomain.BaseEvent
	Email        string `json:"email"`
	Name         string `json:"name"`
	Surname      string `json:"surname"`
	EmailChanged bool   `json:"email_changed"`
}

// NewProfileUpdated creates a ProfileUpdated event.
func NewProfileUpdated(accountID uuid.UUID, email, name, surname string, emailChanged bool) *ProfileUpdated {
	return &ProfileUpdated{
		BaseEvent:    sharedDomain.NewBaseEvent(accountID, AggregateType, RoutingKeyProfileUpdated),
		Email:        email,
		Name:         name,
		Surname:      surname,
		EmailChanged: emailChanged,
	}
}

// PasswordChanged is emitted after a password change or reset.
type PasswordChanged struct {
	sharedDomain.BaseEvent
}

// NewPasswordChanged creates a PasswordChanged event.
func NewPasswordChanged(accountID uuid.UUID) *PasswordChanged {
	return &PasswordChanged{
		BaseEvent: sharedDomain.NewBaseEvent(accountID, AggregateType, RoutingKeyPasswordChanged),
	}
}

// AccountDeleted is emitted when an account and its subscription are removed.
type AccountDeleted struct {
	sharedDomain.BaseEvent
	Email string `json:"email"`
}

// NewAccountDeleted creates an AccountDeleted event.
func NewAccountDeleted(accountID uuid.UUID, email string) *AccountDeleted {
	return &AccountDeleted{
		BaseEvent: sharedDomain.NewBaseEvent(accountID, AggregateType, RoutingKeyAccountDeleted),
		Email:     email,
	}
}
