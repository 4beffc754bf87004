package application

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/consulta/internal/identity/domain"
	sharedApplication "github.com/felixgeelhaar/consulta/internal/shared/application"
	"github.com/google/uuid"
)

// UpdateProfileCommand changes profile fields and optionally the password.
type UpdateProfileCommand struct {
	AccountID       uuid.UUID
	Name            string
	Surname         string
	Email           string
	CurrentPassword string
	NewPassword     string
}

// UpdateProfile applies profile changes. A new email must be unused and
// resets verification. A new password requires the current one.
func (s *Service) UpdateProfile(ctx context.Context, cmd UpdateProfileCommand) (*domain.Account, error) {
	account, err := s.GetAccount(ctx, cmd.AccountID)
	if err != nil {
		return nil, err
	}

	name, err := domain.NewName(cmd.Name)
	if err != nil {
		return nil, err
	}
	email, err := domain.NewEmail(cmd.Email)
	if err != nil {
		return nil, err
	}

	if !email.Equals(account.Email()) {
		other, err := s.accounts.FindByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		if other != nil {
			return nil, domain.ErrEmailTaken
		}
	}

	if cmd.NewPassword != "" {
		if err := s.hasher.Compare(account.PasswordHash(), cmd.CurrentPassword); err != nil {
			return nil, domain.ErrInvalidCredentials
		}
		if err := domain.ValidatePassword(cmd.NewPassword, cmd.NewPassword); err != nil {
			return nil, err
		}
		hash, err := s.hasher.Hash(cmd.NewPassword)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		account.ChangePassword(hash)
	}

	emailChanged := !email.Equals(account.Email())
	account.UpdateProfile(name, cmd.Surname, email)

	err = sharedApplication.WithUnitOfWork(ctx, s.uow, func(txCtx context.Context) error {
		return s.saveWithEvents(txCtx, account)
	})
	if err != nil {
		return nil, err
	}
	account.ClearDomainEvents()

	if emailChanged {
		if err := s.sendVerification(ctx, account); err != nil {
			s.logger.Warn("verification mail not sent", "account_id", account.ID(), "error", err)
		}
	}
	s.logger.Info("profile updated", "account_id", account.ID(), "email_changed", emailChanged)
	return account, nil
}
