package application

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/consulta/internal/identity/domain"
	sharedApplication "github.com/felixgeelhaar/consulta/internal/shared/application"
)

// RequestPasswordReset mails a reset token. Unknown addresses succeed
// silently.
func (s *Service) RequestPasswordReset(ctx context.Context, rawEmail string) error {
	email, err := domain.NewEmail(rawEmail)
	if err != nil {
		return err
	}
	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if account == nil {
		return nil
	}

	token, err := s.tokens.Issue(ctx, PurposePasswordReset, account.ID(), ResetTokenTTL)
	if err != nil {
		return fmt.Errorf("issue token: %w", err)
	}
	return s.mailer.SendPasswordReset(ctx, account.Email().String(), token)
}

// ResetPasswordCommand sets a new password with a reset token.
type ResetPasswordCommand struct {
	Token           string
	Password        string
	ConfirmPassword string
}

// ResetPassword consumes the token and stores the new password hash.
func (s *Service) ResetPassword(ctx context.Context, cmd ResetPasswordCommand) error {
	// Validate first so a typo does not burn the token.
	if err := domain.ValidatePassword(cmd.Password, cmd.ConfirmPassword); err != nil {
		return err
	}

	accountID, err := s.tokens.Consume(ctx, PurposePasswordReset, cmd.Token)
	if err != nil {
		return err
	}
	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		return err
	}
	if account == nil {
		return domain.ErrInvalidToken
	}

	hash, err := s.hasher.Hash(cmd.Password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	account.ChangePassword(hash)

	err = sharedApplication.WithUnitOfWork(ctx, s.uow, func(txCtx context.Context) error {
		return s.saveWithEvents(txCtx, account)
	})
	if err != nil {
		return err
	}

	s.logger.Info("password reset", "account_id", account.ID())
	return nil
}
