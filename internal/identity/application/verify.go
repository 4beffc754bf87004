package application

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/consulta/internal/identity/domain"
	sharedApplication "github.com/felixgeelhaar/consulta/internal/shared/application"
)

// VerifyEmail consumes a verification token and marks the account verified.
func (s *Service) VerifyEmail(ctx context.Context, token string) (*domain.Account, error) {
	accountID, err := s.tokens.Consume(ctx, PurposeVerifyEmail, token)
	if err != nil {
		return nil, err
	}

	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		// Deleted after the token was issued.
		return nil, domain.ErrInvalidToken
	}

	account.Verify()
	err = sharedApplication.WithUnitOfWork(ctx, s.uow, func(txCtx context.Context) error {
		return s.saveWithEvents(txCtx, account)
	})
	if err != nil {
		return nil, fmt.Errorf("save account: %w", err)
	}
	account.ClearDomainEvents()

	s.logger.Info("email verified", "account_id", account.ID())
	return account, nil
}

// ResendVerification mails a fresh verification token. Unknown or already
// verified addresses succeed silently.
func (s *Service) ResendVerification(ctx context.Context, rawEmail string) error {
	email, err := domain.NewEmail(rawEmail)
	if err != nil {
		return err
	}
	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if account == nil || account.EmailVerified() {
		return nil
	}
	return s.sendVerification(ctx, account)
}
