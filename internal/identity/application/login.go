package application

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/consulta/internal/identity/domain"
)

// LoginResult carries the signed session token.
type LoginResult struct {
	Token   string
	Account *domain.Account
}

// Login checks credentials and issues a session token.
func (s *Service) Login(ctx context.Context, rawEmail, password string) (*LoginResult, error) {
	email, err := domain.NewEmail(rawEmail)
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, domain.ErrInvalidCredentials
	}
	if err := s.hasher.Compare(account.PasswordHash(), password); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if !account.EmailVerified() {
		return nil, domain.ErrEmailNotVerified
	}

	token, err := s.sessions.Issue(account.ID(), account.Email().String())
	if err != nil {
		return nil, fmt.Errorf("issue session: %w", err)
	}

	s.logger.Info("login", "account_id", account.ID())
	return &LoginResult{Token: token, Account: account}, nil
}
