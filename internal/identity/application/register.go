package application

import (
	"context"
	"fmt"

	billingDomain "github.com/felixgeelhaar/consulta/internal/billing/domain"
	"github.com/felixgeelhaar/consulta/internal/identity/domain"
	sharedApplication "github.com/felixgeelhaar/consulta/internal/shared/application"
)

// RegisterCommand contains the data needed to open an account.
type RegisterCommand struct {
	Name            string
	Surname         string
	Email           string
	Password        string
	ConfirmPassword string
	// Plan is the trial plan. Empty means user-standard.
	Plan billingDomain.PlanID
}

// RegisterResult is the outcome of a registration.
type RegisterResult struct {
	Account      *domain.Account
	Subscription billingDomain.Subscription
}

// Register creates an unverified account with a trial subscription and
// mails a verification token.
func (s *Service) Register(ctx context.Context, cmd RegisterCommand) (*RegisterResult, error) {
	email, err := domain.NewEmail(cmd.Email)
	if err != nil {
		return nil, err
	}
	name, err := domain.NewName(cmd.Name)
	if err != nil {
		return nil, err
	}
	if err := domain.ValidatePassword(cmd.Password, cmd.ConfirmPassword); err != nil {
		return nil, err
	}

	plan := cmd.Plan
	if plan == "" {
		plan = billingDomain.PlanUserStandard
	}

	existing, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("lookup email: %w", err)
	}
	if existing != nil {
		return nil, domain.ErrEmailTaken
	}

	hash, err := s.hasher.Hash(cmd.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	account := domain.NewAccount(email, name, cmd.Surname, hash)
	trial, err := billingDomain.NewTrial(account.ID(), plan, s.now())
	if err != nil {
		return nil, err
	}

	err = sharedApplication.WithUnitOfWork(ctx, s.uow, func(txCtx context.Context) error {
		// The subscription references the account row.
		if err := s.accounts.Save(txCtx, account); err != nil {
			return err
		}
		if err := s.subscriptions.Create(txCtx, trial); err != nil {
			return err
		}
		return s.recordEvents(txCtx, account.ID(),
			append(account.DomainEvents(), billingDomain.NewSubscriptionStarted(trial)))
	})
	if err != nil {
		return nil, err
	}
	account.ClearDomainEvents()

	s.logger.Info("account registered",
		"account_id", account.ID(),
		"plan", trial.Plan,
		"trial_expires_at", trial.ExpiresAt,
	)

	if err := s.sendVerification(ctx, account); err != nil {
		// The account exists; the user can ask for a new token.
		s.logger.Warn("verification mail not sent", "account_id", account.ID(), "error", err)
	}
	return &RegisterResult{Account: account, Subscription: trial}, nil
}

func (s *Service) sendVerification(ctx context.Context, account *domain.Account) error {
	token, err := s.tokens.Issue(ctx, PurposeVerifyEmail, account.ID(), VerificationTokenTTL)
	if err != nil {
		return fmt.Errorf("issue token: %w", err)
	}
	return s.mailer.SendVerification(ctx, account.Email().String(), account.FullName(), token)
}
