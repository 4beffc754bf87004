package application

import (
	"context"

	sharedApplication "github.com/felixgeelhaar/consulta/internal/shared/application"
	"github.com/google/uuid"
)

// DeleteAccount removes the subscription and then the account in one
// transaction.
func (s *Service) DeleteAccount(ctx context.Context, accountID uuid.UUID) error {
	account, err := s.GetAccount(ctx, accountID)
	if err != nil {
		return err
	}
	account.MarkDeleted()

	err = sharedApplication.WithUnitOfWork(ctx, s.uow, func(txCtx context.Context) error {
		if err := s.subscriptions.DeleteByAccountID(txCtx, accountID); err != nil {
			return err
		}
		if err := s.accounts.Delete(txCtx, accountID); err != nil {
			return err
		}
		return s.recordEvents(txCtx, accountID, account.DomainEvents())
	})
	if err != nil {
		return err
	}

	s.logger.Info("account deleted", "account_id", accountID)
	return nil
}
