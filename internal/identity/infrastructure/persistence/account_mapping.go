package persistence

import (
	"time"

	"github.com/felixgeelhaar/consulta/internal/identity/domain"
	"github.com/felixgeelhaar/consulta/internal/shared/infrastructure/database"
	"github.com/google/uuid"
)

func rehydrate(
	id uuid.UUID,
	email, name, surname, hash string,
	verified bool,
	version int,
	createdAt, updatedAt time.Time,
) (*domain.Account, error) {
	e, err := domain.NewEmail(email)
	if err != nil {
		return nil, err
	}
	n, err := domain.NewName(name)
	if err != nil {
		return nil, err
	}
	return domain.RehydrateAccount(id, e, n, surname, hash, verified, version, createdAt, updatedAt), nil
}

func mapAccountError(err error) error {
	if database.IsUniqueViolation(err) {
		return domain.ErrEmailTaken
	}
	return err
}
