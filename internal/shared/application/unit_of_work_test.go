package application

import (
	"context"
	"errors"
	"testing"

	"github.com/felixgeelhaar/consulta/internal/shared/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type ctxKey struct{}

type mockUnitOfWork struct {
	mock.Mock
}

func (m *mockUnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	args := m.Called(ctx)
	return args.Get(0).(context.Context), args.Error(1)
}

func (m *mockUnitOfWork) Commit(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockUnitOfWork) Rollback(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func TestWithUnitOfWork_Commits(t *testing.T) {
	ctx := context.Background()
	txCtx := context.WithValue(ctx, ctxKey{}, "tx")

	uow := new(mockUnitOfWork)
	uow.On("Begin", ctx).Return(txCtx, nil)
	uow.On("Commit", txCtx).Return(nil)

	err := WithUnitOfWork(ctx, uow, func(got context.Context) error {
		assert.Equal(t, txCtx, got)
		return nil
	})
	require.NoError(t, err)
	uow.AssertExpectations(t)
	uow.AssertNotCalled(t, "Rollback", mock.Anything)
}

func TestWithUnitOfWork_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	txCtx := context.WithValue(ctx, ctxKey{}, "tx")
	boom := errors.New("stale subscription")

	uow := new(mockUnitOfWork)
	uow.On("Begin", ctx).Return(txCtx, nil)
	uow.On("Rollback", txCtx).Return(nil)

	err := WithUnitOfWork(ctx, uow, func(context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)
	uow.AssertExpectations(t)
	uow.AssertNotCalled(t, "Commit", mock.Anything)
}

func TestWithUnitOfWork_BeginFails(t *testing.T) {
	ctx := context.Background()
	uow := new(mockUnitOfWork)
	uow.On("Begin", ctx).Return(ctx, errors.New("database is locked"))

	called := false
	err := WithUnitOfWork(ctx, uow, func(context.Context) error {
		called = true
		return nil
	})
	assert.EqualError(t, err, "database is locked")
	assert.False(t, called)
}

func TestWithUnitOfWork_RollsBackOnPanic(t *testing.T) {
	ctx := context.Background()
	txCtx := context.WithValue(ctx, ctxKey{}, "tx")

	uow := new(mockUnitOfWork)
	uow.On("Begin", ctx).Return(txCtx, nil)
	uow.On("Rollback", txCtx).Return(nil)

	assert.Panics(t, func() {
		_ = WithUnitOfWork(ctx, uow, func(context.Context) error { panic("card declined mid-write") })
	})
	uow.AssertExpectations(t)
	uow.AssertNotCalled(t, "Commit", mock.Anything)
}

type startedEvent struct {
	domain.BaseEvent
}

func TestApplyEventMetadata(t *testing.T) {
	accountID := uuid.New()
	meta := NewEventMetadata(accountID)
	assert.Equal(t, accountID, meta.AccountID)
	assert.NotEqual(t, uuid.Nil, meta.CorrelationID)
	assert.Equal(t, meta.CorrelationID, meta.CausationID)

	event := &startedEvent{BaseEvent: domain.NewBaseEvent(uuid.New(), "Subscription", "billing.subscription.started")}
	ApplyEventMetadata([]domain.DomainEvent{event}, meta)
	assert.Equal(t, meta, event.Metadata())
}
