package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/consulta/internal/billing/domain"
	sharedApplication "github.com/felixgeelhaar/consulta/internal/shared/application"
	sharedDomain "github.com/felixgeelhaar/consulta/internal/shared/domain"
	"github.com/felixgeelhaar/consulta/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
)

// DefaultCurrency is charged when none is configured.
const DefaultCurrency = "eur"

// CheckoutCommand contains the data needed to purchase a plan.
type CheckoutCommand struct {
	AccountID uuid.UUID
	PlanID    domain.PlanID
	Period    domain.BillingPeriod
	Payment   domain.PaymentDetails
}

// CheckoutResult contains the updated subscription and the payment receipt.
type CheckoutResult struct {
	Subscription domain.Subscription
	Receipt      domain.Receipt
}

// CheckoutHandler handles the CheckoutCommand.
type CheckoutHandler struct {
	subscriptions domain.SubscriptionRepository
	outboxRepo    outbox.Repository
	gateway       domain.PaymentGateway
	uow           sharedApplication.UnitOfWork
	currency      string
	now           func() time.Time
	logger        *slog.Logger
}

// NewCheckoutHandler creates a new CheckoutHandler.
func NewCheckoutHandler(
	subscriptions domain.SubscriptionRepository,
	outboxRepo outbox.Repository,
	gateway domain.PaymentGateway,
	uow sharedApplication.UnitOfWork,
	currency string,
	logger *slog.Logger,
) *CheckoutHandler {
	if currency == "" {
		currency = DefaultCurrency
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CheckoutHandler{
		subscriptions: subscriptions,
		outboxRepo:    outboxRepo,
		gateway:       gateway,
		uow:           uow,
		currency:      currency,
		now:           time.Now,
		logger:        logger,
	}
}

// WithClock replaces the handler's clock.
func (h *CheckoutHandler) WithClock(now func() time.Time) *CheckoutHandler {
	h.now = now
	return h
}

// Handle executes the CheckoutCommand. The stored subscription changes only
// if the charge succeeds and the swap commits.
func (h *CheckoutHandler) Handle(ctx context.Context, cmd CheckoutCommand) (*CheckoutResult, error) {
	plan, err := domain.PlanByID(cmd.PlanID)
	if err != nil {
		return nil, err
	}
	if _, err := domain.ParseBillingPeriod(string(cmd.Period)); err != nil {
		return nil, err
	}
	if err := cmd.Payment.Validate(); err != nil {
		return nil, err
	}

	current, err := h.subscriptions.FindByAccountID(ctx, cmd.AccountID)
	if err != nil {
		return nil, fmt.Errorf("load subscription: %w", err)
	}
	if current == nil {
		return nil, domain.ErrSubscriptionNotFound
	}

	// Reject illegal transitions before money moves.
	if _, err := current.ApplyCheckout(plan.ID, cmd.Period, h.now()); err != nil {
		return nil, err
	}

	receipt, err := h.gateway.Charge(ctx, domain.Charge{
		AccountID:   cmd.AccountID,
		Plan:        plan.ID,
		Period:      cmd.Period,
		Amount:      plan.PriceFor(cmd.Period),
		Currency:    h.currency,
		Payment:     cmd.Payment,
		Description: fmt.Sprintf("%s (%s)", plan.Name, cmd.Period),
	})
	if err != nil {
		h.logger.Warn("checkout charge failed",
			"account_id", cmd.AccountID,
			"plan", plan.ID,
			"error", err,
		)
		return nil, err
	}

	// The term starts when payment clears.
	next, err := current.ApplyCheckout(plan.ID, cmd.Period, h.now())
	if err != nil {
		return nil, err
	}

	err = sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		if err := h.subscriptions.CompareAndSwap(txCtx, next); err != nil {
			return err
		}

		events := []sharedDomain.DomainEvent{domain.NewSubscriptionActivated(*current, next, receipt)}
		sharedApplication.ApplyEventMetadata(events, sharedApplication.NewEventMetadata(cmd.AccountID))

		msgs, err := outbox.NewMessages(events)
		if err != nil {
			return err
		}
		return h.outboxRepo.SaveBatch(txCtx, msgs)
	})
	if err != nil {
		h.logger.Error("checkout not recorded after successful charge",
			"account_id", cmd.AccountID,
			"reference", receipt.Reference,
			"error", err,
		)
		return nil, err
	}

	next.Version++
	h.logger.Info("subscription activated",
		"account_id", cmd.AccountID,
		"plan", next.Plan,
		"period", next.BillingPeriod,
		"expires_at", next.ExpiresAt,
	)
	return &CheckoutResult{Subscription: next, Receipt: receipt}, nil
}
