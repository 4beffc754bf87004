// Package payment provides PaymentGateway implementations.
package payment

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/felixgeelhaar/consulta/internal/billing/domain"
	"github.com/google/uuid"
)

const (
	DefaultFailureRate = 0.1
	DefaultDelay       = 3 * time.Second
)

// SimulatedConfig controls the simulated gateway.
type SimulatedConfig struct {
	// FailureRate is the probability in [0, 1] that a charge is declined.
	FailureRate float64
	// Delay stands in for processor latency.
	Delay time.Duration
	// Rand returns values in [0, 1). Nil uses math/rand/v2.
	Rand func() float64
}

// SimulatedGateway declines a configurable fraction of charges after a delay.
type SimulatedGateway struct {
	cfg    SimulatedConfig
	logger *slog.Logger
	mu     sync.Mutex
}

// NewSimulatedGateway creates a simulated gateway.
func NewSimulatedGateway(cfg SimulatedConfig, logger *slog.Logger) *SimulatedGateway {
	if cfg.FailureRate < 0 {
		cfg.FailureRate = 0
	}
	if cfg.FailureRate > 1 {
		cfg.FailureRate = 1
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.Float64
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SimulatedGateway{cfg: cfg, logger: logger}
}

// Charge waits for the configured delay, then approves or declines.
func (g *SimulatedGateway) Charge(ctx context.Context, charge domain.Charge) (domain.Receipt, error) {
	if g.cfg.Delay > 0 {
		timer := time.NewTimer(g.cfg.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return domain.Receipt{}, ctx.Err()
		case <-timer.C:
		}
	}

	g.mu.Lock()
	roll := g.cfg.Rand()
	g.mu.Unlock()

	if roll < g.cfg.FailureRate {
		g.logger.Info("simulated charge declined",
			"account_id", charge.AccountID,
			"amount", charge.Amount,
		)
		return domain.Receipt{}, &domain.PaymentDeclinedError{
			Code:   "card_declined",
			Reason: "Payment failed. Please try again.",
		}
	}

	return domain.Receipt{
		Reference: "sim_" + uuid.NewString(),
		Amount:    charge.Amount,
		Currency:  charge.Currency,
		Last4:     charge.Payment.Last4(),
	}, nil
}

var _ domain.PaymentGateway = (*SimulatedGateway)(nil)
