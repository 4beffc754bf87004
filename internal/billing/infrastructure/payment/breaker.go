package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/consulta/internal/billing/domain"
	"github.com/sony/gobreaker/v2"
)

// ErrGatewayUnavailable is returned while the breaker is open.
var ErrGatewayUnavailable = errors.New("payment gateway unavailable")

// BreakerConfig configures the gateway circuit breaker.
type BreakerConfig struct {
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold uint32
}

// DefaultBreakerConfig returns conservative defaults.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 3,
	}
}

// BreakerGateway stops calling a failing gateway. Declines are a normal
// answer and do not count as failures.
type BreakerGateway struct {
	next    domain.PaymentGateway
	breaker *gobreaker.CircuitBreaker[domain.Receipt]
}

// NewBreakerGateway wraps next with a circuit breaker.
func NewBreakerGateway(next domain.PaymentGateway, cfg BreakerConfig, logger *slog.Logger) *BreakerGateway {
	if logger == nil {
		logger = slog.Default()
	}
	settings := gobreaker.Settings{
		Name:        "payment-gateway",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || domain.IsDeclined(err) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	}
	return &BreakerGateway{
		next:    next,
		breaker: gobreaker.NewCircuitBreaker[domain.Receipt](settings),
	}
}

// Charge forwards to the wrapped gateway unless the breaker is open.
func (g *BreakerGateway) Charge(ctx context.Context, charge domain.Charge) (domain.Receipt, error) {
	receipt, err := g.breaker.Execute(func() (domain.Receipt, error) {
		return g.next.Charge(ctx, charge)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return domain.Receipt{}, fmt.Errorf("%w: %w", ErrGatewayUnavailable, err)
	}
	return receipt, err
}

// State reports the breaker state, for health output.
func (g *BreakerGateway) State() string {
	return g.breaker.State().String()
}

var _ domain.PaymentGateway = (*BreakerGateway)(nil)
