package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/felixgeelhaar/consulta/internal/billing/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type manualTicker struct {
	ch      chan time.Time
	stopped bool
}

func (m *manualTicker) C() <-chan time.Time { return m.ch }
func (m *manualTicker) Stop()               { m.stopped = true }

func TestWatcher_EmitsOnEveryTickWithLatestSnapshot(t *testing.T) {
	trial := domain.NewTrialSubscription(uuid.New(), registeredAt)
	repo := newFakeRepo(trial)
	svc := NewService(repo, nil)

	now := registeredAt
	ticker := &manualTicker{ch: make(chan time.Time)}
	var gotInterval time.Duration
	w := NewWatcher(svc).WithClock(
		func() time.Time { return now },
		func(d time.Duration) Ticker { gotInterval = d; return ticker },
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	seen := make(chan Dashboard, 4)
	done := make(chan error, 1)
	go func() {
		done <- w.Watch(ctx, trial.AccountID, 0, func(d Dashboard) error {
			seen <- d
			return nil
		})
	}()

	first := <-seen
	assert.Equal(t, domain.SubscriptionTrial, first.Status)
	assert.Equal(t, 3, first.Countdown.Days)

	// Checkout lands between ticks; the next tick must observe it.
	next, err := trial.ApplyCheckout(domain.PlanCorporate, domain.BillingMonthly, registeredAt)
	require.NoError(t, err)
	require.NoError(t, repo.CompareAndSwap(ctx, next))

	ticker.ch <- registeredAt.Add(time.Second)
	second := <-seen
	assert.Equal(t, domain.SubscriptionActive, second.Status)
	assert.Equal(t, domain.PlanCorporate, second.Plan.ID)

	cancel()
	require.NoError(t, <-done)
	assert.True(t, ticker.stopped)
	assert.Equal(t, DefaultWatchInterval, gotInterval)
}

func TestWatcher_StopsOnCallbackError(t *testing.T) {
	trial := domain.NewTrialSubscription(uuid.New(), registeredAt)
	svc := NewService(newFakeRepo(trial), nil)
	stop := errors.New("stop")

	w := NewWatcher(svc).WithClock(
		func() time.Time { return registeredAt },
		func(time.Duration) Ticker { return &manualTicker{ch: make(chan time.Time)} },
	)
	err := w.Watch(context.Background(), trial.AccountID, time.Second, func(Dashboard) error { return stop })
	assert.ErrorIs(t, err, stop)
}
