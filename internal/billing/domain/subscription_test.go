package domain_test

import (
	"testing"
	"time"

	"github.com/felixgeelhaar/consulta/internal/billing/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestNewTrialSubscription(t *testing.T) {
	id := uuid.New()
	sub := domain.NewTrialSubscription(id, t0)

	assert.Equal(t, id, sub.AccountID)
	assert.Equal(t, domain.PlanUserStandard, sub.Plan)
	assert.Equal(t, domain.SubscriptionTrial, sub.Status)
	assert.Equal(t, t0.Add(72*time.Hour), sub.ExpiresAt)
}

func TestNewTrial_SelectedPlan(t *testing.T) {
	sub, err := domain.NewTrial(uuid.New(), domain.PlanUserPremium, t0)
	require.NoError(t, err)
	assert.Equal(t, domain.PlanUserPremium, sub.Plan)
	assert.Equal(t, domain.SubscriptionTrial, sub.EffectiveStatus(t0))

	_, err = domain.NewTrial(uuid.New(), "gold", t0)
	assert.True(t, domain.IsUnknownPlan(err))
}

func TestRemaining(t *testing.T) {
	sub := domain.NewTrialSubscription(uuid.New(), t0)

	assert.Equal(t, 72*time.Hour, sub.Remaining(t0))
	assert.Greater(t, sub.Remaining(sub.ExpiresAt.Add(-time.Nanosecond)), time.Duration(0))
	assert.Zero(t, sub.Remaining(sub.ExpiresAt))
	assert.Zero(t, sub.Remaining(sub.ExpiresAt.Add(48*time.Hour)))
}

func TestCountdown(t *testing.T) {
	sub := domain.Subscription{
		Status:    domain.SubscriptionActive,
		ExpiresAt: t0.Add(2*24*time.Hour + 3*time.Hour + 4*time.Minute + 5*time.Second + 900*time.Millisecond),
	}

	c := sub.Countdown(t0)
	assert.Equal(t, domain.Countdown{Days: 2, Hours: 3, Minutes: 4, Seconds: 5}, c)
	assert.Equal(t, "2d 03h 04m 05s", c.String())
	assert.True(t, sub.Countdown(sub.ExpiresAt).IsZero())
}

func TestEffectiveStatus(t *testing.T) {
	for _, stored := range []domain.SubscriptionStatus{domain.SubscriptionTrial, domain.SubscriptionActive, domain.SubscriptionExpired} {
		sub := domain.Subscription{Status: stored, ExpiresAt: t0}
		assert.Equal(t, domain.SubscriptionExpired, sub.EffectiveStatus(t0), stored)
		assert.Equal(t, domain.SubscriptionExpired, sub.EffectiveStatus(t0.Add(time.Hour)), stored)
	}

	active := domain.Subscription{Status: domain.SubscriptionActive, ExpiresAt: t0.Add(time.Hour)}
	assert.Equal(t, domain.SubscriptionActive, active.EffectiveStatus(t0))
}

func TestProgress(t *testing.T) {
	trial := domain.NewTrialSubscription(uuid.New(), t0)
	assert.Equal(t, 100.0, trial.Progress(t0))
	assert.Equal(t, 100.0, trial.Progress(t0.Add(70*time.Hour)))
	assert.Equal(t, 0.0, trial.Progress(trial.ExpiresAt))

	active := domain.Subscription{Status: domain.SubscriptionActive, ExpiresAt: t0.Add(15 * 24 * time.Hour)}
	assert.InDelta(t, 50.0, active.Progress(t0), 0.001)

	annual := domain.Subscription{Status: domain.SubscriptionActive, ExpiresAt: t0.Add(365 * 24 * time.Hour)}
	assert.Equal(t, 100.0, annual.Progress(t0))

	assert.Equal(t, 0.0, active.Progress(active.ExpiresAt.Add(time.Second)))
}

func TestApplyCheckout(t *testing.T) {
	trial := domain.NewTrialSubscription(uuid.New(), t0)
	before := trial

	now := t0.Add(time.Hour)
	next, err := trial.ApplyCheckout(domain.PlanBusiness, domain.BillingMonthly, now)
	require.NoError(t, err)

	assert.Equal(t, before, trial, "receiver must not change")
	assert.Equal(t, domain.PlanBusiness, next.Plan)
	assert.Equal(t, domain.SubscriptionActive, next.Status)
	assert.Equal(t, domain.BillingMonthly, next.BillingPeriod)
	assert.Equal(t, now.Add(30*24*time.Hour), next.ExpiresAt)
	assert.Equal(t, trial.AccountID, next.AccountID)
	assert.Equal(t, trial.Version, next.Version)

	annual, err := next.ApplyCheckout(domain.PlanCorporate, domain.BillingAnnual, now)
	require.NoError(t, err)
	assert.Equal(t, now.Add(365*24*time.Hour), annual.ExpiresAt)
}

func TestApplyCheckout_FromExpired(t *testing.T) {
	trial := domain.NewTrialSubscription(uuid.New(), t0)
	later := t0.Add(10 * 24 * time.Hour)
	require.Equal(t, domain.SubscriptionExpired, trial.EffectiveStatus(later))

	next, err := trial.ApplyCheckout(domain.PlanUserPremium, domain.BillingMonthly, later)
	require.NoError(t, err)
	assert.Equal(t, domain.SubscriptionActive, next.EffectiveStatus(later))
}

func TestApplyCheckout_RoundTrip(t *testing.T) {
	sub := domain.NewTrialSubscription(uuid.New(), t0)
	next, err := sub.ApplyCheckout(domain.PlanBusinessPremium, domain.BillingMonthly, t0)
	require.NoError(t, err)

	assert.Equal(t, domain.SubscriptionActive, next.EffectiveStatus(t0.Add(29*24*time.Hour)))
	assert.Equal(t, domain.SubscriptionExpired, next.EffectiveStatus(t0.Add(31*24*time.Hour)))
}

func TestApplyCheckout_Rejects(t *testing.T) {
	sub := domain.NewTrialSubscription(uuid.New(), t0)

	_, err := sub.ApplyCheckout("gold", domain.BillingMonthly, t0)
	assert.True(t, domain.IsUnknownPlan(err))

	_, err = sub.ApplyCheckout(domain.PlanBusiness, "weekly", t0)
	assert.True(t, domain.IsValidation(err))
}

func TestCanTransition(t *testing.T) {
	assert.True(t, domain.CanTransition(domain.SubscriptionTrial, domain.SubscriptionActive))
	assert.True(t, domain.CanTransition(domain.SubscriptionActive, domain.SubscriptionActive))
	assert.True(t, domain.CanTransition(domain.SubscriptionExpired, domain.SubscriptionActive))
	assert.True(t, domain.CanTransition(domain.SubscriptionActive, domain.SubscriptionExpired))
	assert.False(t, domain.CanTransition(domain.SubscriptionActive, domain.SubscriptionTrial))
	assert.False(t, domain.CanTransition(domain.SubscriptionExpired, domain.SubscriptionTrial))
}
