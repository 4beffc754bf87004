package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SubscriptionStatus is the stored lifecycle state of a subscription.
// The stored value is a cache; readers use EffectiveStatus.
type SubscriptionStatus string

const (
	SubscriptionTrial   SubscriptionStatus = "trial"
	SubscriptionActive  SubscriptionStatus = "active"
	SubscriptionExpired SubscriptionStatus = "expired"
)

const (
	Day           = 24 * time.Hour
	TrialDuration = 3 * Day
	MonthlyTerm   = 30 * Day
	AnnualTerm    = 365 * Day

	// progressCycleDays is the nominal cycle used for the active progress bar,
	// independent of the billing period.
	progressCycleDays = 30.0
)

// Subscription is the per-account plan record.
type Subscription struct {
	AccountID     uuid.UUID
	Plan          PlanID
	Status        SubscriptionStatus
	BillingPeriod BillingPeriod
	ExpiresAt     time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
	// Version guards CompareAndSwap; ApplyCheckout keeps the caller's version.
	Version int
}

// NewTrialSubscription starts the default trial granted at registration.
func NewTrialSubscription(accountID uuid.UUID, now time.Time) Subscription {
	sub, _ := NewTrial(accountID, PlanUserStandard, now)
	return sub
}

// NewTrial starts a trial of the plan picked at registration.
func NewTrial(accountID uuid.UUID, plan PlanID, now time.Time) (Subscription, error) {
	if _, err := PlanByID(plan); err != nil {
		return Subscription{}, err
	}
	now = now.UTC()
	return Subscription{
		AccountID: accountID,
		Plan:      plan,
		Status:    SubscriptionTrial,
		ExpiresAt: now.Add(TrialDuration),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Countdown is a remaining duration split for display.
type Countdown struct {
	Days    int
	Hours   int
	Minutes int
	Seconds int
}

// IsZero reports whether no time remains.
func (c Countdown) IsZero() bool {
	return c == Countdown{}
}

func (c Countdown) String() string {
	return fmt.Sprintf("%dd %02dh %02dm %02ds", c.Days, c.Hours, c.Minutes, c.Seconds)
}

// Remaining returns the time left until expiry, clamped at zero.
func (s Subscription) Remaining(now time.Time) time.Duration {
	if !now.Before(s.ExpiresAt) {
		return 0
	}
	return s.ExpiresAt.Sub(now)
}

// Countdown decomposes Remaining into whole days, hours, minutes and seconds.
func (s Subscription) Countdown(now time.Time) Countdown {
	total := int64(s.Remaining(now) / time.Second)
	return Countdown{
		Days:    int(total / 86400),
		Hours:   int(total % 86400 / 3600),
		Minutes: int(total % 3600 / 60),
		Seconds: int(total % 60),
	}
}

// EffectiveStatus returns expired once now reaches the expiry, otherwise the stored status.
func (s Subscription) EffectiveStatus(now time.Time) SubscriptionStatus {
	if !now.Before(s.ExpiresAt) {
		return SubscriptionExpired
	}
	return s.Status
}

// Progress returns the percentage of the cycle remaining, in [0, 100].
// Trials always report 100.
func (s Subscription) Progress(now time.Time) float64 {
	switch s.EffectiveStatus(now) {
	case SubscriptionTrial:
		return 100
	case SubscriptionActive:
		c := s.Countdown(now)
		days := float64(c.Days) + float64(c.Hours)/24 + float64(c.Minutes)/1440
		return clamp(days/progressCycleDays*100, 0, 100)
	default:
		return 0
	}
}

// ApplyCheckout returns the subscription that results from a successful payment.
// The receiver is left untouched.
func (s Subscription) ApplyCheckout(plan PlanID, period BillingPeriod, now time.Time) (Subscription, error) {
	if _, err := PlanByID(plan); err != nil {
		return Subscription{}, err
	}

	var term time.Duration
	switch period {
	case BillingMonthly:
		term = MonthlyTerm
	case BillingAnnual:
		term = AnnualTerm
	default:
		return Subscription{}, &ValidationError{Field: "billing_period", Reason: fmt.Sprintf("unknown billing period %q", period)}
	}

	from := s.EffectiveStatus(now)
	if !CanTransition(from, SubscriptionActive) {
		return Subscription{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, SubscriptionActive)
	}

	now = now.UTC()
	next := s
	next.Plan = plan
	next.Status = SubscriptionActive
	next.BillingPeriod = period
	next.ExpiresAt = now.Add(term)
	next.UpdatedAt = now
	return next, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
