package domain

import (
	"errors"
	"fmt"
)

var (
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrInvalidTransition    = errors.New("invalid subscription transition")
	ErrStaleSubscription    = errors.New("subscription was modified concurrently")
)

// UnknownPlanError is returned for identifiers outside the plan catalog.
type UnknownPlanError struct {
	ID string
}

func (e *UnknownPlanError) Error() string {
	return fmt.Sprintf("unknown plan %q", e.ID)
}

// ValidationError identifies the payment or checkout field that was rejected.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// PaymentDeclinedError is returned when a gateway refuses a charge.
type PaymentDeclinedError struct {
	Code   string
	Reason string
}

func (e *PaymentDeclinedError) Error() string {
	if e.Code == "" {
		return "payment declined: " + e.Reason
	}
	return fmt.Sprintf("payment declined (%s): %s", e.Code, e.Reason)
}

// IsUnknownPlan reports whether err is an UnknownPlanError.
func IsUnknownPlan(err error) bool {
	var target *UnknownPlanError
	return errors.As(err, &target)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsDeclined reports whether err is a PaymentDeclinedError.
func IsDeclined(err error) bool {
	var target *PaymentDeclinedError
	return errors.As(err, &target)
}
