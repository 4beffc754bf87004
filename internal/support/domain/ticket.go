package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Category classifies a ticket.
type Category string

const (
	CategoryTechnical Category = "technical"
	CategoryBilling   Category = "billing"
	CategoryAccount   Category = "account"
	CategoryFeature   Category = "feature"
	CategoryOther     Category = "other"
)

// Priority orders tickets.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Status tracks a ticket.
type Status string

const StatusOpen Status = "open"

var (
	ErrSubjectRequired     = errors.New("subject is required")
	ErrDescriptionRequired = errors.New("description is required")
)

// InvalidValueError reports an unknown category or priority.
type InvalidValueError struct {
	Field string
	Value string
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("invalid %s %q", e.Field, e.Value)
}

// ParseCategory validates a category name.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	switch c {
	case CategoryTechnical, CategoryBilling, CategoryAccount, CategoryFeature, CategoryOther:
		return c, nil
	}
	return "", &InvalidValueError{Field: "category", Value: s}
}

// ParsePriority validates a priority. Empty means medium.
func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	switch p {
	case "":
		return PriorityMedium, nil
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return p, nil
	}
	return "", &InvalidValueError{Field: "priority", Value: s}
}

// Ticket is a support request.
type Ticket struct {
	ID          uuid.UUID
	AccountID   uuid.UUID
	Subject     string
	Category    Category
	Priority    Priority
	Description string
	Status      Status
	CreatedAt   time.Time
}

// NewTicket validates input and opens a ticket.
func NewTicket(accountID uuid.UUID, subject, category, priority, description string, now time.Time) (*Ticket, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return nil, ErrSubjectRequired
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, ErrDescriptionRequired
	}
	c, err := ParseCategory(category)
	if err != nil {
		return nil, err
	}
	p, err := ParsePriority(priority)
	if err != nil {
		return nil, err
	}
	return &Ticket{
		ID:          uuid.New(),
		AccountID:   accountID,
		Subject:     subject,
		Category:    c,
		Priority:    p,
		Description: description,
		Status:      StatusOpen,
		CreatedAt:   now,
	}, nil
}
