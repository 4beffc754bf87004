package mcp

import (
	"errors"
	"fmt"
	"time"

	"github.com/felixgeelhaar/consulta/adapter/cli"
	billingApp "github.com/felixgeelhaar/consulta/internal/billing/application"
	billingDomain "github.com/felixgeelhaar/consulta/internal/billing/domain"
	supportDomain "github.com/felixgeelhaar/consulta/internal/support/domain"
	"github.com/google/uuid"
)

// errSessionRequired is returned by tools that act on an account.
var errSessionRequired = errors.New("session_token is required; log in with `consulta account login` and pass the token")

// caller resolves the session token to an account. An empty token is an
// anonymous visitor and yields nil.
func caller(app *cli.App, token string) (*uuid.UUID, error) {
	if token == "" {
		return nil, nil
	}
	if app.Issuer == nil {
		return nil, errors.New("session tokens require database connection")
	}
	claims, err := app.Issuer.Parse(token)
	if err != nil {
		return nil, fmt.Errorf("invalid session_token: %w", err)
	}
	id := claims.AccountID
	return &id, nil
}

func requireCaller(app *cli.App, token string) (uuid.UUID, error) {
	id, err := caller(app, token)
	if err != nil {
		return uuid.Nil, err
	}
	if id == nil {
		return uuid.Nil, errSessionRequired
	}
	return *id, nil
}

type planView struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	MonthlyPrice float64  `json:"monthly_price"`
	AnnualPrice  float64  `json:"annual_price"`
	Assistants   []string `json:"assistants"`
	Automation   string   `json:"automation"`
	Features     []string `json:"features"`
}

func toPlanView(p billingDomain.Plan) planView {
	return planView{
		ID:           string(p.ID),
		Name:         p.Name,
		MonthlyPrice: p.MonthlyPrice,
		AnnualPrice:  p.AnnualPrice(),
		Assistants:   assistantNames(p.Assistants),
		Automation:   cli.Automation(p.AutomationQuota),
		Features:     p.Features,
	}
}

type capabilitiesView struct {
	Plan             string   `json:"plan,omitempty"`
	Anonymous        bool     `json:"anonymous"`
	Assistants       []string `json:"assistants"`
	Automation       bool     `json:"automation_enabled"`
	AutomationQuota  int      `json:"automation_quota"`
	SupportTier      string   `json:"support_tier"`
	PhoneSupport     bool     `json:"phone_support"`
	DedicatedSupport bool     `json:"dedicated_support"`
}

func toCapabilitiesView(c billingDomain.Capabilities) capabilitiesView {
	return capabilitiesView{
		Plan:             string(c.Plan),
		Anonymous:        c.Anonymous,
		Assistants:       assistantNames(c.Assistants),
		Automation:       c.AutomationEnabled,
		AutomationQuota:  c.AutomationQuota,
		SupportTier:      string(c.SupportTier),
		PhoneSupport:     c.PhoneSupport,
		DedicatedSupport: c.DedicatedSupport,
	}
}

type dashboardView struct {
	Plan         string           `json:"plan"`
	PlanName     string           `json:"plan_name"`
	Status       string           `json:"status"`
	Period       string           `json:"billing_period,omitempty"`
	ExpiresAt    time.Time        `json:"expires_at"`
	Remaining    string           `json:"remaining"`
	Progress     float64          `json:"progress"`
	Capabilities capabilitiesView `json:"capabilities"`
}

func toDashboardView(d billingApp.Dashboard) dashboardView {
	return dashboardView{
		Plan:         string(d.Plan.ID),
		PlanName:     d.Plan.Name,
		Status:       string(d.Status),
		Period:       string(d.Period),
		ExpiresAt:    d.ExpiresAt,
		Remaining:    d.Countdown.String(),
		Progress:     d.Progress,
		Capabilities: toCapabilitiesView(d.Capabilities),
	}
}

type levelView struct {
	Tier     string   `json:"tier"`
	Name     string   `json:"name"`
	Channels []string `json:"channels"`
}

func toLevelView(l supportDomain.Level) levelView {
	return levelView{Tier: string(l.Tier), Name: l.Name, Channels: l.Channels}
}

type ticketView struct {
	ID          string    `json:"id"`
	Subject     string    `json:"subject"`
	Category    string    `json:"category"`
	Priority    string    `json:"priority"`
	Status      string    `json:"status"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

func toTicketView(t *supportDomain.Ticket) ticketView {
	return ticketView{
		ID:          t.ID.String(),
		Subject:     t.Subject,
		Category:    string(t.Category),
		Priority:    string(t.Priority),
		Status:      string(t.Status),
		Description: t.Description,
		CreatedAt:   t.CreatedAt,
	}
}

func assistantNames(list []billingDomain.Assistant) []string {
	names := make([]string, 0, len(list))
	for _, a := range list {
		names = append(names, a.DisplayName())
	}
	return names
}
