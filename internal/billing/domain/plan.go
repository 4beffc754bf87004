package domain

import (
	"fmt"
	"strings"
)

// PlanID identifies a subscription tier.
type PlanID string

const (
	PlanUserStandard     PlanID = "user-standard"
	PlanUserPremium      PlanID = "user-premium"
	PlanBusiness         PlanID = "business"
	PlanBusinessPremium  PlanID = "business-premium"
	PlanCorporate        PlanID = "corporate"
	PlanCorporatePremium PlanID = "corporate-premium"
)

// AnnualDiscount is applied to twelve monthly payments when billing annually.
const AnnualDiscount = 0.20

// UnlimitedAutomation marks a plan without a workflow quota.
const UnlimitedAutomation = -1

// BillingPeriod selects how long a checkout extends a subscription.
type BillingPeriod string

const (
	BillingMonthly BillingPeriod = "monthly"
	BillingAnnual  BillingPeriod = "annual"
)

// ParseBillingPeriod parses a billing period name.
func ParseBillingPeriod(s string) (BillingPeriod, error) {
	switch BillingPeriod(strings.ToLower(strings.TrimSpace(s))) {
	case BillingMonthly:
		return BillingMonthly, nil
	case BillingAnnual:
		return BillingAnnual, nil
	}
	return "", &ValidationError{Field: "billing_period", Reason: fmt.Sprintf("unknown billing period %q", s)}
}

// Plan is an immutable catalog entry.
type Plan struct {
	ID              PlanID
	Name            string
	MonthlyPrice    float64
	Features        []string
	Assistants      []Assistant
	AutomationQuota int
}

// AutomationEnabled reports whether the plan permits automation workflows.
func (p Plan) AutomationEnabled() bool {
	return p.AutomationQuota != 0
}

// AnnualPrice returns twelve months at the fixed annual discount.
func (p Plan) AnnualPrice() float64 {
	return AnnualPrice(p.MonthlyPrice)
}

// PriceFor returns the amount charged for one billing period.
func (p Plan) PriceFor(period BillingPeriod) float64 {
	if period == BillingAnnual {
		return p.AnnualPrice()
	}
	return p.MonthlyPrice
}

// AnnualPrice computes monthly * 12 * (1 - AnnualDiscount), rounded to cents.
func AnnualPrice(monthly float64) float64 {
	cents := monthly * 12 * (1 - AnnualDiscount) * 100
	return float64(int64(cents+0.5)) / 100
}

var catalog = []Plan{
	{
		ID:              PlanUserStandard,
		Name:            "User Standard",
		MonthlyPrice:    10,
		Features:        []string{"1 Chatbot (GPTOSS)", "No automation", "Basic support"},
		Assistants:      []Assistant{AssistantPrimary},
		AutomationQuota: 0,
	},
	{
		ID:              PlanUserPremium,
		Name:            "User Premium",
		MonthlyPrice:    40,
		Features:        []string{"2 Chatbots (GPTOSS & Gemini)", "No automation", "Priority support"},
		Assistants:      []Assistant{AssistantPrimary, AssistantCreative},
		AutomationQuota: 0,
	},
	{
		ID:              PlanBusiness,
		Name:            "Business",
		MonthlyPrice:    60,
		Features:        []string{"3 Chatbots", "3 Automation workflows", "Business support"},
		Assistants:      []Assistant{AssistantPrimary, AssistantCreative, AssistantAutomation},
		AutomationQuota: 3,
	},
	{
		ID:              PlanBusinessPremium,
		Name:            "Business Premium",
		MonthlyPrice:    100,
		Features:        []string{"3 Chatbots", "10 Automation workflows", "Phone support"},
		Assistants:      []Assistant{AssistantPrimary, AssistantCreative, AssistantAutomation},
		AutomationQuota: 10,
	},
	{
		ID:              PlanCorporate,
		Name:            "Corporate",
		MonthlyPrice:    120,
		Features:        []string{"3 Chatbots", "Developer access", "Unlimited automation", "Onsite support"},
		Assistants:      []Assistant{AssistantPrimary, AssistantCreative, AssistantAutomation},
		AutomationQuota: UnlimitedAutomation,
	},
	{
		ID:              PlanCorporatePremium,
		Name:            "Corporate Premium",
		MonthlyPrice:    200,
		Features:        []string{"3 Chatbots", "Developer access", "Unlimited automation", "Custom options", "Dedicated support"},
		Assistants:      []Assistant{AssistantPrimary, AssistantCreative, AssistantAutomation},
		AutomationQuota: UnlimitedAutomation,
	},
}

// Plans returns the catalog in tier order. The returned slice is a copy.
func Plans() []Plan {
	out := make([]Plan, len(catalog))
	for i, p := range catalog {
		out[i] = p.clone()
	}
	return out
}

// PlanByID looks up a plan in the catalog.
func PlanByID(id PlanID) (Plan, error) {
	for _, p := range catalog {
		if p.ID == id {
			return p.clone(), nil
		}
	}
	return Plan{}, &UnknownPlanError{ID: string(id)}
}

// Rank returns the tier position of a plan, or -1 for unknown plans.
func Rank(id PlanID) int {
	for i, p := range catalog {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (p Plan) clone() Plan {
	p.Features = append([]string(nil), p.Features...)
	p.Assistants = append([]Assistant(nil), p.Assistants...)
	return p
}
