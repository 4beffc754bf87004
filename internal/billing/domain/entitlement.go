package domain

import "slices"

// Assistant is a chat persona a plan can unlock.
type Assistant string

const (
	AssistantPrimary    Assistant = "primary"
	AssistantCreative   Assistant = "creative"
	AssistantAutomation Assistant = "automation"
)

// DisplayName returns the persona name shown to users.
func (a Assistant) DisplayName() string {
	switch a {
	case AssistantPrimary:
		return "GPTOSS"
	case AssistantCreative:
		return "Gemini"
	case AssistantAutomation:
		return "AutoBot"
	default:
		return string(a)
	}
}

// SupportTier names the support level attached to a plan.
type SupportTier string

const (
	SupportSelfServe                 SupportTier = "self-serve"
	SupportBasic                     SupportTier = "basic"
	SupportPriority                  SupportTier = "priority"
	SupportBusiness                  SupportTier = "business"
	SupportBusinessPremium           SupportTier = "business-premium"
	SupportCorporate                 SupportTier = "corporate"
	SupportCorporatePremiumDedicated SupportTier = "corporate-premium-dedicated"
)

// Capabilities is the set of features unlocked by a plan.
type Capabilities struct {
	Plan              PlanID
	Assistants        []Assistant
	AutomationEnabled bool
	AutomationQuota   int
	SupportTier       SupportTier
	PhoneSupport      bool
	DedicatedSupport  bool
	Anonymous         bool
}

// Allows reports whether the assistant persona is unlocked.
func (c Capabilities) Allows(a Assistant) bool {
	return slices.Contains(c.Assistants, a)
}

var supportTiers = map[PlanID]SupportTier{
	PlanUserStandard:     SupportBasic,
	PlanUserPremium:      SupportPriority,
	PlanBusiness:         SupportBusiness,
	PlanBusinessPremium:  SupportBusinessPremium,
	PlanCorporate:        SupportCorporate,
	PlanCorporatePremium: SupportCorporatePremiumDedicated,
}

// Resolve maps a plan identifier to its capabilities.
// Identifiers outside the catalog return *UnknownPlanError.
func Resolve(id PlanID) (Capabilities, error) {
	plan, err := PlanByID(id)
	if err != nil {
		return Capabilities{}, err
	}

	business := Rank(id) >= Rank(PlanBusiness)
	corporate := Rank(id) >= Rank(PlanCorporate)

	return Capabilities{
		Plan:              plan.ID,
		Assistants:        plan.Assistants,
		AutomationEnabled: plan.AutomationEnabled(),
		AutomationQuota:   plan.AutomationQuota,
		SupportTier:       supportTiers[id],
		PhoneSupport:      business,
		DedicatedSupport:  corporate,
	}, nil
}

// AnonymousCapabilities is the entitlement of a visitor without an account.
func AnonymousCapabilities() Capabilities {
	return Capabilities{
		Assistants:  []Assistant{AssistantPrimary},
		SupportTier: SupportSelfServe,
		Anonymous:   true,
	}
}
