package domain_test

import (
	"testing"

	"github.com/felixgeelhaar/consulta/internal/billing/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_AllPlans(t *testing.T) {
	all := []domain.Assistant{domain.AssistantPrimary, domain.AssistantCreative, domain.AssistantAutomation}

	tests := []struct {
		id         domain.PlanID
		assistants []domain.Assistant
		automation bool
		tier       domain.SupportTier
		phone      bool
		dedicated  bool
	}{
		{domain.PlanUserStandard, []domain.Assistant{domain.AssistantPrimary}, false, domain.SupportBasic, false, false},
		{domain.PlanUserPremium, []domain.Assistant{domain.AssistantPrimary, domain.AssistantCreative}, false, domain.SupportPriority, false, false},
		{domain.PlanBusiness, all, true, domain.SupportBusiness, true, false},
		{domain.PlanBusinessPremium, all, true, domain.SupportBusinessPremium, true, false},
		{domain.PlanCorporate, all, true, domain.SupportCorporate, true, true},
		{domain.PlanCorporatePremium, all, true, domain.SupportCorporatePremiumDedicated, true, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.id), func(t *testing.T) {
			caps, err := domain.Resolve(tt.id)
			require.NoError(t, err)
			assert.Equal(t, tt.assistants, caps.Assistants)
			assert.Equal(t, tt.automation, caps.AutomationEnabled)
			assert.Equal(t, tt.tier, caps.SupportTier)
			assert.Equal(t, tt.phone, caps.PhoneSupport)
			assert.Equal(t, tt.dedicated, caps.DedicatedSupport)
			assert.False(t, caps.Anonymous)
		})
	}
}

func TestResolve_AssistantsMonotonicByTier(t *testing.T) {
	previous := 0
	for _, plan := range domain.Plans() {
		caps, err := domain.Resolve(plan.ID)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, len(caps.Assistants), previous, plan.ID)
		previous = len(caps.Assistants)
	}
}

func TestResolve_SupportTiersAreDistinct(t *testing.T) {
	seen := map[domain.SupportTier]domain.PlanID{}
	for _, plan := range domain.Plans() {
		caps, err := domain.Resolve(plan.ID)
		require.NoError(t, err)
		_, dup := seen[caps.SupportTier]
		assert.False(t, dup, "tier %s reused", caps.SupportTier)
		seen[caps.SupportTier] = plan.ID
	}
}

func TestResolve_UnknownPlan(t *testing.T) {
	for _, id := range []domain.PlanID{"", "free", "USER-STANDARD", "corporate-premium "} {
		_, err := domain.Resolve(id)
		assert.True(t, domain.IsUnknownPlan(err), "plan %q", id)
	}
}

func TestAnonymousCapabilities(t *testing.T) {
	anon := domain.AnonymousCapabilities()
	standard, err := domain.Resolve(domain.PlanUserStandard)
	require.NoError(t, err)

	assert.Equal(t, []domain.Assistant{domain.AssistantPrimary}, anon.Assistants)
	assert.Equal(t, standard.Assistants, anon.Assistants)
	assert.False(t, anon.AutomationEnabled)
	assert.True(t, anon.Anonymous)
	assert.Equal(t, domain.SupportSelfServe, anon.SupportTier)
	assert.NotEqual(t, standard.SupportTier, anon.SupportTier)
}

func TestCapabilities_Allows(t *testing.T) {
	caps, err := domain.Resolve(domain.PlanUserPremium)
	require.NoError(t, err)

	assert.True(t, caps.Allows(domain.AssistantPrimary))
	assert.True(t, caps.Allows(domain.AssistantCreative))
	assert.False(t, caps.Allows(domain.AssistantAutomation))
	assert.Equal(t, "Gemini", domain.AssistantCreative.DisplayName())
}
