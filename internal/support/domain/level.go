// Package domain models support levels and support tickets.
package domain

import (
	"slices"

	billingDomain "github.com/felixgeelhaar/consulta/internal/billing/domain"
)

// Level is the support offering attached to a tier.
type Level struct {
	Tier     billingDomain.SupportTier
	Name     string
	Channels []string
}

var (
	basicChannels    = []string{"Message boards", "Email support", "Knowledge base"}
	businessChannels = []string{"Message boards", "Email support", "Phone support", "Knowledge base", "Live chat"}
)

var levels = map[billingDomain.SupportTier]Level{
	billingDomain.SupportSelfServe: {
		Name:     "Self-serve",
		Channels: []string{"Knowledge base"},
	},
	billingDomain.SupportBasic: {
		Name:     "Basic",
		Channels: basicChannels,
	},
	billingDomain.SupportPriority: {
		Name:     "Priority",
		Channels: concat(basicChannels, "Priority email support", "Live chat"),
	},
	billingDomain.SupportBusiness: {
		Name:     "Business",
		Channels: businessChannels,
	},
	billingDomain.SupportBusinessPremium: {
		Name:     "Business Premium",
		Channels: concat(businessChannels, "Dedicated support"),
	},
	billingDomain.SupportCorporate: {
		Name:     "Corporate",
		Channels: []string{"All Business Premium features", "Onsite support", "Seminars", "Training sessions"},
	},
	billingDomain.SupportCorporatePremiumDedicated: {
		Name:     "Corporate Premium",
		Channels: []string{"All Corporate features", "Dedicated account manager", "Custom support solutions"},
	},
}

func concat(base []string, more ...string) []string {
	return append(slices.Clone(base), more...)
}

// LevelFor returns the support level of a tier. Unknown tiers fall back to
// self-serve.
func LevelFor(tier billingDomain.SupportTier) Level {
	l, ok := levels[tier]
	if !ok {
		tier = billingDomain.SupportSelfServe
		l = levels[tier]
	}
	l.Tier = tier
	l.Channels = slices.Clone(l.Channels)
	return l
}

// Levels lists every level from self-serve to corporate premium.
func Levels() []Level {
	order := []billingDomain.SupportTier{
		billingDomain.SupportSelfServe,
		billingDomain.SupportBasic,
		billingDomain.SupportPriority,
		billingDomain.SupportBusiness,
		billingDomain.SupportBusinessPremium,
		billingDomain.SupportCorporate,
		billingDomain.SupportCorporatePremiumDedicated,
	}
	out := make([]Level, 0, len(order))
	for _, tier := range order {
		out = append(out, LevelFor(tier))
	}
	return out
}
