package recommend

// Tier indexes the diet and activity content banks. Higher tiers describe healthier habits.
type Tier int

const (
	TierLow Tier = iota
	TierMid
	TierHigh
)

// tierRule assigns tier when match holds. Rules are evaluated in order and the first match wins.
type tierRule struct {
	match func(v float64) bool
	tier  Tier
}

//nolint:gochecknoglobals // immutable rule tables.
var (
	dietRules = []tierRule{
		{match: func(v float64) bool { return v >= 4 }, tier: TierHigh}, //nolint:mnd // threshold
		{match: func(v float64) bool { return v > 2 }, tier: TierMid},   //nolint:mnd // threshold
		{match: func(float64) bool { return true }, tier: TierLow},
	}
	activityRules = []tierRule{
		{match: func(m float64) bool { return m < 1.4 }, tier: TierLow}, //nolint:mnd // threshold
		{match: func(m float64) bool { return m < 1.8 }, tier: TierMid}, //nolint:mnd // threshold
		{match: func(float64) bool { return true }, tier: TierHigh},
	}
)

func classify(rules []tierRule, v float64) Tier {
	for _, rule := range rules {
		if rule.match(v) {
			return rule.tier
		}
	}
	// Every rule table ends with a catch-all.
	panic("classify: no rule matched")
}

// DietTier classifies a diet archetype score. Every integer maps to a tier.
func DietTier(archetype int) Tier {
	return classify(dietRules, float64(archetype))
}

// ActivityTier classifies an activity multiplier.
func ActivityTier(multiplier float64) Tier {
	return classify(activityRules, multiplier)
}
