package recommend

import "math"

const (
	// dietWeightDivisor turns a calorie adjustment into a diet weight: every 500 kcal/day counts as 1.
	dietWeightDivisor = 500
	// activityPivot is the multiplier at which activity needs no emphasis at all.
	activityPivot        = 2.5
	activityWeightFactor = 3
)

// ComputeEmphasis normalises the diet, activity and training weights so that they sum to 1.
//
// When all three weights are zero there is nothing to normalise and the focus is split into equal
// thirds with Fallback set.
func ComputeEmphasis(dietWeight, activityMultiplier float64, trainingCount int) Emphasis {
	activityWeight := math.Abs(activityMultiplier-activityPivot) * activityWeightFactor
	trainingWeight := float64(trainingCount)

	total := dietWeight + activityWeight + trainingWeight
	if total == 0 {
		third := 1.0 / 3 //nolint:mnd // three parts
		return Emphasis{Diet: third, Activity: third, Training: third, Fallback: true}
	}
	return Emphasis{
		Diet:     dietWeight / total,
		Activity: activityWeight / total,
		Training: trainingWeight / total,
		Fallback: false,
	}
}

// dietWeight is the size of the daily calorie adjustment in units of 500 kcal.
func dietWeight(diet *DietPlan) float64 {
	if diet == nil {
		return 0
	}
	return math.Abs(diet.TDEE-diet.CaloriesTarget) / dietWeightDivisor
}
