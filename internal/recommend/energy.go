package recommend

import "math"

// Harris-Benedict style coefficients. Kept exactly as published by the service for output compatibility.
const (
	bmrBase         = 66
	bmrWeightFactor = 6.23
	bmrHeightFactor = 12.7
	bmrAgeFactor    = 6.8

	// kcalPerKg is the energy equivalent of one kilogram of body mass change.
	kcalPerKg   = 7700
	daysPerWeek = 7
)

// ComputeEnergy returns the basal metabolic rate and the total daily energy expenditure in kcal.
func ComputeEnergy(stats Statistics, activityMultiplier float64) (float64, float64) {
	bmr := bmrBase + bmrWeightFactor*stats.Weight + bmrHeightFactor*stats.Height - bmrAgeFactor*stats.Age
	return bmr, bmr * activityMultiplier
}

// ComputeCaloriesTarget adjusts tdee by the daily deficit or surplus needed to reach the goal.
// It reports false when the user has no dietary goals.
//
// The goals must have been validated: a nil quantity or timeline panics.
func ComputeCaloriesTarget(tdee float64, goals Goals) (float64, bool) {
	if !goals.Dietary() {
		return 0, false
	}
	ratePerWeek := *goals.WQuantity / *goals.WTimeline
	dailyDelta := ratePerWeek * kcalPerKg / daysPerWeek
	if goals.WDirection == Lose {
		return tdee - dailyDelta, true
	}
	return tdee + dailyDelta, true
}

// RoundToHundred rounds v to the nearest 100. Halves round to even hundreds: 1950 → 2000, 2050 → 2000.
func RoundToHundred(v float64) float64 {
	return math.RoundToEven(v/100) * 100 //nolint:mnd // hundreds
}
