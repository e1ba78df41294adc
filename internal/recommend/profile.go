package recommend

// ActivityLevel is the self-reported daily activity of a user.
type ActivityLevel string

const (
	Sedentary  ActivityLevel = "sedentary"
	Active     ActivityLevel = "active"
	VeryActive ActivityLevel = "very active"
)

// DefaultActivityLevels maps each activity level to its TDEE multiplier.
func DefaultActivityLevels() map[ActivityLevel]float64 {
	return map[ActivityLevel]float64{
		Sedentary:  1.2,  //nolint:mnd // multiplier
		Active:     1.55, //nolint:mnd // multiplier
		VeryActive: 1.9,  //nolint:mnd // multiplier
	}
}

// Direction is the requested direction of body weight change.
type Direction string

const (
	Lose Direction = "lose"
	Gain Direction = "gain"
)

// Recognised objectives. Anything else is ignored by the training planner.
const (
	ObjectiveMuscleGain = "muscle gain"
	ObjectiveRunning    = "running"
)

// Statistics are body measurements in kilograms, centimetres and years.
type Statistics struct {
	Weight float64 `json:"weight" validate:"gt=0"`
	Height float64 `json:"height" validate:"gt=0"`
	Age    float64 `json:"age"    validate:"gt=0"`
}

type DailyActivities struct {
	ActivityLevel ActivityLevel `json:"activity_level" validate:"required"`
}

// Goals are the user's declared targets. The weight fields are only read when HasDietaryGoals is set.
type Goals struct {
	// HasDietaryGoals must be sent explicitly, false included.
	HasDietaryGoals *bool `json:"hasDietaryGoals" validate:"required"`
	// WQuantity is the amount of weight to change in kilograms.
	WQuantity *float64 `json:"w_quantity,omitempty"`
	// WTimeline is the number of weeks to reach the goal in.
	WTimeline  *float64  `json:"w_timeline,omitempty"`
	WDirection Direction `json:"w_direction,omitempty"`
	Objectives []string  `json:"objectives"`
}

// Dietary reports whether the user asked for a calorie target.
func (g Goals) Dietary() bool {
	return g.HasDietaryGoals != nil && *g.HasDietaryGoals
}

// DietBaseline scores current eating habits. Higher is better; the score is unbounded.
type DietBaseline struct {
	DietArchetype *int `json:"diet_archetype" validate:"required"`
}

// Profile is everything the engine needs to derive a plan.
type Profile struct {
	Statistics      Statistics      `json:"statistics"`
	DailyActivities DailyActivities `json:"daily_activities"`
	Goals           Goals           `json:"goals"`
	DietBaseline    DietBaseline    `json:"diet_baseline"`
}
