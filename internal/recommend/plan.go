package recommend

// Daily activity targets are the same for every user.
const (
	StepsTarget             = 10000
	SportsActivityHrsTarget = 8
)

// Discipline is a kind of training in a plan.
type Discipline string

const (
	Muscle Discipline = "muscle"
	Cardio Discipline = "cardio"
)

// DietPlan is present only for users with dietary goals. Values are rounded to the nearest 100 kcal.
type DietPlan struct {
	TDEE           float64 `json:"TDEE"`
	CaloriesTarget float64 `json:"calories_target"`
	Quality        string  `json:"quality"`
}

type ActivityPlan struct {
	StepsTarget             int    `json:"steps_target"`
	SportsActivityHrsTarget int    `json:"sports_activity_hrs_target"`
	ActivityDesc            string `json:"activity_desc"`
}

// TrainingPlan describes one discipline. Muscle plans carry a Routine, cardio plans carry Ideas.
type TrainingPlan struct {
	DaysPerWeek int `json:"days/wk"`
	// Intensity is on a 0-10 scale.
	Intensity int      `json:"intensity"`
	Routine   *Routine `json:"routine,omitempty"`
	Ideas     string   `json:"ideas,omitempty"`
}

// Training maps each selected discipline to its plan. It may be empty.
type Training map[Discipline]TrainingPlan

// Emphasis splits the user's focus between diet, activity and training. The parts sum to 1.
type Emphasis struct {
	Diet     float64 `json:"diet"`
	Activity float64 `json:"activity"`
	Training float64 `json:"training"`
	// Fallback is set when every weight was zero and the focus was split evenly.
	Fallback bool `json:"fallback,omitempty"`
}

// Plan is the recommendation derived from a [Profile].
type Plan struct {
	Diet     *DietPlan    `json:"diet,omitempty"`
	Activity ActivityPlan `json:"activity"`
	Training Training     `json:"training"`
	Emphasis Emphasis     `json:"emphasis"`
}
