package recommend

import "slices"

const (
	muscleDaysPerWeek = 4
	muscleIntensity   = 8
	cardioDaysPerWeek = 3
	cardioIntensity   = 4
)

// BuildTraining plans a discipline for each recognised objective. Unknown objectives are ignored.
//
// The routine and cardio idea are drawn from the banks with rnd, so identical objectives can produce
// different content on every call.
func BuildTraining(objectives []string, banks Banks, rnd Rand) Training {
	training := make(Training)
	if slices.Contains(objectives, ObjectiveMuscleGain) {
		routine := banks.Routines[rnd.IntN(len(banks.Routines))]
		training[Muscle] = TrainingPlan{
			DaysPerWeek: muscleDaysPerWeek,
			Intensity:   muscleIntensity,
			Routine:     &routine,
			Ideas:       "",
		}
	}
	if slices.Contains(objectives, ObjectiveRunning) {
		training[Cardio] = TrainingPlan{
			DaysPerWeek: cardioDaysPerWeek,
			Intensity:   cardioIntensity,
			Routine:     nil,
			Ideas:       banks.CardioIdeas[rnd.IntN(len(banks.CardioIdeas))],
		}
	}
	return training
}
