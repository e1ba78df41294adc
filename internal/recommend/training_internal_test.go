package recommend

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// fixedRand always returns the same index, clamped to the range.
type fixedRand int

func (f fixedRand) IntN(n int) int {
	return min(int(f), n-1)
}

func testBanks(t *testing.T) Banks {
	t.Helper()
	banks, err := DefaultBanks()
	if err != nil {
		t.Fatalf("DefaultBanks: %v", err)
	}
	return banks
}

func TestBuildTraining(t *testing.T) {
	banks := testBanks(t)
	routine := banks.Routines[1]
	muscle := TrainingPlan{DaysPerWeek: 4, Intensity: 8, Routine: &routine, Ideas: ""}
	cardio := TrainingPlan{DaysPerWeek: 3, Intensity: 4, Routine: nil, Ideas: banks.CardioIdeas[1]}

	tests := []struct {
		name       string
		objectives []string
		want       Training
	}{
		{name: "no objectives", objectives: nil, want: Training{}},
		{name: "unknown objective", objectives: []string{"yoga"}, want: Training{}},
		{name: "muscle gain", objectives: []string{"muscle gain"}, want: Training{Muscle: muscle}},
		{name: "running", objectives: []string{"running"}, want: Training{Cardio: cardio}},
		{
			name:       "both with noise",
			objectives: []string{"yoga", "running", "muscle gain"},
			want:       Training{Muscle: muscle, Cardio: cardio},
		},
		{
			name:       "duplicates count once",
			objectives: []string{"running", "running", "muscle gain", "muscle gain"},
			want:       Training{Muscle: muscle, Cardio: cardio},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildTraining(tt.objectives, banks, fixedRand(1))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("BuildTraining() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBuildTrainingCoversBanks(t *testing.T) {
	banks := testBanks(t)
	rnd := NewSeededRand(42)
	routines := make(map[string]bool)
	ideas := make(map[string]bool)
	for range 500 {
		training := BuildTraining([]string{ObjectiveMuscleGain, ObjectiveRunning}, banks, rnd)
		routines[training[Muscle].Routine.Name] = true
		ideas[training[Cardio].Ideas] = true
	}
	if len(routines) != len(banks.Routines) {
		t.Errorf("drew %d distinct routines, want %d", len(routines), len(banks.Routines))
	}
	if len(ideas) != len(banks.CardioIdeas) {
		t.Errorf("drew %d distinct cardio ideas, want %d", len(ideas), len(banks.CardioIdeas))
	}
}

func TestNewSeededRandIsReproducible(t *testing.T) {
	a, b := NewSeededRand(7), NewSeededRand(7)
	for i := range 100 {
		if x, y := a.IntN(1000), b.IntN(1000); x != y {
			t.Fatalf("draw %d differs: %d != %d", i, x, y)
		}
	}
}
