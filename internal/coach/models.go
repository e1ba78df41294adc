package coach

import (
	"time"

	"github.com/gpossst/fitplan/internal/recommend"
)

// Credentials identify an account. Passwords longer than 72 bytes are rejected during onboarding.
type Credentials struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// User is a stored account together with the profile its plans are derived from.
type User struct {
	Username     string
	PasswordHash []byte
	Profile      recommend.Profile
	CreatedAt    time.Time
}

// StoredPlan is the latest plan generated for a user.
type StoredPlan struct {
	Plan        recommend.Plan `json:"plan"`
	BankVersion string         `json:"bank_version"`
	GeneratedAt time.Time      `json:"generated_at"`
}

// CalorieEntry is one logged food item. Entries are append-only.
type CalorieEntry struct {
	ID       string  `json:"id"`
	Date     string  `json:"date"      validate:"required,datetime=2006-01-02"`
	Item     string  `json:"item"      validate:"required,max=200"`
	Calories float64 `json:"calories"  validate:"gte=0"`
	ProteinG float64 `json:"protein_g" validate:"gte=0"`
	CarbsG   float64 `json:"carbs_g"   validate:"gte=0"`
	FatG     float64 `json:"fat_g"     validate:"gte=0"`
	// CreatedAt is set by the service when the entry is tracked.
	CreatedAt time.Time `json:"created_at"`
}

// Dashboard is the stored plan flattened together with the user's calorie history.
type Dashboard struct {
	recommend.Plan

	BankVersion    string         `json:"bank_version"`
	GeneratedAt    time.Time      `json:"generated_at"`
	CalorieHistory []CalorieEntry `json:"calorie_history"`
}
