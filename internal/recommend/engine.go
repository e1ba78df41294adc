// Package recommend derives a diet, activity and training plan from a user profile.
//
// The engine is deterministic apart from the routine and cardio idea drawn from the content banks.
// It holds no mutable state and is safe for concurrent use.
package recommend

import (
	"errors"
	"fmt"
	"maps"
	"math"
	"slices"
	"strings"

	"github.com/gpossst/fitplan/internal/validation"
)

var ErrInvalidProfile = errors.New("invalid profile")

type Engine struct {
	banks          Banks
	rnd            Rand
	activityLevels map[ActivityLevel]float64
}

type Option func(*Engine)

// WithRand sets the source used to pick routines and cardio ideas. The source must be safe for
// concurrent use if the engine is shared between goroutines.
func WithRand(rnd Rand) Option {
	return func(e *Engine) {
		e.rnd = rnd
	}
}

// WithActivityLevels replaces the activity level to TDEE multiplier table.
func WithActivityLevels(levels map[ActivityLevel]float64) Option {
	return func(e *Engine) {
		e.activityLevels = maps.Clone(levels)
	}
}

// NewEngine creates an engine that assembles plans from banks.
func NewEngine(banks Banks, opts ...Option) (*Engine, error) {
	if err := banks.validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		banks:          banks.clone(),
		rnd:            globalRand{},
		activityLevels: DefaultActivityLevels(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rnd == nil {
		return nil, errors.New("random source is nil")
	}
	if len(e.activityLevels) == 0 {
		return nil, errors.New("no activity levels configured")
	}
	for level, multiplier := range e.activityLevels {
		if !(multiplier > 0) || math.IsInf(multiplier, 0) {
			return nil, fmt.Errorf("activity level %q has invalid multiplier %v", level, multiplier)
		}
	}
	return e, nil
}

// BanksVersion identifies the content revision plans are assembled from.
func (e *Engine) BanksVersion() string {
	return e.banks.Version
}

// ActivityLevels returns the accepted activity levels in sorted order.
func (e *Engine) ActivityLevels() []ActivityLevel {
	return slices.Sorted(maps.Keys(e.activityLevels))
}

// Validate checks that p can be turned into a plan. Failures wrap [ErrInvalidProfile] and a
// *validation.RequestValidationError naming every offending field.
func (e *Engine) Validate(p Profile) error {
	verr := validation.Merge(
		validation.ValidateStruct(p),
		e.validateActivityLevel(p.DailyActivities.ActivityLevel),
		validateGoals(p.Goals),
	)
	if verr == nil {
		verr = e.validateEnergy(p)
	}
	if verr == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidProfile, verr)
}

func (e *Engine) validateActivityLevel(level ActivityLevel) *validation.RequestValidationError {
	if level == "" {
		// Reported by the required tag.
		return nil
	}
	if _, ok := e.activityLevels[level]; ok {
		return nil
	}
	levels := make([]string, 0, len(e.activityLevels))
	for _, l := range e.ActivityLevels() {
		levels = append(levels, string(l))
	}
	return validation.NewFieldError("daily_activities.activity_level", "oneof",
		"daily_activities.activity_level must be one of: "+strings.Join(levels, ", "), string(level))
}

func validateGoals(goals Goals) *validation.RequestValidationError {
	if !goals.Dietary() {
		return nil
	}
	var errs []*validation.RequestValidationError
	switch {
	case goals.WQuantity == nil:
		errs = append(errs, validation.NewFieldError("goals.w_quantity", "required",
			"goals.w_quantity is required when hasDietaryGoals is set", nil))
	case *goals.WQuantity < 0:
		errs = append(errs, validation.NewFieldError("goals.w_quantity", "gte",
			"goals.w_quantity must be greater than or equal to 0", *goals.WQuantity))
	}
	switch {
	case goals.WTimeline == nil:
		errs = append(errs, validation.NewFieldError("goals.w_timeline", "required",
			"goals.w_timeline is required when hasDietaryGoals is set", nil))
	case *goals.WTimeline <= 0:
		errs = append(errs, validation.NewFieldError("goals.w_timeline", "gt",
			"goals.w_timeline must be greater than 0", *goals.WTimeline))
	}
	if goals.WDirection != Lose && goals.WDirection != Gain {
		errs = append(errs, validation.NewFieldError("goals.w_direction", "oneof",
			"goals.w_direction must be one of: lose, gain", string(goals.WDirection)))
	}
	return validation.Merge(errs...)
}

// validateEnergy rejects profiles whose figures are individually valid but too large to yield a finite plan.
// It expects the rest of p to be valid.
func (e *Engine) validateEnergy(p Profile) *validation.RequestValidationError {
	multiplier := e.activityLevels[p.DailyActivities.ActivityLevel]
	_, tdee := ComputeEnergy(p.Statistics, multiplier)
	roundedTDEE := RoundToHundred(tdee)
	if !isFinite(roundedTDEE) {
		return validation.NewFieldError("statistics", "finite",
			"statistics are out of range for an energy estimate", nil)
	}
	target, ok := ComputeCaloriesTarget(tdee, p.Goals)
	if !ok {
		return nil
	}
	roundedTarget := RoundToHundred(target)
	if !isFinite(roundedTarget) || !isFinite(roundedTDEE-roundedTarget) {
		return validation.NewFieldError("goals.w_quantity", "finite",
			"goals.w_quantity is out of range for the given timeline", *p.Goals.WQuantity)
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// GeneratePlan validates p and derives its plan.
func (e *Engine) GeneratePlan(p Profile) (Plan, error) {
	if err := e.Validate(p); err != nil {
		return Plan{}, err
	}

	multiplier := e.activityLevels[p.DailyActivities.ActivityLevel]
	_, tdee := ComputeEnergy(p.Statistics, multiplier)

	var diet *DietPlan
	if target, ok := ComputeCaloriesTarget(tdee, p.Goals); ok {
		diet = &DietPlan{
			TDEE:           RoundToHundred(tdee),
			CaloriesTarget: RoundToHundred(target),
			Quality:        e.banks.Diet[DietTier(*p.DietBaseline.DietArchetype)],
		}
	}

	training := BuildTraining(p.Goals.Objectives, e.banks, e.rnd)

	return Plan{
		Diet: diet,
		Activity: ActivityPlan{
			StepsTarget:             StepsTarget,
			SportsActivityHrsTarget: SportsActivityHrsTarget,
			ActivityDesc:            e.banks.Activity[ActivityTier(multiplier)],
		},
		Training: training,
		Emphasis: ComputeEmphasis(dietWeight(diet), multiplier, len(training)),
	}, nil
}
