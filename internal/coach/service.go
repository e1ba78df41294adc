// Package coach stores accounts, plans and calorie logs and runs the recommendation engine on behalf of users.
package coach

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/gpossst/fitplan/internal/contexthelpers"
	"github.com/gpossst/fitplan/internal/metrics"
	"github.com/gpossst/fitplan/internal/recommend"
	"github.com/gpossst/fitplan/internal/sqlite"
	"github.com/gpossst/fitplan/internal/validation"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"
)

// maxPasswordBytes is the longest input bcrypt accepts.
const maxPasswordBytes = 72

var (
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("not authenticated")
)

// Service handles the business logic of onboarding, plans and calorie tracking.
type Service struct {
	repo       *repository
	engine     *recommend.Engine
	logger     *slog.Logger
	bcryptCost int
	now        func() time.Time
}

// NewService creates a new coach service. bcryptCost is clamped to the range bcrypt accepts.
func NewService(db *sqlite.Database, engine *recommend.Engine, logger *slog.Logger, bcryptCost int) *Service {
	factory := newRepositoryFactory(db, logger)
	return &Service{
		repo:       factory.newRepository(),
		engine:     engine,
		logger:     logger,
		bcryptCost: min(max(bcryptCost, bcrypt.MinCost), bcrypt.MaxCost),
		now:        time.Now,
	}
}

// timestamp returns the current time at the precision it is stored with.
func (s *Service) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

func authenticatedUsername(ctx context.Context) (string, error) {
	username := contexthelpers.AuthenticatedUsername(ctx)
	if username == "" {
		return "", ErrUnauthenticated
	}
	return username, nil
}

// Onboard creates an account and its first plan in a single transaction.
//
// Invalid credentials or profile fields are reported together as a *validation.RequestValidationError.
func (s *Service) Onboard(ctx context.Context, creds Credentials, profile recommend.Profile) (recommend.Plan, error) {
	var profileErr *validation.RequestValidationError
	if err := s.engine.Validate(profile); err != nil && !errors.As(err, &profileErr) {
		return recommend.Plan{}, fmt.Errorf("validate profile: %w", err)
	}
	if verr := validation.Merge(validation.ValidateStruct(creds), validatePasswordBytes(creds.Password),
		profileErr); verr != nil {
		return recommend.Plan{}, verr
	}

	plan, err := s.engine.GeneratePlan(profile)
	if err != nil {
		return recommend.Plan{}, fmt.Errorf("generate plan: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), s.bcryptCost)
	if err != nil {
		return recommend.Plan{}, fmt.Errorf("hash password: %w", err)
	}

	now := s.timestamp()
	user := User{Username: creds.Username, PasswordHash: hash, Profile: profile, CreatedAt: now}
	stored := StoredPlan{Plan: plan, BankVersion: s.engine.BanksVersion(), GeneratedAt: now}
	err = s.repo.withTx(ctx, func(tx *sql.Tx) error {
		if err = s.repo.users.Create(ctx, tx, user); err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		if err = s.repo.plans.Upsert(ctx, tx, user.Username, stored); err != nil {
			return fmt.Errorf("store plan: %w", err)
		}
		return nil
	})
	if err != nil {
		return recommend.Plan{}, err
	}

	metrics.RecordPlan(plan)
	s.logger.LogAttrs(ctx, slog.LevelInfo, "onboarded user", slog.String("username", user.Username))
	return plan, nil
}

// validatePasswordBytes enforces the bcrypt input limit, which counts bytes where the max tag counts runes.
func validatePasswordBytes(password string) *validation.RequestValidationError {
	if len(password) <= maxPasswordBytes || utf8.RuneCountInString(password) > maxPasswordBytes {
		// Over-long passwords in runes are already reported by the max tag.
		return nil
	}
	return validation.NewFieldError("password", "max",
		fmt.Sprintf("password must be at most %d bytes", maxPasswordBytes), nil)
}

// Authenticate checks the password of username. Unknown users and wrong passwords both return
// ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, creds Credentials) error {
	user, err := s.repo.users.Get(ctx, creds.Username)
	if errors.Is(err, ErrNotFound) {
		return ErrInvalidCredentials
	}
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}
	err = bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(creds.Password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrInvalidCredentials
	}
	if err != nil {
		return fmt.Errorf("compare password: %w", err)
	}
	return nil
}

// UserExists reports whether an account named username exists.
func (s *Service) UserExists(ctx context.Context, username string) (bool, error) {
	exists, err := s.repo.users.Exists(ctx, username)
	if err != nil {
		return false, fmt.Errorf("user exists: %w", err)
	}
	return exists, nil
}

// GetPlan returns the authenticated user's latest plan.
func (s *Service) GetPlan(ctx context.Context) (StoredPlan, error) {
	username, err := authenticatedUsername(ctx)
	if err != nil {
		return StoredPlan{}, err
	}
	plan, err := s.repo.plans.Get(ctx, username)
	if err != nil {
		return StoredPlan{}, fmt.Errorf("get plan: %w", err)
	}
	return plan, nil
}

// RegeneratePlan runs the engine again on the stored profile and replaces the stored plan.
// The routine and cardio idea are drawn again, so the content may change.
func (s *Service) RegeneratePlan(ctx context.Context) (StoredPlan, error) {
	username, err := authenticatedUsername(ctx)
	if err != nil {
		return StoredPlan{}, err
	}
	user, err := s.repo.users.Get(ctx, username)
	if err != nil {
		return StoredPlan{}, fmt.Errorf("get user: %w", err)
	}
	plan, err := s.engine.GeneratePlan(user.Profile)
	if err != nil {
		return StoredPlan{}, fmt.Errorf("generate plan: %w", err)
	}
	stored := StoredPlan{Plan: plan, BankVersion: s.engine.BanksVersion(), GeneratedAt: s.timestamp()}
	if err = s.repo.withTx(ctx, func(tx *sql.Tx) error {
		return s.repo.plans.Upsert(ctx, tx, username, stored)
	}); err != nil {
		return StoredPlan{}, fmt.Errorf("store plan: %w", err)
	}
	metrics.RecordPlan(plan)
	return stored, nil
}

// Track appends a calorie entry for the authenticated user and returns it with its id and timestamp set.
func (s *Service) Track(ctx context.Context, entry CalorieEntry) (CalorieEntry, error) {
	username, err := authenticatedUsername(ctx)
	if err != nil {
		return CalorieEntry{}, err
	}
	if verr := validation.ValidateStruct(entry); verr != nil {
		return CalorieEntry{}, verr
	}
	entry.ID = uuid.NewString()
	entry.CreatedAt = s.timestamp()
	if err = s.repo.calories.Add(ctx, username, entry); err != nil {
		return CalorieEntry{}, fmt.Errorf("add calorie entry: %w", err)
	}
	metrics.RecordCalorieEntry()
	return entry, nil
}

// Dashboard loads the stored plan and the calorie history concurrently.
func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	username, err := authenticatedUsername(ctx)
	if err != nil {
		return Dashboard{}, err
	}

	var (
		plan    StoredPlan
		history []CalorieEntry
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var planErr error
		if plan, planErr = s.repo.plans.Get(gctx, username); planErr != nil {
			return fmt.Errorf("get plan: %w", planErr)
		}
		return nil
	})
	g.Go(func() error {
		var listErr error
		if history, listErr = s.repo.calories.List(gctx, username); listErr != nil {
			return fmt.Errorf("list calorie entries: %w", listErr)
		}
		return nil
	})
	if err = g.Wait(); err != nil {
		return Dashboard{}, err
	}

	return Dashboard{
		Plan:           plan.Plan,
		BankVersion:    plan.BankVersion,
		GeneratedAt:    plan.GeneratedAt,
		CalorieHistory: history,
	}, nil
}

// DeleteUser removes the authenticated user together with the plan and calorie history.
func (s *Service) DeleteUser(ctx context.Context) error {
	username, err := authenticatedUsername(ctx)
	if err != nil {
		return err
	}
	if err = s.repo.users.Delete(ctx, username); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "deleted user", slog.String("username", username))
	return nil
}
