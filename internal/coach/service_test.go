package coach_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/gpossst/fitplan/internal/coach"
	"github.com/gpossst/fitplan/internal/contexthelpers"
	"github.com/gpossst/fitplan/internal/ptr"
	"github.com/gpossst/fitplan/internal/recommend"
	"github.com/gpossst/fitplan/internal/sqlite"
	"github.com/gpossst/fitplan/internal/testhelpers"
	"github.com/gpossst/fitplan/internal/validation"
	"golang.org/x/crypto/bcrypt"
)

func newService(t *testing.T) (*coach.Service, *sqlite.Database) {
	t.Helper()
	ctx := t.Context()
	logger := testhelpers.NewLogger(testhelpers.NewWriter(t))

	db, err := sqlite.NewDatabase(ctx, ":memory:", logger)
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		if err = db.Close(); err != nil {
			t.Errorf("Failed to close database: %v", err)
		}
	})

	banks, err := recommend.DefaultBanks()
	if err != nil {
		t.Fatalf("DefaultBanks: %v", err)
	}
	engine, err := recommend.NewEngine(banks, recommend.WithRand(recommend.NewSeededRand(1)))
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return coach.NewService(db, engine, logger, bcrypt.MinCost), db
}

func testProfile() recommend.Profile {
	return recommend.Profile{
		Statistics:      recommend.Statistics{Weight: 70, Height: 175, Age: 30},
		DailyActivities: recommend.DailyActivities{ActivityLevel: recommend.Active},
		Goals: recommend.Goals{
			HasDietaryGoals: ptr.Ref(true),
			WQuantity:       ptr.Ref(5.0),
			WTimeline:       ptr.Ref(10.0),
			WDirection:      recommend.Lose,
			Objectives:      []string{"muscle gain", "running"},
		},
		DietBaseline: recommend.DietBaseline{DietArchetype: ptr.Ref(3)},
	}
}

func onboard(t *testing.T, svc *coach.Service, username string) (context.Context, recommend.Plan) {
	t.Helper()
	plan, err := svc.Onboard(t.Context(), coach.Credentials{Username: username, Password: "hunter22"}, testProfile())
	if err != nil {
		t.Fatalf("Onboard: %v", err)
	}
	return contexthelpers.WithAuthenticatedUsername(t.Context(), username), plan
}

func Test_Onboard(t *testing.T) {
	svc, _ := newService(t)
	ctx, plan := onboard(t, svc, "alice")

	if plan.Diet == nil || plan.Diet.TDEE != 3900 || plan.Diet.CaloriesTarget != 3400 {
		t.Errorf("unexpected diet %+v", plan.Diet)
	}

	stored, err := svc.GetPlan(ctx)
	if err != nil {
		t.Fatalf("GetPlan: %v", err)
	}
	if diff := cmp.Diff(plan, stored.Plan); diff != "" {
		t.Errorf("stored plan mismatch (-want +got):\n%s", diff)
	}
	if stored.BankVersion == "" || stored.GeneratedAt.IsZero() {
		t.Errorf("expected bank version and generation time, got %+v", stored)
	}

	exists, err := svc.UserExists(t.Context(), "alice")
	if err != nil || !exists {
		t.Errorf("UserExists(alice) = %v, %v", exists, err)
	}
	exists, err = svc.UserExists(t.Context(), "bob")
	if err != nil || exists {
		t.Errorf("UserExists(bob) = %v, %v", exists, err)
	}
}

func Test_Onboard_DuplicateUser(t *testing.T) {
	svc, _ := newService(t)
	onboard(t, svc, "alice")

	_, err := svc.Onboard(t.Context(), coach.Credentials{Username: "alice", Password: "another1"}, testProfile())
	if !errors.Is(err, coach.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}

	// The first password still works.
	if err = svc.Authenticate(t.Context(), coach.Credentials{Username: "alice", Password: "hunter22"}); err != nil {
		t.Errorf("Authenticate: %v", err)
	}
}

func Test_Onboard_Validation(t *testing.T) {
	svc, db := newService(t)

	profile := testProfile()
	profile.Statistics.Age = 0
	profile.Goals.WDirection = "sideways"

	_, err := svc.Onboard(t.Context(), coach.Credentials{Username: "", Password: "pw"}, profile)
	var verr *validation.RequestValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	for _, field := range []string{"username", "password", "statistics.age", "goals.w_direction"} {
		if !verr.Has(field) {
			t.Errorf("expected error for %s, got %v", field, verr)
		}
	}

	var users int
	if err = db.ReadOnly.QueryRowContext(t.Context(), "SELECT count(*) FROM users").Scan(&users); err != nil {
		t.Fatalf("count users: %v", err)
	}
	if users != 0 {
		t.Errorf("got %d users after failed onboarding, want 0", users)
	}
}

func Test_Onboard_PasswordLength(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{name: "72 ASCII bytes", password: strings.Repeat("a", 72), wantErr: false},
		{name: "36 two-byte runes", password: strings.Repeat("é", 36), wantErr: false},
		{name: "40 two-byte runes", password: strings.Repeat("é", 40), wantErr: true},
		{name: "73 ASCII bytes", password: strings.Repeat("a", 73), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newService(t)

			_, err := svc.Onboard(t.Context(), coach.Credentials{Username: "alice", Password: tt.password},
				testProfile())
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("Onboard: %v", err)
				}
				if err = svc.Authenticate(t.Context(), coach.Credentials{Username: "alice",
					Password: tt.password}); err != nil {
					t.Errorf("Authenticate: %v", err)
				}
				return
			}
			var verr *validation.RequestValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if len(verr.Fields) != 1 || !verr.Has("password") {
				t.Errorf("expected a single password error, got %v", verr)
			}
		})
	}
}

func Test_Onboard_OutOfRangeGoal(t *testing.T) {
	svc, _ := newService(t)

	profile := testProfile()
	profile.Goals.WQuantity = ptr.Ref(1e308)
	profile.Goals.WTimeline = ptr.Ref(0.5)
	profile.Goals.WDirection = recommend.Gain

	_, err := svc.Onboard(t.Context(), coach.Credentials{Username: "alice", Password: "hunter22"}, profile)
	var verr *validation.RequestValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !verr.Has("goals.w_quantity") {
		t.Errorf("expected error for goals.w_quantity, got %v", verr)
	}
}

func Test_Authenticate(t *testing.T) {
	svc, _ := newService(t)
	onboard(t, svc, "alice")

	tests := []struct {
		name    string
		creds   coach.Credentials
		wantErr error
	}{
		{name: "correct password", creds: coach.Credentials{Username: "alice", Password: "hunter22"}, wantErr: nil},
		{
			name:    "wrong password",
			creds:   coach.Credentials{Username: "alice", Password: "hunter23"},
			wantErr: coach.ErrInvalidCredentials,
		},
		{
			name:    "unknown user",
			creds:   coach.Credentials{Username: "mallory", Password: "hunter22"},
			wantErr: coach.ErrInvalidCredentials,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.Authenticate(t.Context(), tt.creds)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Authenticate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func Test_TrackAndDashboard(t *testing.T) {
	svc, _ := newService(t)
	ctx, plan := onboard(t, svc, "alice")

	inputs := []coach.CalorieEntry{
		{Date: "2024-11-02", Item: "pasta", Calories: 800, ProteinG: 25, CarbsG: 120, FatG: 20},
		{Date: "2024-11-01", Item: "oats", Calories: 350, ProteinG: 12, CarbsG: 60, FatG: 6},
	}
	for _, input := range inputs {
		entry, err := svc.Track(ctx, input)
		if err != nil {
			t.Fatalf("Track: %v", err)
		}
		if entry.ID == "" || entry.CreatedAt.IsZero() {
			t.Errorf("expected id and creation time, got %+v", entry)
		}
	}

	dashboard, err := svc.Dashboard(ctx)
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if diff := cmp.Diff(plan, dashboard.Plan); diff != "" {
		t.Errorf("dashboard plan mismatch (-want +got):\n%s", diff)
	}
	var items []string
	for _, entry := range dashboard.CalorieHistory {
		items = append(items, entry.Item)
	}
	if diff := cmp.Diff([]string{"oats", "pasta"}, items); diff != "" {
		t.Errorf("calorie history mismatch (-want +got):\n%s", diff)
	}

	// Other users see only their own entries.
	bobCtx, _ := onboard(t, svc, "bob")
	dashboard, err = svc.Dashboard(bobCtx)
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if len(dashboard.CalorieHistory) != 0 {
		t.Errorf("bob sees %d calorie entries, want 0", len(dashboard.CalorieHistory))
	}
}

func Test_Track_Validation(t *testing.T) {
	svc, _ := newService(t)
	ctx, _ := onboard(t, svc, "alice")

	_, err := svc.Track(ctx, coach.CalorieEntry{Date: "01/11/2024", Item: "", Calories: -5})
	var verr *validation.RequestValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	for _, field := range []string{"date", "item", "calories"} {
		if !verr.Has(field) {
			t.Errorf("expected error for %s, got %v", field, verr)
		}
	}
}

func Test_RegeneratePlan(t *testing.T) {
	svc, _ := newService(t)
	ctx, plan := onboard(t, svc, "alice")

	stored, err := svc.RegeneratePlan(ctx)
	if err != nil {
		t.Fatalf("RegeneratePlan: %v", err)
	}
	// Only the random content may differ.
	if diff := cmp.Diff(plan.Diet, stored.Plan.Diet); diff != "" {
		t.Errorf("diet changed (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(plan.Emphasis, stored.Plan.Emphasis); diff != "" {
		t.Errorf("emphasis changed (-want +got):\n%s", diff)
	}

	got, err := svc.GetPlan(ctx)
	if err != nil {
		t.Fatalf("GetPlan: %v", err)
	}
	if diff := cmp.Diff(stored, got); diff != "" {
		t.Errorf("stored plan mismatch (-want +got):\n%s", diff)
	}
}

func Test_DeleteUser(t *testing.T) {
	svc, db := newService(t)
	ctx, _ := onboard(t, svc, "alice")
	if _, err := svc.Track(ctx, coach.CalorieEntry{Date: "2024-11-01", Item: "oats", Calories: 350}); err != nil {
		t.Fatalf("Track: %v", err)
	}

	if err := svc.DeleteUser(ctx); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if _, err := svc.GetPlan(ctx); !errors.Is(err, coach.ErrNotFound) {
		t.Errorf("expected ErrNotFound after deletion, got %v", err)
	}
	var entries int
	if err := db.ReadOnly.QueryRowContext(t.Context(), "SELECT count(*) FROM calorie_entries").Scan(&entries); err != nil {
		t.Fatalf("count entries: %v", err)
	}
	if entries != 0 {
		t.Errorf("got %d calorie entries after deletion, want 0", entries)
	}
	if err := svc.DeleteUser(ctx); !errors.Is(err, coach.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second deletion, got %v", err)
	}
}

func Test_Unauthenticated(t *testing.T) {
	svc, _ := newService(t)
	ctx := t.Context()

	if _, err := svc.GetPlan(ctx); !errors.Is(err, coach.ErrUnauthenticated) {
		t.Errorf("GetPlan: expected ErrUnauthenticated, got %v", err)
	}
	if _, err := svc.Dashboard(ctx); !errors.Is(err, coach.ErrUnauthenticated) {
		t.Errorf("Dashboard: expected ErrUnauthenticated, got %v", err)
	}
	if _, err := svc.Track(ctx, coach.CalorieEntry{}); !errors.Is(err, coach.ErrUnauthenticated) {
		t.Errorf("Track: expected ErrUnauthenticated, got %v", err)
	}
	if err := svc.DeleteUser(ctx); !errors.Is(err, coach.ErrUnauthenticated) {
		t.Errorf("DeleteUser: expected ErrUnauthenticated, got %v", err)
	}
}
