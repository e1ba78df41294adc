package main

import (
	"math"
	"net/http"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/gpossst/fitplan/internal/coach"
	"github.com/gpossst/fitplan/internal/recommend"
)

func Test_application_dashboard(t *testing.T) {
	var (
		ctx    = t.Context()
		server = startServer(t)
		client = server.Client()
	)

	resp, err := client.Get(ctx, "/api/dashboard")
	expectStatus(t, resp, err, http.StatusUnauthorized)

	resp, err = client.PostJSON(ctx, "/api/onboard", onboardBody("alice", false))
	expectStatus(t, resp, err, http.StatusCreated)

	resp, err = client.Get(ctx, "/api/dashboard")
	expectStatus(t, resp, err, http.StatusOK)

	// Decode into a generic map first to check the wire shape.
	var raw struct {
		Data map[string]any `json:"data"`
	}
	if err = resp.Decode(&raw); err != nil {
		t.Fatal(err)
	}
	if _, ok := raw.Data["diet"]; ok {
		t.Errorf("Expected no diet section without dietary goals, got %s", resp.Body)
	}
	for _, key := range []string{"activity", "training", "emphasis", "calorie_history"} {
		if _, ok := raw.Data[key]; !ok {
			t.Errorf("Expected %q in dashboard, got %s", key, resp.Body)
		}
	}

	var dashboard struct {
		Data coach.Dashboard `json:"data"`
	}
	if err = resp.Decode(&dashboard); err != nil {
		t.Fatal(err)
	}
	if dashboard.Data.Training.Muscle == nil || dashboard.Data.Training.Cardio != nil {
		t.Errorf("Expected only muscle training, got %+v", dashboard.Data.Training)
	}
	// Active is 1.55, so activity weighs |1.55 - 2.5| * 3 = 2.85 against one training entry.
	wantEmphasis := recommend.Emphasis{Diet: 0, Activity: 2.85 / 3.85, Training: 1 / 3.85, Fallback: false}
	if diff := cmp.Diff(wantEmphasis, dashboard.Data.Emphasis, approx()); diff != "" {
		t.Errorf("Emphasis mismatch (-want +got):\n%s", diff)
	}
	if len(dashboard.Data.CalorieHistory) != 0 {
		t.Errorf("Expected empty calorie history, got %d entries", len(dashboard.Data.CalorieHistory))
	}
}

func Test_application_plan(t *testing.T) {
	var (
		ctx    = t.Context()
		server = startServer(t)
		client = server.Client()
	)

	resp, err := client.Get(ctx, "/api/plan")
	expectStatus(t, resp, err, http.StatusUnauthorized)
	resp, err = client.PostJSON(ctx, "/api/plan/regenerate", nil)
	expectStatus(t, resp, err, http.StatusUnauthorized)

	resp, err = client.PostJSON(ctx, "/api/onboard", onboardBody("alice", true))
	expectStatus(t, resp, err, http.StatusCreated)

	resp, err = client.Get(ctx, "/api/plan")
	expectStatus(t, resp, err, http.StatusOK)
	var stored coach.StoredPlan
	if err = resp.Decode(&stored); err != nil {
		t.Fatal(err)
	}
	if stored.BankVersion == "" {
		t.Error("Expected bank version to be stored with the plan")
	}

	resp, err = client.PostJSON(ctx, "/api/plan/regenerate", nil)
	expectStatus(t, resp, err, http.StatusOK)
	var regenerated coach.StoredPlan
	if err = resp.Decode(&regenerated); err != nil {
		t.Fatal(err)
	}
	if regenerated.GeneratedAt.Before(stored.GeneratedAt) {
		t.Errorf("Expected regenerated plan to be newer: %v < %v", regenerated.GeneratedAt, stored.GeneratedAt)
	}
	// The energy figures depend only on the profile.
	if diff := cmp.Diff(stored.Plan.Diet, regenerated.Plan.Diet); diff != "" {
		t.Errorf("Diet changed on regenerate (-before +after):\n%s", diff)
	}
}

func Test_application_activityLevels(t *testing.T) {
	var (
		ctx    = t.Context()
		server = startServer(t)
	)

	resp, err := server.Client().Get(ctx, "/api/activity-levels")
	expectStatus(t, resp, err, http.StatusOK)

	var body activityLevelsResponse
	if err = resp.Decode(&body); err != nil {
		t.Fatal(err)
	}
	for _, level := range []recommend.ActivityLevel{recommend.Sedentary, recommend.Active, recommend.VeryActive} {
		if !slices.Contains(body.ActivityLevels, level) {
			t.Errorf("Expected %q in activity levels, got %v", level, body.ActivityLevels)
		}
	}
}

func approx() cmp.Option {
	return cmp.Comparer(func(a, b float64) bool {
		return math.Abs(a-b) < 1e-9
	})
}
