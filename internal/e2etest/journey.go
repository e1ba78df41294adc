package e2etest

import (
	"context"
	"crypto/rand"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const journeyPassword = "smoke-test-password"

// RandomUsername returns a username that is unlikely to exist on a long-running deployment.
func RandomUsername(prefix string) string {
	return prefix + "-" + strings.ToLower(rand.Text()[:12])
}

// UserJourney walks a new user through the API: onboarding, logging out and back in, tracking a meal and
// reading the dashboard. It deletes the account at the end so deployments are left clean.
func UserJourney(ctx context.Context, c *Client, username string) error {
	profile := map[string]any{
		"username":         username,
		"password":         journeyPassword,
		"statistics":       map[string]any{"weight": 80, "height": 180, "age": 35},
		"daily_activities": map[string]any{"activity_level": "active"},
		"goals": map[string]any{
			"hasDietaryGoals": true,
			"w_quantity":      4,
			"w_timeline":      8,
			"w_direction":     "lose",
			"objectives":      []string{"muscle gain", "running"},
		},
		"diet_baseline": map[string]any{"diet_archetype": 2},
	}
	credentials := map[string]string{"username": username, "password": journeyPassword}
	entry := map[string]any{
		"date":     time.Now().Format(time.DateOnly),
		"item":     "smoke test snack",
		"calories": 120,
	}

	steps := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{name: "onboard", method: http.MethodPost, path: "/api/onboard", body: profile, want: http.StatusCreated},
		{name: "logout", method: http.MethodPost, path: "/api/logout", body: nil, want: http.StatusOK},
		{name: "dashboard after logout", method: http.MethodGet, path: "/api/dashboard", body: nil,
			want: http.StatusUnauthorized},
		{name: "login", method: http.MethodPost, path: "/api/login", body: credentials, want: http.StatusOK},
		{name: "track", method: http.MethodPost, path: "/api/track", body: entry, want: http.StatusCreated},
		{name: "dashboard", method: http.MethodGet, path: "/api/dashboard", body: nil, want: http.StatusOK},
		{name: "regenerate", method: http.MethodPost, path: "/api/plan/regenerate", body: nil, want: http.StatusOK},
		{name: "delete account", method: http.MethodDelete, path: "/api/account", body: nil, want: http.StatusOK},
	}
	for _, step := range steps {
		resp, err := c.Do(ctx, step.method, step.path, step.body)
		if err != nil {
			return fmt.Errorf("%s: %w", step.name, err)
		}
		if resp.StatusCode != step.want {
			return fmt.Errorf("%s: expected status %d, got %d: %s", step.name, step.want, resp.StatusCode, resp.Body)
		}
	}
	return nil
}
