package main

import (
	"net/http"
	"testing"

	"github.com/gpossst/fitplan/internal/coach"
	"github.com/gpossst/fitplan/internal/validation"
)

func Test_application_track(t *testing.T) {
	var (
		ctx    = t.Context()
		server = startServer(t)
		client = server.Client()
	)

	entry := map[string]any{"date": "2024-03-02", "item": "oatmeal", "calories": 350, "protein_g": 12}
	resp, err := client.PostJSON(ctx, "/api/track", entry)
	expectStatus(t, resp, err, http.StatusUnauthorized)

	resp, err = client.PostJSON(ctx, "/api/onboard", onboardBody("alice", true))
	expectStatus(t, resp, err, http.StatusCreated)

	t.Run("Appends entries to the history", func(t *testing.T) {
		resp, err = client.PostJSON(ctx, "/api/track", entry)
		expectStatus(t, resp, err, http.StatusCreated)

		var created trackResponse
		if err = resp.Decode(&created); err != nil {
			t.Fatal(err)
		}
		if created.Message != "success" || created.Entry.ID == "" {
			t.Fatalf("Unexpected response: %s", resp.Body)
		}

		earlier := map[string]any{"date": "2024-03-01", "item": "pasta", "calories": 600}
		resp, err = client.PostJSON(ctx, "/api/track", earlier)
		expectStatus(t, resp, err, http.StatusCreated)

		resp, err = client.Get(ctx, "/api/dashboard")
		expectStatus(t, resp, err, http.StatusOK)
		var dashboard struct {
			Data coach.Dashboard `json:"data"`
		}
		if err = resp.Decode(&dashboard); err != nil {
			t.Fatal(err)
		}
		history := dashboard.Data.CalorieHistory
		if len(history) != 2 {
			t.Fatalf("Expected 2 entries, got %d", len(history))
		}
		if history[0].Item != "pasta" || history[1].Item != "oatmeal" {
			t.Errorf("Expected history ordered by date, got %s then %s", history[0].Item, history[1].Item)
		}
		if history[1].ID != created.Entry.ID {
			t.Errorf("Expected id %s, got %s", created.Entry.ID, history[1].ID)
		}
	})

	t.Run("Rejects invalid entries", func(t *testing.T) {
		invalid := map[string]any{"date": "02/03/2024", "item": "", "calories": -1}
		resp, err = client.PostJSON(ctx, "/api/track", invalid)
		expectStatus(t, resp, err, http.StatusBadRequest)

		var errResp errorResponse
		if err = resp.Decode(&errResp); err != nil {
			t.Fatal(err)
		}
		verr := validation.RequestValidationError{Fields: errResp.Details}
		for _, field := range []string{"date", "item", "calories"} {
			if !verr.Has(field) {
				t.Errorf("Expected error for %s, got %s", field, resp.Body)
			}
		}
	})
}
