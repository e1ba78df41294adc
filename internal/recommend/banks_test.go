package recommend_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/gpossst/fitplan/internal/recommend"
)

func TestDefaultBanks(t *testing.T) {
	banks, err := recommend.DefaultBanks()
	if err != nil {
		t.Fatalf("DefaultBanks: %v", err)
	}
	if banks.Version == "" {
		t.Error("expected a bank version")
	}
	if len(banks.Routines) != 4 || len(banks.CardioIdeas) != 4 {
		t.Errorf("got %d routines and %d cardio ideas, want 4 and 4", len(banks.Routines), len(banks.CardioIdeas))
	}

	// Callers get their own copy.
	banks.Diet[0] = "changed"
	again, err := recommend.DefaultBanks()
	if err != nil {
		t.Fatalf("DefaultBanks: %v", err)
	}
	if again.Diet[0] == "changed" {
		t.Error("DefaultBanks returned shared slices")
	}
}

func TestLoadBanks(t *testing.T) {
	tests := []struct {
		name    string
		json    string
		wantErr bool
	}{
		{
			name: "valid",
			json: `{"version":"v1","diet":["a","b","c"],"activity":["a","b","c"],
				"routines":[{"name":"r","description":"d"}],"cardio_ideas":["c"]}`,
			wantErr: false,
		},
		{
			name: "short diet bank",
			json: `{"version":"v1","diet":["a","b"],"activity":["a","b","c"],
				"routines":[{"name":"r","description":"d"}],"cardio_ideas":["c"]}`,
			wantErr: true,
		},
		{
			name: "empty routines",
			json: `{"version":"v1","diet":["a","b","c"],"activity":["a","b","c"],
				"routines":[],"cardio_ideas":["c"]}`,
			wantErr: true,
		},
		{
			name: "empty text",
			json: `{"version":"v1","diet":["a","","c"],"activity":["a","b","c"],
				"routines":[{"name":"r","description":"d"}],"cardio_ideas":["c"]}`,
			wantErr: true,
		},
		{
			name: "incomplete routine",
			json: `{"version":"v1","diet":["a","b","c"],"activity":["a","b","c"],
				"routines":[{"name":"r"}],"cardio_ideas":["c"]}`,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := recommend.LoadBanks(strings.NewReader(tt.json))
			if tt.wantErr != (err != nil) {
				t.Fatalf("LoadBanks() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, recommend.ErrInvalidBanks) {
				t.Errorf("expected ErrInvalidBanks, got %v", err)
			}
		})
	}
}

func TestLoadBanksRejectsUnknownFields(t *testing.T) {
	_, err := recommend.LoadBanks(strings.NewReader(`{"version":"v1","recipes":[]}`))
	if err == nil {
		t.Fatal("expected error for unknown field")
	}
}
