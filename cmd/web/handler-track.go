package main

import (
	"net/http"

	"github.com/gpossst/fitplan/internal/coach"
)

type trackResponse struct {
	Message string             `json:"message"`
	Entry   coach.CalorieEntry `json:"entry"`
}

func (app *application) trackPOST(w http.ResponseWriter, r *http.Request) {
	var entry coach.CalorieEntry
	if err := readJSON(w, r, &entry); err != nil {
		app.handleError(w, r, err)
		return
	}

	entry, err := app.coachService.Track(r.Context(), entry)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusCreated, trackResponse{Message: "success", Entry: entry})
}
