package main

import (
	"net/http"

	"github.com/gpossst/fitplan/internal/coach"
	"github.com/gpossst/fitplan/internal/errors"
	"github.com/gpossst/fitplan/internal/recommend"
)

type dashboardResponse struct {
	Data coach.Dashboard `json:"data"`
}

type activityLevelsResponse struct {
	ActivityLevels []recommend.ActivityLevel `json:"activity_levels"`
}

func (app *application) dashboardGET(w http.ResponseWriter, r *http.Request) {
	dashboard, err := app.coachService.Dashboard(r.Context())
	if errors.Is(err, coach.ErrNotFound) {
		app.notFound(w, r)
		return
	}
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "load dashboard"))
		return
	}
	app.writeJSON(w, r, http.StatusOK, dashboardResponse{Data: dashboard})
}

func (app *application) planGET(w http.ResponseWriter, r *http.Request) {
	plan, err := app.coachService.GetPlan(r.Context())
	if errors.Is(err, coach.ErrNotFound) {
		app.notFound(w, r)
		return
	}
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "get plan"))
		return
	}
	app.writeJSON(w, r, http.StatusOK, plan)
}

func (app *application) planRegeneratePOST(w http.ResponseWriter, r *http.Request) {
	plan, err := app.coachService.RegeneratePlan(r.Context())
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "regenerate plan"))
		return
	}
	app.writeJSON(w, r, http.StatusOK, plan)
}

// activityLevelsGET lists the activity levels accepted during onboarding.
func (app *application) activityLevelsGET(w http.ResponseWriter, r *http.Request) {
	app.writeJSON(w, r, http.StatusOK, activityLevelsResponse{ActivityLevels: app.engine.ActivityLevels()})
}
