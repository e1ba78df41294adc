package main

import (
	"log/slog"
	"net/http"

	"github.com/gpossst/fitplan/internal/coach"
	"github.com/gpossst/fitplan/internal/errors"
	"github.com/gpossst/fitplan/internal/recommend"
)

// onboardRequest carries the credentials and the profile side by side in one flat JSON object.
type onboardRequest struct {
	coach.Credentials
	recommend.Profile
}

type onboardResponse struct {
	Username string         `json:"username"`
	Plan     recommend.Plan `json:"plan"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// loginRequest accepts the username under "email" as well, which older clients send.
type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (app *application) onboardPOST(w http.ResponseWriter, r *http.Request) {
	var req onboardRequest
	if err := readJSON(w, r, &req); err != nil {
		app.handleError(w, r, err)
		return
	}

	plan, err := app.coachService.Onboard(r.Context(), req.Credentials, req.Profile)
	if errors.Is(err, coach.ErrUserExists) {
		app.writeError(w, r, http.StatusConflict, "User already exists")
		return
	}
	if err != nil {
		app.handleError(w, r, err)
		return
	}

	if err = app.logIn(r, req.Username); err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusCreated, onboardResponse{Username: req.Username, Plan: plan})
}

func (app *application) loginPOST(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := readJSON(w, r, &req); err != nil {
		app.handleError(w, r, err)
		return
	}
	username := req.Username
	if username == "" {
		username = req.Email
	}

	err := app.coachService.Authenticate(r.Context(), coach.Credentials{Username: username, Password: req.Password})
	if errors.Is(err, coach.ErrInvalidCredentials) {
		app.logger.LogAttrs(r.Context(), slog.LevelInfo, "login failed", slog.String("username", username))
		app.writeJSON(w, r, http.StatusUnauthorized, messageResponse{Message: "Failed!"})
		return
	}
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	if err = app.logIn(r, username); err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, messageResponse{Message: "Success!"})
}

// logIn stores username in a fresh session to prevent session fixation.
func (app *application) logIn(r *http.Request, username string) error {
	if err := app.sessionManager.RenewToken(r.Context()); err != nil {
		return errors.Wrap(err, "renew session token")
	}
	app.sessionManager.Put(r.Context(), usernameSessionKey, username)
	return nil
}

func (app *application) logoutPOST(w http.ResponseWriter, r *http.Request) {
	if err := app.sessionManager.Destroy(r.Context()); err != nil {
		app.serverError(w, r, errors.Wrap(err, "destroy session"))
		return
	}
	app.writeJSON(w, r, http.StatusOK, messageResponse{Message: "Logged out"})
}

func (app *application) accountDELETE(w http.ResponseWriter, r *http.Request) {
	if err := app.coachService.DeleteUser(r.Context()); err != nil {
		app.serverError(w, r, errors.Wrap(err, "delete user"))
		return
	}
	if err := app.sessionManager.Destroy(r.Context()); err != nil {
		app.serverError(w, r, errors.Wrap(err, "destroy session"))
		return
	}
	app.writeJSON(w, r, http.StatusOK, messageResponse{Message: "Account deleted"})
}
