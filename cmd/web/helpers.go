package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/gpossst/fitplan/internal/contexthelpers"
	"github.com/gpossst/fitplan/internal/errors"
	"github.com/gpossst/fitplan/internal/validation"
)

// maxBodyBytes bounds request bodies. Profiles and calorie entries are tiny.
const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error   string                  `json:"error"`
	Code    string                  `json:"code,omitempty"`
	Details []validation.FieldError `json:"details,omitempty"`
	TraceID string                  `json:"trace_id,omitempty"`
}

// writeJSON writes v with the given status. Encoding failures are logged because the header is already sent.
func (app *application) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		app.logger.LogAttrs(r.Context(), slog.LevelError, "failed to write response", errors.SlogError(err))
	}
}

func (app *application) writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	app.writeJSON(w, r, status, errorResponse{
		Error:   message,
		Code:    "",
		Details: nil,
		TraceID: contexthelpers.TraceID(r.Context()),
	})
}

func (app *application) serverError(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.LogAttrs(r.Context(), slog.LevelError, "server error", errors.SlogError(err))
	app.writeError(w, r, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
}

func (app *application) notFound(w http.ResponseWriter, r *http.Request) {
	app.writeError(w, r, http.StatusNotFound, http.StatusText(http.StatusNotFound))
}

// validationError responds with 400 Bad Request listing every invalid field.
func (app *application) validationError(w http.ResponseWriter, r *http.Request, verr *validation.RequestValidationError) {
	app.writeJSON(w, r, http.StatusBadRequest, errorResponse{
		Error:   "validation failed",
		Code:    validation.Code,
		Details: verr.Fields,
		TraceID: contexthelpers.TraceID(r.Context()),
	})
}

// handleError maps domain errors to responses and treats everything else as a server error.
func (app *application) handleError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *validation.RequestValidationError
	switch {
	case errors.As(err, &verr):
		app.validationError(w, r, verr)
	case errors.Is(err, errMalformedJSON):
		app.writeError(w, r, http.StatusBadRequest, err.Error())
	default:
		app.serverError(w, r, err)
	}
}

var errMalformedJSON = errors.New("malformed JSON body")

// readJSON decodes a single JSON value from the request body into dst.
func readJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %w", errMalformedJSON, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: body must contain a single JSON value", errMalformedJSON)
	}
	return nil
}
