package main

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"runtime/trace"
	"time"

	"github.com/gpossst/fitplan/internal/contexthelpers"
	"github.com/gpossst/fitplan/internal/errors"
	"github.com/gpossst/fitplan/internal/logging"
	"github.com/gpossst/fitplan/internal/metrics"
	"github.com/rs/cors"
)

const usernameSessionKey = "username"

type statusResponseWriter struct {
	http.ResponseWriter
	statusCode    int
	headerWritten bool
}

func newStatusResponseWriter(w http.ResponseWriter) *statusResponseWriter {
	return &statusResponseWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
		headerWritten:  false,
	}
}

func (mw *statusResponseWriter) WriteHeader(statusCode int) {
	mw.ResponseWriter.WriteHeader(statusCode)

	if !mw.headerWritten {
		mw.statusCode = statusCode
		mw.headerWritten = true
	}
}

func (mw *statusResponseWriter) Write(b []byte) (int, error) {
	mw.headerWritten = true
	written, err := mw.ResponseWriter.Write(b)
	if err != nil {
		return written, fmt.Errorf("write response: %w", err)
	}
	return written, nil
}

func (mw *statusResponseWriter) Unwrap() http.ResponseWriter {
	return mw.ResponseWriter
}

// secureHeaders sets headers suitable for a JSON API that is never framed or rendered as a document.
func secureHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'; base-uri 'none'")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "deny")
		w.Header().Set("Cross-Origin-Opener-Policy", "same-origin")
		w.Header().Set("Strict-Transport-Security", "max-age=63072000; includeSubDomains; preload")

		next.ServeHTTP(w, r)
	})
}

func noCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		w.Header().Set("Pragma", "no-cache")
		next.ServeHTTP(w, r)
	})
}

func (app *application) logAndTraceRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var (
			proto  = r.Proto
			method = r.Method
			uri    = r.URL.RequestURI()
		)

		traceID := rand.Text()
		r = contexthelpers.SetTraceID(r, traceID)
		ctx := logging.WithAttrs(
			r.Context(),
			slog.String("trace_id", traceID),
			slog.String("proto", proto),
			slog.String("method", method),
			slog.String("uri", uri),
		)
		r = r.WithContext(ctx)

		start := time.Now()
		app.logger.LogAttrs(ctx, slog.LevelDebug, "received request")

		sw := newStatusResponseWriter(w)

		if !trace.IsEnabled() {
			next.ServeHTTP(sw, r)
		} else {
			traceCtx, task := trace.NewTask(ctx, fmt.Sprintf("HTTP %s %s", method, r.URL.Path))
			trace.Log(traceCtx, "trace_id", traceID)
			next.ServeHTTP(sw, r.WithContext(traceCtx))
			task.End()
		}

		duration := time.Since(start)
		metrics.RecordHTTPRequest(method, r.Pattern, sw.statusCode, duration)
		if sw.statusCode == http.StatusServiceUnavailable && app.flightRecorder != nil {
			if _, err := app.flightRecorder.Snapshot(ctx, "timeout"); err != nil {
				app.logger.LogAttrs(ctx, slog.LevelError, "failed to capture trace", errors.SlogError(err))
			}
		}

		level := slog.LevelInfo
		if sw.statusCode >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		app.logger.LogAttrs(ctx, level, "request completed",
			slog.Int("status_code", sw.statusCode), slog.Duration("duration", duration))
	})
}

func (app *application) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if excp := recover(); excp != nil {
				w.Header().Set("Connection", "close")
				app.serverError(w, r, errors.DecoratePanic(excp))
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// authenticate resolves the username stored in the session. Sessions of deleted users stay anonymous.
func (app *application) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		username := app.sessionManager.GetString(ctx, usernameSessionKey)

		// User has not yet authenticated.
		if username == "" {
			next.ServeHTTP(w, r)
			return
		}

		exists, err := app.coachService.UserExists(ctx, username)
		if err != nil {
			app.serverError(w, r, errors.Wrap(err, "check session user"))
			return
		}
		if exists {
			r = contexthelpers.AuthenticateContext(r, username)
		}

		// Hash token with sha256 to avoid leaking it in logs.
		tokenHash := sha256.Sum256([]byte(app.sessionManager.Token(ctx)))
		ctx = logging.WithAttrs(r.Context(),
			slog.String("session_hash", hex.EncodeToString(tokenHash[:])),
			slog.String("username", username),
		)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// mustAuthenticate rejects anonymous requests with 401 Unauthorized.
func (app *application) mustAuthenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !contexthelpers.IsAuthenticated(r.Context()) {
			app.writeError(w, r, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireJSON rejects request bodies that are not JSON with 415 Unsupported Media Type.
func (app *application) requireJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if err != nil || mediaType != "application/json" {
			app.writeError(w, r, http.StatusUnsupportedMediaType, "content type must be application/json")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// crossOriginProtection implements CSRF protection using Go 1.25's CrossOriginProtection.
// The browser origins allowed by CORS are trusted as well.
func (app *application) crossOriginProtection(next http.Handler) http.Handler {
	protection := http.NewCrossOriginProtection()
	for _, origin := range app.allowedOrigins {
		if err := protection.AddTrustedOrigin(origin); err != nil {
			app.logger.LogAttrs(context.Background(), slog.LevelWarn, "ignoring invalid trusted origin",
				slog.String("origin", origin), errors.SlogError(err))
		}
	}
	return protection.Handler(next)
}

// cors lets the configured browser origins call the API with the session cookie.
func (app *application) cors(next http.Handler) http.Handler {
	return cors.New(cors.Options{ //nolint:exhaustruct // defaults are fine for the rest.
		AllowedOrigins:   app.allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
		MaxAge:           int((10 * time.Minute).Seconds()), //nolint:mnd // preflight cache
	}).Handler(next)
}

// timeout times out the request and cancels the context using http.TimeoutHandler.
func (app *application) timeout(next http.Handler) http.Handler {
	// Shorter than the server's write timeout so that the timeout response can still be written.
	timeout := defaultTimeout - (200 * time.Millisecond) //nolint:mnd // writing the response takes time.
	return http.TimeoutHandler(next, timeout, `{"error":"timed out"}`)
}
