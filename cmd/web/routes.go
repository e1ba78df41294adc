package main

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (app *application) routes() http.Handler {
	mux := http.NewServeMux()

	var (
		shared = func(next http.Handler) http.Handler {
			return app.recoverPanic(app.logAndTraceRequest(secureHeaders(app.crossOriginProtection(
				app.timeout(next)))))
		}
		session = func(next http.Handler) http.Handler {
			return shared(noCache(app.sessionManager.LoadAndSave(app.authenticate(next))))
		}
		mustSession = func(next http.Handler) http.Handler {
			return session(app.mustAuthenticate(next))
		}
		jsonBody = func(next http.HandlerFunc) http.Handler {
			return app.requireJSON(next)
		}
	)

	mux.Handle("POST /api/onboard", session(jsonBody(app.onboardPOST)))
	mux.Handle("POST /api/login", session(jsonBody(app.loginPOST)))
	mux.Handle("POST /api/logout", session(http.HandlerFunc(app.logoutPOST)))
	mux.Handle("DELETE /api/account", mustSession(http.HandlerFunc(app.accountDELETE)))

	mux.Handle("GET /api/dashboard", mustSession(http.HandlerFunc(app.dashboardGET)))
	mux.Handle("GET /api/plan", mustSession(http.HandlerFunc(app.planGET)))
	mux.Handle("POST /api/plan/regenerate", mustSession(http.HandlerFunc(app.planRegeneratePOST)))
	mux.Handle("POST /api/track", mustSession(jsonBody(app.trackPOST)))

	mux.Handle("GET /api/activity-levels", shared(http.HandlerFunc(app.activityLevelsGET)))
	mux.Handle("GET /api/healthy", shared(http.HandlerFunc(app.healthy)))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.Handle("/", shared(http.HandlerFunc(app.notFound)))

	return app.cors(mux)
}
