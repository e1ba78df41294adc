package main

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/gpossst/fitplan/internal/coach"
	"github.com/gpossst/fitplan/internal/envstruct"
	"github.com/gpossst/fitplan/internal/errors"
	"github.com/gpossst/fitplan/internal/flightrecorder"
	"github.com/gpossst/fitplan/internal/logging"
	"github.com/gpossst/fitplan/internal/recommend"
	"github.com/gpossst/fitplan/internal/sqlite"
	"github.com/joho/godotenv"
)

type application struct {
	logger         *slog.Logger
	sessionManager *scs.SessionManager
	coachService   *coach.Service
	engine         *recommend.Engine
	allowedOrigins []string
	// flightRecorder is nil unless FITPLAN_TRACES_DIR is set.
	flightRecorder *flightrecorder.Recorder
}

type config struct {
	// Addr is the address to listen on. It's possible to choose the address dynamically with localhost:0.
	Addr string `env:"FITPLAN_ADDR" envDefault:"localhost:8081"`
	// SqliteURL is the URL to the SQLite database. You can use ":memory:" for an ethereal in-memory database.
	SqliteURL string `env:"FITPLAN_SQLITE_URL" envDefault:"./fitplan.sqlite3"`
	// AllowedOrigins are the browser origins allowed to call the API with credentials, comma separated.
	AllowedOrigins []string `env:"FITPLAN_ALLOWED_ORIGINS" envDefault:"http://localhost:3000"`
	// SessionLifetime is how long a login stays valid.
	SessionLifetime time.Duration `env:"FITPLAN_SESSION_LIFETIME" envDefault:"12h"`
	// SecureCookies marks the session cookie as HTTPS only. Disable it for plain HTTP development setups.
	SecureCookies bool `env:"FITPLAN_SECURE_COOKIES" envDefault:"true"`
	// BcryptCost is the work factor for password hashes.
	BcryptCost int `env:"FITPLAN_BCRYPT_COST" envDefault:"10"`
	// ContentSeed makes routine and cardio idea selection reproducible when non-zero.
	ContentSeed int `env:"FITPLAN_CONTENT_SEED" envDefault:"0"`
	// TracesDir enables the flight recorder, which writes an execution trace there when a request times out.
	TracesDir string `env:"FITPLAN_TRACES_DIR" envDefault:""`
}

func run(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) error {
	var (
		cancel context.CancelFunc
		err    error
	)

	ctx, cancel = signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var cfg config
	if err = envstruct.Populate(&cfg, lookupEnv); err != nil {
		return errors.Wrap(err, "populate config")
	}

	banks, err := recommend.DefaultBanks()
	if err != nil {
		return errors.Wrap(err, "load content banks")
	}
	var engineOpts []recommend.Option
	if cfg.ContentSeed != 0 {
		engineOpts = append(engineOpts, recommend.WithRand(recommend.NewSeededRand(uint64(cfg.ContentSeed))))
	}
	engine, err := recommend.NewEngine(banks, engineOpts...)
	if err != nil {
		return errors.Wrap(err, "new engine")
	}

	db, err := sqlite.NewDatabase(ctx, cfg.SqliteURL, logger)
	if err != nil {
		return errors.Wrap(err, "open db", slog.String("url", cfg.SqliteURL))
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			logger.LogAttrs(context.Background(), slog.LevelError, "failed to close db", errors.SlogError(closeErr))
		}
	}()
	logger.LogAttrs(ctx, slog.LevelInfo, "connected to db", slog.String("bank_version", banks.Version))

	sessionStore := sqlite3store.NewWithCleanupInterval(db.ReadWrite, 24*time.Hour) //nolint:mnd // day
	defer sessionStore.StopCleanup()

	var recorder *flightrecorder.Recorder
	if cfg.TracesDir != "" {
		if recorder, err = flightrecorder.New(logger, flightrecorder.Config{ //nolint:exhaustruct // defaults
			Dir: cfg.TracesDir,
		}); err != nil {
			return errors.Wrap(err, "new flight recorder")
		}
		if err = recorder.Start(ctx); err != nil {
			return errors.Wrap(err, "start flight recorder")
		}
		defer recorder.Stop(context.WithoutCancel(ctx))
	}

	app := application{
		logger:         logger,
		sessionManager: initializeSessionManager(sessionStore, cfg),
		coachService:   coach.NewService(db, engine, logger, cfg.BcryptCost),
		engine:         engine,
		allowedOrigins: cfg.AllowedOrigins,
		flightRecorder: recorder,
	}

	if err = app.configureAndStartServer(ctx, cfg.Addr, app.routes()); err != nil {
		return errors.Wrap(err, "start server")
	}
	return nil
}

func initializeSessionManager(store scs.Store, cfg config) *scs.SessionManager {
	sessionManager := scs.New()
	sessionManager.Store = store
	sessionManager.Lifetime = cfg.SessionLifetime
	sessionManager.Cookie.Name = "fitplan_session"
	sessionManager.Cookie.Persist = true
	sessionManager.Cookie.Secure = cfg.SecureCookies
	sessionManager.Cookie.HttpOnly = true
	sessionManager.Cookie.SameSite = http.SameSiteLaxMode
	return sessionManager
}

func main() {
	ctx := context.Background()
	logger := logging.NewLogger(os.Stdout, slog.LevelDebug)

	// A .env file is optional, the environment still takes precedence.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.LogAttrs(ctx, slog.LevelError, "failed to load .env file", errors.SlogError(err))
		os.Exit(1)
	}

	if err := run(ctx, logger, os.LookupEnv); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "failure starting application", errors.SlogError(err))
		os.Exit(1)
	}
}
