package main

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gpossst/fitplan/internal/e2etest"
	"github.com/gpossst/fitplan/internal/errors"
	"github.com/gpossst/fitplan/internal/logging"
	"github.com/gpossst/fitplan/internal/testhelpers"
)

// baseURL uses plain HTTP for local servers and HTTPS for everything else.
func baseURL(hostname string) string {
	if strings.Contains(hostname, "localhost") {
		return "http://" + hostname
	}
	return "https://" + hostname
}

func main() {
	logger := testhelpers.NewLogger(os.Stdout)
	ctx := context.Background()

	if len(os.Args) != 2 { //nolint:mnd // we expect only hostname to be passed as argument.
		logger.LogAttrs(ctx, slog.LevelError, "usage: smoketest <hostname>")
		os.Exit(1)
	}

	var (
		hostname = os.Args[1]
		start    = time.Now()
	)
	ctx = logging.WithAttrs(ctx, slog.String("hostname", hostname))

	client, err := e2etest.NewClient(baseURL(hostname))
	if err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error creating client", errors.SlogError(err))
		os.Exit(1)
	}
	if err = client.WaitForReady(ctx, "/api/healthy"); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "server not ready in time", errors.SlogError(err))
		os.Exit(1)
	}

	journeyCtx, cancel := context.WithTimeout(ctx, 10*time.Second) //nolint:mnd // 10 seconds
	defer cancel()
	if err = e2etest.UserJourney(journeyCtx, client, e2etest.RandomUsername("smoke")); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "user journey failed", errors.SlogError(err))
		os.Exit(1) //nolint:gocritic // cancel is moot when exiting.
	}

	logger.LogAttrs(ctx, slog.LevelInfo, "Smoke test successful 🙌", slog.Duration("duration", time.Since(start)))
}
