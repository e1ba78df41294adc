package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gpossst/fitplan/internal/e2etest"
	"github.com/gpossst/fitplan/internal/errors"
	"github.com/gpossst/fitplan/internal/logging"
	"github.com/gpossst/fitplan/internal/testhelpers"
	"golang.org/x/sync/errgroup"
)

const (
	defaultUsers            = 50
	maxConcurrentOperations = 20
	scenarioTimeout         = 30 * time.Second
	successRateThreshold    = 95.0
	percentageMultiplier    = 100
)

func baseURL(hostname string) string {
	if strings.Contains(hostname, "localhost") {
		return "http://" + hostname
	}
	return "https://" + hostname
}

// runLoadTest runs one user journey per simulated user with bounded concurrency.
func runLoadTest(ctx context.Context, url string, numUsers int, logger *slog.Logger) error {
	logger.LogAttrs(ctx, slog.LevelInfo, "Starting load test", slog.Int("num_users", numUsers))

	var successCount, failureCount atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentOperations)

	for i := range numUsers {
		g.Go(func() error {
			scenarioCtx, cancel := context.WithTimeout(ctx, scenarioTimeout)
			defer cancel()

			// Each user needs their own session.
			client, err := e2etest.NewClient(url)
			if err != nil {
				return fmt.Errorf("create client: %w", err)
			}
			username := e2etest.RandomUsername("stress" + strconv.Itoa(i))
			if err = e2etest.UserJourney(scenarioCtx, client, username); err != nil {
				failureCount.Add(1)
				// Individual failures count against the success rate without stopping the other users.
				logger.LogAttrs(scenarioCtx, slog.LevelWarn, "Scenario failed",
					slog.String("username", username), errors.SlogError(err))
				return nil
			}
			successCount.Add(1)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("load test failed: %w", err)
	}

	successRate := float64(successCount.Load()) / float64(numUsers) * percentageMultiplier
	logger.LogAttrs(ctx, slog.LevelInfo, "Load test completed",
		slog.Int64("successful", successCount.Load()),
		slog.Int64("failed", failureCount.Load()),
		slog.Float64("success_rate", successRate))

	if successRate < successRateThreshold {
		return fmt.Errorf("load test failed: success rate %.1f%% below threshold", successRate)
	}
	return nil
}

func main() {
	logger := testhelpers.NewLogger(os.Stdout)
	ctx := context.Background()

	if len(os.Args) < 2 || len(os.Args) > 3 { //nolint:mnd // hostname and optional user count
		logger.LogAttrs(ctx, slog.LevelError, "usage: stresstest <hostname> [users]")
		os.Exit(1)
	}

	var (
		hostname = os.Args[1]
		numUsers = defaultUsers
		start    = time.Now()
		err      error
	)
	if len(os.Args) == 3 { //nolint:mnd // user count given
		if numUsers, err = strconv.Atoi(os.Args[2]); err != nil || numUsers <= 0 {
			logger.LogAttrs(ctx, slog.LevelError, "users must be a positive integer", slog.String("users", os.Args[2]))
			os.Exit(1)
		}
	}
	ctx = logging.WithAttrs(ctx, slog.String("hostname", hostname))

	url := baseURL(hostname)
	client, err := e2etest.NewClient(url)
	if err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error creating client", errors.SlogError(err))
		os.Exit(1)
	}
	if err = client.WaitForReady(ctx, "/api/healthy"); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "server not ready in time", errors.SlogError(err))
		os.Exit(1)
	}

	if err = runLoadTest(ctx, url, numUsers, logger); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "load test failed", errors.SlogError(err))
		os.Exit(1)
	}

	logger.LogAttrs(ctx, slog.LevelInfo, "Stress test completed", slog.Duration("duration", time.Since(start)))
}
