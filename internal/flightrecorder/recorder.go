// Package flightrecorder keeps a rolling execution trace in memory and dumps it to disk when a request
// is slow enough to time out.
package flightrecorder

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/trace"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gpossst/fitplan/internal/errors"
)

const (
	defaultMinAge   = 1 * time.Minute
	defaultMaxBytes = 16 << 20
	defaultCooldown = 30 * time.Minute
)

// Recorder wraps [trace.FlightRecorder] with a cooldown between snapshots.
type Recorder struct {
	logger   *slog.Logger
	recorder *trace.FlightRecorder
	dir      string
	cooldown time.Duration
	// lastSnapshot is the Unix time in nanoseconds of the latest snapshot.
	lastSnapshot atomic.Int64
}

// Config configures the recorder. Zero durations and sizes use the defaults.
type Config struct {
	// Dir receives the trace files. It's created when missing.
	Dir      string
	MinAge   time.Duration
	MaxBytes uint64
	// Cooldown is the minimum time between two snapshots.
	Cooldown time.Duration
}

var ErrNoDir = errors.New("traces directory is required")

// New creates a recorder. Call [Recorder.Start] to begin recording.
func New(logger *slog.Logger, cfg Config) (*Recorder, error) {
	if cfg.Dir == "" {
		return nil, ErrNoDir
	}
	if err := os.MkdirAll(cfg.Dir, 0o750); err != nil { //nolint:mnd // owner and group only
		return nil, errors.Wrap(err, "create traces directory", slog.String("dir", cfg.Dir))
	}
	if cfg.MinAge == 0 {
		cfg.MinAge = defaultMinAge
	}
	if cfg.MaxBytes == 0 {
		cfg.MaxBytes = defaultMaxBytes
	}
	if cfg.Cooldown == 0 {
		cfg.Cooldown = defaultCooldown
	}

	return &Recorder{
		logger: logger,
		recorder: trace.NewFlightRecorder(trace.FlightRecorderConfig{
			MinAge:   cfg.MinAge,
			MaxBytes: cfg.MaxBytes,
		}),
		dir:          cfg.Dir,
		cooldown:     cfg.Cooldown,
		lastSnapshot: atomic.Int64{},
	}, nil
}

func (r *Recorder) Start(ctx context.Context) error {
	if err := r.recorder.Start(); err != nil {
		return errors.Wrap(err, "start flight recorder")
	}
	r.logger.LogAttrs(ctx, slog.LevelInfo, "flight recorder started",
		slog.String("dir", r.dir), slog.Duration("cooldown", r.cooldown))
	return nil
}

func (r *Recorder) Stop(ctx context.Context) {
	r.recorder.Stop()
	r.logger.LogAttrs(ctx, slog.LevelInfo, "flight recorder stopped")
}

// Snapshot writes the recorded trace to a file named after reason and returns its path. It returns an empty
// path when a snapshot was taken within the cooldown.
func (r *Recorder) Snapshot(ctx context.Context, reason string) (string, error) {
	now := time.Now()
	last := r.lastSnapshot.Load()
	if last != 0 && now.Sub(time.Unix(0, last)) < r.cooldown {
		r.logger.LogAttrs(ctx, slog.LevelDebug, "skipping trace snapshot during cooldown",
			slog.Time("last_snapshot", time.Unix(0, last)))
		return "", nil
	}
	// Another goroutine won the race for this snapshot.
	if !r.lastSnapshot.CompareAndSwap(last, now.UnixNano()) {
		return "", nil
	}

	name := fmt.Sprintf("%s-%s.trace", sanitize(reason), now.UTC().Format("20060102-150405"))
	path := filepath.Join(r.dir, name)
	file, err := os.Create(path)
	if err != nil {
		return "", errors.Wrap(err, "create trace file", slog.String("file", path))
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			r.logger.LogAttrs(ctx, slog.LevelError, "failed to close trace file",
				slog.String("file", path), errors.SlogError(closeErr))
		}
	}()

	written, err := r.recorder.WriteTo(file)
	if err != nil {
		return "", errors.Wrap(err, "write trace", slog.String("file", path))
	}
	r.logger.LogAttrs(ctx, slog.LevelWarn, "captured trace snapshot",
		slog.String("file", path), slog.Int64("bytes", written))
	return path, nil
}

// sanitize keeps reason usable as a file name component.
func sanitize(reason string) string {
	reason = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			return r
		default:
			return '_'
		}
	}, reason)
	if reason == "" {
		return "snapshot"
	}
	return reason
}
