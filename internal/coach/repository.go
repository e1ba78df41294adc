package coach

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gpossst/fitplan/internal/sqlite"
)

const timestampFormat = "2006-01-02T15:04:05.000Z"

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// usersRepository stores accounts and their profiles.
type usersRepository interface {
	// Create inserts user within tx. It returns ErrUserExists when the username is taken.
	Create(ctx context.Context, tx *sql.Tx, user User) error
	Get(ctx context.Context, username string) (User, error)
	Exists(ctx context.Context, username string) (bool, error)
	// Delete removes the user. Plans and calorie entries are removed by foreign key cascades.
	Delete(ctx context.Context, username string) error
}

// plansRepository stores the latest plan of each user.
type plansRepository interface {
	Upsert(ctx context.Context, tx *sql.Tx, username string, plan StoredPlan) error
	Get(ctx context.Context, username string) (StoredPlan, error)
}

// caloriesRepository is the append-only calorie log.
type caloriesRepository interface {
	Add(ctx context.Context, username string, entry CalorieEntry) error
	// List returns the user's entries ordered by entry date and then by tracking time.
	List(ctx context.Context, username string) ([]CalorieEntry, error)
}

// repositoryFactory creates repositories.
type repositoryFactory struct {
	db     *sqlite.Database
	logger *slog.Logger
}

// newRepositoryFactory creates a new repository factory.
func newRepositoryFactory(db *sqlite.Database, logger *slog.Logger) *repositoryFactory {
	return &repositoryFactory{
		db:     db,
		logger: logger,
	}
}

// repository bundles the stores the service works with.
type repository struct {
	baseRepository

	users    usersRepository
	plans    plansRepository
	calories caloriesRepository
}

// newRepository creates a new repository.
func (f *repositoryFactory) newRepository() *repository {
	return &repository{
		baseRepository: newBaseRepository(f.db, f.logger),
		users:          newSQLiteUsersRepository(f.db, f.logger),
		plans:          newSQLitePlansRepository(f.db, f.logger),
		calories:       newSQLiteCaloriesRepository(f.db, f.logger),
	}
}

type baseRepository struct {
	db     *sqlite.Database
	logger *slog.Logger
}

func newBaseRepository(db *sqlite.Database, logger *slog.Logger) baseRepository {
	return baseRepository{
		db:     db,
		logger: logger,
	}
}

// withTx runs fn inside a read-write transaction and commits when fn succeeds.
func (r *baseRepository) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.ReadWrite.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
			r.logger.LogAttrs(ctx, slog.LevelError, "failed to rollback transaction",
				slog.Any("error", rollbackErr))
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampFormat)
}

func parseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(timestampFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}
