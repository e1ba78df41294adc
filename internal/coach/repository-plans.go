package coach

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gpossst/fitplan/internal/sqlite"
)

// sqlitePlansRepository implements plansRepository.
type sqlitePlansRepository struct {
	baseRepository
}

func newSQLitePlansRepository(db *sqlite.Database, logger *slog.Logger) *sqlitePlansRepository {
	return &sqlitePlansRepository{
		baseRepository: newBaseRepository(db, logger),
	}
}

// Upsert replaces the user's plan.
func (r *sqlitePlansRepository) Upsert(ctx context.Context, tx *sql.Tx, username string, plan StoredPlan) error {
	encoded, err := json.Marshal(plan.Plan)
	if err != nil {
		return fmt.Errorf("marshal plan: %w", err)
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO plans (username, plan, bank_version, generated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (username) DO UPDATE SET
			plan = excluded.plan,
			bank_version = excluded.bank_version,
			generated_at = excluded.generated_at`,
		username, string(encoded), plan.BankVersion, formatTimestamp(plan.GeneratedAt))
	if err != nil {
		return fmt.Errorf("upsert plan: %w", err)
	}
	return nil
}

func (r *sqlitePlansRepository) Get(ctx context.Context, username string) (StoredPlan, error) {
	var (
		plan        StoredPlan
		encoded     string
		generatedAt string
	)
	err := r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT plan, bank_version, generated_at
		FROM plans
		WHERE username = ?`, username).Scan(&encoded, &plan.BankVersion, &generatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return StoredPlan{}, ErrNotFound
	}
	if err != nil {
		return StoredPlan{}, fmt.Errorf("query plan: %w", err)
	}
	if err = json.Unmarshal([]byte(encoded), &plan.Plan); err != nil {
		return StoredPlan{}, fmt.Errorf("unmarshal plan: %w", err)
	}
	if plan.GeneratedAt, err = parseTimestamp(generatedAt); err != nil {
		return StoredPlan{}, err
	}
	return plan, nil
}
