package coach

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gpossst/fitplan/internal/sqlite"
)

// sqliteCaloriesRepository implements caloriesRepository.
type sqliteCaloriesRepository struct {
	baseRepository
}

func newSQLiteCaloriesRepository(db *sqlite.Database, logger *slog.Logger) *sqliteCaloriesRepository {
	return &sqliteCaloriesRepository{
		baseRepository: newBaseRepository(db, logger),
	}
}

func (r *sqliteCaloriesRepository) Add(ctx context.Context, username string, entry CalorieEntry) error {
	_, err := r.db.ReadWrite.ExecContext(ctx, `
		INSERT INTO calorie_entries (id, username, entry_date, item, calories, protein_g, carbs_g, fat_g, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, username, entry.Date, entry.Item,
		entry.Calories, entry.ProteinG, entry.CarbsG, entry.FatG,
		formatTimestamp(entry.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert calorie entry: %w", err)
	}
	return nil
}

func (r *sqliteCaloriesRepository) List(ctx context.Context, username string) ([]CalorieEntry, error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT id, entry_date, item, calories, protein_g, carbs_g, fat_g, created_at
		FROM calorie_entries
		WHERE username = ?
		ORDER BY entry_date, created_at`, username)
	if err != nil {
		return nil, fmt.Errorf("query calorie entries: %w", err)
	}
	defer rows.Close()

	entries := []CalorieEntry{}
	for rows.Next() {
		var (
			entry     CalorieEntry
			createdAt string
		)
		if err = rows.Scan(&entry.ID, &entry.Date, &entry.Item,
			&entry.Calories, &entry.ProteinG, &entry.CarbsG, &entry.FatG, &createdAt); err != nil {
			return nil, fmt.Errorf("scan calorie entry: %w", err)
		}
		if entry.CreatedAt, err = parseTimestamp(createdAt); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return entries, nil
}
