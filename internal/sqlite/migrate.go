package sqlite

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// schemaObject is a row of sqlite_schema.
type schemaObject struct {
	typ  string
	name string
	sql  string
}

// schemaSnapshot indexes schema objects by type and name.
type schemaSnapshot map[string]schemaObject

func (s schemaSnapshot) key(typ, name string) string {
	return typ + "/" + name
}

func (s schemaSnapshot) get(typ, name string) (schemaObject, bool) {
	obj, ok := s[s.key(typ, name)]
	return obj, ok
}

func (s schemaSnapshot) ofType(typ string) []schemaObject {
	var objects []schemaObject
	for _, obj := range s {
		if obj.typ == typ {
			objects = append(objects, obj)
		}
	}
	return objects
}

// migrateTo makes the live schema match schemaDefinition.
//
// The migration is declarative. The target schema is created in a scratch in-memory database and compared
// with the live schema:
//
//  1. tables missing from the target are dropped and new tables are created,
//  2. tables whose definition changed are rebuilt following
//     https://www.sqlite.org/lang_altertable.html#otheralter, keeping the common columns,
//  3. indexes and triggers are synchronised.
//
// Inspired by https://david.rothlis.net/declarative-schema-migration-for-sqlite/
func (db *Database) migrateTo(ctx context.Context, schemaDefinition string) (err error) {
	start := time.Now()

	detach, err := db.attachSchemaTarget(ctx, schemaDefinition)
	if err != nil {
		return fmt.Errorf("attach schema target: %w", err)
	}
	defer detach()

	// Table rebuilds would otherwise cascade deletes through foreign keys.
	if _, err = db.ReadWrite.ExecContext(ctx, "PRAGMA foreign_keys = OFF"); err != nil {
		return fmt.Errorf("disable foreign keys: %w", err)
	}
	defer func() {
		if _, fkErr := db.ReadWrite.ExecContext(ctx, "PRAGMA foreign_keys = ON"); fkErr != nil {
			err = errors.Join(err, fmt.Errorf("re-enable foreign keys: %w", fkErr))
		}
	}()

	tx, err := db.ReadWrite.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer db.rollback(ctx, tx)

	if err = db.migrateTables(ctx, tx); err != nil {
		return fmt.Errorf("migrate tables: %w", err)
	}
	for _, typ := range []string{"index", "trigger"} {
		if err = db.migrateObjects(ctx, tx, typ); err != nil {
			return fmt.Errorf("migrate %ss: %w", typ, err)
		}
	}
	if err = checkForeignKeys(ctx, tx); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	db.logger.LogAttrs(ctx, slog.LevelInfo, "migrated database", slog.Duration("duration", time.Since(start)))
	return nil
}

// attachSchemaTarget attaches a scratch database holding the target schema as schemaTarget.
// The returned function detaches it.
func (db *Database) attachSchemaTarget(ctx context.Context, schemaDefinition string) (func(), error) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", rand.Text())
	target, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	// The shared in-memory database lives as long as a connection to it is open, so target is closed only after
	// the attach.
	defer func() {
		if closeErr := target.Close(); closeErr != nil {
			db.logger.LogAttrs(ctx, slog.LevelError, "failed to close schema target",
				slog.Any("error", closeErr))
		}
	}()
	if _, err = target.ExecContext(ctx, schemaDefinition); err != nil {
		return nil, fmt.Errorf("create target schema: %w", err)
	}
	if _, err = db.ReadWrite.ExecContext(ctx, "ATTACH DATABASE ? AS schemaTarget", dsn); err != nil {
		return nil, fmt.Errorf("attach: %w", err)
	}
	return func() {
		if _, detachErr := db.ReadWrite.ExecContext(ctx, "DETACH DATABASE schemaTarget"); detachErr != nil {
			db.logger.LogAttrs(ctx, slog.LevelError, "failed to detach schema target",
				slog.Any("error", detachErr))
		}
	}, nil
}

func (db *Database) rollback(ctx context.Context, tx *sql.Tx) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		db.logger.LogAttrs(ctx, slog.LevelError, "failed to rollback transaction", slog.Any("error", err))
	}
}

// snapshot reads the user-defined objects of schema. Automatic indexes have no SQL and are skipped.
func snapshot(ctx context.Context, tx *sql.Tx, schema string) (schemaSnapshot, error) {
	//nolint:gosec // schema is one of two constants.
	query := fmt.Sprintf(`SELECT type, name, sql FROM %s.sqlite_schema
WHERE sql IS NOT NULL
  AND name NOT LIKE 'sqlite_%%'
  AND name NOT LIKE '_litestream_%%'`, schema)
	rows, err := tx.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query %s schema: %w", schema, err)
	}
	defer rows.Close()

	snap := make(schemaSnapshot)
	for rows.Next() {
		var obj schemaObject
		if err = rows.Scan(&obj.typ, &obj.name, &obj.sql); err != nil {
			return nil, fmt.Errorf("scan %s schema: %w", schema, err)
		}
		snap[snap.key(obj.typ, obj.name)] = obj
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s schema: %w", schema, err)
	}
	return snap, nil
}

// sameTableSQL compares table definitions ignoring the quotes that ALTER TABLE RENAME adds.
func sameTableSQL(a, b string) bool {
	return strings.ReplaceAll(a, `"`, "") == strings.ReplaceAll(b, `"`, "")
}

func (db *Database) exec(ctx context.Context, tx *sql.Tx, msg string, query string) error {
	db.logger.LogAttrs(ctx, slog.LevelInfo, msg, slog.String("query", query))
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("%s: %w", msg, err)
	}
	return nil
}

func (db *Database) migrateTables(ctx context.Context, tx *sql.Tx) error {
	live, err := snapshot(ctx, tx, "main")
	if err != nil {
		return err
	}
	target, err := snapshot(ctx, tx, "schemaTarget")
	if err != nil {
		return err
	}

	for _, table := range live.ofType("table") {
		if _, ok := target.get("table", table.name); !ok {
			if err = db.exec(ctx, tx, "dropping table", "DROP TABLE "+table.name); err != nil {
				return err
			}
		}
	}

	for _, table := range target.ofType("table") {
		current, ok := live.get("table", table.name)
		switch {
		case !ok:
			if err = db.exec(ctx, tx, "creating table", table.sql); err != nil {
				return err
			}
		case !sameTableSQL(current.sql, table.sql):
			if err = db.rebuildTable(ctx, tx, table); err != nil {
				return fmt.Errorf("rebuild %s: %w", table.name, err)
			}
		}
	}
	return nil
}

// rebuildTable replaces a table with its new definition and copies over the columns both versions share.
func (db *Database) rebuildTable(ctx context.Context, tx *sql.Tx, table schemaObject) error {
	tempName := table.name + "_migration_temp"
	if err := db.exec(ctx, tx, "creating table with new definition",
		strings.Replace(table.sql, table.name, tempName, 1)); err != nil {
		return err
	}

	columns, err := commonColumns(ctx, tx, table.name)
	if err != nil {
		return err
	}
	cols := strings.Join(columns, ", ")
	steps := []struct{ msg, query string }{
		{"copying data", fmt.Sprintf("INSERT INTO %s (%s) SELECT %s FROM %s", tempName, cols, cols, table.name)},
		{"dropping old table", "DROP TABLE " + table.name},
		{"renaming new table", fmt.Sprintf("ALTER TABLE %s RENAME TO %s", tempName, table.name)},
	}
	for _, step := range steps {
		if err = db.exec(ctx, tx, step.msg, step.query); err != nil {
			return err
		}
	}
	return nil
}

// commonColumns lists the quoted names of columns present in both the live and the target table.
func commonColumns(ctx context.Context, tx *sql.Tx, table string) ([]string, error) {
	rows, err := tx.QueryContext(ctx, `SELECT '"' || target.name || '"'
FROM pragma_table_info(:table) AS live
JOIN pragma_table_info(:table, 'schemaTarget') AS target ON target.name = live.name`, sql.Named("table", table))
	if err != nil {
		return nil, fmt.Errorf("query common columns: %w", err)
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var column string
		if err = rows.Scan(&column); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		columns = append(columns, column)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate columns: %w", err)
	}
	return columns, nil
}

// migrateObjects synchronises indexes or triggers. It runs after the tables are migrated because rebuilding a
// table drops its indexes and triggers.
func (db *Database) migrateObjects(ctx context.Context, tx *sql.Tx, typ string) error {
	live, err := snapshot(ctx, tx, "main")
	if err != nil {
		return err
	}
	target, err := snapshot(ctx, tx, "schemaTarget")
	if err != nil {
		return err
	}

	drop := "DROP " + strings.ToUpper(typ) + " "
	for _, obj := range live.ofType(typ) {
		if want, ok := target.get(typ, obj.name); !ok || want.sql != obj.sql {
			if err = db.exec(ctx, tx, "dropping "+typ, drop+obj.name); err != nil {
				return err
			}
		}
	}
	for _, obj := range target.ofType(typ) {
		if have, ok := live.get(typ, obj.name); !ok || have.sql != obj.sql {
			if err = db.exec(ctx, tx, "creating "+typ, obj.sql); err != nil {
				return err
			}
		}
	}
	return nil
}

// checkForeignKeys fails when the migrated data violates a foreign key.
func checkForeignKeys(ctx context.Context, tx *sql.Tx) error {
	rows, err := tx.QueryContext(ctx, "PRAGMA foreign_key_check")
	if err != nil {
		return fmt.Errorf("foreign key check: %w", err)
	}
	defer rows.Close()
	if rows.Next() {
		return errors.New("foreign key check: migrated data violates a foreign key constraint")
	}
	if err = rows.Err(); err != nil {
		return fmt.Errorf("foreign key check: %w", err)
	}
	return nil
}
