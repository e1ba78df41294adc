package coach

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gpossst/fitplan/internal/sqlite"
	"github.com/mattn/go-sqlite3"
)

// sqliteUsersRepository implements usersRepository.
type sqliteUsersRepository struct {
	baseRepository
}

func newSQLiteUsersRepository(db *sqlite.Database, logger *slog.Logger) *sqliteUsersRepository {
	return &sqliteUsersRepository{
		baseRepository: newBaseRepository(db, logger),
	}
}

func (r *sqliteUsersRepository) Create(ctx context.Context, tx *sql.Tx, user User) error {
	profile, err := json.Marshal(user.Profile)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO users (username, password_hash, profile, created_at)
		VALUES (?, ?, ?, ?)`,
		user.Username, user.PasswordHash, string(profile), formatTimestamp(user.CreatedAt))
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey {
		return ErrUserExists
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *sqliteUsersRepository) Get(ctx context.Context, username string) (User, error) {
	var (
		user      User
		profile   string
		createdAt string
	)
	err := r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT username, password_hash, profile, created_at
		FROM users
		WHERE username = ?`, username).Scan(&user.Username, &user.PasswordHash, &profile, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("query user: %w", err)
	}
	if err = json.Unmarshal([]byte(profile), &user.Profile); err != nil {
		return User{}, fmt.Errorf("unmarshal profile: %w", err)
	}
	if user.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return User{}, err
	}
	return user, nil
}

func (r *sqliteUsersRepository) Exists(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.db.ReadOnly.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE username = ?)`, username).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("query user exists: %w", err)
	}
	return exists, nil
}

func (r *sqliteUsersRepository) Delete(ctx context.Context, username string) error {
	result, err := r.db.ReadWrite.ExecContext(ctx, `DELETE FROM users WHERE username = ?`, username)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
