package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/meeting-scheduler/internal/persistence"
)

// UserRepository implements persistence.UserRepository using SQLite.
type UserRepository struct {
	pool *ConnectionPool
}

// NewUserRepository creates a SQLite-backed user repository.
func NewUserRepository(pool *ConnectionPool) *UserRepository {
	return &UserRepository{pool: pool}
}

// CreateUser inserts a new user row.
func (r *UserRepository) CreateUser(ctx context.Context, user persistence.User) error {
	if user.ID == "" || user.Username == "" {
		return persistence.ErrConstraintViolation
	}

	query := `
		INSERT INTO users (id, username, display_name, password_hash, is_admin, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.pool.db.ExecContext(ctx, query,
		user.ID,
		user.Username,
		user.DisplayName,
		user.PasswordHash,
		boolToInt(user.IsAdmin),
		user.CreatedAt.UTC().Format(time.RFC3339),
		user.UpdatedAt.UTC().Format(time.RFC3339),
	)
	return mapSQLiteError(err)
}

// GetUserByID retrieves a user and their meeting index by ID.
func (r *UserRepository) GetUserByID(ctx context.Context, id string) (persistence.User, error) {
	return r.getUser(ctx, "id = ?", id)
}

// GetUserByUsername retrieves a user and their meeting index by username.
func (r *UserRepository) GetUserByUsername(ctx context.Context, username string) (persistence.User, error) {
	return r.getUser(ctx, "username = ?", username)
}

func (r *UserRepository) getUser(ctx context.Context, where string, arg any) (persistence.User, error) {
	query := `
		SELECT id, username, display_name, password_hash, is_admin, created_at, updated_at
		FROM users
		WHERE ` + where

	var user persistence.User
	var isAdmin int
	var createdAtStr, updatedAtStr string

	err := r.pool.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID,
		&user.Username,
		&user.DisplayName,
		&user.PasswordHash,
		&isAdmin,
		&createdAtStr,
		&updatedAtStr,
	)
	if err != nil {
		return persistence.User{}, mapSQLiteError(err)
	}

	user.IsAdmin = isAdmin != 0
	if user.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr); err != nil {
		return persistence.User{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if user.UpdatedAt, err = time.Parse(time.RFC3339, updatedAtStr); err != nil {
		return persistence.User{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	index, err := r.loadMeetingIndex(ctx, user.Username)
	if err != nil {
		return persistence.User{}, err
	}
	user.MeetingIndex = index

	return user, nil
}

// ListUsers returns every user ordered by username. Meeting indexes are not
// loaded for listings.
func (r *UserRepository) ListUsers(ctx context.Context) ([]persistence.User, error) {
	query := `
		SELECT id, username, display_name, password_hash, is_admin, created_at, updated_at
		FROM users
		ORDER BY username ASC
	`
	rows, err := r.pool.db.QueryContext(ctx, query)
	if err != nil {
		return nil, mapSQLiteError(err)
	}
	defer rows.Close()

	var users []persistence.User
	for rows.Next() {
		var user persistence.User
		var isAdmin int
		var createdAtStr, updatedAtStr string
		if err := rows.Scan(&user.ID, &user.Username, &user.DisplayName, &user.PasswordHash, &isAdmin, &createdAtStr, &updatedAtStr); err != nil {
			return nil, mapSQLiteError(err)
		}
		user.IsAdmin = isAdmin != 0
		if user.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr); err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		if user.UpdatedAt, err = time.Parse(time.RFC3339, updatedAtStr); err != nil {
			return nil, fmt.Errorf("failed to parse updated_at: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, mapSQLiteError(err)
	}
	return users, nil
}

// UpdateUser rewrites the mutable columns of a user row. An empty
// PasswordHash leaves the stored hash untouched.
func (r *UserRepository) UpdateUser(ctx context.Context, user persistence.User) error {
	if user.ID == "" {
		return persistence.ErrNotFound
	}

	query := `
		UPDATE users
		SET display_name = ?, is_admin = ?, updated_at = ?
		WHERE id = ?
	`
	args := []any{
		user.DisplayName,
		boolToInt(user.IsAdmin),
		user.UpdatedAt.UTC().Format(time.RFC3339),
		user.ID,
	}
	if user.PasswordHash != "" {
		query = `
			UPDATE users
			SET display_name = ?, is_admin = ?, password_hash = ?, updated_at = ?
			WHERE id = ?
		`
		args = []any{
			user.DisplayName,
			boolToInt(user.IsAdmin),
			user.PasswordHash,
			user.UpdatedAt.UTC().Format(time.RFC3339),
			user.ID,
		}
	}

	result, err := r.pool.db.ExecContext(ctx, query, args...)
	if err != nil {
		return mapSQLiteError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// DeleteUser removes a user row. Index entries and sessions cascade.
func (r *UserRepository) DeleteUser(ctx context.Context, id string) error {
	result, err := r.pool.db.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return mapSQLiteError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// ReplaceMeetingIndex rewrites the named user's whole meeting index in one
// transaction, preserving per-bucket ordering via the position column.
func (r *UserRepository) ReplaceMeetingIndex(ctx context.Context, username string, index map[string][]persistence.MeetingRef) error {
	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.Exec("DELETE FROM user_meeting_index WHERE username = ?", username); err != nil {
			return mapSQLiteError(err)
		}
		for bucketKey, refs := range index {
			for position, ref := range refs {
				_, err := tx.Exec(`
					INSERT INTO user_meeting_index (username, bucket_key, meeting_id, answered, position)
					VALUES (?, ?, ?, ?, ?)
				`, username, bucketKey, ref.MeetingID, ref.Answered, position)
				if err != nil {
					return mapSQLiteError(err)
				}
			}
		}
		return nil
	})
}

func (r *UserRepository) loadMeetingIndex(ctx context.Context, username string) (map[string][]persistence.MeetingRef, error) {
	query := `
		SELECT bucket_key, meeting_id, answered
		FROM user_meeting_index
		WHERE username = ?
		ORDER BY bucket_key ASC, position ASC
	`
	rows, err := r.pool.db.QueryContext(ctx, query, username)
	if err != nil {
		return nil, mapSQLiteError(err)
	}
	defer rows.Close()

	index := make(map[string][]persistence.MeetingRef)
	for rows.Next() {
		var bucketKey string
		var ref persistence.MeetingRef
		if err := rows.Scan(&bucketKey, &ref.MeetingID, &ref.Answered); err != nil {
			return nil, mapSQLiteError(err)
		}
		index[bucketKey] = append(index[bucketKey], ref)
	}
	if err := rows.Err(); err != nil {
		return nil, mapSQLiteError(err)
	}
	return index, nil
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
