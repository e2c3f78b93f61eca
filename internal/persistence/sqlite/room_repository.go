package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/example/meeting-scheduler/internal/persistence"
)

// RoomRepository implements persistence.RoomRepository using SQLite.
type RoomRepository struct {
	pool *ConnectionPool
}

// NewRoomRepository creates a SQLite-backed room repository.
func NewRoomRepository(pool *ConnectionPool) *RoomRepository {
	return &RoomRepository{pool: pool}
}

// CreateRoom inserts a new room row keyed by name.
func (r *RoomRepository) CreateRoom(ctx context.Context, room persistence.Room) error {
	if room.Name == "" {
		return persistence.ErrConstraintViolation
	}

	query := `
		INSERT INTO rooms (name, opens_at, closes_at, capacity, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := r.pool.db.ExecContext(ctx, query,
		room.Name,
		room.OpensAt,
		room.ClosesAt,
		room.Capacity,
		room.CreatedAt.UTC().Format(time.RFC3339),
		room.UpdatedAt.UTC().Format(time.RFC3339),
	)
	return mapSQLiteError(err)
}

// GetRoom retrieves a room by name.
func (r *RoomRepository) GetRoom(ctx context.Context, name string) (persistence.Room, error) {
	query := `
		SELECT name, opens_at, closes_at, capacity, created_at, updated_at
		FROM rooms
		WHERE name = ?
	`
	var room persistence.Room
	var createdAtStr, updatedAtStr string

	err := r.pool.db.QueryRowContext(ctx, query, name).Scan(
		&room.Name,
		&room.OpensAt,
		&room.ClosesAt,
		&room.Capacity,
		&createdAtStr,
		&updatedAtStr,
	)
	if err != nil {
		return persistence.Room{}, mapSQLiteError(err)
	}

	if room.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr); err != nil {
		return persistence.Room{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if room.UpdatedAt, err = time.Parse(time.RFC3339, updatedAtStr); err != nil {
		return persistence.Room{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return room, nil
}

// ListRooms returns every room ordered by name.
func (r *RoomRepository) ListRooms(ctx context.Context) ([]persistence.Room, error) {
	query := `
		SELECT name, opens_at, closes_at, capacity, created_at, updated_at
		FROM rooms
		ORDER BY name ASC
	`
	rows, err := r.pool.db.QueryContext(ctx, query)
	if err != nil {
		return nil, mapSQLiteError(err)
	}
	defer rows.Close()

	var rooms []persistence.Room
	for rows.Next() {
		var room persistence.Room
		var createdAtStr, updatedAtStr string
		if err := rows.Scan(&room.Name, &room.OpensAt, &room.ClosesAt, &room.Capacity, &createdAtStr, &updatedAtStr); err != nil {
			return nil, mapSQLiteError(err)
		}
		if room.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr); err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		if room.UpdatedAt, err = time.Parse(time.RFC3339, updatedAtStr); err != nil {
			return nil, fmt.Errorf("failed to parse updated_at: %w", err)
		}
		rooms = append(rooms, room)
	}
	if err := rows.Err(); err != nil {
		return nil, mapSQLiteError(err)
	}
	return rooms, nil
}

// UpdateRoom rewrites the mutable columns of a room row. The name is the
// primary key and never changes.
func (r *RoomRepository) UpdateRoom(ctx context.Context, room persistence.Room) error {
	query := `
		UPDATE rooms
		SET opens_at = ?, closes_at = ?, capacity = ?, updated_at = ?
		WHERE name = ?
	`
	result, err := r.pool.db.ExecContext(ctx, query,
		room.OpensAt,
		room.ClosesAt,
		room.Capacity,
		room.UpdatedAt.UTC().Format(time.RFC3339),
		room.Name,
	)
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

// DeleteRoom removes a room row.
func (r *RoomRepository) DeleteRoom(ctx context.Context, name string) error {
	result, err := r.pool.db.ExecContext(ctx, "DELETE FROM rooms WHERE name = ?", name)
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
