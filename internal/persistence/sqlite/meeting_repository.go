package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/meeting-scheduler/internal/persistence"
)

// MeetingRepository implements persistence.MeetingRepository using SQLite.
type MeetingRepository struct {
	pool *ConnectionPool
}

// NewMeetingRepository creates a SQLite-backed meeting repository.
func NewMeetingRepository(pool *ConnectionPool) *MeetingRepository {
	return &MeetingRepository{pool: pool}
}

// CreateMeeting inserts a meeting and its participants in one transaction.
func (r *MeetingRepository) CreateMeeting(ctx context.Context, meeting persistence.Meeting) error {
	if meeting.ID == "" {
		return persistence.ErrConstraintViolation
	}

	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO meetings (id, creator, room_name, start_time, end_time, repeat, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`
		_, err := tx.Exec(query,
			meeting.ID,
			meeting.Creator,
			meeting.RoomName,
			meeting.Start.UTC().Format(time.RFC3339),
			meeting.End.UTC().Format(time.RFC3339),
			meeting.Repeat,
			meeting.CreatedAt.UTC().Format(time.RFC3339),
			meeting.UpdatedAt.UTC().Format(time.RFC3339),
		)
		if err != nil {
			return mapSQLiteError(err)
		}
		return insertParticipants(tx, meeting.ID, meeting.Participants)
	})
}

// GetMeeting retrieves a meeting and its participants by ID.
func (r *MeetingRepository) GetMeeting(ctx context.Context, id string) (persistence.Meeting, error) {
	if id == "" {
		return persistence.Meeting{}, persistence.ErrNotFound
	}

	query := `
		SELECT id, creator, room_name, start_time, end_time, repeat, created_at, updated_at
		FROM meetings
		WHERE id = ?
	`
	meeting, err := scanMeeting(r.pool.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return persistence.Meeting{}, err
	}

	participants, err := r.loadParticipants(ctx, id)
	if err != nil {
		return persistence.Meeting{}, err
	}
	meeting.Participants = participants

	return meeting, nil
}

// ListMeetings lists meetings, optionally narrowed to one room.
func (r *MeetingRepository) ListMeetings(ctx context.Context, filter persistence.MeetingFilter) ([]persistence.Meeting, error) {
	query := `
		SELECT id, creator, room_name, start_time, end_time, repeat, created_at, updated_at
		FROM meetings
	`
	var args []any
	if filter.RoomName != "" {
		query += " WHERE room_name = ?"
		args = append(args, filter.RoomName)
	}
	query += " ORDER BY start_time ASC, id ASC"

	rows, err := r.pool.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapSQLiteError(err)
	}
	defer rows.Close()

	var meetings []persistence.Meeting
	for rows.Next() {
		meeting, err := scanMeeting(rows)
		if err != nil {
			return nil, err
		}
		meetings = append(meetings, meeting)
	}
	if err := rows.Err(); err != nil {
		return nil, mapSQLiteError(err)
	}

	for i := range meetings {
		participants, err := r.loadParticipants(ctx, meetings[i].ID)
		if err != nil {
			return nil, err
		}
		meetings[i].Participants = participants
	}

	return meetings, nil
}

// UpdateMeeting rewrites a meeting row and replaces its participants.
func (r *MeetingRepository) UpdateMeeting(ctx context.Context, meeting persistence.Meeting) error {
	if meeting.ID == "" {
		return persistence.ErrNotFound
	}

	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		query := `
			UPDATE meetings
			SET room_name = ?, start_time = ?, end_time = ?, repeat = ?, updated_at = ?
			WHERE id = ?
		`
		result, err := tx.Exec(query,
			meeting.RoomName,
			meeting.Start.UTC().Format(time.RFC3339),
			meeting.End.UTC().Format(time.RFC3339),
			meeting.Repeat,
			meeting.UpdatedAt.UTC().Format(time.RFC3339),
			meeting.ID,
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

		if _, err := tx.Exec("DELETE FROM meeting_participants WHERE meeting_id = ?", meeting.ID); err != nil {
			return mapSQLiteError(err)
		}
		return insertParticipants(tx, meeting.ID, meeting.Participants)
	})
}

// DeleteMeeting removes a meeting row. Participants cascade.
func (r *MeetingRepository) DeleteMeeting(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	result, err := r.pool.db.ExecContext(ctx, "DELETE FROM meetings WHERE id = ?", id)
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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMeeting(row rowScanner) (persistence.Meeting, error) {
	var meeting persistence.Meeting
	var startStr, endStr, createdAtStr, updatedAtStr string

	err := row.Scan(
		&meeting.ID,
		&meeting.Creator,
		&meeting.RoomName,
		&startStr,
		&endStr,
		&meeting.Repeat,
		&createdAtStr,
		&updatedAtStr,
	)
	if err != nil {
		return persistence.Meeting{}, mapSQLiteError(err)
	}

	if meeting.Start, err = time.Parse(time.RFC3339, startStr); err != nil {
		return persistence.Meeting{}, fmt.Errorf("failed to parse start_time: %w", err)
	}
	if meeting.End, err = time.Parse(time.RFC3339, endStr); err != nil {
		return persistence.Meeting{}, fmt.Errorf("failed to parse end_time: %w", err)
	}
	if meeting.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr); err != nil {
		return persistence.Meeting{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if meeting.UpdatedAt, err = time.Parse(time.RFC3339, updatedAtStr); err != nil {
		return persistence.Meeting{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return meeting, nil
}

func insertParticipants(tx *sql.Tx, meetingID string, participants []string) error {
	for _, username := range participants {
		if username == "" {
			continue
		}
		_, err := tx.Exec(
			"INSERT INTO meeting_participants (meeting_id, username) VALUES (?, ?)",
			meetingID, username,
		)
		if err != nil {
			return mapSQLiteError(err)
		}
	}
	return nil
}

func (r *MeetingRepository) loadParticipants(ctx context.Context, meetingID string) ([]string, error) {
	query := `
		SELECT username
		FROM meeting_participants
		WHERE meeting_id = ?
		ORDER BY username ASC
	`
	rows, err := r.pool.db.QueryContext(ctx, query, meetingID)
	if err != nil {
		return nil, mapSQLiteError(err)
	}
	defer rows.Close()

	var participants []string
	for rows.Next() {
		var username string
		if err := rows.Scan(&username); err != nil {
			return nil, mapSQLiteError(err)
		}
		participants = append(participants, username)
	}
	if err := rows.Err(); err != nil {
		return nil, mapSQLiteError(err)
	}
	return participants, nil
}
