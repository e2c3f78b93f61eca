package persistence

import (
	"context"
	"time"
)

// UserRepository persists user accounts and their meeting indexes.
type UserRepository interface {
	CreateUser(ctx context.Context, user User) error
	GetUserByID(ctx context.Context, id string) (User, error)
	GetUserByUsername(ctx context.Context, username string) (User, error)
	ListUsers(ctx context.Context) ([]User, error)
	UpdateUser(ctx context.Context, user User) error
	DeleteUser(ctx context.Context, id string) error

	// ReplaceMeetingIndex rewrites the full meeting index of the named user.
	ReplaceMeetingIndex(ctx context.Context, username string, index map[string][]MeetingRef) error
}

// RoomRepository persists the meeting room catalog.
type RoomRepository interface {
	CreateRoom(ctx context.Context, room Room) error
	GetRoom(ctx context.Context, name string) (Room, error)
	ListRooms(ctx context.Context) ([]Room, error)
	UpdateRoom(ctx context.Context, room Room) error
	DeleteRoom(ctx context.Context, name string) error
}

// MeetingFilter narrows ListMeetings. Zero value matches everything.
type MeetingFilter struct {
	RoomName string
}

// MeetingRepository persists meetings and their participant lists.
type MeetingRepository interface {
	CreateMeeting(ctx context.Context, meeting Meeting) error
	GetMeeting(ctx context.Context, id string) (Meeting, error)
	ListMeetings(ctx context.Context, filter MeetingFilter) ([]Meeting, error)
	UpdateMeeting(ctx context.Context, meeting Meeting) error
	DeleteMeeting(ctx context.Context, id string) error
}

// SessionRepository persists authentication sessions.
type SessionRepository interface {
	CreateSession(ctx context.Context, session Session) error
	GetSessionByToken(ctx context.Context, token string) (Session, error)
	RevokeSession(ctx context.Context, id string, revokedAt time.Time) error
	DeleteExpiredSessions(ctx context.Context, before time.Time) (int64, error)
}
