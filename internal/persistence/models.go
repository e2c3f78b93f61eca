package persistence

import "time"

// User represents an account in the scheduler domain together with its
// denormalized meeting index.
type User struct {
	ID           string
	Username     string
	DisplayName  string
	PasswordHash string
	IsAdmin      bool
	MeetingIndex map[string][]MeetingRef
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// MeetingRef is one entry in a user's meeting index: a weak back-reference to
// a meeting plus the user's answer status.
type MeetingRef struct {
	MeetingID string
	Answered  string
}

// Room represents a meeting room catalog entry. The name is the primary key;
// OpensAt and ClosesAt are HH:mm wall clock literals.
type Room struct {
	Name      string
	OpensAt   string
	ClosesAt  string
	Capacity  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Meeting represents a booked meeting stored in persistence. Creator and
// Participants hold usernames; Repeat holds a recurrence kind literal.
type Meeting struct {
	ID           string
	Creator      string
	RoomName     string
	Start        time.Time
	End          time.Time
	Repeat       string
	Participants []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Session represents an authentication session persisted for a user.
type Session struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	RevokedAt *time.Time
}
