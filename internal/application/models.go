package application

import (
	"fmt"
	"strings"
	"time"

	"github.com/example/meeting-scheduler/internal/recurrence"
	"github.com/example/meeting-scheduler/internal/scheduler"
)

// Principal represents the authenticated user invoking a service method.
type Principal struct {
	UserID   string
	Username string
	IsAdmin  bool
}

// Answer is a participant's reply to a meeting invitation.
type Answer string

const (
	// AnswerYes indicates the participant accepted the invitation.
	AnswerYes Answer = "yes"
	// AnswerNo indicates the participant declined the invitation.
	AnswerNo Answer = "no"
	// AnswerPending indicates the participant has not replied yet.
	AnswerPending Answer = "pending"
)

// ParseAnswer validates a caller supplied answer literal.
func ParseAnswer(value string) (Answer, error) {
	switch Answer(strings.ToLower(strings.TrimSpace(value))) {
	case AnswerYes:
		return AnswerYes, nil
	case AnswerNo:
		return AnswerNo, nil
	case AnswerPending:
		return AnswerPending, nil
	}
	return "", fmt.Errorf("unknown answer %q", value)
}

// UserMeetingRef is one entry in a user's meeting index: the meeting identity
// plus that user's answer.
type UserMeetingRef struct {
	MeetingID string
	Answered  Answer
}

// MeetingIndex maps bucket keys to the ordered meeting references filed under
// them for one user.
type MeetingIndex map[string][]UserMeetingRef

// MeetingInput captures caller provided meeting fields.
type MeetingInput struct {
	RoomName     string
	Start        time.Time
	End          time.Time
	Repeat       string
	Participants []string
}

// MeetingPatch captures a partial meeting update. Nil fields are left
// unchanged; AddParticipants is merged into the existing participant list.
type MeetingPatch struct {
	RoomName        *string
	Start           *time.Time
	End             *time.Time
	Repeat          *string
	AddParticipants []string
}

// Meeting represents a persisted meeting.
type Meeting struct {
	ID           string
	Creator      string
	RoomName     string
	Start        time.Time
	End          time.Time
	Repeat       recurrence.Kind
	Participants []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// BucketKey returns the index bucket the meeting files under: the recurrence
// literal for repeating meetings, dd-MM-yyyy of the start date otherwise.
func (m Meeting) BucketKey() string {
	return recurrence.BucketKey(m.Repeat, m.Start)
}

// Attendees returns the creator plus participants.
func (m Meeting) Attendees() []string {
	out := make([]string, 0, len(m.Participants)+1)
	out = append(out, m.Creator)
	out = append(out, m.Participants...)
	return out
}

// MeetingWithAnswer pairs a meeting with the requesting user's answer.
type MeetingWithAnswer struct {
	Meeting Meeting
	Answer  Answer
}

// CreateMeetingParams wraps the data required to create a meeting.
type CreateMeetingParams struct {
	Principal Principal
	Input     MeetingInput
}

// UpdateMeetingParams wraps the data required to patch an existing meeting.
type UpdateMeetingParams struct {
	Principal Principal
	MeetingID string
	Patch     MeetingPatch
}

// AnswerMeetingParams wraps the data required to record an invitation answer.
type AnswerMeetingParams struct {
	Principal Principal
	MeetingID string
	Answer    Answer
}

// ListPeriod identifies the range preset requested for meeting listings.
type ListPeriod string

const (
	// ListPeriodAll indicates no period filter.
	ListPeriodAll ListPeriod = ""
	// ListPeriodToday constrains results to meetings occurring today.
	ListPeriodToday ListPeriod = "today"
	// ListPeriodPast constrains results to meetings that ended before today.
	ListPeriodPast ListPeriod = "past"
	// ListPeriodFuture constrains results to meetings starting today or later.
	ListPeriodFuture ListPeriod = "future"
)

// ListMeetingsParams wraps the data required to list a user's meetings.
type ListMeetingsParams struct {
	Principal Principal
	Username  string
	Period    ListPeriod
	Answer    *Answer
}

// RoomInput captures caller provided room fields.
type RoomInput struct {
	Name     string
	OpensAt  string
	ClosesAt string
	Capacity int
}

// Room represents a catalog entry for a bookable meeting room.
type Room struct {
	Name      string
	OpensAt   scheduler.TimeOfDay
	ClosesAt  scheduler.TimeOfDay
	Capacity  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateRoomParams wraps the data required to create a room.
type CreateRoomParams struct {
	Principal Principal
	Input     RoomInput
}

// UpdateRoomParams wraps the data required to update a room.
type UpdateRoomParams struct {
	Principal Principal
	RoomName  string
	Input     RoomInput
}

// UserInput captures caller provided user attributes.
type UserInput struct {
	Username    string
	DisplayName string
	Password    string
	IsAdmin     bool
}

// User represents an account exposed by the application services.
type User struct {
	ID          string
	Username    string
	DisplayName string
	IsAdmin     bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CreateUserParams wraps the data required to create a user.
type CreateUserParams struct {
	Principal Principal
	Input     UserInput
}

// UpdateUserParams wraps the data required to update a user.
type UpdateUserParams struct {
	Principal Principal
	UserID    string
	Input     UserInput
}

// Session represents an authenticated session issued to a user.
type Session struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	RevokedAt *time.Time
}

// AuthenticateParams captures the data required to authenticate a user.
type AuthenticateParams struct {
	Username string
	Password string
}

// AuthenticateResult captures the outcome of a successful authentication attempt.
type AuthenticateResult struct {
	User    User
	Session Session
}
