package application

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized is returned when the acting principal lacks permission for an operation.
	ErrUnauthorized = errors.New("application: unauthorized")
	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrAlreadyExists is returned when a resource with the same identity already exists.
	ErrAlreadyExists = errors.New("application: already exists")
	// ErrInvalidCredentials is returned when authentication fails.
	ErrInvalidCredentials = errors.New("application: invalid credentials")
	// ErrSessionExpired is returned when a session token is past its expiry.
	ErrSessionExpired = errors.New("application: session expired")
	// ErrSessionRevoked is returned when a session token was explicitly revoked.
	ErrSessionRevoked = errors.New("application: session revoked")
)

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}

// merge copies entries from another validation error into the receiver.
func (v *ValidationError) merge(other *ValidationError) {
	if other == nil || len(other.FieldErrors) == 0 {
		return
	}
	for field, msg := range other.FieldErrors {
		v.add(field, msg)
	}
}

// ConflictReason identifies why a booking attempt was rejected.
type ConflictReason string

const (
	// ConflictRoomCapacity indicates the attendee count exceeds the room capacity.
	ConflictRoomCapacity ConflictReason = "room_capacity"
	// ConflictOutsideRoomHours indicates the meeting falls outside the room's availability window.
	ConflictOutsideRoomHours ConflictReason = "outside_room_hours"
	// ConflictDuplicateParticipant indicates the same username was listed more than once.
	ConflictDuplicateParticipant ConflictReason = "duplicate_participant"
	// ConflictCreatorAsParticipant indicates the creator appeared in the participant list.
	ConflictCreatorAsParticipant ConflictReason = "creator_as_participant"
	// ConflictScheduleOverlap indicates an attendee already has a meeting at the requested time.
	ConflictScheduleOverlap ConflictReason = "schedule_overlap"
	// ConflictRoomInUse indicates the room still has meetings booked against it.
	ConflictRoomInUse ConflictReason = "room_in_use"
	// ConflictUserInUse indicates the user still creates or attends meetings.
	ConflictUserInUse ConflictReason = "user_in_use"
)

// ConflictError reports a booking conflict. MeetingID and Username are set for
// schedule overlaps to point at the conflicting meeting and attendee.
type ConflictError struct {
	Reason    ConflictReason
	MeetingID string
	Username  string
}

// Error implements the error interface.
func (c *ConflictError) Error() string {
	if c == nil {
		return ""
	}
	if c.MeetingID != "" {
		return fmt.Sprintf("conflict: %s (meeting %s, user %s)", c.Reason, c.MeetingID, c.Username)
	}
	return fmt.Sprintf("conflict: %s", c.Reason)
}
