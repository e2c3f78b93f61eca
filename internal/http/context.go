package http

import (
	"context"

	"github.com/example/meeting-scheduler/internal/application"
)

type contextKey string

const (
	principalContextKey contextKey = "principal"
	meetingIDContextKey contextKey = "meeting_id"
	userIDContextKey    contextKey = "user_id"
	roomNameContextKey  contextKey = "room_name"
)

// ContextWithPrincipal returns a derived context containing the authenticated principal.
func ContextWithPrincipal(ctx context.Context, principal application.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, principal)
}

// PrincipalFromContext extracts the authenticated principal from context if available.
func PrincipalFromContext(ctx context.Context) (application.Principal, bool) {
	principal, ok := ctx.Value(principalContextKey).(application.Principal)
	return principal, ok
}

// ContextWithMeetingID injects the meeting identifier resolved from the request path.
func ContextWithMeetingID(ctx context.Context, meetingID string) context.Context {
	return context.WithValue(ctx, meetingIDContextKey, meetingID)
}

// MeetingIDFromContext extracts a meeting identifier previously associated with the context.
func MeetingIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(meetingIDContextKey).(string)
	return id, ok
}

// ContextWithUserID injects the user identifier resolved from the request path.
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}

// UserIDFromContext extracts a user identifier previously associated with the context.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDContextKey).(string)
	return id, ok
}

// ContextWithRoomName injects the room name resolved from the request path.
func ContextWithRoomName(ctx context.Context, roomName string) context.Context {
	return context.WithValue(ctx, roomNameContextKey, roomName)
}

// RoomNameFromContext extracts a room name previously associated with the context.
func RoomNameFromContext(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(roomNameContextKey).(string)
	return name, ok
}
