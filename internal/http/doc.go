// Package http provides HTTP handlers and middleware for the meeting room API.
//
// The router exposes the following endpoints:
//   - POST /sessions: issues a session token. Body: {"username","password"}.
//     Response: {"token","expires_at","user"} with the token also surfaced via
//     the `X-Session-Token` header and a `session_token` cookie.
//   - DELETE /sessions/current: revokes the current session token extracted
//     from the Authorization header or session cookie. Returns 204 No Content
//     and clears the cookie.
//   - GET /users, POST /users, GET /users/{id}, PUT /users/{id},
//     DELETE /users/{id}: user management endpoints exchanging the `userDTO`
//     payload defined in user_handler.go. Creation and deletion require
//     administrator privileges; the listing doubles as a participant directory
//     for any authenticated principal.
//   - GET /rooms, POST /rooms, PUT /rooms/{name}, DELETE /rooms/{name}: room
//     catalog endpoints exchanging the `roomDTO` payload defined in
//     room_handler.go. Listing is available to any authenticated principal
//     while mutations require admin privileges. Rooms are addressed by name.
//   - GET /meetings, POST /meetings, PATCH /meetings/{id},
//     DELETE /meetings/{id}, PUT /meetings/{id}/answer: meeting booking
//     endpoints exchanging the `meetingDTO` payload defined in
//     meeting_handler.go. Listing accepts `user`, `period` (today/past/future)
//     and `answer` (yes/no/pending) query parameters. Booking conflicts are
//     rejected with HTTP 409 and a `BOOKING_CONFLICT` error code naming the
//     colliding meeting.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http
