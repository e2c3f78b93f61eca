package application

import (
	"context"
	"errors"
	"testing"
	"time"
)

type credentialStoreStub struct {
	user User
	hash string
	err  error
}

func (c *credentialStoreStub) GetCredentials(ctx context.Context, username string) (User, string, error) {
	if c.err != nil {
		return User{}, "", c.err
	}
	if c.user.Username != username {
		return User{}, "", ErrNotFound
	}
	return c.user, c.hash, nil
}

type sessionStoreStub struct {
	sessions map[string]Session
	revoked  []string
	swept    int64
	err      error
}

func newSessionStoreStub() *sessionStoreStub {
	return &sessionStoreStub{sessions: make(map[string]Session)}
}

func (s *sessionStoreStub) CreateSession(ctx context.Context, session Session) (Session, error) {
	if s.err != nil {
		return Session{}, s.err
	}
	s.sessions[session.Token] = session
	return session, nil
}

func (s *sessionStoreStub) GetSessionByToken(ctx context.Context, token string) (Session, error) {
	session, ok := s.sessions[token]
	if !ok {
		return Session{}, ErrNotFound
	}
	return session, nil
}

func (s *sessionStoreStub) RevokeSession(ctx context.Context, id string, revokedAt time.Time) error {
	s.revoked = append(s.revoked, id)
	for token, session := range s.sessions {
		if session.ID == id {
			session.RevokedAt = &revokedAt
			s.sessions[token] = session
		}
	}
	return nil
}

func (s *sessionStoreStub) DeleteExpiredSessions(ctx context.Context, before time.Time) (int64, error) {
	return s.swept, s.err
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := CreatePasswordHash(password, DefaultArgon2idParams)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return hash
}

func newTestAuthService(t *testing.T, credentials *credentialStoreStub, sessions *sessionStoreStub) *AuthService {
	t.Helper()
	return NewAuthService(
		credentials,
		sessions,
		fixedID("session-1"),
		fixedID("token-1"),
		fixedNow,
		time.Hour,
	)
}

func TestAuthService_Authenticate_IssuesSession(t *testing.T) {
	t.Parallel()

	credentials := &credentialStoreStub{
		user: User{ID: "user-1", Username: "alice"},
		hash: mustHash(t, "correct horse"),
	}
	sessions := newSessionStoreStub()
	svc := newTestAuthService(t, credentials, sessions)

	result, err := svc.Authenticate(context.Background(), AuthenticateParams{Username: "alice", Password: "correct horse"})
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if result.Session.Token != "token-1" || result.Session.UserID != "user-1" {
		t.Fatalf("unexpected session: %+v", result.Session)
	}
	if want := fixedNow().Add(time.Hour); !result.Session.ExpiresAt.Equal(want) {
		t.Fatalf("unexpected expiry %v, want %v", result.Session.ExpiresAt, want)
	}
}

func TestAuthService_Authenticate_RejectsWrongPassword(t *testing.T) {
	t.Parallel()

	credentials := &credentialStoreStub{
		user: User{ID: "user-1", Username: "alice"},
		hash: mustHash(t, "correct horse"),
	}
	svc := newTestAuthService(t, credentials, newSessionStoreStub())

	_, err := svc.Authenticate(context.Background(), AuthenticateParams{Username: "alice", Password: "wrong"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Authenticate_UnknownUserLooksLikeBadPassword(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(t, &credentialStoreStub{}, newSessionStoreStub())

	_, err := svc.Authenticate(context.Background(), AuthenticateParams{Username: "ghost", Password: "anything"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_ValidateSession_RejectsExpiredAndRevoked(t *testing.T) {
	t.Parallel()

	sessions := newSessionStoreStub()
	now := fixedNow()
	revokedAt := now.Add(-time.Minute)
	sessions.sessions["expired"] = Session{ID: "s1", Token: "expired", ExpiresAt: now.Add(-time.Minute)}
	sessions.sessions["revoked"] = Session{ID: "s2", Token: "revoked", ExpiresAt: now.Add(time.Hour), RevokedAt: &revokedAt}
	sessions.sessions["live"] = Session{ID: "s3", Token: "live", ExpiresAt: now.Add(time.Hour)}
	svc := newTestAuthService(t, &credentialStoreStub{}, sessions)

	if _, err := svc.ValidateSession(context.Background(), "expired"); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
	if _, err := svc.ValidateSession(context.Background(), "revoked"); !errors.Is(err, ErrSessionRevoked) {
		t.Fatalf("expected ErrSessionRevoked, got %v", err)
	}
	if _, err := svc.ValidateSession(context.Background(), "missing"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	session, err := svc.ValidateSession(context.Background(), "live")
	if err != nil {
		t.Fatalf("ValidateSession failed: %v", err)
	}
	if session.ID != "s3" {
		t.Fatalf("unexpected session %+v", session)
	}
}

func TestAuthService_RevokeSession_Idempotent(t *testing.T) {
	t.Parallel()

	sessions := newSessionStoreStub()
	sessions.sessions["live"] = Session{ID: "s1", Token: "live", ExpiresAt: fixedNow().Add(time.Hour)}
	svc := newTestAuthService(t, &credentialStoreStub{}, sessions)

	if err := svc.RevokeSession(context.Background(), "live"); err != nil {
		t.Fatalf("RevokeSession failed: %v", err)
	}
	if err := svc.RevokeSession(context.Background(), "live"); err != nil {
		t.Fatalf("second RevokeSession failed: %v", err)
	}
	if len(sessions.revoked) != 1 {
		t.Fatalf("expected a single revoke call, got %d", len(sessions.revoked))
	}
}

func TestAuthService_DeleteExpiredSessions_ReportsCount(t *testing.T) {
	t.Parallel()

	sessions := newSessionStoreStub()
	sessions.swept = 3
	svc := newTestAuthService(t, &credentialStoreStub{}, sessions)

	removed, err := svc.DeleteExpiredSessions(context.Background())
	if err != nil {
		t.Fatalf("DeleteExpiredSessions failed: %v", err)
	}
	if removed != 3 {
		t.Fatalf("expected 3 removed, got %d", removed)
	}
}
