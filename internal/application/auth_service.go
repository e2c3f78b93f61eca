package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/meeting-scheduler/internal/persistence"
)

// CredentialStore exposes credential lookup for authentication.
type CredentialStore interface {
	GetCredentials(ctx context.Context, username string) (User, string, error)
}

// SessionStore captures the persistence operations needed for sessions.
type SessionStore interface {
	CreateSession(ctx context.Context, session Session) (Session, error)
	GetSessionByToken(ctx context.Context, token string) (Session, error)
	RevokeSession(ctx context.Context, id string, revokedAt time.Time) error
	DeleteExpiredSessions(ctx context.Context, before time.Time) (int64, error)
}

// AuthService issues and validates sessions backed by password credentials.
type AuthService struct {
	credentials    CredentialStore
	sessions       SessionStore
	idGenerator    func() string
	tokenGenerator func() string
	now            func() time.Time
	sessionTTL     time.Duration
	logger         *slog.Logger
}

// NewAuthService wires dependencies for authentication operations.
func NewAuthService(credentials CredentialStore, sessions SessionStore, idGenerator, tokenGenerator func() string, now func() time.Time, sessionTTL time.Duration) *AuthService {
	return NewAuthServiceWithLogger(credentials, sessions, idGenerator, tokenGenerator, now, sessionTTL, nil)
}

// NewAuthServiceWithLogger constructs an auth service with a specified logger.
func NewAuthServiceWithLogger(credentials CredentialStore, sessions SessionStore, idGenerator, tokenGenerator func() string, now func() time.Time, sessionTTL time.Duration, logger *slog.Logger) *AuthService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if tokenGenerator == nil {
		tokenGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	return &AuthService{
		credentials:    credentials,
		sessions:       sessions,
		idGenerator:    idGenerator,
		tokenGenerator: tokenGenerator,
		now:            now,
		sessionTTL:     sessionTTL,
		logger:         defaultLogger(logger),
	}
}

func (s *AuthService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AuthService", operation, attrs...)
}

// Authenticate verifies the supplied credentials and issues a new session.
func (s *AuthService) Authenticate(ctx context.Context, params AuthenticateParams) (result AuthenticateResult, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}
	if s.credentials == nil || s.sessions == nil {
		err = fmt.Errorf("auth stores not configured")
		return
	}

	logger := s.loggerWith(ctx, "Authenticate",
		"username", params.Username,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "authentication failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("user_id", result.User.ID).InfoContext(ctx, "session issued")
	}()

	if params.Username == "" || params.Password == "" {
		err = ErrInvalidCredentials
		return
	}

	user, passwordHash, lookupErr := s.credentials.GetCredentials(ctx, params.Username)
	if lookupErr != nil {
		if errors.Is(lookupErr, persistence.ErrNotFound) || errors.Is(lookupErr, ErrNotFound) {
			err = ErrInvalidCredentials
			return
		}
		err = lookupErr
		return
	}

	if verifyErr := VerifyPassword(passwordHash, params.Password); verifyErr != nil {
		err = ErrInvalidCredentials
		return
	}

	issuedAt := s.now()
	session := Session{
		ID:        s.idGenerator(),
		UserID:    user.ID,
		Token:     s.tokenGenerator(),
		ExpiresAt: issuedAt.Add(s.sessionTTL),
		CreatedAt: issuedAt,
	}

	persisted, createErr := s.sessions.CreateSession(ctx, session)
	if createErr != nil {
		err = createErr
		return
	}

	result = AuthenticateResult{User: user, Session: persisted}
	return
}

// ValidateSession resolves a bearer token to its session, rejecting expired
// and revoked tokens.
func (s *AuthService) ValidateSession(ctx context.Context, token string) (Session, error) {
	if s == nil {
		return Session{}, fmt.Errorf("AuthService is nil")
	}
	if s.sessions == nil {
		return Session{}, fmt.Errorf("session store not configured")
	}
	if token == "" {
		return Session{}, ErrInvalidCredentials
	}

	session, err := s.sessions.GetSessionByToken(ctx, token)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) || errors.Is(err, ErrNotFound) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, err
	}

	if session.RevokedAt != nil {
		return Session{}, ErrSessionRevoked
	}
	if !s.now().Before(session.ExpiresAt) {
		return Session{}, ErrSessionExpired
	}

	return session, nil
}

// RevokeSession invalidates the session identified by the token.
func (s *AuthService) RevokeSession(ctx context.Context, token string) error {
	if s == nil {
		return fmt.Errorf("AuthService is nil")
	}
	if s.sessions == nil {
		return fmt.Errorf("session store not configured")
	}

	logger := s.loggerWith(ctx, "RevokeSession")

	session, err := s.sessions.GetSessionByToken(ctx, token)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) || errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		logger.ErrorContext(ctx, "failed to revoke session", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	if session.RevokedAt != nil {
		return nil
	}

	if err := s.sessions.RevokeSession(ctx, session.ID, s.now()); err != nil {
		logger.ErrorContext(ctx, "failed to revoke session", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.With("session_id", session.ID).InfoContext(ctx, "session revoked")
	return nil
}

// DeleteExpiredSessions removes sessions past their expiry. Intended to run
// on a schedule.
func (s *AuthService) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	if s == nil {
		return 0, fmt.Errorf("AuthService is nil")
	}
	if s.sessions == nil {
		return 0, fmt.Errorf("session store not configured")
	}

	logger := s.loggerWith(ctx, "DeleteExpiredSessions")

	removed, err := s.sessions.DeleteExpiredSessions(ctx, s.now())
	if err != nil {
		logger.ErrorContext(ctx, "failed to sweep sessions", "error", err, "error_kind", ErrorKind(err))
		return 0, err
	}

	if removed > 0 {
		logger.With("removed", removed).InfoContext(ctx, "expired sessions removed")
	}
	return removed, nil
}
