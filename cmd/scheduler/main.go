package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/example/meeting-scheduler/internal/application"
	"github.com/example/meeting-scheduler/internal/config"
	httptransport "github.com/example/meeting-scheduler/internal/http"
	"github.com/example/meeting-scheduler/internal/persistence"
	"github.com/example/meeting-scheduler/internal/persistence/sqlite"
	"github.com/example/meeting-scheduler/internal/recurrence"
	"github.com/example/meeting-scheduler/internal/scheduler"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	pool, err := sqlite.NewConnectionPool(cfg.SQLiteDSN)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := pool.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := sqlite.Migrate(context.Background(), pool); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	idGenerator := uuid.NewString
	tokenGenerator := func() string { return randomHex(32) }
	now := time.Now

	userRepo := sqlite.NewUserRepository(pool)
	roomRepo := sqlite.NewRoomRepository(pool)
	meetingRepo := sqlite.NewMeetingRepository(pool)
	sessionRepo := sqlite.NewSessionRepository(pool)

	if err := bootstrapAdmin(ctx, cfg, userRepo, idGenerator, now); err != nil {
		logger.Error("failed to bootstrap administrator account", "error", err)
		os.Exit(1)
	}

	meetingService := application.NewMeetingServiceWithLogger(
		newMeetingStoreAdapter(meetingRepo),
		newUserIndexAdapter(userRepo),
		newRoomCatalogAdapter(roomRepo),
		idGenerator, now, logger,
	)
	roomService := application.NewRoomServiceWithLogger(
		newRoomCatalogAdapter(roomRepo),
		newRoomUsageAdapter(meetingRepo),
		now, logger,
	)
	userService := application.NewUserServiceWithLogger(newUserRepositoryAdapter(userRepo), idGenerator, now, logger)
	authService := application.NewAuthServiceWithLogger(
		newCredentialStoreAdapter(userRepo),
		newSessionStoreAdapter(sessionRepo),
		idGenerator, tokenGenerator, now, cfg.SessionTTL, logger,
	)

	sweeper := cron.New()
	if _, err := sweeper.AddFunc(cfg.SessionSweep, func() {
		deleted, err := authService.DeleteExpiredSessions(context.Background())
		if err != nil {
			logger.Error("failed to sweep expired sessions", "error", err)
			return
		}
		if deleted > 0 {
			logger.Info("swept expired sessions", "deleted", deleted)
		}
	}); err != nil {
		logger.Error("invalid session sweep schedule", "schedule", cfg.SessionSweep, "error", err)
		os.Exit(1)
	}
	sweeper.Start()
	defer sweeper.Stop()

	authHandler := httptransport.NewAuthHandler(authService, logger)
	userHandler := httptransport.NewUserHandler(userService, logger)
	roomHandler := httptransport.NewRoomHandler(roomService, logger)
	meetingHandler := httptransport.NewMeetingHandler(meetingService, logger)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Auth:     authHandler,
		Users:    userHandler,
		Rooms:    roomHandler,
		Meetings: meetingHandler,
	})

	validator := newSessionValidatorAdapter(authService, userRepo)
	protected := httptransport.RequireSession(validator, logger)(router)
	handler := httptransport.RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/sessions" && r.Method == http.MethodPost {
			router.ServeHTTP(w, r)
			return
		}
		protected.ServeHTTP(w, r)
	}))

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("meeting scheduler API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

func randomHex(bytes int) string {
	if bytes <= 0 {
		bytes = 16
	}
	buf := make([]byte, bytes)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}

// bootstrapAdmin seeds the configured administrator account on first start so
// a fresh database has a principal able to create further users.
func bootstrapAdmin(ctx context.Context, cfg config.Config, repo persistence.UserRepository, idGenerator func() string, now func() time.Time) error {
	if cfg.AdminUsername == "" || cfg.AdminPassword == "" {
		return nil
	}

	if _, err := repo.GetUserByUsername(ctx, cfg.AdminUsername); err == nil {
		return nil
	} else if !errors.Is(err, persistence.ErrNotFound) {
		return err
	}

	hash, err := application.CreatePasswordHash(cfg.AdminPassword, application.DefaultArgon2idParams)
	if err != nil {
		return err
	}

	ts := now().UTC()
	return repo.CreateUser(ctx, persistence.User{
		ID:           idGenerator(),
		Username:     cfg.AdminUsername,
		DisplayName:  cfg.AdminUsername,
		PasswordHash: hash,
		IsAdmin:      true,
		CreatedAt:    ts,
		UpdatedAt:    ts,
	})
}

type sessionValidatorAdapter struct {
	auth  *application.AuthService
	users persistence.UserRepository
}

func newSessionValidatorAdapter(auth *application.AuthService, users persistence.UserRepository) *sessionValidatorAdapter {
	return &sessionValidatorAdapter{auth: auth, users: users}
}

func (a *sessionValidatorAdapter) ValidateSession(ctx context.Context, token string) (application.Principal, error) {
	session, err := a.auth.ValidateSession(ctx, token)
	if err != nil {
		return application.Principal{}, err
	}
	user, err := a.users.GetUserByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return application.Principal{}, application.ErrInvalidCredentials
		}
		return application.Principal{}, err
	}
	return application.Principal{UserID: user.ID, Username: user.Username, IsAdmin: user.IsAdmin}, nil
}

type meetingStoreAdapter struct {
	repo persistence.MeetingRepository
}

func newMeetingStoreAdapter(repo persistence.MeetingRepository) *meetingStoreAdapter {
	return &meetingStoreAdapter{repo: repo}
}

func (a *meetingStoreAdapter) CreateMeeting(ctx context.Context, meeting application.Meeting) (application.Meeting, error) {
	if err := a.repo.CreateMeeting(ctx, toPersistenceMeeting(meeting)); err != nil {
		return application.Meeting{}, err
	}
	stored, err := a.repo.GetMeeting(ctx, meeting.ID)
	if err != nil {
		return application.Meeting{}, err
	}
	return toApplicationMeeting(stored), nil
}

func (a *meetingStoreAdapter) GetMeeting(ctx context.Context, id string) (application.Meeting, error) {
	stored, err := a.repo.GetMeeting(ctx, id)
	if err != nil {
		return application.Meeting{}, err
	}
	return toApplicationMeeting(stored), nil
}

func (a *meetingStoreAdapter) UpdateMeeting(ctx context.Context, meeting application.Meeting) (application.Meeting, error) {
	if err := a.repo.UpdateMeeting(ctx, toPersistenceMeeting(meeting)); err != nil {
		return application.Meeting{}, err
	}
	stored, err := a.repo.GetMeeting(ctx, meeting.ID)
	if err != nil {
		return application.Meeting{}, err
	}
	return toApplicationMeeting(stored), nil
}

func (a *meetingStoreAdapter) DeleteMeeting(ctx context.Context, id string) error {
	return a.repo.DeleteMeeting(ctx, id)
}

type userIndexAdapter struct {
	repo persistence.UserRepository
}

func newUserIndexAdapter(repo persistence.UserRepository) *userIndexAdapter {
	return &userIndexAdapter{repo: repo}
}

func (a *userIndexAdapter) MissingUsernames(ctx context.Context, usernames []string) ([]string, error) {
	if len(usernames) == 0 {
		return nil, nil
	}
	missing := make([]string, 0)
	for _, username := range usernames {
		if _, err := a.repo.GetUserByUsername(ctx, username); err != nil {
			if errors.Is(err, persistence.ErrNotFound) {
				missing = append(missing, username)
				continue
			}
			return nil, err
		}
	}
	if len(missing) == 0 {
		return nil, nil
	}
	return missing, nil
}

func (a *userIndexAdapter) GetMeetingIndex(ctx context.Context, username string) (application.MeetingIndex, error) {
	user, err := a.repo.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	index := make(application.MeetingIndex, len(user.MeetingIndex))
	for key, refs := range user.MeetingIndex {
		entries := make([]application.UserMeetingRef, 0, len(refs))
		for _, ref := range refs {
			entries = append(entries, application.UserMeetingRef{
				MeetingID: ref.MeetingID,
				Answered:  application.Answer(ref.Answered),
			})
		}
		index[key] = entries
	}
	return index, nil
}

func (a *userIndexAdapter) ReplaceMeetingIndex(ctx context.Context, username string, index application.MeetingIndex) error {
	stored := make(map[string][]persistence.MeetingRef, len(index))
	for key, refs := range index {
		entries := make([]persistence.MeetingRef, 0, len(refs))
		for _, ref := range refs {
			entries = append(entries, persistence.MeetingRef{
				MeetingID: ref.MeetingID,
				Answered:  string(ref.Answered),
			})
		}
		stored[key] = entries
	}
	return a.repo.ReplaceMeetingIndex(ctx, username, stored)
}

type roomCatalogAdapter struct {
	repo persistence.RoomRepository
}

func newRoomCatalogAdapter(repo persistence.RoomRepository) *roomCatalogAdapter {
	return &roomCatalogAdapter{repo: repo}
}

func (a *roomCatalogAdapter) CreateRoom(ctx context.Context, room application.Room) (application.Room, error) {
	if err := a.repo.CreateRoom(ctx, toPersistenceRoom(room)); err != nil {
		return application.Room{}, err
	}
	stored, err := a.repo.GetRoom(ctx, room.Name)
	if err != nil {
		return application.Room{}, err
	}
	return toApplicationRoom(stored)
}

func (a *roomCatalogAdapter) GetRoom(ctx context.Context, name string) (application.Room, error) {
	stored, err := a.repo.GetRoom(ctx, name)
	if err != nil {
		return application.Room{}, err
	}
	return toApplicationRoom(stored)
}

func (a *roomCatalogAdapter) UpdateRoom(ctx context.Context, room application.Room) (application.Room, error) {
	if err := a.repo.UpdateRoom(ctx, toPersistenceRoom(room)); err != nil {
		return application.Room{}, err
	}
	stored, err := a.repo.GetRoom(ctx, room.Name)
	if err != nil {
		return application.Room{}, err
	}
	return toApplicationRoom(stored)
}

func (a *roomCatalogAdapter) DeleteRoom(ctx context.Context, name string) error {
	return a.repo.DeleteRoom(ctx, name)
}

func (a *roomCatalogAdapter) ListRooms(ctx context.Context) ([]application.Room, error) {
	models, err := a.repo.ListRooms(ctx)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	rooms := make([]application.Room, 0, len(models))
	for _, model := range models {
		room, err := toApplicationRoom(model)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	return rooms, nil
}

type roomUsageAdapter struct {
	repo persistence.MeetingRepository
}

func newRoomUsageAdapter(repo persistence.MeetingRepository) *roomUsageAdapter {
	return &roomUsageAdapter{repo: repo}
}

func (a *roomUsageAdapter) RoomHasMeetings(ctx context.Context, roomName string) (bool, error) {
	meetings, err := a.repo.ListMeetings(ctx, persistence.MeetingFilter{RoomName: roomName})
	if err != nil {
		return false, err
	}
	return len(meetings) > 0, nil
}

type userRepositoryAdapter struct {
	repo persistence.UserRepository
}

func newUserRepositoryAdapter(repo persistence.UserRepository) *userRepositoryAdapter {
	return &userRepositoryAdapter{repo: repo}
}

func (a *userRepositoryAdapter) CreateUser(ctx context.Context, user application.User, passwordHash string) (application.User, error) {
	if err := a.repo.CreateUser(ctx, toPersistenceUser(user, passwordHash)); err != nil {
		return application.User{}, err
	}
	stored, err := a.repo.GetUserByID(ctx, user.ID)
	if err != nil {
		return application.User{}, err
	}
	return toApplicationUser(stored), nil
}

func (a *userRepositoryAdapter) GetUser(ctx context.Context, id string) (application.User, error) {
	stored, err := a.repo.GetUserByID(ctx, id)
	if err != nil {
		return application.User{}, err
	}
	return toApplicationUser(stored), nil
}

func (a *userRepositoryAdapter) GetUserByUsername(ctx context.Context, username string) (application.User, error) {
	stored, err := a.repo.GetUserByUsername(ctx, username)
	if err != nil {
		return application.User{}, err
	}
	return toApplicationUser(stored), nil
}

func (a *userRepositoryAdapter) ListUsers(ctx context.Context) ([]application.User, error) {
	models, err := a.repo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	users := make([]application.User, 0, len(models))
	for _, model := range models {
		users = append(users, toApplicationUser(model))
	}
	return users, nil
}

func (a *userRepositoryAdapter) UpdateUser(ctx context.Context, user application.User, passwordHash string) (application.User, error) {
	if err := a.repo.UpdateUser(ctx, toPersistenceUser(user, passwordHash)); err != nil {
		return application.User{}, err
	}
	stored, err := a.repo.GetUserByID(ctx, user.ID)
	if err != nil {
		return application.User{}, err
	}
	return toApplicationUser(stored), nil
}

func (a *userRepositoryAdapter) DeleteUser(ctx context.Context, id string) error {
	return a.repo.DeleteUser(ctx, id)
}

type credentialStoreAdapter struct {
	repo persistence.UserRepository
}

func newCredentialStoreAdapter(repo persistence.UserRepository) *credentialStoreAdapter {
	return &credentialStoreAdapter{repo: repo}
}

func (a *credentialStoreAdapter) GetCredentials(ctx context.Context, username string) (application.User, string, error) {
	stored, err := a.repo.GetUserByUsername(ctx, username)
	if err != nil {
		return application.User{}, "", err
	}
	return toApplicationUser(stored), stored.PasswordHash, nil
}

type sessionStoreAdapter struct {
	repo persistence.SessionRepository
}

func newSessionStoreAdapter(repo persistence.SessionRepository) *sessionStoreAdapter {
	return &sessionStoreAdapter{repo: repo}
}

func (a *sessionStoreAdapter) CreateSession(ctx context.Context, session application.Session) (application.Session, error) {
	if err := a.repo.CreateSession(ctx, toPersistenceSession(session)); err != nil {
		return application.Session{}, err
	}
	return session, nil
}

func (a *sessionStoreAdapter) GetSessionByToken(ctx context.Context, token string) (application.Session, error) {
	stored, err := a.repo.GetSessionByToken(ctx, token)
	if err != nil {
		return application.Session{}, err
	}
	return toApplicationSession(stored), nil
}

func (a *sessionStoreAdapter) RevokeSession(ctx context.Context, id string, revokedAt time.Time) error {
	return a.repo.RevokeSession(ctx, id, revokedAt)
}

func (a *sessionStoreAdapter) DeleteExpiredSessions(ctx context.Context, before time.Time) (int64, error) {
	return a.repo.DeleteExpiredSessions(ctx, before)
}

func toApplicationMeeting(model persistence.Meeting) application.Meeting {
	return application.Meeting{
		ID:           model.ID,
		Creator:      model.Creator,
		RoomName:     model.RoomName,
		Start:        model.Start,
		End:          model.End,
		Repeat:       recurrence.Normalize(model.Repeat),
		Participants: append([]string(nil), model.Participants...),
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}
}

func toPersistenceMeeting(meeting application.Meeting) persistence.Meeting {
	return persistence.Meeting{
		ID:           meeting.ID,
		Creator:      meeting.Creator,
		RoomName:     meeting.RoomName,
		Start:        meeting.Start,
		End:          meeting.End,
		Repeat:       string(meeting.Repeat),
		Participants: append([]string(nil), meeting.Participants...),
		CreatedAt:    meeting.CreatedAt,
		UpdatedAt:    meeting.UpdatedAt,
	}
}

func toApplicationRoom(model persistence.Room) (application.Room, error) {
	opens, err := scheduler.ParseTimeOfDay(model.OpensAt)
	if err != nil {
		return application.Room{}, fmt.Errorf("stored opening time for room %q: %w", model.Name, err)
	}
	closes, err := scheduler.ParseTimeOfDay(model.ClosesAt)
	if err != nil {
		return application.Room{}, fmt.Errorf("stored closing time for room %q: %w", model.Name, err)
	}
	return application.Room{
		Name:      model.Name,
		OpensAt:   opens,
		ClosesAt:  closes,
		Capacity:  model.Capacity,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}, nil
}

func toPersistenceRoom(room application.Room) persistence.Room {
	return persistence.Room{
		Name:      room.Name,
		OpensAt:   room.OpensAt.String(),
		ClosesAt:  room.ClosesAt.String(),
		Capacity:  room.Capacity,
		CreatedAt: room.CreatedAt,
		UpdatedAt: room.UpdatedAt,
	}
}

func toApplicationUser(model persistence.User) application.User {
	return application.User{
		ID:          model.ID,
		Username:    model.Username,
		DisplayName: model.DisplayName,
		IsAdmin:     model.IsAdmin,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

func toPersistenceUser(user application.User, passwordHash string) persistence.User {
	return persistence.User{
		ID:           user.ID,
		Username:     user.Username,
		DisplayName:  user.DisplayName,
		PasswordHash: passwordHash,
		IsAdmin:      user.IsAdmin,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}
}

func toApplicationSession(model persistence.Session) application.Session {
	return application.Session{
		ID:        model.ID,
		UserID:    model.UserID,
		Token:     model.Token,
		ExpiresAt: model.ExpiresAt,
		CreatedAt: model.CreatedAt,
		RevokedAt: cloneTime(model.RevokedAt),
	}
}

func toPersistenceSession(session application.Session) persistence.Session {
	return persistence.Session{
		ID:        session.ID,
		UserID:    session.UserID,
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		CreatedAt: session.CreatedAt,
		RevokedAt: cloneTime(session.RevokedAt),
	}
}

func cloneTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}
