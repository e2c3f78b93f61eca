package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/example/meeting-scheduler/internal/scheduler"
)

// meetingStoresStub backs MeetingStore, UserIndexStore, and RoomCatalog with
// in-memory maps.
type meetingStoresStub struct {
	mu       sync.Mutex
	meetings map[string]Meeting
	indexes  map[string]MeetingIndex
	rooms    map[string]Room
	known    map[string]struct{}
}

func newMeetingStoresStub() *meetingStoresStub {
	return &meetingStoresStub{
		meetings: make(map[string]Meeting),
		indexes:  make(map[string]MeetingIndex),
		rooms:    make(map[string]Room),
		known:    make(map[string]struct{}),
	}
}

func (s *meetingStoresStub) addUser(username string) {
	s.known[username] = struct{}{}
	s.indexes[username] = MeetingIndex{}
}

func (s *meetingStoresStub) addRoom(t *testing.T, name, opens, closes string, capacity int) {
	t.Helper()
	opensAt, err := scheduler.ParseTimeOfDay(opens)
	if err != nil {
		t.Fatalf("parse opens: %v", err)
	}
	closesAt, err := scheduler.ParseTimeOfDay(closes)
	if err != nil {
		t.Fatalf("parse closes: %v", err)
	}
	s.rooms[name] = Room{Name: name, OpensAt: opensAt, ClosesAt: closesAt, Capacity: capacity}
}

func (s *meetingStoresStub) CreateMeeting(ctx context.Context, meeting Meeting) (Meeting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.meetings[meeting.ID] = meeting
	return meeting, nil
}

func (s *meetingStoresStub) GetMeeting(ctx context.Context, id string) (Meeting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	meeting, ok := s.meetings[id]
	if !ok {
		return Meeting{}, ErrNotFound
	}
	return meeting, nil
}

func (s *meetingStoresStub) UpdateMeeting(ctx context.Context, meeting Meeting) (Meeting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.meetings[meeting.ID]; !ok {
		return Meeting{}, ErrNotFound
	}
	s.meetings[meeting.ID] = meeting
	return meeting, nil
}

func (s *meetingStoresStub) DeleteMeeting(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.meetings[id]; !ok {
		return ErrNotFound
	}
	delete(s.meetings, id)
	return nil
}

func (s *meetingStoresStub) MissingUsernames(ctx context.Context, usernames []string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var missing []string
	for _, username := range usernames {
		if _, ok := s.known[username]; !ok {
			missing = append(missing, username)
		}
	}
	return missing, nil
}

func (s *meetingStoresStub) GetMeetingIndex(ctx context.Context, username string) (MeetingIndex, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	index, ok := s.indexes[username]
	if !ok {
		return MeetingIndex{}, nil
	}
	return index.Clone(), nil
}

func (s *meetingStoresStub) ReplaceMeetingIndex(ctx context.Context, username string, index MeetingIndex) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.indexes[username] = index.Clone()
	return nil
}

func (s *meetingStoresStub) GetRoom(ctx context.Context, name string) (Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[name]
	if !ok {
		return Room{}, ErrNotFound
	}
	return room, nil
}

func fixedID(ids ...string) func() string {
	i := 0
	return func() string {
		if i >= len(ids) {
			return "overflow"
		}
		id := ids[i]
		i++
		return id
	}
}

func at(t *testing.T, day, hour, minute int) time.Time {
	t.Helper()
	return time.Date(2024, 6, day, hour, minute, 0, 0, time.UTC)
}

func newTestMeetingService(stub *meetingStoresStub, ids ...string) *MeetingService {
	now := func() time.Time { return time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC) }
	return NewMeetingService(stub, stub, stub, fixedID(ids...), now)
}

func TestMeetingService_CreateMeeting_FilesIndexEntries(t *testing.T) {
	t.Parallel()

	stub := newMeetingStoresStub()
	stub.addUser("alice")
	stub.addUser("bob")
	stub.addRoom(t, "large", "08:00", "20:00", 10)
	svc := newTestMeetingService(stub, "meeting-1")

	meeting, err := svc.CreateMeeting(context.Background(), CreateMeetingParams{
		Principal: Principal{UserID: "u1", Username: "alice"},
		Input: MeetingInput{
			RoomName:     "large",
			Start:        at(t, 3, 10, 0),
			End:          at(t, 3, 11, 0),
			Participants: []string{"bob"},
		},
	})
	if err != nil {
		t.Fatalf("CreateMeeting returned error: %v", err)
	}
	if meeting.ID != "meeting-1" {
		t.Fatalf("unexpected meeting ID %q", meeting.ID)
	}

	key := meeting.BucketKey()
	if key != "03-06-2024" {
		t.Fatalf("unexpected bucket key %q", key)
	}

	creatorRefs := stub.indexes["alice"][key]
	if len(creatorRefs) != 1 || creatorRefs[0].Answered != AnswerYes {
		t.Fatalf("unexpected creator index entry: %+v", creatorRefs)
	}
	participantRefs := stub.indexes["bob"][key]
	if len(participantRefs) != 1 || participantRefs[0].Answered != AnswerPending {
		t.Fatalf("unexpected participant index entry: %+v", participantRefs)
	}
}

func TestMeetingService_CreateMeeting_ValidatesTemporalBounds(t *testing.T) {
	t.Parallel()

	stub := newMeetingStoresStub()
	stub.addUser("alice")
	stub.addRoom(t, "large", "08:00", "20:00", 10)
	svc := newTestMeetingService(stub, "meeting-1")

	_, err := svc.CreateMeeting(context.Background(), CreateMeetingParams{
		Principal: Principal{Username: "alice"},
		Input: MeetingInput{
			RoomName: "large",
			Start:    at(t, 3, 11, 0),
			End:      at(t, 3, 10, 0),
		},
	})

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, ok := vErr.FieldErrors["time"]; !ok {
		t.Fatalf("expected time validation error, got %v", vErr.FieldErrors)
	}
}

func TestMeetingService_CreateMeeting_ChecksRoomBeforeTimes(t *testing.T) {
	t.Parallel()

	stub := newMeetingStoresStub()
	stub.addUser("alice")
	svc := newTestMeetingService(stub, "meeting-1")

	// Both the room and the times are wrong; the room lookup runs first.
	_, err := svc.CreateMeeting(context.Background(), CreateMeetingParams{
		Principal: Principal{Username: "alice"},
		Input: MeetingInput{
			RoomName: "phantom",
			Start:    at(t, 3, 11, 0),
			End:      at(t, 3, 10, 0),
		},
	})

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, ok := vErr.FieldErrors["room"]; !ok {
		t.Fatalf("expected room validation error, got %v", vErr.FieldErrors)
	}
	if _, ok := vErr.FieldErrors["time"]; ok {
		t.Fatalf("time check must not run before the room lookup, got %v", vErr.FieldErrors)
	}
}

func TestMeetingService_CreateMeeting_ChecksDuplicatesBeforeCreator(t *testing.T) {
	t.Parallel()

	stub := newMeetingStoresStub()
	stub.addUser("alice")
	stub.addUser("bob")
	stub.addRoom(t, "large", "08:00", "20:00", 10)
	svc := newTestMeetingService(stub, "meeting-1")

	_, err := svc.CreateMeeting(context.Background(), CreateMeetingParams{
		Principal: Principal{Username: "alice"},
		Input: MeetingInput{
			RoomName:     "large",
			Start:        at(t, 3, 10, 0),
			End:          at(t, 3, 11, 0),
			Participants: []string{"bob", "bob", "alice"},
		},
	})

	var cErr *ConflictError
	if !errors.As(err, &cErr) || cErr.Reason != ConflictDuplicateParticipant {
		t.Fatalf("expected duplicate-participant conflict, got %v", err)
	}
}

func TestMeetingService_CreateMeeting_RejectsCreatorAsParticipant(t *testing.T) {
	t.Parallel()

	stub := newMeetingStoresStub()
	stub.addUser("alice")
	stub.addRoom(t, "large", "08:00", "20:00", 10)
	svc := newTestMeetingService(stub, "meeting-1")

	_, err := svc.CreateMeeting(context.Background(), CreateMeetingParams{
		Principal: Principal{Username: "alice"},
		Input: MeetingInput{
			RoomName:     "large",
			Start:        at(t, 3, 10, 0),
			End:          at(t, 3, 11, 0),
			Participants: []string{"alice"},
		},
	})

	var cErr *ConflictError
	if !errors.As(err, &cErr) || cErr.Reason != ConflictCreatorAsParticipant {
		t.Fatalf("expected creator-as-participant conflict, got %v", err)
	}
}

func TestMeetingService_CreateMeeting_RejectsDuplicateParticipant(t *testing.T) {
	t.Parallel()

	stub := newMeetingStoresStub()
	stub.addUser("alice")
	stub.addUser("bob")
	stub.addRoom(t, "large", "08:00", "20:00", 10)
	svc := newTestMeetingService(stub, "meeting-1")

	_, err := svc.CreateMeeting(context.Background(), CreateMeetingParams{
		Principal: Principal{Username: "alice"},
		Input: MeetingInput{
			RoomName:     "large",
			Start:        at(t, 3, 10, 0),
			End:          at(t, 3, 11, 0),
			Participants: []string{"bob", "bob"},
		},
	})

	var cErr *ConflictError
	if !errors.As(err, &cErr) || cErr.Reason != ConflictDuplicateParticipant {
		t.Fatalf("expected duplicate-participant conflict, got %v", err)
	}
}

func TestMeetingService_CreateMeeting_RejectsCapacityExceeded(t *testing.T) {
	t.Parallel()

	stub := newMeetingStoresStub()
	stub.addUser("alice")
	stub.addUser("bob")
	stub.addUser("carol")
	stub.addRoom(t, "small", "08:00", "20:00", 2)
	svc := newTestMeetingService(stub, "meeting-1")

	_, err := svc.CreateMeeting(context.Background(), CreateMeetingParams{
		Principal: Principal{Username: "alice"},
		Input: MeetingInput{
			RoomName:     "small",
			Start:        at(t, 3, 10, 0),
			End:          at(t, 3, 11, 0),
			Participants: []string{"bob", "carol"},
		},
	})

	var cErr *ConflictError
	if !errors.As(err, &cErr) || cErr.Reason != ConflictRoomCapacity {
		t.Fatalf("expected room-capacity conflict, got %v", err)
	}
}

func TestMeetingService_CreateMeeting_RejectsOutsideRoomHours(t *testing.T) {
	t.Parallel()

	stub := newMeetingStoresStub()
	stub.addUser("alice")
	stub.addRoom(t, "large", "09:00", "17:00", 10)
	svc := newTestMeetingService(stub, "meeting-1")

	_, err := svc.CreateMeeting(context.Background(), CreateMeetingParams{
		Principal: Principal{Username: "alice"},
		Input: MeetingInput{
			RoomName: "large",
			Start:    at(t, 3, 16, 30),
			End:      at(t, 3, 17, 30),
		},
	})

	var cErr *ConflictError
	if !errors.As(err, &cErr) || cErr.Reason != ConflictOutsideRoomHours {
		t.Fatalf("expected outside-room-hours conflict, got %v", err)
	}
}

func TestMeetingService_CreateMeeting_RejectsUnknownParticipants(t *testing.T) {
	t.Parallel()

	stub := newMeetingStoresStub()
	stub.addUser("alice")
	stub.addRoom(t, "large", "08:00", "20:00", 10)
	svc := newTestMeetingService(stub, "meeting-1")

	_, err := svc.CreateMeeting(context.Background(), CreateMeetingParams{
		Principal: Principal{Username: "alice"},
		Input: MeetingInput{
			RoomName:     "large",
			Start:        at(t, 3, 10, 0),
			End:          at(t, 3, 11, 0),
			Participants: []string{"ghost"},
		},
	})

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, ok := vErr.FieldErrors["participants"]; !ok {
		t.Fatalf("expected participants validation error, got %v", vErr.FieldErrors)
	}
}

func TestMeetingService_CreateMeeting_RejectsOverlapIncludingTouchingEndpoints(t *testing.T) {
	t.Parallel()

	stub := newMeetingStoresStub()
	stub.addUser("alice")
	stub.addUser("bob")
	stub.addRoom(t, "large", "08:00", "20:00", 10)
	svc := newTestMeetingService(stub, "meeting-1", "meeting-2")

	_, err := svc.CreateMeeting(context.Background(), CreateMeetingParams{
		Principal: Principal{Username: "alice"},
		Input: MeetingInput{
			RoomName:     "large",
			Start:        at(t, 3, 10, 0),
			End:          at(t, 3, 11, 0),
			Participants: []string{"bob"},
		},
	})
	if err != nil {
		t.Fatalf("seed meeting failed: %v", err)
	}

	// Starts exactly when the first one ends; closed intervals still collide.
	_, err = svc.CreateMeeting(context.Background(), CreateMeetingParams{
		Principal: Principal{Username: "bob"},
		Input: MeetingInput{
			RoomName: "large",
			Start:    at(t, 3, 11, 0),
			End:      at(t, 3, 12, 0),
		},
	})

	var cErr *ConflictError
	if !errors.As(err, &cErr) || cErr.Reason != ConflictScheduleOverlap {
		t.Fatalf("expected schedule-overlap conflict, got %v", err)
	}
	if cErr.MeetingID != "meeting-1" || cErr.Username != "bob" {
		t.Fatalf("unexpected conflict details: %+v", cErr)
	}
}

func TestMeetingService_CreateMeeting_SeriesNotBegunDoesNotConflict(t *testing.T) {
	t.Parallel()

	stub := newMeetingStoresStub()
	stub.addUser("alice")
	stub.addRoom(t, "large", "08:00", "20:00", 10)
	svc := newTestMeetingService(stub, "meeting-1", "meeting-2")

	// Dated meeting on June 10.
	_, err := svc.CreateMeeting(context.Background(), CreateMeetingParams{
		Principal: Principal{Username: "alice"},
		Input: MeetingInput{
			RoomName: "large",
			Start:    at(t, 10, 10, 0),
			End:      at(t, 10, 11, 0),
		},
	})
	if err != nil {
		t.Fatalf("seed meeting failed: %v", err)
	}

	// Daily series starting June 12 never reaches back to June 10.
	_, err = svc.CreateMeeting(context.Background(), CreateMeetingParams{
		Principal: Principal{Username: "alice"},
		Input: MeetingInput{
			RoomName: "large",
			Start:    at(t, 12, 10, 0),
			End:      at(t, 12, 11, 0),
			Repeat:   "daily",
		},
	})
	if err != nil {
		t.Fatalf("expected no conflict for series starting later, got %v", err)
	}
}

func TestMeetingService_CreateMeeting_DatedConflictsWithActiveSeries(t *testing.T) {
	t.Parallel()

	stub := newMeetingStoresStub()
	stub.addUser("alice")
	stub.addRoom(t, "large", "08:00", "20:00", 10)
	svc := newTestMeetingService(stub, "meeting-1", "meeting-2")

	// Weekly series anchored on Monday June 3.
	_, err := svc.CreateMeeting(context.Background(), CreateMeetingParams{
		Principal: Principal{Username: "alice"},
		Input: MeetingInput{
			RoomName: "large",
			Start:    at(t, 3, 10, 0),
			End:      at(t, 3, 11, 0),
			Repeat:   "weekly",
		},
	})
	if err != nil {
		t.Fatalf("seed series failed: %v", err)
	}

	// Monday June 10, same time of day.
	_, err = svc.CreateMeeting(context.Background(), CreateMeetingParams{
		Principal: Principal{Username: "alice"},
		Input: MeetingInput{
			RoomName: "large",
			Start:    at(t, 10, 10, 30),
			End:      at(t, 10, 11, 30),
		},
	})

	var cErr *ConflictError
	if !errors.As(err, &cErr) || cErr.Reason != ConflictScheduleOverlap {
		t.Fatalf("expected schedule-overlap conflict, got %v", err)
	}
}

func TestMeetingService_UpdateMeeting_MovesBucketAndPreservesAnswers(t *testing.T) {
	t.Parallel()

	stub := newMeetingStoresStub()
	stub.addUser("alice")
	stub.addUser("bob")
	stub.addUser("carol")
	stub.addRoom(t, "large", "08:00", "20:00", 10)
	svc := newTestMeetingService(stub, "meeting-1")

	_, err := svc.CreateMeeting(context.Background(), CreateMeetingParams{
		Principal: Principal{Username: "alice"},
		Input: MeetingInput{
			RoomName:     "large",
			Start:        at(t, 3, 10, 0),
			End:          at(t, 3, 11, 0),
			Participants: []string{"bob"},
		},
	})
	if err != nil {
		t.Fatalf("seed meeting failed: %v", err)
	}

	if err := svc.AnswerMeeting(context.Background(), AnswerMeetingParams{
		Principal: Principal{Username: "bob"},
		MeetingID: "meeting-1",
		Answer:    AnswerYes,
	}); err != nil {
		t.Fatalf("AnswerMeeting failed: %v", err)
	}

	repeat := "weekly"
	_, err = svc.UpdateMeeting(context.Background(), UpdateMeetingParams{
		Principal: Principal{Username: "alice"},
		MeetingID: "meeting-1",
		Patch: MeetingPatch{
			Repeat:          &repeat,
			AddParticipants: []string{"carol"},
		},
	})
	if err != nil {
		t.Fatalf("UpdateMeeting failed: %v", err)
	}

	if refs := stub.indexes["bob"]["03-06-2024"]; len(refs) != 0 {
		t.Fatalf("old bucket should be empty, got %+v", refs)
	}
	bobRefs := stub.indexes["bob"]["weekly"]
	if len(bobRefs) != 1 || bobRefs[0].Answered != AnswerYes {
		t.Fatalf("answer should survive the bucket move, got %+v", bobRefs)
	}
	carolRefs := stub.indexes["carol"]["weekly"]
	if len(carolRefs) != 1 || carolRefs[0].Answered != AnswerPending {
		t.Fatalf("new participant should be pending, got %+v", carolRefs)
	}
}

func TestMeetingService_UpdateMeeting_RequiresCreatorOrAdmin(t *testing.T) {
	t.Parallel()

	stub := newMeetingStoresStub()
	stub.addUser("alice")
	stub.addUser("bob")
	stub.addRoom(t, "large", "08:00", "20:00", 10)
	svc := newTestMeetingService(stub, "meeting-1")

	_, err := svc.CreateMeeting(context.Background(), CreateMeetingParams{
		Principal: Principal{Username: "alice"},
		Input: MeetingInput{
			RoomName: "large",
			Start:    at(t, 3, 10, 0),
			End:      at(t, 3, 11, 0),
		},
	})
	if err != nil {
		t.Fatalf("seed meeting failed: %v", err)
	}

	start := at(t, 3, 12, 0)
	_, err = svc.UpdateMeeting(context.Background(), UpdateMeetingParams{
		Principal: Principal{Username: "bob"},
		MeetingID: "meeting-1",
		Patch:     MeetingPatch{Start: &start},
	})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestMeetingService_DeleteMeeting_UnfilesIndexEntries(t *testing.T) {
	t.Parallel()

	stub := newMeetingStoresStub()
	stub.addUser("alice")
	stub.addUser("bob")
	stub.addRoom(t, "large", "08:00", "20:00", 10)
	svc := newTestMeetingService(stub, "meeting-1")

	_, err := svc.CreateMeeting(context.Background(), CreateMeetingParams{
		Principal: Principal{Username: "alice"},
		Input: MeetingInput{
			RoomName:     "large",
			Start:        at(t, 3, 10, 0),
			End:          at(t, 3, 11, 0),
			Participants: []string{"bob"},
		},
	})
	if err != nil {
		t.Fatalf("seed meeting failed: %v", err)
	}

	removed, err := svc.DeleteMeeting(context.Background(), Principal{Username: "alice"}, "meeting-1")
	if err != nil {
		t.Fatalf("DeleteMeeting failed: %v", err)
	}
	if removed.ID != "meeting-1" {
		t.Fatalf("expected removed meeting to be returned, got %+v", removed)
	}

	if len(stub.meetings) != 0 {
		t.Fatalf("meeting should be removed, got %d", len(stub.meetings))
	}
	if len(stub.indexes["alice"]) != 0 || len(stub.indexes["bob"]) != 0 {
		t.Fatalf("indexes should be empty, got alice=%+v bob=%+v", stub.indexes["alice"], stub.indexes["bob"])
	}
}

func TestMeetingService_AnswerMeeting_RejectsNonAttendee(t *testing.T) {
	t.Parallel()

	stub := newMeetingStoresStub()
	stub.addUser("alice")
	stub.addUser("mallory")
	stub.addRoom(t, "large", "08:00", "20:00", 10)
	svc := newTestMeetingService(stub, "meeting-1")

	_, err := svc.CreateMeeting(context.Background(), CreateMeetingParams{
		Principal: Principal{Username: "alice"},
		Input: MeetingInput{
			RoomName: "large",
			Start:    at(t, 3, 10, 0),
			End:      at(t, 3, 11, 0),
		},
	})
	if err != nil {
		t.Fatalf("seed meeting failed: %v", err)
	}

	err = svc.AnswerMeeting(context.Background(), AnswerMeetingParams{
		Principal: Principal{Username: "mallory"},
		MeetingID: "meeting-1",
		Answer:    AnswerYes,
	})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestMeetingService_ListMeetingsForUser_PeriodToday(t *testing.T) {
	t.Parallel()

	stub := newMeetingStoresStub()
	stub.addUser("alice")
	stub.addRoom(t, "large", "08:00", "20:00", 10)
	svc := newTestMeetingService(stub, "meeting-1", "meeting-2", "meeting-3")

	// now() is June 1 (a Saturday).
	if _, err := svc.CreateMeeting(context.Background(), CreateMeetingParams{
		Principal: Principal{Username: "alice"},
		Input: MeetingInput{
			RoomName: "large",
			Start:    at(t, 1, 9, 0),
			End:      at(t, 1, 10, 0),
		},
	}); err != nil {
		t.Fatalf("seed dated meeting failed: %v", err)
	}
	if _, err := svc.CreateMeeting(context.Background(), CreateMeetingParams{
		Principal: Principal{Username: "alice"},
		Input: MeetingInput{
			RoomName: "large",
			Start:    time.Date(2024, 5, 4, 11, 0, 0, 0, time.UTC),
			End:      time.Date(2024, 5, 4, 12, 0, 0, 0, time.UTC),
			Repeat:   "weekly",
		},
	}); err != nil {
		t.Fatalf("seed weekly meeting failed: %v", err)
	}
	if _, err := svc.CreateMeeting(context.Background(), CreateMeetingParams{
		Principal: Principal{Username: "alice"},
		Input: MeetingInput{
			RoomName: "large",
			Start:    at(t, 5, 9, 0),
			End:      at(t, 5, 10, 0),
		},
	}); err != nil {
		t.Fatalf("seed future meeting failed: %v", err)
	}

	meetings, err := svc.ListMeetingsForUser(context.Background(), ListMeetingsParams{
		Principal: Principal{Username: "alice"},
		Period:    ListPeriodToday,
	})
	if err != nil {
		t.Fatalf("ListMeetingsForUser failed: %v", err)
	}

	got := make(map[string]bool)
	for _, entry := range meetings {
		got[entry.Meeting.ID] = true
	}
	if len(meetings) != 2 || !got["meeting-1"] || !got["meeting-2"] {
		t.Fatalf("expected today's dated meeting and the Saturday weekly series, got %+v", got)
	}
}

func TestMeetingService_ListMeetingsForUser_StartedSeriesPeriods(t *testing.T) {
	t.Parallel()

	stub := newMeetingStoresStub()
	stub.addUser("alice")
	stub.addRoom(t, "large", "08:00", "20:00", 10)
	svc := newTestMeetingService(stub, "meeting-1")

	// Daily series whose start predates now() (June 1).
	if _, err := svc.CreateMeeting(context.Background(), CreateMeetingParams{
		Principal: Principal{Username: "alice"},
		Input: MeetingInput{
			RoomName: "large",
			Start:    time.Date(2024, 5, 20, 9, 0, 0, 0, time.UTC),
			End:      time.Date(2024, 5, 20, 10, 0, 0, 0, time.UTC),
			Repeat:   "daily",
		},
	}); err != nil {
		t.Fatalf("seed daily meeting failed: %v", err)
	}

	cases := []struct {
		period ListPeriod
		want   int
	}{
		{ListPeriodToday, 1},
		{ListPeriodPast, 1},
		{ListPeriodFuture, 0},
	}
	for _, tc := range cases {
		meetings, err := svc.ListMeetingsForUser(context.Background(), ListMeetingsParams{
			Principal: Principal{Username: "alice"},
			Period:    tc.period,
		})
		if err != nil {
			t.Fatalf("ListMeetingsForUser(%s) failed: %v", tc.period, err)
		}
		if len(meetings) != tc.want {
			t.Fatalf("period %s: expected %d meetings, got %+v", tc.period, tc.want, meetings)
		}
	}
}

func TestMeetingService_ListMeetingsForUser_AnswerFilter(t *testing.T) {
	t.Parallel()

	stub := newMeetingStoresStub()
	stub.addUser("alice")
	stub.addUser("bob")
	stub.addRoom(t, "large", "08:00", "20:00", 10)
	svc := newTestMeetingService(stub, "meeting-1")

	if _, err := svc.CreateMeeting(context.Background(), CreateMeetingParams{
		Principal: Principal{Username: "alice"},
		Input: MeetingInput{
			RoomName:     "large",
			Start:        at(t, 3, 10, 0),
			End:          at(t, 3, 11, 0),
			Participants: []string{"bob"},
		},
	}); err != nil {
		t.Fatalf("seed meeting failed: %v", err)
	}

	pending := AnswerPending
	meetings, err := svc.ListMeetingsForUser(context.Background(), ListMeetingsParams{
		Principal: Principal{Username: "bob"},
		Answer:    &pending,
	})
	if err != nil {
		t.Fatalf("ListMeetingsForUser failed: %v", err)
	}
	if len(meetings) != 1 || meetings[0].Answer != AnswerPending {
		t.Fatalf("expected one pending meeting, got %+v", meetings)
	}

	yes := AnswerYes
	meetings, err = svc.ListMeetingsForUser(context.Background(), ListMeetingsParams{
		Principal: Principal{Username: "bob"},
		Answer:    &yes,
	})
	if err != nil {
		t.Fatalf("ListMeetingsForUser failed: %v", err)
	}
	if len(meetings) != 0 {
		t.Fatalf("expected no accepted meetings, got %+v", meetings)
	}
}

func TestMeetingService_ListMeetingsForUser_RequiresSelfOrAdmin(t *testing.T) {
	t.Parallel()

	stub := newMeetingStoresStub()
	stub.addUser("alice")
	stub.addUser("bob")
	svc := newTestMeetingService(stub)

	_, err := svc.ListMeetingsForUser(context.Background(), ListMeetingsParams{
		Principal: Principal{Username: "bob"},
		Username:  "alice",
	})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	if _, err := svc.ListMeetingsForUser(context.Background(), ListMeetingsParams{
		Principal: Principal{Username: "bob", IsAdmin: true},
		Username:  "alice",
	}); err != nil {
		t.Fatalf("admin listing failed: %v", err)
	}
}
