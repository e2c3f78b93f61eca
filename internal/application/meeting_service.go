package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/example/meeting-scheduler/internal/persistence"
	"github.com/example/meeting-scheduler/internal/recurrence"
	"github.com/example/meeting-scheduler/internal/scheduler"
)

// conflictScanLimit bounds the number of meetings loaded concurrently while
// scanning attendee indexes for overlaps.
const conflictScanLimit = 4

// MeetingStore captures the persistence interactions needed by the service.
type MeetingStore interface {
	CreateMeeting(ctx context.Context, meeting Meeting) (Meeting, error)
	GetMeeting(ctx context.Context, id string) (Meeting, error)
	UpdateMeeting(ctx context.Context, meeting Meeting) (Meeting, error)
	DeleteMeeting(ctx context.Context, id string) error
}

// UserIndexStore exposes user existence checks and per-user meeting indexes.
type UserIndexStore interface {
	MissingUsernames(ctx context.Context, usernames []string) ([]string, error)
	GetMeetingIndex(ctx context.Context, username string) (MeetingIndex, error)
	ReplaceMeetingIndex(ctx context.Context, username string, index MeetingIndex) error
}

// RoomCatalog exposes room lookup operations.
type RoomCatalog interface {
	GetRoom(ctx context.Context, name string) (Room, error)
}

// MeetingService orchestrates validation, conflict detection, and persistence
// for meeting operations. Index mutations are computed up front and applied
// only after every check has passed.
type MeetingService struct {
	meetings    MeetingStore
	users       UserIndexStore
	rooms       RoomCatalog
	locks       *keyedLocks
	cache       *listCache
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewMeetingService wires dependencies for meeting operations.
func NewMeetingService(meetings MeetingStore, users UserIndexStore, rooms RoomCatalog, idGenerator func() string, now func() time.Time) *MeetingService {
	return NewMeetingServiceWithLogger(meetings, users, rooms, idGenerator, now, nil)
}

// NewMeetingServiceWithLogger constructs a meeting service with a specified logger.
func NewMeetingServiceWithLogger(meetings MeetingStore, users UserIndexStore, rooms RoomCatalog, idGenerator func() string, now func() time.Time, logger *slog.Logger) *MeetingService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &MeetingService{
		meetings:    meetings,
		users:       users,
		rooms:       rooms,
		locks:       newKeyedLocks(),
		cache:       newListCache(30*time.Second, 128, now),
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *MeetingService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "MeetingService", operation, attrs...)
}

// CreateMeeting validates the request, scans attendee indexes for overlaps,
// and persists the meeting together with the index updates.
func (s *MeetingService) CreateMeeting(ctx context.Context, params CreateMeetingParams) (meeting Meeting, err error) {
	if s == nil {
		err = fmt.Errorf("MeetingService is nil")
		return
	}
	if s.meetings == nil || s.users == nil {
		err = fmt.Errorf("meeting stores not configured")
		return
	}

	logger := s.loggerWith(ctx, "CreateMeeting",
		"principal", params.Principal.Username,
		"room", params.Input.RoomName,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create meeting", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("meeting_id", meeting.ID).InfoContext(ctx, "meeting created")
	}()

	if params.Principal.Username == "" {
		err = ErrUnauthorized
		return
	}

	input := params.Input
	input.Participants = trimStrings(input.Participants)

	candidate := Meeting{
		Creator:      params.Principal.Username,
		RoomName:     strings.TrimSpace(input.RoomName),
		Start:        input.Start,
		End:          input.End,
		Repeat:       recurrence.Normalize(input.Repeat),
		Participants: input.Participants,
	}

	if err = s.validateMeeting(ctx, candidate); err != nil {
		return
	}

	release := s.locks.Acquire(lockKeys(candidate)...)
	defer release()

	if err = s.scanForConflicts(ctx, candidate, ""); err != nil {
		return
	}

	createdAt := s.now()
	candidate.ID = s.idGenerator()
	candidate.CreatedAt = createdAt
	candidate.UpdatedAt = createdAt

	// Compute every index rewrite before touching persistence so a failed
	// check leaves no partial state behind.
	updates, err := s.indexAdditions(ctx, candidate)
	if err != nil {
		return
	}

	meeting, err = s.meetings.CreateMeeting(ctx, candidate)
	if err != nil {
		err = mapMeetingStoreError(err)
		return
	}

	if err = s.applyIndexUpdates(ctx, updates); err != nil {
		return
	}

	s.cache.Invalidate()
	return
}

// UpdateMeeting applies a partial update after re-running the full validation
// and overlap scan against the patched meeting.
func (s *MeetingService) UpdateMeeting(ctx context.Context, params UpdateMeetingParams) (meeting Meeting, err error) {
	if s == nil {
		err = fmt.Errorf("MeetingService is nil")
		return
	}
	if s.meetings == nil || s.users == nil {
		err = fmt.Errorf("meeting stores not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateMeeting",
		"principal", params.Principal.Username,
		"meeting_id", params.MeetingID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update meeting", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "meeting updated")
	}()

	var existing Meeting
	existing, err = s.meetings.GetMeeting(ctx, params.MeetingID)
	if err != nil {
		err = mapMeetingStoreError(err)
		return
	}

	if existing.Creator != params.Principal.Username && !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	updated := existing
	updated.Participants = append([]string(nil), existing.Participants...)
	patch := params.Patch
	if patch.RoomName != nil {
		updated.RoomName = strings.TrimSpace(*patch.RoomName)
	}
	if patch.Start != nil {
		updated.Start = *patch.Start
	}
	if patch.End != nil {
		updated.End = *patch.End
	}
	if patch.Repeat != nil {
		updated.Repeat = recurrence.Normalize(*patch.Repeat)
	}
	added := trimStrings(patch.AddParticipants)
	updated.Participants = append(updated.Participants, added...)

	if err = s.validateMeeting(ctx, updated); err != nil {
		return
	}

	keys := append(lockKeys(existing), lockKeys(updated)...)
	release := s.locks.Acquire(keys...)
	defer release()

	if err = s.scanForConflicts(ctx, updated, existing.ID); err != nil {
		return
	}

	updated.UpdatedAt = s.now()

	updates, err := s.indexMoves(ctx, existing, updated, added)
	if err != nil {
		return
	}

	meeting, err = s.meetings.UpdateMeeting(ctx, updated)
	if err != nil {
		err = mapMeetingStoreError(err)
		return
	}

	if err = s.applyIndexUpdates(ctx, updates); err != nil {
		return
	}

	s.cache.Invalidate()
	return
}

// DeleteMeeting removes the meeting and unfiles it from every attendee's
// index, returning the removed record.
func (s *MeetingService) DeleteMeeting(ctx context.Context, principal Principal, meetingID string) (Meeting, error) {
	if s == nil {
		return Meeting{}, fmt.Errorf("MeetingService is nil")
	}
	if s.meetings == nil || s.users == nil {
		return Meeting{}, fmt.Errorf("meeting stores not configured")
	}

	logger := s.loggerWith(ctx, "DeleteMeeting",
		"principal", principal.Username,
		"meeting_id", meetingID,
	)

	existing, err := s.meetings.GetMeeting(ctx, meetingID)
	if err != nil {
		err = mapMeetingStoreError(err)
		logger.ErrorContext(ctx, "failed to delete meeting", "error", err, "error_kind", ErrorKind(err))
		return Meeting{}, err
	}

	if existing.Creator != principal.Username && !principal.IsAdmin {
		logger.ErrorContext(ctx, "failed to delete meeting", "error", ErrUnauthorized, "error_kind", ErrorKind(ErrUnauthorized))
		return Meeting{}, ErrUnauthorized
	}

	release := s.locks.Acquire(lockKeys(existing)...)
	defer release()

	updates, err := s.indexRemovals(ctx, existing)
	if err != nil {
		logger.ErrorContext(ctx, "failed to delete meeting", "error", err, "error_kind", ErrorKind(err))
		return Meeting{}, err
	}

	if err := s.meetings.DeleteMeeting(ctx, meetingID); err != nil {
		err = mapMeetingStoreError(err)
		logger.ErrorContext(ctx, "failed to delete meeting", "error", err, "error_kind", ErrorKind(err))
		return Meeting{}, err
	}

	if err := s.applyIndexUpdates(ctx, updates); err != nil {
		logger.ErrorContext(ctx, "failed to delete meeting", "error", err, "error_kind", ErrorKind(err))
		return Meeting{}, err
	}

	s.cache.Invalidate()
	logger.InfoContext(ctx, "meeting deleted")
	return existing, nil
}

// AnswerMeeting records the principal's reply to an invitation.
func (s *MeetingService) AnswerMeeting(ctx context.Context, params AnswerMeetingParams) (err error) {
	if s == nil {
		return fmt.Errorf("MeetingService is nil")
	}
	if s.meetings == nil || s.users == nil {
		return fmt.Errorf("meeting stores not configured")
	}

	logger := s.loggerWith(ctx, "AnswerMeeting",
		"principal", params.Principal.Username,
		"meeting_id", params.MeetingID,
		"answer", string(params.Answer),
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to answer meeting", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "meeting answered")
	}()

	switch params.Answer {
	case AnswerYes, AnswerNo, AnswerPending:
	default:
		vErr := &ValidationError{}
		vErr.add("answer", "answer must be yes, no, or pending")
		err = vErr
		return
	}

	var meeting Meeting
	meeting, err = s.meetings.GetMeeting(ctx, params.MeetingID)
	if err != nil {
		err = mapMeetingStoreError(err)
		return
	}

	username := params.Principal.Username
	if !containsString(meeting.Attendees(), username) {
		err = ErrUnauthorized
		return
	}

	release := s.locks.Acquire("user:" + username)
	defer release()

	index, err := s.users.GetMeetingIndex(ctx, username)
	if err != nil {
		err = mapMeetingStoreError(err)
		return
	}

	next := index.Clone()
	if !next.setAnswer(meeting.BucketKey(), meeting.ID, params.Answer) {
		err = ErrNotFound
		return
	}

	if err = s.users.ReplaceMeetingIndex(ctx, username, next); err != nil {
		err = mapMeetingStoreError(err)
		return
	}

	s.cache.Invalidate()
	return
}

// ListMeetingsForUser returns the meetings filed in the named user's index,
// optionally narrowed by period and answer.
func (s *MeetingService) ListMeetingsForUser(ctx context.Context, params ListMeetingsParams) (meetings []MeetingWithAnswer, err error) {
	if s == nil {
		err = fmt.Errorf("MeetingService is nil")
		return
	}
	if s.meetings == nil || s.users == nil {
		err = fmt.Errorf("meeting stores not configured")
		return
	}

	logger := s.loggerWith(ctx, "ListMeetingsForUser",
		"principal", params.Principal.Username,
		"username", params.Username,
		"period", string(params.Period),
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list meetings", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("result_count", len(meetings)).InfoContext(ctx, "meetings listed")
	}()

	if params.Username == "" {
		params.Username = params.Principal.Username
	}
	if params.Username != params.Principal.Username && !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	switch params.Period {
	case ListPeriodAll, ListPeriodToday, ListPeriodPast, ListPeriodFuture:
	default:
		vErr := &ValidationError{}
		vErr.add("period", "period must be today, past, or future")
		err = vErr
		return
	}

	today := scheduler.StartOfDay(s.now())
	cacheKey := buildListCacheKey(params, today)
	if cached, ok := s.cache.Get(cacheKey); ok {
		meetings = cached
		return
	}

	index, err := s.users.GetMeetingIndex(ctx, params.Username)
	if err != nil {
		err = mapMeetingStoreError(err)
		return
	}

	filters := listFilters(params, today)

	result := make([]MeetingWithAnswer, 0)
	for _, refs := range index {
		for _, ref := range refs {
			var meeting Meeting
			meeting, err = s.meetings.GetMeeting(ctx, ref.MeetingID)
			if err != nil {
				if errors.Is(err, persistence.ErrNotFound) || errors.Is(err, ErrNotFound) {
					// Stale index entry; skip rather than fail the listing.
					err = nil
					continue
				}
				err = mapMeetingStoreError(err)
				return
			}
			entry := MeetingWithAnswer{Meeting: meeting, Answer: ref.Answered}
			if meeting.Creator == params.Username {
				entry.Answer = AnswerYes
			}
			if matchesAll(entry, filters) {
				result = append(result, entry)
			}
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Meeting.Start.Equal(result[j].Meeting.Start) {
			return result[i].Meeting.ID < result[j].Meeting.ID
		}
		return result[i].Meeting.Start.Before(result[j].Meeting.Start)
	})

	s.cache.Store(cacheKey, result)
	meetings = result
	return
}

// listFilters builds the predicate set for a listing request.
func listFilters(params ListMeetingsParams, today time.Time) []func(MeetingWithAnswer) bool {
	var filters []func(MeetingWithAnswer) bool

	switch params.Period {
	case ListPeriodToday:
		filters = append(filters, func(entry MeetingWithAnswer) bool {
			return recurrence.OccursOn(entry.Meeting.Repeat, entry.Meeting.Start, today)
		})
	case ListPeriodPast:
		filters = append(filters, func(entry MeetingWithAnswer) bool {
			return entry.Meeting.End.Before(today)
		})
	case ListPeriodFuture:
		tomorrow := today.AddDate(0, 0, 1)
		filters = append(filters, func(entry MeetingWithAnswer) bool {
			return !entry.Meeting.Start.Before(tomorrow)
		})
	}

	if params.Answer != nil {
		want := *params.Answer
		filters = append(filters, func(entry MeetingWithAnswer) bool {
			return entry.Answer == want
		})
	}

	return filters
}

func matchesAll(entry MeetingWithAnswer, filters []func(MeetingWithAnswer) bool) bool {
	for _, filter := range filters {
		if !filter(entry) {
			return false
		}
	}
	return true
}

// validateMeeting runs the ordered checks shared by create and update. After
// the field-presence guards, the check order is: room existence, capacity,
// chronological times, same calendar day, availability window, duplicate
// participants, creator in participants, participant existence. The first
// failure wins.
func (s *MeetingService) validateMeeting(ctx context.Context, candidate Meeting) error {
	vErr := &ValidationError{}

	if candidate.RoomName == "" {
		vErr.add("room", "room is required")
	}
	if candidate.Start.IsZero() {
		vErr.add("start", "start is required")
	}
	if candidate.End.IsZero() {
		vErr.add("end", "end is required")
	}
	if !candidate.Repeat.Valid() {
		vErr.add("repeat", "repeat must be daily, weekly, or monthly")
	}
	if vErr.HasErrors() {
		return vErr
	}

	var room Room
	haveRoom := false
	if s.rooms != nil {
		var err error
		room, err = s.rooms.GetRoom(ctx, candidate.RoomName)
		if err != nil {
			if errors.Is(err, persistence.ErrNotFound) || errors.Is(err, ErrNotFound) {
				inner := &ValidationError{}
				inner.add("room", "room does not exist")
				return inner
			}
			return err
		}
		haveRoom = true

		if 1+len(candidate.Participants) > room.Capacity {
			return &ConflictError{Reason: ConflictRoomCapacity}
		}
	}

	if !candidate.Start.Before(candidate.End) {
		inner := &ValidationError{}
		inner.add("time", "start must be before end")
		return inner
	}
	if !scheduler.SameCalendarDay(candidate.Start, candidate.End) {
		inner := &ValidationError{}
		inner.add("time", "meeting must start and end on the same day")
		return inner
	}

	if haveRoom {
		opens, closes := scheduler.RoomInterval(room.OpensAt, room.ClosesAt, candidate.Start)
		if !scheduler.IntervalContains(opens, closes, candidate.Start, candidate.End) {
			return &ConflictError{Reason: ConflictOutsideRoomHours}
		}
	}

	seen := make(map[string]struct{}, len(candidate.Participants))
	for _, participant := range candidate.Participants {
		if _, ok := seen[participant]; ok {
			return &ConflictError{Reason: ConflictDuplicateParticipant, Username: participant}
		}
		seen[participant] = struct{}{}
	}
	for _, participant := range candidate.Participants {
		if participant == candidate.Creator {
			return &ConflictError{Reason: ConflictCreatorAsParticipant, Username: participant}
		}
	}

	missing, err := s.users.MissingUsernames(ctx, candidate.Attendees())
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		inner := &ValidationError{}
		inner.add("participants", fmt.Sprintf("unknown usernames: %s", strings.Join(missing, ", ")))
		return inner
	}

	return nil
}

// scanForConflicts checks every attendee's index for an existing meeting that
// overlaps the candidate. Meeting loads fan out under a bounded semaphore; the
// scan stops at the first conflict found.
func (s *MeetingService) scanForConflicts(ctx context.Context, candidate Meeting, exceptID string) error {
	schedCandidate := toSchedulerMeeting(candidate)

	type probe struct {
		username  string
		meetingID string
	}

	var probes []probe
	seen := make(map[string]struct{})
	for _, username := range candidate.Attendees() {
		index, err := s.users.GetMeetingIndex(ctx, username)
		if err != nil {
			return mapMeetingStoreError(err)
		}
		for _, key := range scanBuckets(candidate, index) {
			for _, ref := range index.Bucket(key) {
				if ref.MeetingID == exceptID {
					continue
				}
				dedupeKey := username + "|" + ref.MeetingID
				if _, ok := seen[dedupeKey]; ok {
					continue
				}
				seen[dedupeKey] = struct{}{}
				probes = append(probes, probe{username: username, meetingID: ref.MeetingID})
			}
		}
	}

	if len(probes) == 0 {
		return nil
	}

	scanCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	sem := make(chan struct{}, conflictScanLimit)

	record := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
			cancel()
		}
		mu.Unlock()
	}

	for _, p := range probes {
		if scanCtx.Err() != nil {
			break
		}
		sem <- struct{}{}
		wg.Add(1)
		go func(p probe) {
			defer wg.Done()
			defer func() { <-sem }()
			if scanCtx.Err() != nil {
				return
			}
			existing, err := s.meetings.GetMeeting(scanCtx, p.meetingID)
			if err != nil {
				if errors.Is(err, persistence.ErrNotFound) || errors.Is(err, ErrNotFound) {
					return
				}
				if scanCtx.Err() != nil {
					return
				}
				record(mapMeetingStoreError(err))
				return
			}
			if scheduler.Conflicts(schedCandidate, toSchedulerMeeting(existing)) {
				record(&ConflictError{
					Reason:    ConflictScheduleOverlap,
					MeetingID: existing.ID,
					Username:  p.username,
				})
			}
		}(p)
	}
	wg.Wait()

	return firstErr
}

// scanBuckets returns the index buckets that could hold a conflicting meeting.
// A dated candidate only needs its own date bucket plus the repeating buckets;
// a repeating candidate can collide with any bucket.
func scanBuckets(candidate Meeting, index MeetingIndex) []string {
	if candidate.Repeat.Repeats() {
		keys := make([]string, 0, len(index))
		for key := range index {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		return keys
	}
	return []string{
		candidate.BucketKey(),
		string(recurrence.KindDaily),
		string(recurrence.KindWeekly),
		string(recurrence.KindMonthly),
	}
}

// indexUpdate is a pending rewrite of one user's meeting index.
type indexUpdate struct {
	username string
	index    MeetingIndex
}

func (s *MeetingService) indexAdditions(ctx context.Context, meeting Meeting) ([]indexUpdate, error) {
	key := meeting.BucketKey()
	updates := make([]indexUpdate, 0, len(meeting.Participants)+1)
	for _, username := range meeting.Attendees() {
		index, err := s.users.GetMeetingIndex(ctx, username)
		if err != nil {
			return nil, mapMeetingStoreError(err)
		}
		next := index.Clone()
		answer := AnswerPending
		if username == meeting.Creator {
			answer = AnswerYes
		}
		next.add(key, meeting.ID, answer)
		updates = append(updates, indexUpdate{username: username, index: next})
	}
	return updates, nil
}

func (s *MeetingService) indexRemovals(ctx context.Context, meeting Meeting) ([]indexUpdate, error) {
	key := meeting.BucketKey()
	updates := make([]indexUpdate, 0, len(meeting.Participants)+1)
	for _, username := range meeting.Attendees() {
		index, err := s.users.GetMeetingIndex(ctx, username)
		if err != nil {
			return nil, mapMeetingStoreError(err)
		}
		next := index.Clone()
		next.remove(key, meeting.ID)
		updates = append(updates, indexUpdate{username: username, index: next})
	}
	return updates, nil
}

// indexMoves refiles the meeting under its new bucket key for every existing
// attendee, preserving recorded answers, and files it fresh for newly added
// participants.
func (s *MeetingService) indexMoves(ctx context.Context, before, after Meeting, added []string) ([]indexUpdate, error) {
	oldKey := before.BucketKey()
	newKey := after.BucketKey()
	addedSet := make(map[string]struct{}, len(added))
	for _, username := range added {
		addedSet[username] = struct{}{}
	}

	updates := make([]indexUpdate, 0, len(after.Participants)+1)
	for _, username := range after.Attendees() {
		index, err := s.users.GetMeetingIndex(ctx, username)
		if err != nil {
			return nil, mapMeetingStoreError(err)
		}
		next := index.Clone()
		if _, isNew := addedSet[username]; isNew {
			next.add(newKey, after.ID, AnswerPending)
		} else {
			answer, ok := next.remove(oldKey, before.ID)
			if !ok {
				answer = AnswerPending
			}
			if username == after.Creator {
				answer = AnswerYes
			}
			next.add(newKey, after.ID, answer)
		}
		updates = append(updates, indexUpdate{username: username, index: next})
	}
	return updates, nil
}

func (s *MeetingService) applyIndexUpdates(ctx context.Context, updates []indexUpdate) error {
	for _, update := range updates {
		if err := s.users.ReplaceMeetingIndex(ctx, update.username, update.index); err != nil {
			return mapMeetingStoreError(err)
		}
	}
	return nil
}

// lockKeys returns the advisory lock keys for a meeting: its room plus every
// attendee.
func lockKeys(meeting Meeting) []string {
	keys := make([]string, 0, len(meeting.Participants)+2)
	keys = append(keys, "room:"+meeting.RoomName)
	for _, username := range meeting.Attendees() {
		keys = append(keys, "user:"+username)
	}
	return keys
}

func toSchedulerMeeting(meeting Meeting) scheduler.Meeting {
	return scheduler.Meeting{
		ID:     meeting.ID,
		Start:  meeting.Start,
		End:    meeting.End,
		Repeat: meeting.Repeat,
	}
}

func trimStrings(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}

func containsString(values []string, target string) bool {
	for _, value := range values {
		if value == target {
			return true
		}
	}
	return false
}

func mapMeetingStoreError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrDuplicate) {
		return ErrAlreadyExists
	}
	if errors.Is(err, persistence.ErrConstraintViolation) {
		vErr := &ValidationError{}
		vErr.add("time", "start must be before end")
		return vErr
	}
	if errors.Is(err, persistence.ErrForeignKeyViolation) {
		vErr := &ValidationError{}
		vErr.add("participants", "related records are missing")
		return vErr
	}
	return err
}
