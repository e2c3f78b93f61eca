package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/example/meeting-scheduler/internal/application"
)

var errInvalidAnswer = errors.New("無効な回答です。yes / no / pending のいずれかを指定してください。")

type meetingService interface {
	CreateMeeting(ctx context.Context, params application.CreateMeetingParams) (application.Meeting, error)
	UpdateMeeting(ctx context.Context, params application.UpdateMeetingParams) (application.Meeting, error)
	DeleteMeeting(ctx context.Context, principal application.Principal, meetingID string) (application.Meeting, error)
	AnswerMeeting(ctx context.Context, params application.AnswerMeetingParams) error
	ListMeetingsForUser(ctx context.Context, params application.ListMeetingsParams) ([]application.MeetingWithAnswer, error)
}

type MeetingHandler struct {
	service   meetingService
	responder responder
	logger    *slog.Logger
}

func NewMeetingHandler(service meetingService, logger *slog.Logger) *MeetingHandler {
	base := defaultLogger(logger)
	return &MeetingHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *MeetingHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "MeetingHandler", operation, attrs...)
}

func (h *MeetingHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req meetingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode meeting request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "principal_id", principal.UserID)

	meeting, err := h.service.CreateMeeting(r.Context(), application.CreateMeetingParams{
		Principal: principal,
		Input:     req.toInput(),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "meeting creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("meeting_id", meeting.ID).InfoContext(r.Context(), "meeting created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, meetingResponse{Meeting: toMeetingDTO(meeting)})
}

func (h *MeetingHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	meetingID, ok := MeetingIDFromContext(r.Context())
	if !ok || strings.TrimSpace(meetingID) == "" {
		h.log(r.Context(), "Update", "error_kind", "bad_request").ErrorContext(r.Context(), "missing meeting id for update")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidMeetingID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req meetingPatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "principal_id", principal.UserID, "meeting_id", meetingID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode meeting patch", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	patch, err := req.toPatch()
	if err != nil {
		h.log(r.Context(), "Update", "principal_id", principal.UserID, "meeting_id", meetingID, "error_kind", "bad_request").ErrorContext(r.Context(), "invalid meeting patch", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Update", "principal_id", principal.UserID, "meeting_id", meetingID)

	meeting, err := h.service.UpdateMeeting(r.Context(), application.UpdateMeetingParams{
		Principal: principal,
		MeetingID: meetingID,
		Patch:     patch,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "meeting update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "meeting updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, meetingResponse{Meeting: toMeetingDTO(meeting)})
}

func (h *MeetingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	meetingID, ok := MeetingIDFromContext(r.Context())
	if !ok || strings.TrimSpace(meetingID) == "" {
		h.log(r.Context(), "Delete", "error_kind", "bad_request").ErrorContext(r.Context(), "missing meeting id for delete")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidMeetingID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Delete", "principal_id", principal.UserID, "meeting_id", meetingID)
	if _, err := h.service.DeleteMeeting(r.Context(), principal, meetingID); err != nil {
		logger.ErrorContext(r.Context(), "meeting delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "meeting deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *MeetingHandler) Answer(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	meetingID, ok := MeetingIDFromContext(r.Context())
	if !ok || strings.TrimSpace(meetingID) == "" {
		h.log(r.Context(), "Answer", "error_kind", "bad_request").ErrorContext(r.Context(), "missing meeting id for answer")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidMeetingID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Answer", "principal_id", principal.UserID, "meeting_id", meetingID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode answer request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	answer, err := application.ParseAnswer(req.Answer)
	if err != nil {
		h.log(r.Context(), "Answer", "principal_id", principal.UserID, "meeting_id", meetingID, "error_kind", "bad_request").ErrorContext(r.Context(), "invalid answer literal", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidAnswer)
		return
	}

	logger := h.log(r.Context(), "Answer", "principal_id", principal.UserID, "meeting_id", meetingID, "answer", string(answer))

	if err := h.service.AnswerMeeting(r.Context(), application.AnswerMeetingParams{
		Principal: principal,
		MeetingID: meetingID,
		Answer:    answer,
	}); err != nil {
		logger.ErrorContext(r.Context(), "meeting answer failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "meeting answered")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *MeetingHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	params, err := buildListParams(r.URL.Query(), principal)
	if err != nil {
		h.log(r.Context(), "List", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "invalid list query", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	logger := h.log(r.Context(), "List", "principal_id", principal.UserID, "target_user", params.Username)

	meetings, err := h.service.ListMeetingsForUser(r.Context(), params)
	if err != nil {
		logger.ErrorContext(r.Context(), "meeting list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(meetings)).InfoContext(r.Context(), "meetings listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listMeetingsResponse{Meetings: toMeetingWithAnswerDTOs(meetings)})
}

func buildListParams(query url.Values, principal application.Principal) (application.ListMeetingsParams, error) {
	params := application.ListMeetingsParams{
		Principal: principal,
		Username:  strings.TrimSpace(strings.ToLower(query.Get("user"))),
		Period:    application.ListPeriod(strings.TrimSpace(strings.ToLower(query.Get("period")))),
	}
	if params.Username == "" {
		params.Username = principal.Username
	}

	if raw := strings.TrimSpace(query.Get("answer")); raw != "" {
		answer, err := application.ParseAnswer(raw)
		if err != nil {
			return application.ListMeetingsParams{}, errInvalidAnswer
		}
		params.Answer = &answer
	}

	return params, nil
}

type meetingRequest struct {
	RoomName     string   `json:"room_name"`
	Start        string   `json:"start"`
	End          string   `json:"end"`
	Repeat       string   `json:"repeat"`
	Participants []string `json:"participants"`
}

func (r meetingRequest) toInput() application.MeetingInput {
	return application.MeetingInput{
		RoomName:     strings.TrimSpace(r.RoomName),
		Start:        parseTime(r.Start),
		End:          parseTime(r.End),
		Repeat:       strings.TrimSpace(r.Repeat),
		Participants: append([]string(nil), r.Participants...),
	}
}

type meetingPatchRequest struct {
	RoomName        *string  `json:"room_name"`
	Start           *string  `json:"start"`
	End             *string  `json:"end"`
	Repeat          *string  `json:"repeat"`
	AddParticipants []string `json:"add_participants"`
}

func (r meetingPatchRequest) toPatch() (application.MeetingPatch, error) {
	patch := application.MeetingPatch{
		RoomName:        r.RoomName,
		Repeat:          r.Repeat,
		AddParticipants: append([]string(nil), r.AddParticipants...),
	}
	if r.Start != nil {
		ts := parseTime(*r.Start)
		if ts.IsZero() {
			return application.MeetingPatch{}, errors.New("invalid start timestamp")
		}
		patch.Start = &ts
	}
	if r.End != nil {
		ts := parseTime(*r.End)
		if ts.IsZero() {
			return application.MeetingPatch{}, errors.New("invalid end timestamp")
		}
		patch.End = &ts
	}
	return patch, nil
}

func parseTime(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	if ts, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return ts
	}
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return ts
	}
	return time.Time{}
}

type answerRequest struct {
	Answer string `json:"answer"`
}

type meetingResponse struct {
	Meeting meetingDTO `json:"meeting"`
}

type listMeetingsResponse struct {
	Meetings []meetingWithAnswerDTO `json:"meetings"`
}

type meetingDTO struct {
	ID           string   `json:"id"`
	Creator      string   `json:"creator"`
	RoomName     string   `json:"room_name"`
	Start        string   `json:"start"`
	End          string   `json:"end"`
	Repeat       string   `json:"repeat"`
	Participants []string `json:"participants"`
	CreatedAt    string   `json:"created_at"`
	UpdatedAt    string   `json:"updated_at"`
}

type meetingWithAnswerDTO struct {
	Meeting meetingDTO `json:"meeting"`
	Answer  string     `json:"answer"`
}

func toMeetingDTO(meeting application.Meeting) meetingDTO {
	return meetingDTO{
		ID:           meeting.ID,
		Creator:      meeting.Creator,
		RoomName:     meeting.RoomName,
		Start:        meeting.Start.UTC().Format(time.RFC3339Nano),
		End:          meeting.End.UTC().Format(time.RFC3339Nano),
		Repeat:       string(meeting.Repeat),
		Participants: append([]string(nil), meeting.Participants...),
		CreatedAt:    meeting.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:    meeting.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func toMeetingWithAnswerDTOs(meetings []application.MeetingWithAnswer) []meetingWithAnswerDTO {
	if len(meetings) == 0 {
		return nil
	}
	out := make([]meetingWithAnswerDTO, 0, len(meetings))
	for _, entry := range meetings {
		out = append(out, meetingWithAnswerDTO{
			Meeting: toMeetingDTO(entry.Meeting),
			Answer:  string(entry.Answer),
		})
	}
	return out
}
