package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/meeting-scheduler/internal/application"
)

var (
	errBadRequestBody      = errors.New("無効なリクエスト形式です。")
	errInvalidMeetingID    = errors.New("無効な会議 ID です。")
	errInvalidUserID       = errors.New("無効なユーザー ID です。")
	errInvalidRoomName     = errors.New("無効な会議室名です。")
	errMissingSessionToken = errors.New("認証トークンを指定してください")
)

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	if logger == nil {
		logger = slog.Default()
	}
	return responder{logger: logger}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	message := localizedStatusMessage(status)
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
		r.loggerFor(ctx).ErrorContext(ctx, "request failed", "status", status, "error", err)
	}

	r.writeJSON(ctx, w, status, errorResponse{Message: message})
}

func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		r.writeError(ctx, w, http.StatusInternalServerError, errors.New("unknown error"))
		return
	}

	switch {
	case errors.Is(err, application.ErrUnauthorized):
		r.writeJSON(ctx, w, http.StatusForbidden, errorResponse{
			ErrorCode: "AUTH_FORBIDDEN",
			Message:   "この操作を実行する権限がありません。",
		})
	case errors.Is(err, application.ErrNotFound):
		r.writeJSON(ctx, w, http.StatusNotFound, errorResponse{Message: "指定されたリソースが見つかりません。"})
	case errors.Is(err, application.ErrAlreadyExists):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{Message: "同じ識別子のリソースが既に存在します。"})
	case errors.Is(err, application.ErrInvalidCredentials):
		r.writeJSON(ctx, w, http.StatusUnauthorized, errorResponse{Message: "ユーザー名またはパスワードが正しくありません。"})
	case errors.Is(err, application.ErrSessionExpired):
		r.writeJSON(ctx, w, http.StatusUnauthorized, errorResponse{Message: "セッションの有効期限が切れています。再度ログインしてください。"})
	case errors.Is(err, application.ErrSessionRevoked):
		r.writeJSON(ctx, w, http.StatusUnauthorized, errorResponse{Message: "セッションは無効化されています。再度ログインしてください。"})
	default:
		var cErr *application.ConflictError
		if errors.As(err, &cErr) {
			r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
				ErrorCode: "BOOKING_CONFLICT",
				Message:   localizeConflictReason(cErr.Reason),
				Conflict:  toConflictDTO(cErr),
			})
			return
		}

		var vErr *application.ValidationError
		if errors.As(err, &vErr) {
			details := localizeValidationErrors(vErr)
			r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
				Message: "入力内容に誤りがあります。",
				Errors:  details,
			})
			return
		}

		r.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Message: "サーバー内部でエラーが発生しました。"})
	}
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

func localizedStatusMessage(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "リクエスト内容が正しくありません。"
	case http.StatusUnauthorized:
		return "認証が必要です。"
	case http.StatusForbidden:
		return "この操作を実行する権限がありません。"
	case http.StatusNotFound:
		return "指定されたリソースが見つかりません。"
	case http.StatusConflict:
		return "要求はリソースの現在の状態と競合しています。"
	case http.StatusUnprocessableEntity:
		return "入力内容に誤りがあります。"
	default:
		return "サーバー内部でエラーが発生しました。"
	}
}

func localizeConflictReason(reason application.ConflictReason) string {
	switch reason {
	case application.ConflictRoomCapacity:
		return "参加人数が会議室の収容人数を超えています。"
	case application.ConflictOutsideRoomHours:
		return "指定された時間帯は会議室の利用可能時間外です。"
	case application.ConflictDuplicateParticipant:
		return "参加者リストに重複があります。"
	case application.ConflictCreatorAsParticipant:
		return "作成者を参加者に含めることはできません。"
	case application.ConflictScheduleOverlap:
		return "指定された時間帯に既存の会議と重複しています。"
	case application.ConflictRoomInUse:
		return "この会議室を使用する会議が存在するため削除できません。"
	case application.ConflictUserInUse:
		return "このユーザーが参加する会議が存在するため削除できません。"
	default:
		return "要求はリソースの現在の状態と競合しています。"
	}
}

func localizeValidationErrors(vErr *application.ValidationError) map[string]string {
	if vErr == nil || len(vErr.FieldErrors) == 0 {
		return nil
	}

	translated := make(map[string]string, len(vErr.FieldErrors))
	for field, msg := range vErr.FieldErrors {
		translated[field] = translateValidationMessage(msg)
	}
	return translated
}

func translateValidationMessage(message string) string {
	switch message {
	case "username is required":
		return "ユーザー名は必須です。"
	case "username must be lowercase letters, digits, dots, dashes, or underscores":
		return "ユーザー名は小文字の英数字と . - _ のみ使用できます。"
	case "username cannot be changed":
		return "ユーザー名は変更できません。"
	case "display name is required":
		return "表示名は必須です。"
	case "password is required":
		return "パスワードは必須です。"
	case "password must be at least 8 characters":
		return "パスワードは 8 文字以上で指定してください。"
	case "name is required":
		return "会議室名は必須です。"
	case "room name cannot be changed":
		return "会議室名は変更できません。"
	case "capacity must be positive":
		return "収容人数は正の整数で指定してください。"
	case "must be a valid HH:mm time":
		return "時刻は HH:mm 形式で指定してください。"
	case "opening time must be before closing time":
		return "開室時刻は閉室時刻より前である必要があります。"
	case "room is required":
		return "会議室は必須です。"
	case "room does not exist":
		return "指定された会議室は存在しません。"
	case "start is required":
		return "開始日時は必須です。"
	case "end is required":
		return "終了日時は必須です。"
	case "start must be before end":
		return "終了日時は開始日時より後である必要があります。"
	case "meeting must start and end on the same day":
		return "会議は同じ日に開始・終了する必要があります。"
	case "repeat must be daily, weekly, or monthly":
		return "繰り返しは daily、weekly、monthly のいずれかで指定してください。"
	case "answer must be yes, no, or pending":
		return "回答は yes、no、pending のいずれかで指定してください。"
	case "period must be today, past, or future":
		return "期間は today、past、future のいずれかで指定してください。"
	case "related records are missing":
		return "関連するレコードが存在しません。"
	default:
		if strings.HasPrefix(message, "unknown usernames:") {
			return "存在しないユーザー名が含まれています: " + strings.TrimSpace(strings.TrimPrefix(message, "unknown usernames:"))
		}
		return message
	}
}

type errorResponse struct {
	ErrorCode string            `json:"error_code,omitempty"`
	Message   string            `json:"message"`
	Errors    map[string]string `json:"errors,omitempty"`
	Conflict  *conflictDTO      `json:"conflict,omitempty"`
}

type conflictDTO struct {
	Reason    string `json:"reason"`
	MeetingID string `json:"meeting_id,omitempty"`
	Username  string `json:"username,omitempty"`
}

func toConflictDTO(cErr *application.ConflictError) *conflictDTO {
	if cErr == nil {
		return nil
	}
	return &conflictDTO{
		Reason:    string(cErr.Reason),
		MeetingID: cErr.MeetingID,
		Username:  cErr.Username,
	}
}
