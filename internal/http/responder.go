package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/zegramtool/construction-gantt-chart/internal/application"
)

var (
	errBadRequestBody      = errors.New("無効なリクエスト形式です。")
	errBadQueryParam       = errors.New("無効なクエリパラメータです。")
	errInvalidProjectID    = errors.New("無効なプロジェクト ID です。")
	errInvalidTaskID       = errors.New("無効な工程 ID です。")
	errInvalidTradeID      = errors.New("無効な職種 ID です。")
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
	case errors.Is(err, application.ErrInvalidCredentials):
		r.writeJSON(ctx, w, http.StatusUnauthorized, errorResponse{
			ErrorCode: "AUTH_INVALID_CREDENTIALS",
			Message:   "メールアドレスまたはパスワードが正しくありません",
		})
	case errors.Is(err, application.ErrSessionExpired):
		r.writeJSON(ctx, w, http.StatusUnauthorized, errorResponse{
			ErrorCode: "AUTH_SESSION_EXPIRED",
			Message:   "セッションの有効期限が切れています。再度ログインしてください。",
		})
	case errors.Is(err, application.ErrSessionRevoked):
		r.writeJSON(ctx, w, http.StatusUnauthorized, errorResponse{
			ErrorCode: "AUTH_SESSION_REVOKED",
			Message:   "セッションは無効化されています。再度ログインしてください。",
		})
	case errors.Is(err, application.ErrAccountDisabled):
		r.writeJSON(ctx, w, http.StatusForbidden, errorResponse{
			ErrorCode: "AUTH_ACCOUNT_DISABLED",
			Message:   "このアカウントは無効化されています。",
		})
	case errors.Is(err, application.ErrUnauthorized):
		r.writeJSON(ctx, w, http.StatusUnauthorized, errorResponse{
			ErrorCode: "AUTH_REQUIRED",
			Message:   "認証が必要です。",
		})
	case errors.Is(err, application.ErrForbidden):
		r.writeJSON(ctx, w, http.StatusForbidden, errorResponse{
			ErrorCode: "AUTH_FORBIDDEN",
			Message:   "この操作を実行する権限がありません。",
		})
	case errors.Is(err, application.ErrNotFound):
		r.writeJSON(ctx, w, http.StatusNotFound, errorResponse{Message: "指定されたリソースが見つかりません。"})
	case errors.Is(err, application.ErrTradeInUse):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
			ErrorCode: "TRADE_IN_USE",
			Message:   "この職種は工程で使用されているため削除できません。",
		})
	case errors.Is(err, application.ErrAlreadyExists):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{Message: "同じ内容のリソースが既に存在します。"})
	default:
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
	case "name is required":
		return "名前は必須です。"
	case "name must be at most 120 characters":
		return "名前は 120 文字以内で入力してください。"
	case "name must be at most 60 characters":
		return "名前は 60 文字以内で入力してください。"
	case "anchor date is required":
		return "基準日は必須です。"
	case "anchor date must be formatted as YYYY-MM-DD":
		return "基準日は YYYY-MM-DD 形式で指定してください。"
	case "scale must be one of hour, day, week, month":
		return "表示スケールは hour、day、week、month のいずれかを指定してください。"
	case "hour window must satisfy 0 <= start < end <= 24":
		return "時間帯は 0 以上 24 以下で、開始が終了より前になるように指定してください。"
	case "window lengths must be between 1 and 93 days":
		return "表示期間は 1 日以上 93 日以内で指定してください。"
	case "dates must be formatted as YYYY-MM-DD":
		return "日付は YYYY-MM-DD 形式で指定してください。"
	case "color is required":
		return "色は必須です。"
	case "color must be formatted as #RRGGBB":
		return "色は #RRGGBB 形式で指定してください。"
	case "display order must not be negative":
		return "表示順は 0 以上で指定してください。"
	case "trade does not exist":
		return "指定された職種は存在しません。"
	case "position must not be negative":
		return "位置は 0 以上で指定してください。"
	case "field must be start or end":
		return "編集対象は start または end を指定してください。"
	case "start must not be after end":
		return "開始は終了より後にできません。"
	case "cell width must be positive":
		return "セル幅は正の数で指定してください。"
	case "mode must be one of move, resize-start, resize-end":
		return "操作種別は move、resize-start、resize-end のいずれかを指定してください。"
	case "start must be formatted as YYYY-MM-DD":
		return "開始日は YYYY-MM-DD 形式で指定してください。"
	case "end must be formatted as YYYY-MM-DD":
		return "終了日は YYYY-MM-DD 形式で指定してください。"
	case "days must not be negative":
		return "日数は 0 以上で指定してください。"
	case "email is required":
		return "メールアドレスは必須です。"
	case "email is invalid":
		return "メールアドレスの形式が不正です。"
	case "display name is required":
		return "表示名は必須です。"
	case "display name must be at most 60 characters":
		return "表示名は 60 文字以内で入力してください。"
	case "password must be at least 8 characters":
		return "パスワードは 8 文字以上で入力してください。"
	case "related records are missing":
		return "関連するレコードが見つかりません。"
	default:
		if strings.HasPrefix(message, "dates marked both working and non-working:") {
			return "稼働日と非稼働日の両方に指定されています: " + strings.TrimSpace(strings.TrimPrefix(message, "dates marked both working and non-working:"))
		}
		return message
	}
}

type errorResponse struct {
	ErrorCode string            `json:"error_code,omitempty"`
	Message   string            `json:"message"`
	Errors    map[string]string `json:"errors,omitempty"`
}
