// Package handler はHTTPハンドラーを提供する。
//
// ハンドラーはセッションごとの api.Client を経由してバックエンドにアクセスし、
// view パッケージで組み立てたビューモデルをJSONで返す。
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/planit-app/planit/internal/api"
	"github.com/planit-app/planit/internal/eventform"
	"github.com/planit-app/planit/internal/middleware"
	"github.com/planit-app/planit/internal/model"
	"github.com/planit-app/planit/internal/uistate"
)

// ClientSource はセッションIDに対応するAPIクライアントを返す。
// api.Pool が実装する。
type ClientSource interface {
	Get(sessionID string) *api.Client
}

// StateStore はセッションに紐づくUI状態を保存する。
// auth.Service が実装する。
type StateStore interface {
	SaveData(ctx context.Context, sessionID string, data []byte) error
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// writeJSON はステータスコードとJSONボディを書き込む。
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// decodeJSON はリクエストボディを dst に読み込み、validateタグで検証する。
// 失敗した場合は400を書き込み false を返す。
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("request body is not valid JSON"))
		return false
	}

	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fe.Field())
			}
			middleware.WriteErrorResponse(w, http.StatusBadRequest,
				model.NewInvalidRequestError("missing or invalid fields: "+strings.Join(fields, ", ")))
			return false
		}
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError(err.Error()))
		return false
	}
	return true
}

// handleServiceError はクライアント層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	status, apiErr := resolveError(err)
	middleware.WriteErrorResponse(w, status, apiErr)
}

// resolveError はエラーをHTTPステータスと統一エラーに変換する。
func resolveError(err error) (int, *model.APIError) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		return mapAPIErrorToHTTPStatus(apiErr), apiErr
	}

	var formErr *eventform.ValidationError
	if errors.As(err, &formErr) {
		return http.StatusBadRequest, model.NewInvalidEventError(formErr.Message)
	}

	if errors.Is(err, api.ErrNoSession) {
		return http.StatusUnauthorized, model.NewUnauthorizedError()
	}

	if errors.Is(err, api.ErrUnexpectedResponse) {
		slog.Warn("unexpected backend response", slog.String("error", err.Error()))
		return http.StatusBadGateway, model.NewUnexpectedResponseError()
	}

	var reqErr *api.RequestError
	if errors.As(err, &reqErr) {
		switch {
		case reqErr.IsNetwork():
			slog.Error("backend request failed", slog.String("error", err.Error()))
			return http.StatusServiceUnavailable, model.NewBackendUnavailableError()
		case reqErr.Status == http.StatusUnauthorized:
			return http.StatusUnauthorized, model.NewUnauthorizedError()
		case reqErr.Status == http.StatusNotFound:
			return http.StatusNotFound, model.NewNotFoundError("The requested item")
		default:
			slog.Warn("backend rejected request",
				slog.String("method", reqErr.Method),
				slog.String("path", reqErr.Path),
				slog.Int("status", reqErr.Status),
			)
			return http.StatusBadGateway, model.NewBackendRejectedError(reqErr.Status)
		}
	}

	slog.Error("internal server error", slog.String("error", err.Error()))
	return http.StatusInternalServerError, model.NewInternalError()
}

// mapAPIErrorToHTTPStatus はAPIErrorのコードからHTTPステータスコードを決定する。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case model.ErrCodeCSRF:
		return http.StatusForbidden
	case model.ErrCodeInvalidRequest, model.ErrCodeInvalidEvent:
		return http.StatusBadRequest
	case model.ErrCodeNotFound:
		return http.StatusNotFound
	case model.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case model.ErrCodeBackendUnavailable:
		return http.StatusServiceUnavailable
	case model.ErrCodeBackendRejected, model.ErrCodeUnexpectedResponse:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// requestSession はセッションミドルウェアが注入したセッションを取得する。
// 見つからない場合は401を書き込む。
func requestSession(w http.ResponseWriter, r *http.Request) (*model.Session, bool) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return nil, false
	}
	return session, true
}

// loadState はセッションに保存されたUI状態を復元する。壊れている場合は初期状態を返す。
func loadState(session *model.Session) uistate.State {
	state, err := uistate.Decode(session.Data)
	if err != nil {
		slog.Warn("discarding unreadable ui state",
			slog.String("user_sub", session.UserSub),
			slog.String("error", err.Error()),
		)
		return uistate.State{}
	}
	return state
}

// saveState はUI状態をセッションに保存する。
func saveState(ctx context.Context, store StateStore, session *model.Session, state uistate.State) error {
	data, err := state.Encode()
	if err != nil {
		return err
	}
	if err := store.SaveData(ctx, session.ID, data); err != nil {
		return err
	}
	session.Data = data
	return nil
}

// parseIDParam はURLパスパラメータをIDとして読み取る。不正な場合は400を書き込む。
func parseIDParam(w http.ResponseWriter, r *http.Request, name string) (model.ID, bool) {
	id, err := model.ParseID(chi.URLParam(r, name))
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("invalid "+name))
		return 0, false
	}
	return id, true
}

// currentUserID はサインイン中のユーザーのバックエンド上のIDを返す。
func currentUserID(ctx context.Context, client *api.Client) (model.ID, error) {
	authUser, err := client.GetAuthUser(ctx)
	if err != nil {
		return 0, err
	}
	return authUser.UserDetails.ID, nil
}
