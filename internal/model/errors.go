package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, backend, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeInvalidRequest     = "INVALID_REQUEST"
	ErrCodeInvalidEvent       = "INVALID_EVENT"
	ErrCodeBackendUnavailable = "BACKEND_UNAVAILABLE"
	ErrCodeBackendRejected    = "BACKEND_REJECTED"
	ErrCodeUnexpectedResponse = "UNEXPECTED_RESPONSE"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeInternal           = "INTERNAL_ERROR"
	ErrCodeRateLimited        = "RATE_LIMITED"
	ErrCodeCSRF               = "CSRF_TOKEN_INVALID"
)

// NewUnauthorizedError は未認証エラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "Authentication required.",
		Category: "auth",
		Action:   "Sign in again.",
	}
}

// NewInvalidRequestError はリクエスト形式の不正を表すエラーを生成する。
func NewInvalidRequestError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  fmt.Sprintf("Invalid request: %s", reason),
		Category: "validation",
		Action:   "Check the submitted values and try again.",
	}
}

// NewInvalidEventError はイベントフォームの検証エラーを生成する。
// メッセージはフォームにそのまま表示される。
func NewInvalidEventError(message string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidEvent,
		Message:  message,
		Category: "validation",
		Action:   "Correct the highlighted fields.",
	}
}

// NewBackendUnavailableError はバックエンドに到達できない場合のエラーを生成する。
func NewBackendUnavailableError() *APIError {
	return &APIError{
		Code:     ErrCodeBackendUnavailable,
		Message:  "The planning service could not be reached.",
		Category: "backend",
		Action:   "Wait a moment and try again.",
	}
}

// NewBackendRejectedError はバックエンドがエラーステータスを返した場合のエラーを生成する。
func NewBackendRejectedError(status int) *APIError {
	return &APIError{
		Code:     ErrCodeBackendRejected,
		Message:  fmt.Sprintf("The planning service rejected the request (status %d).", status),
		Category: "backend",
		Action:   "Check the request and try again.",
	}
}

// NewUnexpectedResponseError はJSON以外の応答を受け取った場合のエラーを生成する。
func NewUnexpectedResponseError() *APIError {
	return &APIError{
		Code:     ErrCodeUnexpectedResponse,
		Message:  "The planning service returned an unexpected response.",
		Category: "backend",
		Action:   "Wait a moment and try again.",
	}
}

// NewNotFoundError は対象が見つからない場合のエラーを生成する。
func NewNotFoundError(what string) *APIError {
	return &APIError{
		Code:     ErrCodeNotFound,
		Message:  fmt.Sprintf("%s was not found.", what),
		Category: "validation",
		Action:   "Reload the page and try again.",
	}
}

// NewInternalError は内部エラーを生成する。
func NewInternalError() *APIError {
	return &APIError{
		Code:     ErrCodeInternal,
		Message:  "An internal error occurred.",
		Category: "system",
		Action:   "Wait a moment and try again.",
	}
}

// NewRateLimitedError はレート制限超過エラーを生成する。
func NewRateLimitedError() *APIError {
	return &APIError{
		Code:     ErrCodeRateLimited,
		Message:  "Too many requests. Please try again later.",
		Category: "system",
		Action:   "Wait and retry after the time given in Retry-After.",
	}
}

// NewCSRFError はCSRFトークン検証失敗のエラーを生成する。
func NewCSRFError() *APIError {
	return &APIError{
		Code:     ErrCodeCSRF,
		Message:  "CSRF token validation failed.",
		Category: "auth",
		Action:   "Reload the page and try again.",
	}
}
