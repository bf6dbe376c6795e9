package api

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSession はIdPのセッションが存在しない場合に返る。
	ErrNoSession = errors.New("no session found")

	// ErrUnexpectedResponse は成功ステータスだがJSON以外の応答を受け取った場合に返る。
	// 実際のエラーは応答本文を付加した形でラップされる。
	ErrUnexpectedResponse = errors.New("unexpected response")
)

// RequestError はバックエンドへのリクエスト失敗を表す。
// 通信エラーの場合は Err に原因が入り Status は0になる。
// エラーステータスの場合は Status と Body が設定される。
type RequestError struct {
	Method string
	Path   string
	Status int
	Body   string
	Err    error
}

// Error はerrorインターフェースを実装する。
func (e *RequestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Status, e.Body)
}

// Unwrap は原因エラーを返す。
func (e *RequestError) Unwrap() error {
	return e.Err
}

// IsNetwork は通信レベルの失敗かを返す。
func (e *RequestError) IsNetwork() bool {
	return e.Err != nil
}

func unexpectedResponse(body string) error {
	return fmt.Errorf("%w: %s", ErrUnexpectedResponse, body)
}
