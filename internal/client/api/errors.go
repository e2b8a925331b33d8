package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

var (
	// 通信そのものの失敗（接続不可など）
	ErrNetwork = errors.New("network error")

	// refreshに失敗してトークンを破棄した
	ErrSessionExpired = errors.New("session expired")

	// refresh tokenが保存されていない
	ErrNoRefreshToken = errors.New("no refresh token")
)

// APIError は2xx以外のレスポンス
type APIError struct {
	Status  int
	Message string
	Method  string
	Path    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %s %s: %d %s", e.Method, e.Path, e.Status, e.Message)
}

// IsStatus はAPIErrorのステータスが一致するか
func IsStatus(err error, status int) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.Status == status
}

// ToastMessage は画面の通知に出す文言
func ToastMessage(err error) string {
	var ae *APIError

	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrSessionExpired):
		return "Your session has expired. Please sign in again."
	case errors.As(err, &ae):
		return ae.Message
	case errors.Is(err, ErrNetwork):
		return "Network error. Please check your connection and try again."
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "The request was cancelled."
	default:
		return err.Error()
	}
}

func statusMessage(status int) string {
	if s := http.StatusText(status); s != "" {
		return s
	}
	return fmt.Sprintf("HTTP %d", status)
}
