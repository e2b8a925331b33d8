package api

import (
	"context"
	"net/http"
)

// Request は1回のAPI呼び出し
type Request struct {
	Method string
	Path   string
	Body   any
	Header http.Header
}

// Doer はストアが依存するAPI呼び出しの約束
type Doer interface {
	Do(ctx context.Context, req Request, out any) error
}

func Get(path string) Request {
	return Request{Method: http.MethodGet, Path: path}
}

func Post(path string, body any) Request {
	return Request{Method: http.MethodPost, Path: path, Body: body}
}

func Put(path string, body any) Request {
	return Request{Method: http.MethodPut, Path: path, Body: body}
}

func Delete(path string) Request {
	return Request{Method: http.MethodDelete, Path: path}
}

// WithHeader はヘッダーを足したコピーを返す
func (r Request) WithHeader(key, value string) Request {
	h := r.Header.Clone()
	if h == nil {
		h = http.Header{}
	}
	h.Set(key, value)
	r.Header = h
	return r
}
