package api

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/goccy/go-json"
)

// Response is the v4 reply envelope.
type Response struct {
	Code      int            `json:"code"`
	Message   string         `json:"message"`
	RequestID string         `json:"request_id,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
}

// OK reports whether the vendor answered with the success code.
func (r *Response) OK() bool {
	return r.Code == CodeSuccess
}

// Err returns the failure carried by the response, or nil on success.
func (r *Response) Err() error {
	if r.OK() {
		return nil
	}
	return &Error{Code: r.Code, Message: r.Message, RequestID: r.RequestID}
}

// String returns the data field as a string.
func (r *Response) String(key string) string {
	if r.Data == nil {
		return ""
	}
	s, _ := r.Data[key].(string)
	return s
}

// Int returns the data field as an integer.
func (r *Response) Int(key string) (int64, bool) {
	if r.Data == nil {
		return 0, false
	}
	switch v := r.Data[key].(type) {
	case float64:
		return int64(v), true
	case int64:
		return v, true
	case int:
		return int64(v), true
	case json.Number:
		n, err := v.Int64()
		return n, err == nil
	}
	return 0, false
}

func newResponse(code int, format string, args ...any) *Response {
	return &Response{Code: code, Message: fmt.Sprintf(format, args...)}
}

type envelope struct {
	Code      *int            `json:"code"`
	Message   string          `json:"message"`
	RequestID string          `json:"request_id"`
	Data      json.RawMessage `json:"data"`
}

// decodeResponse 解析响应体，无法解析时返回网络错误码
func decodeResponse(status int, body []byte) *Response {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return newResponse(CodeNetworkError, "network error: %s: %v", http.StatusText(status), err)
	}
	if env.Code == nil {
		return newResponse(CodeNetworkError, "network error: %s: response without code", http.StatusText(status))
	}
	res := &Response{
		Code:      *env.Code,
		Message:   env.Message,
		RequestID: env.RequestID,
	}
	// data 只有对象才作为返回内容，null、[] 等视为没有返回内容
	if data := bytes.TrimSpace(env.Data); len(data) > 0 && data[0] == '{' {
		if err := json.Unmarshal(data, &res.Data); err != nil {
			return newResponse(CodeNetworkError, "network error: %s: %v", http.StatusText(status), err)
		}
	}
	return res
}
