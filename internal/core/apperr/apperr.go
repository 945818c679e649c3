package apperr

import "net/http"

// FieldError 字段级校验错误（进错误信封的 errors 数组）
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// E 业务错误：携带 HTTP 状态码，由 handler 层统一翻译成错误信封
type E struct {
	Status int
	Msg    string
	Fields []FieldError
	Err    error
}

func (e *E) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.Status)
}

func (e *E) Unwrap() error { return e.Err }

func BadRequest(msg string) *E { return &E{Status: http.StatusBadRequest, Msg: msg} }

// Validation 校验失败（带字段明细）
func Validation(fields []FieldError) *E {
	return &E{Status: http.StatusBadRequest, Msg: "Validation failed", Fields: fields}
}

func Conflict(msg string) *E { return &E{Status: http.StatusConflict, Msg: msg} }

func NotFound(msg string) *E { return &E{Status: http.StatusNotFound, Msg: msg} }

// Internal 内部错误：Msg 对外，Err 只进日志
func Internal(msg string, err error) *E {
	return &E{Status: http.StatusInternalServerError, Msg: msg, Err: err}
}
