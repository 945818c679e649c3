package response

import "go-gin-user-api/internal/core/apperr"

// Body 成功信封（保证 data 不为 null）
type Body struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

func OK(data any) Body {
	if data == nil {
		data = struct{}{}
	}
	return Body{Success: true, Data: data}
}

// ErrBody 错误信封，所有失败路径共用同一形状
type ErrBody struct {
	Success    bool                `json:"success"`
	StatusCode int                 `json:"statusCode"`
	Message    string              `json:"message"`
	Errors     []apperr.FieldError `json:"errors,omitempty"`
}

func Err(status int, msg string, fields []apperr.FieldError) ErrBody {
	return ErrBody{StatusCode: status, Message: msg, Errors: fields}
}
