package app_error

import "net/http"

// Field values identifying the kind of failure.
const (
	FieldNotFound   = "not-found"
	FieldInvalidID  = "invalid-id"
	FieldValidation = "validation"
	FieldAvatar     = "avatar"
	FieldMongo      = "mongo"
	FieldRedis      = "redis"
)

type AppError struct {
	Code    int    `json:"-"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func (e AppError) Error() string {
	return e.Message
}

func NewAppError(code int, msg, field string) *AppError {
	return &AppError{
		Code:    code,
		Message: msg,
		Field:   field,
	}
}

func NotFound(msg string) *AppError {
	return NewAppError(http.StatusNotFound, msg, FieldNotFound)
}
