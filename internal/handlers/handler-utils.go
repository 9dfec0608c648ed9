package handlers

import (
	"net/http"

	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog/log"
	"github.com/xenn00/personnel-directory/internal/dtos"
	app_error "github.com/xenn00/personnel-directory/internal/errors"
	"github.com/xenn00/personnel-directory/internal/middleware"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

type HandlerFunc func(w http.ResponseWriter, r *http.Request) *app_error.AppError

// WrapHandler writes a returned AppError as {"message", "field", "request_id"}
// with the error's code as status.
func WrapHandler(fn HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := fn(w, r)
		if err == nil {
			return
		}

		reqID := middleware.RequestID(r)
		event := log.Warn()
		if err.Code >= http.StatusInternalServerError {
			event = log.Error()
		}
		event.Err(err).
			Str("request_id", reqID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", err.Code).
			Str("field", err.Field).
			Msg("request failed")

		writeJSON(w, err.Code, dtos.ErrorResponse{
			Message:   err.Message,
			Field:     err.Field,
			RequestID: reqID,
		})
	}
}

func CreateResponse[T any](message string, data T, requestId string) dtos.Response[T] {
	return dtos.Response[T]{
		Message:   message,
		Data:      data,
		RequestID: requestId,
	}
}

// Renderer turns a named view and its view-model into a response.
type Renderer interface {
	Render(w http.ResponseWriter, r *http.Request, view string, data map[string]any) error
}

// JSONRenderer writes the view-model as a JSON envelope whose message is
// the view name. It stands in for a template renderer.
type JSONRenderer struct{}

func (JSONRenderer) Render(w http.ResponseWriter, r *http.Request, view string, data map[string]any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	return json.NewEncoder(w).Encode(CreateResponse(view, data, middleware.RequestID(r)))
}
