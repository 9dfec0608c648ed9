package dtos

// Response is the envelope the JSON renderer wraps view-models in.
type Response[T any] struct {
	Message   string `json:"message"`
	Data      T      `json:"data"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrorResponse is written for every failed request. Message is the
// user-facing text, e.g. "user not found".
type ErrorResponse struct {
	Message   string `json:"message"`
	Field     string `json:"field,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}
