package common

import (
	"encoding/json"
	"net/http"
)

// ErrorBody is the error payload: {"error":{"code","message","details"}}.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// JSONError renders an error response using the canonical error shape.
func JSONError(w http.ResponseWriter, status int, code, message string, details any) {
	JSON(w, status, map[string]ErrorBody{
		"error": {Code: code, Message: message, Details: details},
	})
}

// WriteAppError renders e. Details are withheld on 5xx answers.
func WriteAppError(w http.ResponseWriter, e *AppError) {
	status := e.Status()
	code := e.Code
	if code == "" {
		code = "INTERNAL"
	}
	details := e.Details
	if status >= http.StatusInternalServerError {
		details = nil
	}
	JSONError(w, status, code, e.Message, details)
}
