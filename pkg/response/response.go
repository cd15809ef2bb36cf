// Package response writes the JSON bodies every endpoint answers with.
// Successful bodies are operation-specific structs carrying Success: true;
// failures share one shape.
package response

import (
	"encoding/json"
	"net/http"

	"github.com/shashiranjanraj/rocketcart/pkg/logger"
)

// Status is the body of operations that return nothing but their outcome.
type Status struct {
	Success bool `json:"success"`
}

type failure struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// JSON encodes body with status.
func JSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Warn("response: encode body", "error", err)
	}
}

// Success sends body with 200.
func Success(w http.ResponseWriter, body interface{}) {
	JSON(w, http.StatusOK, body)
}

// OK sends {"success":true}.
func OK(w http.ResponseWriter) {
	Success(w, Status{Success: true})
}

// Failure sends {"success":false} with status. Used for domain failures.
func Failure(w http.ResponseWriter, status int) {
	JSON(w, status, failure{})
}

// InternalError sends a 500 that tells the client nothing about the cause.
func InternalError(w http.ResponseWriter) {
	JSON(w, http.StatusInternalServerError, failure{Error: "internal server error"})
}
