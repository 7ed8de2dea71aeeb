// Package httpx tem helpers pequenos para respostas JSON.
package httpx

import (
	"encoding/json"
	"net/http"
	"strconv"
)

// ErrorBody é o corpo de todas as respostas de erro.
type ErrorBody struct {
	Error      string `json:"error"`
	RetryAfter *int   `json:"retryAfter,omitempty"`
}

// JSON escreve v como JSON com o status informado.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Error escreve {"error": msg}.
func Error(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, ErrorBody{Error: msg})
}

// TooManyRequests escreve o 429 com retryAfter (segundos) no corpo e no header.
func TooManyRequests(w http.ResponseWriter, msg string, retryAfterSeconds int) {
	w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds))
	JSON(w, http.StatusTooManyRequests, ErrorBody{Error: msg, RetryAfter: &retryAfterSeconds})
}
