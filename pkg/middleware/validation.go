// pkg/middleware/validation.go

package middleware

import (
	"encoding/json"
	"net/http"
	"strings"
)

// maxBodySize ограничивает тело запроса, пользователь это несколько коротких строк.
const maxBodySize = 1 << 20

// ErrorResponse стандартный формат для ошибок проверки запроса
type ErrorResponse struct {
	Error string `json:"error"`
}

// ValidateRequest проверяет корректность запроса перед передачей его обработчику
func ValidateRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost || r.Method == http.MethodPut {
			contentType := r.Header.Get("Content-Type")
			if contentType != "" && !strings.Contains(contentType, "application/json") {
				writeBadRequest(w, "Invalid Content-Type, expected application/json")
				return
			}

			if r.ContentLength == 0 {
				writeBadRequest(w, "Request body cannot be empty")
				return
			}
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)

		next.ServeHTTP(w, r)
	})
}

func writeBadRequest(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(ErrorResponse{Error: msg})
}
