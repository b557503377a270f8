// pkg/middleware/auth.go
package middleware

import (
	"crypto/subtle"
	"net/http"

	"rgarchitects/pkg/hash"
)

// BasicAuth возвращает middleware для базовой аутентификации.
// passwordHash это bcrypt-хэш, открытый пароль в конфигурации не хранится.
func BasicAuth(username, passwordHash string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, pass, ok := r.BasicAuth()
			if !ok ||
				subtle.ConstantTimeCompare([]byte(user), []byte(username)) != 1 ||
				!hash.CheckPassword(passwordHash, pass) {
				w.Header().Set("WWW-Authenticate", `Basic realm="metrics"`)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
