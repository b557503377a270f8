package middleware

import (
	"net/http"

	"gorm.io/gorm"

	"rgarchitects/pkg/db"
)

// DBSession выдаёт каждому запросу собственную сессию gorm, привязанную к его
// контексту. Репозитории берут её через db.Session, общий *gorm.DB не мутируется.
func DBSession(gdb *gorm.DB) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			session := gdb.WithContext(ctx)
			next.ServeHTTP(w, r.WithContext(db.WithSession(ctx, session)))
		})
	}
}
