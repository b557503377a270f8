package db

import (
	"context"

	"gorm.io/gorm"
)

type sessionKey struct{}

// WithSession кладёт в контекст сессию gorm, привязанную к текущему запросу.
func WithSession(ctx context.Context, session *gorm.DB) context.Context {
	return context.WithValue(ctx, sessionKey{}, session)
}

// Session возвращает сессию запроса, а если её нет, новую сессию из пула.
func Session(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if s, ok := ctx.Value(sessionKey{}).(*gorm.DB); ok && s != nil {
		return s
	}
	return fallback.WithContext(ctx)
}
