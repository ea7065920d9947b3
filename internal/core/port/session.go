package port

import (
	"context"
	"time"

	"pharmacy-admin-console/internal/core/domain"
)

// AuthAPIPort - эндпоинт аутентификации.
type AuthAPIPort interface {
	Login(ctx context.Context, credentials domain.Credentials) (domain.Account, string, error)
}

// SessionStoragePort - персистентное хранилище снимка сессии
// (в браузерной версии эту роль играл localStorage).
type SessionStoragePort interface {
	Load() (*domain.Session, error)
	Save(session domain.Session) error
	Clear() error
}

// TokenInspectorPort проверяет срок действия токена локально,
// без обращения к серверу.
type TokenInspectorPort interface {
	ExpiresAt(token string) (time.Time, error)
}
