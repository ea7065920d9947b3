package jwtinspect

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenInspector локально читает полезную нагрузку JWT и достаёт срок действия.
// Подпись не проверяется - она проверяется сервером на каждом запросе,
// нам нужен только exp, чтобы не ходить по сети с заведомо мёртвым токеном.
type TokenInspector struct {
	parser *jwt.Parser
}

func NewTokenInspector() *TokenInspector {
	return &TokenInspector{parser: jwt.NewParser()}
}

// ExpiresAt возвращает момент истечения токена.
func (i *TokenInspector) ExpiresAt(token string) (time.Time, error) {
	claims := jwt.MapClaims{}
	_, _, err := i.parser.ParseUnverified(token, claims)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse token payload: %w", err)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to read token expiry: %w", err)
	}
	if exp == nil {
		return time.Time{}, fmt.Errorf("token has no expiry claim")
	}

	return exp.Time, nil
}
