package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"pharmacy-admin-console/internal/contextkeys"
	"pharmacy-admin-console/internal/core/domain"
	"pharmacy-admin-console/internal/core/port"
)

// Manager владеет состоянием сессии администратора и зеркалирует его
// в персистентное хранилище. Создается явно в app.go и передается
// зависимостям - глобального синглтона нет.
type Manager struct {
	authAPI   port.AuthAPIPort
	storage   port.SessionStoragePort
	inspector port.TokenInspectorPort

	mu      sync.Mutex
	current *domain.Session
}

func NewManager(authAPI port.AuthAPIPort, storage port.SessionStoragePort, inspector port.TokenInspectorPort) (*Manager, error) {
	if authAPI == nil || storage == nil || inspector == nil {
		return nil, fmt.Errorf("session manager: all dependencies are required")
	}
	return &Manager{
		authAPI:   authAPI,
		storage:   storage,
		inspector: inspector,
	}, nil
}

// Restore поднимает сессию из хранилища при старте приложения.
// Просроченный токен сразу выбрасывается - иначе первый же запрос
// закончился бы 401 и сбросом сессии.
func (m *Manager) Restore(ctx context.Context) error {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"component": "SessionManager", "method": "Restore"})

	stored, err := m.storage.Load()
	if err != nil {
		logger.Warn("Could not load persisted session, starting unauthenticated", port.Fields{"error": err.Error()})
		return nil
	}
	if stored == nil || !stored.IsAuthenticated || stored.Token == "" {
		logger.Debug("No persisted session found", nil)
		return nil
	}

	expiresAt, err := m.inspector.ExpiresAt(stored.Token)
	if err != nil || !expiresAt.After(time.Now()) {
		logger.Warn("Persisted token is expired or unreadable, clearing session", nil)
		if clearErr := m.storage.Clear(); clearErr != nil {
			return fmt.Errorf("failed to clear stale session: %w", clearErr)
		}
		return nil
	}

	m.mu.Lock()
	m.current = stored
	m.mu.Unlock()

	logger.Info("Session restored", port.Fields{"user_id": stored.User.ID, "email": stored.User.Email})
	return nil
}

// Login выполняет вход. Роль admin проверяется на клиенте:
// не-администратор получает отказ, сессия не создается.
func (m *Manager) Login(ctx context.Context, credentials domain.Credentials) error {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"component": "SessionManager", "method": "Login", "email": credentials.Email})

	// Валидация до любого сетевого вызова
	if credentials.Email == "" || credentials.Password == "" {
		logger.Warn("Login rejected: missing credentials", nil)
		return domain.ErrCredentialsRequired
	}

	account, token, err := m.authAPI.Login(ctx, credentials)
	if err != nil {
		return err
	}

	if account.Role != domain.RoleAdmin {
		logger.Warn("Login rejected: principal is not an admin", port.Fields{"role": account.Role})
		return domain.ErrAdminRequired
	}

	session := domain.Session{
		User:            account,
		Token:           token,
		IsAuthenticated: true,
	}

	if err := m.storage.Save(session); err != nil {
		logger.Error("Failed to persist session", err, nil)
		return fmt.Errorf("failed to persist session: %w", err)
	}

	m.mu.Lock()
	m.current = &session
	m.mu.Unlock()

	logger.Info("Admin logged in", port.Fields{"user_id": account.ID})
	return nil
}

// Logout сбрасывает сессию в памяти и в хранилище.
func (m *Manager) Logout(ctx context.Context) error {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"component": "SessionManager", "method": "Logout"})

	m.mu.Lock()
	m.current = nil
	m.mu.Unlock()

	if err := m.storage.Clear(); err != nil {
		logger.Error("Failed to clear persisted session", err, nil)
		return err
	}

	logger.Info("Session cleared", nil)
	return nil
}

// Invalidate - реакция на глобальный 401: сессия сбрасывается молча.
// Вешается хуком на транспортный клиент.
func (m *Manager) Invalidate() {
	m.mu.Lock()
	m.current = nil
	m.mu.Unlock()

	_ = m.storage.Clear()
}

// Token возвращает текущий bearer-токен (источник для транспорта).
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return ""
	}
	return m.current.Token
}

// IsAuthenticated - сессия есть и токен ещё не истёк.
// Срок проверяется локальным чтением payload, без похода на сервер.
func (m *Manager) IsAuthenticated() bool {
	m.mu.Lock()
	current := m.current
	m.mu.Unlock()

	if current == nil || !current.IsAuthenticated || current.Token == "" {
		return false
	}

	expiresAt, err := m.inspector.ExpiresAt(current.Token)
	if err != nil {
		return false
	}
	return expiresAt.After(time.Now())
}

func (m *Manager) IsAdmin() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.current != nil && m.current.User.Role == domain.RoleAdmin
}

// Account возвращает аккаунт текущей сессии.
func (m *Manager) Account() (domain.Account, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return domain.Account{}, false
	}
	return m.current.User, true
}
