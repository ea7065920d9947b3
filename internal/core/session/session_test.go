package session_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"pharmacy-admin-console/internal/core/domain"
	"pharmacy-admin-console/internal/core/session"
)

type stubAuthAPI struct {
	account domain.Account
	token   string
	err     error

	loginCalls int
}

func (s *stubAuthAPI) Login(ctx context.Context, credentials domain.Credentials) (domain.Account, string, error) {
	s.loginCalls++
	return s.account, s.token, s.err
}

// memoryStorage - хранилище сессии в памяти вместо файла.
type memoryStorage struct {
	mu      sync.Mutex
	session *domain.Session
	loadErr error
}

func (s *memoryStorage) Load() (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return s.session, nil
}

func (s *memoryStorage) Save(session domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = &session
	return nil
}

func (s *memoryStorage) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = nil
	return nil
}

// stubInspector отдаёт фиксированные сроки по значению токена.
type stubInspector struct {
	expiries map[string]time.Time
}

func (s *stubInspector) ExpiresAt(token string) (time.Time, error) {
	expiresAt, ok := s.expiries[token]
	if !ok {
		return time.Time{}, errors.New("token is not a valid JWT")
	}
	return expiresAt, nil
}

func validInspector(token string) *stubInspector {
	return &stubInspector{expiries: map[string]time.Time{token: time.Now().Add(time.Hour)}}
}

func newManager(t *testing.T, api *stubAuthAPI, storage *memoryStorage, inspector *stubInspector) *session.Manager {
	t.Helper()
	m, err := session.NewManager(api, storage, inspector)
	if err != nil {
		t.Fatalf("failed to create session manager: %v", err)
	}
	return m
}

func TestLoginRejectsNonAdmin(t *testing.T) {
	api := &stubAuthAPI{
		account: domain.Account{ID: "p1", Email: "user@example.com", Role: "pharmacist"},
		token:   "tok-user",
	}
	storage := &memoryStorage{}
	m := newManager(t, api, storage, validInspector("tok-user"))

	err := m.Login(context.Background(), domain.Credentials{Email: "user@example.com", Password: "secret"})
	if err == nil {
		t.Fatal("expected non-admin login to be rejected")
	}
	if !strings.Contains(err.Error(), "Admin role required") {
		t.Fatalf("unexpected error message: %q", err.Error())
	}
	if m.IsAuthenticated() {
		t.Fatal("rejected login must not authenticate the session")
	}
	if stored, _ := storage.Load(); stored != nil {
		t.Fatal("rejected login must not persist a session")
	}
}

func TestLoginRequiresCredentialsBeforeNetwork(t *testing.T) {
	api := &stubAuthAPI{}
	m := newManager(t, api, &memoryStorage{}, &stubInspector{})

	if err := m.Login(context.Background(), domain.Credentials{Email: "admin@example.com"}); !errors.Is(err, domain.ErrCredentialsRequired) {
		t.Fatalf("expected ErrCredentialsRequired, got %v", err)
	}
	if api.loginCalls != 0 {
		t.Fatal("validation must run before any network call")
	}
}

func TestLoginPersistsAdminSession(t *testing.T) {
	api := &stubAuthAPI{
		account: domain.Account{ID: "a1", FullName: "Admin", Email: "admin@example.com", Role: domain.RoleAdmin},
		token:   "tok-admin",
	}
	storage := &memoryStorage{}
	m := newManager(t, api, storage, validInspector("tok-admin"))

	if err := m.Login(context.Background(), domain.Credentials{Email: "admin@example.com", Password: "secret"}); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	if !m.IsAuthenticated() || !m.IsAdmin() {
		t.Fatal("admin login must authenticate the session")
	}
	if m.Token() != "tok-admin" {
		t.Fatalf("token source must serve the session token, got %q", m.Token())
	}

	stored, err := storage.Load()
	if err != nil || stored == nil {
		t.Fatalf("session must be persisted, got %v, %v", stored, err)
	}
	if stored.User.ID != "a1" || !stored.IsAuthenticated {
		t.Fatalf("persisted session is incomplete: %+v", stored)
	}
}

func TestRestoreDropsExpiredToken(t *testing.T) {
	storage := &memoryStorage{session: &domain.Session{
		User:            domain.Account{ID: "a1", Role: domain.RoleAdmin},
		Token:           "tok-old",
		IsAuthenticated: true,
	}}
	inspector := &stubInspector{expiries: map[string]time.Time{"tok-old": time.Now().Add(-time.Minute)}}
	m := newManager(t, &stubAuthAPI{}, storage, inspector)

	if err := m.Restore(context.Background()); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if m.IsAuthenticated() {
		t.Fatal("expired session must not be restored")
	}
	if stored, _ := storage.Load(); stored != nil {
		t.Fatal("stale persisted session must be cleared")
	}
}

func TestRestoreKeepsValidSession(t *testing.T) {
	storage := &memoryStorage{session: &domain.Session{
		User:            domain.Account{ID: "a1", Email: "admin@example.com", Role: domain.RoleAdmin},
		Token:           "tok-live",
		IsAuthenticated: true,
	}}
	m := newManager(t, &stubAuthAPI{}, storage, validInspector("tok-live"))

	if err := m.Restore(context.Background()); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if !m.IsAuthenticated() {
		t.Fatal("valid persisted session must be restored")
	}
	account, ok := m.Account()
	if !ok || account.Email != "admin@example.com" {
		t.Fatalf("restored account mismatch: %+v", account)
	}
}

func TestRestoreSurvivesStorageFailure(t *testing.T) {
	storage := &memoryStorage{loadErr: errors.New("disk on fire")}
	m := newManager(t, &stubAuthAPI{}, storage, &stubInspector{})

	// Нечитаемое хранилище не должно ронять запуск
	if err := m.Restore(context.Background()); err != nil {
		t.Fatalf("Restore must start unauthenticated on storage failure, got %v", err)
	}
	if m.IsAuthenticated() {
		t.Fatal("failed restore must leave the session unauthenticated")
	}
}

func TestLogoutClearsEverything(t *testing.T) {
	api := &stubAuthAPI{
		account: domain.Account{ID: "a1", Role: domain.RoleAdmin},
		token:   "tok-admin",
	}
	storage := &memoryStorage{}
	m := newManager(t, api, storage, validInspector("tok-admin"))

	if err := m.Login(context.Background(), domain.Credentials{Email: "admin@example.com", Password: "secret"}); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if err := m.Logout(context.Background()); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}

	if m.IsAuthenticated() || m.Token() != "" {
		t.Fatal("logout must drop the in-memory session")
	}
	if stored, _ := storage.Load(); stored != nil {
		t.Fatal("logout must clear the persisted session")
	}
}

func TestInvalidateSilentlyDropsSession(t *testing.T) {
	api := &stubAuthAPI{
		account: domain.Account{ID: "a1", Role: domain.RoleAdmin},
		token:   "tok-admin",
	}
	storage := &memoryStorage{}
	m := newManager(t, api, storage, validInspector("tok-admin"))

	if err := m.Login(context.Background(), domain.Credentials{Email: "admin@example.com", Password: "secret"}); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	m.Invalidate()

	if m.IsAuthenticated() || m.Token() != "" {
		t.Fatal("invalidated session must be gone from memory")
	}
	if stored, _ := storage.Load(); stored != nil {
		t.Fatal("invalidated session must be gone from storage")
	}
}
