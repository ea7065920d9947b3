package sessionfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"pharmacy-admin-console/internal/core/domain"
)

// Storage хранит снимок сессии в JSON-файле.
// В браузерной версии панели эту роль играл localStorage.
type Storage struct {
	filePath string
}

func NewStorage(filePath string) (*Storage, error) {
	if filePath == "" {
		return nil, fmt.Errorf("session storage: file path is required")
	}
	return &Storage{filePath: filePath}, nil
}

// Load читает сохранённую сессию. Отсутствие файла - не ошибка:
// значит, пользователь ещё не входил.
func (s *Storage) Load() (*domain.Session, error) {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var session domain.Session
	if err := json.Unmarshal(data, &session); err != nil {
		// Битый файл считаем отсутствующей сессией, но сообщаем об этом
		return nil, fmt.Errorf("session file is corrupted: %w", err)
	}
	return &session, nil
}

// Save атомарно перезаписывает снимок сессии.
func (s *Storage) Save(session domain.Session) error {
	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.filePath), 0o700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	// Пишем во временный файл и переименовываем, чтобы не оставить
	// полусохранённую сессию при падении на середине записи.
	tmpPath := s.filePath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := os.Rename(tmpPath, s.filePath); err != nil {
		return fmt.Errorf("failed to replace session file: %w", err)
	}
	return nil
}

// Clear удаляет сохранённую сессию. Идемпотентен.
func (s *Storage) Clear() error {
	if err := os.Remove(s.filePath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}
