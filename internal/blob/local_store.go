package blob

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
)

// LocalStore кладёт вложения в каталог на диске. Для dev-режима и тестов,
// контракт тот же: вернуть стабильный адрес объекта.
type LocalStore struct {
	fs  afero.Fs
	dir string
}

func NewLocalStore(fs afero.Fs, dir string) *LocalStore {
	return &LocalStore{fs: fs, dir: dir}
}

func (s *LocalStore) Upload(ctx context.Context, data []byte, suggestedName string) (string, error) {
	object := ObjectName(suggestedName, time.Now())
	full := filepath.Join(s.dir, filepath.FromSlash(object))

	if err := s.fs.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("создание каталога вложений: %w", err)
	}

	if err := afero.WriteFile(s.fs, full, data, 0o644); err != nil {
		return "", fmt.Errorf("запись вложения: %w", err)
	}

	return "file://" + filepath.ToSlash(full), nil
}
