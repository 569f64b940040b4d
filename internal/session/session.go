package session

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"taskBuddy/internal/logger"
	"taskBuddy/internal/models/user"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Repository — долговечный слот сессии: один фиксированный файл с
// сериализованным пользователем. Читается один раз на старте, пишется
// при входе, очищается при выходе.
type Repository struct {
	fs   afero.Fs
	path string
	mtx  sync.Mutex
}

func NewRepository(fs afero.Fs, path string) *Repository {
	return &Repository{fs: fs, path: path}
}

// Load возвращает сохранённого пользователя или nil, если сессии нет.
func (r *Repository) Load() (*user.User, error) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	data, err := afero.ReadFile(r.fs, r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("чтение слота сессии: %w", err)
	}

	var u user.User
	if err := json.Unmarshal(data, &u); err != nil {
		// битый слот не должен блокировать запуск, просто входим заново
		logger.Warn("Session: Повреждённый слот сессии, игнорируем", zap.Error(err))
		return nil, nil
	}

	if u.UID == "" {
		return nil, nil
	}

	logger.Info("Session: Сессия восстановлена", zap.String("uid", u.UID))
	return &u, nil
}

func (r *Repository) Save(u *user.User) error {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("сериализация пользователя: %w", err)
	}

	if err := afero.WriteFile(r.fs, r.path, data, 0o600); err != nil {
		return fmt.Errorf("запись слота сессии: %w", err)
	}
	return nil
}

func (r *Repository) Clear() error {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	err := r.fs.Remove(r.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("очистка слота сессии: %w", err)
	}
	return nil
}
