package blob

import (
	"context"
	"fmt"
	"path"
	"time"
)

// Store — внешнее blob-хранилище: принимает бинарные вложения и возвращает
// стабильный URL для скачивания. Загрузку безопасно повторять, потому что
// имя каждого объекта уникально за счёт временной метки.
type Store interface {
	Upload(ctx context.Context, data []byte, suggestedName string) (string, error)
}

// ObjectName строит уникальное имя объекта:
// task-attachments/{метка}-{имя файла}.
func ObjectName(suggestedName string, now time.Time) string {
	return path.Join("task-attachments", fmt.Sprintf("%d-%s", now.UnixNano(), path.Base(suggestedName)))
}
