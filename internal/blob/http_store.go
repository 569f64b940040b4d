package blob

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"taskBuddy/internal/logger"

	"go.uber.org/zap"
)

// HTTPStore — клиент HTTP-хранилища вложений. Объект кладётся PUT-ом по
// адресу {base}/{object}, этот же адрес и есть URL для скачивания.
type HTTPStore struct {
	baseURL    string
	httpClient *http.Client
}

func NewHTTPStore(baseURL string) *HTTPStore {
	return &HTTPStore{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *HTTPStore) Upload(ctx context.Context, data []byte, suggestedName string) (string, error) {
	start := time.Now()

	object := ObjectName(suggestedName, time.Now())
	url := s.baseURL + "/" + object

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("сборка запроса загрузки: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		logger.Error("Blob: Ошибка загрузки вложения", err, zap.String("object", object))
		return "", fmt.Errorf("загрузка вложения: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		logger.Error("Blob: Хранилище вернуло ошибку", nil,
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", body))
		return "", fmt.Errorf("статус загрузки: %d", resp.StatusCode)
	}

	logger.Info("Blob: Вложение загружено",
		zap.String("object", object),
		zap.Int("bytes", len(data)),
		zap.Duration("ms", time.Since(start)))

	return url, nil
}
