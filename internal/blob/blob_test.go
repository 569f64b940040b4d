package blob_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"taskBuddy/internal/blob"
	"taskBuddy/internal/logger"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.Init(true)
	defer logger.Sync()
	os.Exit(m.Run())
}

// TestObjectName тестирует схему имён объектов
func TestObjectName(t *testing.T) {
	now := time.Unix(0, 1756742400000000000)

	got := blob.ObjectName("receipt.pdf", now)
	assert.Equal(t, "task-attachments/1756742400000000000-receipt.pdf", got)

	// пути в имени не протекают в каталог
	got = blob.ObjectName("../../etc/passwd", now)
	assert.Equal(t, "task-attachments/1756742400000000000-passwd", got)
}

// TestHTTPStore_Upload тестирует загрузку по HTTP
func TestHTTPStore_Upload(t *testing.T) {
	t.Run("success - object stored and url returned", func(t *testing.T) {
		var gotMethod, gotPath string
		var gotBody []byte

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotMethod = r.Method
			gotPath = r.URL.Path
			gotBody, _ = io.ReadAll(r.Body)
			w.WriteHeader(http.StatusCreated)
		}))
		defer srv.Close()

		store := blob.NewHTTPStore(srv.URL)
		url, err := store.Upload(context.Background(), []byte("payload"), "receipt.pdf")
		require.NoError(t, err)

		assert.Equal(t, http.MethodPut, gotMethod)
		assert.True(t, strings.HasPrefix(gotPath, "/task-attachments/"))
		assert.True(t, strings.HasSuffix(gotPath, "-receipt.pdf"))
		assert.Equal(t, []byte("payload"), gotBody)
		assert.Equal(t, srv.URL+gotPath, url)
	})

	t.Run("error - non-2xx status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "forbidden", http.StatusForbidden)
		}))
		defer srv.Close()

		store := blob.NewHTTPStore(srv.URL)
		_, err := store.Upload(context.Background(), []byte("payload"), "receipt.pdf")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "403")
	})

	t.Run("error - server unreachable", func(t *testing.T) {
		store := blob.NewHTTPStore("http://127.0.0.1:1")
		_, err := store.Upload(context.Background(), []byte("payload"), "receipt.pdf")
		assert.Error(t, err)
	})
}

// TestLocalStore_Upload тестирует локальное хранилище
func TestLocalStore_Upload(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := blob.NewLocalStore(fs, "uploads")

	url, err := store.Upload(context.Background(), []byte("payload"), "receipt.pdf")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "file://uploads/task-attachments/"))

	path := strings.TrimPrefix(url, "file://")
	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), data)
}
