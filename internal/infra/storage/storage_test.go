package storage

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/docsummarizer/internal/domain/library"
)

func TestObjectStorageRoundTrip(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	local, err := NewLocalStorage(t.TempDir(), logger)
	require.NoError(t, err)

	backends := map[string]library.ObjectStorage{
		"memory": NewMemoryStorage(),
		"local":  local,
	}
	for name, store := range backends {
		store := store
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			obj, err := store.Put(ctx, "documents/abc.pdf", []byte("%PDF-1.4"), "application/pdf")
			require.NoError(t, err)
			require.Equal(t, int64(8), obj.Size)
			require.NotEmpty(t, obj.ETag)

			reader, err := store.Get(ctx, "documents/abc.pdf")
			require.NoError(t, err)
			data, err := io.ReadAll(reader)
			require.NoError(t, err)
			require.NoError(t, reader.Close())
			require.Equal(t, "%PDF-1.4", string(data))

			require.NoError(t, store.Delete(ctx, "documents/abc.pdf"))
			_, err = store.Get(ctx, "documents/abc.pdf")
			require.True(t, errors.Is(err, library.ErrObjectNotFound))
			require.NoError(t, store.Delete(ctx, "documents/abc.pdf"))
		})
	}
}

func TestLocalStorageLayout(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	store, err := NewLocalStorage(root, nil)
	require.NoError(t, err)

	_, err = store.Put(context.Background(), "documents/abc.pdf", []byte("x"), "application/pdf")
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(root, "documents", "abc.pdf"))
	require.NoError(t, err)

	entries, err := os.ReadDir(filepath.Join(root, "documents"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestLocalStorageRejectsEscapingKeys(t *testing.T) {
	t.Parallel()
	store, err := NewLocalStorage(t.TempDir(), nil)
	require.NoError(t, err)

	for _, key := range []string{"../outside.pdf", "/etc/passwd", ""} {
		_, err := store.Put(context.Background(), key, []byte("x"), "application/pdf")
		require.Error(t, err, key)
	}
}

func TestSanitizeEndpoint(t *testing.T) {
	t.Parallel()
	require.Equal(t, "acc.r2.cloudflarestorage.com", sanitizeEndpoint("https://acc.r2.cloudflarestorage.com/bucket"))
	require.Equal(t, "localhost:9000", sanitizeEndpoint(" http://localhost:9000 "))
}
