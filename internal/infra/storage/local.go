package storage

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/yanqian/docsummarizer/internal/domain/library"
)

const defaultLocalDir = "data"

// LocalStorage keeps blobs as files below a root directory.
type LocalStorage struct {
	root   string
	logger *slog.Logger
}

// NewLocalStorage creates the root directory if needed.
func NewLocalStorage(root string, logger *slog.Logger) (*LocalStorage, error) {
	if strings.TrimSpace(root) == "" {
		root = defaultLocalDir
	}
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &LocalStorage{root: root, logger: logger.With("component", "storage.local")}, nil
}

// Put writes data atomically to root/key.
func (s *LocalStorage) Put(_ context.Context, key string, data []byte, mimeType string) (library.StoredObject, error) {
	path, err := s.path(key)
	if err != nil {
		return library.StoredObject{}, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return library.StoredObject{}, fmt.Errorf("create object dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".upload-*")
	if err != nil {
		return library.StoredObject{}, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return library.StoredObject{}, fmt.Errorf("write object: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return library.StoredObject{}, fmt.Errorf("close object: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return library.StoredObject{}, fmt.Errorf("rename object: %w", err)
	}
	sum := md5.Sum(data)
	s.logger.Debug("object stored", "key", key, "bytes", len(data))
	return library.StoredObject{
		Key:      key,
		Size:     int64(len(data)),
		MimeType: mimeType,
		ETag:     hex.EncodeToString(sum[:]),
	}, nil
}

// Get opens root/key for reading.
func (s *LocalStorage) Get(_ context.Context, key string) (io.ReadCloser, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("get %s: %w", key, library.ErrObjectNotFound)
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}

// Delete removes root/key. Missing files are ignored.
func (s *LocalStorage) Delete(_ context.Context, key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// path resolves key inside root and rejects keys that escape it.
func (s *LocalStorage) path(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(strings.TrimSpace(key)))
	if clean == "." || filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return filepath.Join(s.root, clean), nil
}

var _ library.ObjectStorage = (*LocalStorage)(nil)
