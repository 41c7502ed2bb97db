package summarycache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/yanqian/docsummarizer/internal/domain/summarizer"
)

const defaultDir = "summary_cache"

// FileStore keeps one JSON object per document at dir/{hash}.json.
type FileStore struct {
	dir string
}

// NewFileStore creates dir if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if strings.TrimSpace(dir) == "" {
		dir = defaultDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Get reads the record for hash. A missing file is a miss; a malformed one
// is an error.
func (s *FileStore) Get(_ context.Context, hash string) (summarizer.Record, bool, error) {
	path, err := s.path(hash)
	if err != nil {
		return nil, false, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var record summarizer.Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, false, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	if record == nil {
		record = summarizer.Record{}
	}
	return record, true, nil
}

// Put replaces the record for hash through a temp file and rename.
func (s *FileStore) Put(_ context.Context, hash string, record summarizer.Record) error {
	path, err := s.path(hash)
	if err != nil {
		return err
	}
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.dir, ".cache-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func (s *FileStore) path(hash string) (string, error) {
	if hash == "" || strings.ContainsAny(hash, `/\.`) {
		return "", fmt.Errorf("invalid cache key %q", hash)
	}
	return filepath.Join(s.dir, hash+".json"), nil
}

var _ summarizer.Cache = (*FileStore)(nil)
