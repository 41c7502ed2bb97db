package library

import (
	"context"
	"errors"
	"io"

	"github.com/yanqian/docsummarizer/internal/domain/document"
)

// JobSummarizeDocument computes and caches one summary mode of a stored document.
const JobSummarizeDocument = "summarize_document"

// UnsupportedMediaMessage is returned when an upload is not a PDF.
const UnsupportedMediaMessage = "Only PDF files are supported."

// ErrObjectNotFound is returned by ObjectStorage when a key does not exist.
var ErrObjectNotFound = errors.New("object not found")

// Config drives upload limits and cache prewarming.
type Config struct {
	MaxFileBytes int64
	PrewarmModes []string
}

// ObjectStorage abstracts blob storage (local dir, memory, R2/S3).
type ObjectStorage interface {
	Put(ctx context.Context, key string, data []byte, mimeType string) (StoredObject, error)
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// StoredObject captures persisted blob metadata.
type StoredObject struct {
	Key      string
	Size     int64
	MimeType string
	ETag     string
}

// JobQueue enqueues background work.
type JobQueue interface {
	Enqueue(ctx context.Context, name string, payload map[string]any) error
}

// Ingestor turns raw PDF bytes into a chunked document.
type Ingestor interface {
	Ingest(ctx context.Context, name string, data []byte) (document.Document, error)
}

// UploadRequest captures a multipart submission.
type UploadRequest struct {
	Filename string
	MimeType string
	Content  []byte
	// SkipPrewarm is set by callers that summarize the upload right away.
	SkipPrewarm bool
}

// UploadResponse returns document metadata after storing.
type UploadResponse struct {
	Document document.Info `json:"document"`
}
