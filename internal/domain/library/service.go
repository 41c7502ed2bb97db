package library

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/yanqian/docsummarizer/internal/domain/document"
	"github.com/yanqian/docsummarizer/internal/domain/summarizer"
	apperrors "github.com/yanqian/docsummarizer/pkg/errors"
)

const pdfMimeType = "application/pdf"

// Service stores uploaded PDFs by content hash and reloads them on demand.
type Service struct {
	cfg        Config
	storage    ObjectStorage
	ingestor   Ingestor
	summarizer summarizer.Service
	queue      JobQueue
	logger     *slog.Logger
}

// NewService constructs a Service. queue may be nil to disable prewarming.
func NewService(cfg Config, storage ObjectStorage, ingestor Ingestor, summarizer summarizer.Service, queue JobQueue, logger *slog.Logger) *Service {
	return &Service{
		cfg:        cfg,
		storage:    storage,
		ingestor:   ingestor,
		summarizer: summarizer,
		queue:      queue,
		logger:     logger.With("component", "library.service"),
	}
}

// Upload validates, ingests and stores a PDF, then enqueues prewarm jobs.
func (s *Service) Upload(ctx context.Context, req UploadRequest) (document.Document, error) {
	if len(req.Content) == 0 {
		return document.Document{}, apperrors.Wrap(apperrors.CodeInvalidInput, "file content cannot be empty", nil)
	}
	if s.cfg.MaxFileBytes > 0 && int64(len(req.Content)) > s.cfg.MaxFileBytes {
		return document.Document{}, apperrors.Wrap(apperrors.CodeInvalidInput, "file exceeds maximum allowed size", nil)
	}
	if !IsPDF(req.Filename, req.MimeType, req.Content) {
		return document.Document{}, apperrors.Wrap(apperrors.CodeUnsupportedMedia, UnsupportedMediaMessage, nil)
	}
	filename := strings.TrimSpace(req.Filename)
	if filename == "" {
		filename = "document.pdf"
	}

	doc, err := s.ingestor.Ingest(ctx, filename, req.Content)
	if err != nil {
		return document.Document{}, err
	}
	obj, err := s.storage.Put(ctx, objectKey(doc.Hash), req.Content, pdfMimeType)
	if err != nil {
		return document.Document{}, apperrors.Wrap(apperrors.CodeStorage, "failed to store file", err)
	}
	doc.Path = obj.Key
	s.logger.Info("document stored", "id", doc.Hash, "filename", filename, "bytes", obj.Size, "chunks", len(doc.Chunks))

	if !req.SkipPrewarm {
		s.prewarm(ctx, doc.Hash)
	}
	return doc, nil
}

// Load reads a stored document by id and ingests it again.
func (s *Service) Load(ctx context.Context, id string) (document.Document, error) {
	id = strings.TrimSpace(id)
	if !document.ValidHash(id) {
		return document.Document{}, apperrors.Wrap(apperrors.CodeInvalidInput, "invalid document id", nil)
	}
	key := objectKey(id)
	reader, err := s.storage.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrObjectNotFound) {
			return document.Document{}, apperrors.Wrap(apperrors.CodeNotFound, "document not found", nil)
		}
		return document.Document{}, apperrors.Wrap(apperrors.CodeStorage, "failed to load file", err)
	}
	defer reader.Close()
	data, err := io.ReadAll(reader)
	if err != nil {
		return document.Document{}, apperrors.Wrap(apperrors.CodeIO, "failed to read file", err)
	}
	doc, err := s.ingestor.Ingest(ctx, id+".pdf", data)
	if err != nil {
		return document.Document{}, err
	}
	doc.Path = key
	return doc, nil
}

// Summarize loads a stored document and summarizes it in mode.
func (s *Service) Summarize(ctx context.Context, id, mode string) (summarizer.Summary, error) {
	doc, err := s.Load(ctx, id)
	if err != nil {
		return summarizer.Summary{}, err
	}
	return s.summarizer.Summarize(ctx, doc, mode)
}

// SummarizeByPage loads a stored document and summarizes each chunk.
func (s *Service) SummarizeByPage(ctx context.Context, id string) (summarizer.PageSummaries, error) {
	doc, err := s.Load(ctx, id)
	if err != nil {
		return summarizer.PageSummaries{}, err
	}
	return s.summarizer.SummarizeByPage(ctx, doc)
}

// HandleJob executes a queued job. It is registered as the queue handler.
func (s *Service) HandleJob(ctx context.Context, name string, payload map[string]any) {
	switch name {
	case JobSummarizeDocument:
		id, _ := payload["document_id"].(string)
		mode, _ := payload["mode"].(string)
		resp, err := s.Summarize(ctx, id, mode)
		if err != nil {
			s.logger.Error("prewarm summary failed", "id", id, "mode", mode, "error", err)
			return
		}
		s.logger.Info("prewarm summary ready", "id", id, "mode", resp.Mode, "cached", resp.Cached)
	default:
		s.logger.Warn("unknown job", "name", name)
	}
}

func (s *Service) prewarm(ctx context.Context, id string) {
	if s.queue == nil {
		return
	}
	for _, mode := range s.cfg.PrewarmModes {
		mode = strings.TrimSpace(mode)
		if mode == "" {
			continue
		}
		payload := map[string]any{"document_id": id, "mode": mode}
		if err := s.queue.Enqueue(context.WithoutCancel(ctx), JobSummarizeDocument, payload); err != nil {
			s.logger.Warn("enqueue summarize_document failed", "id", id, "mode", mode, "error", err)
		}
	}
}

func objectKey(id string) string {
	return fmt.Sprintf("documents/%s.pdf", id)
}
