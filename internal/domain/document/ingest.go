package document

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	apperrors "github.com/yanqian/docsummarizer/pkg/errors"
)

// Ingestor loads a PDF and splits it into chunks.
type Ingestor struct {
	loader   Loader
	splitter Splitter
	digest   Digest
	logger   *slog.Logger
}

// NewIngestor wires the loader and splitter behind a single entry point.
func NewIngestor(loader Loader, splitter Splitter, digest Digest, logger *slog.Logger) *Ingestor {
	if digest == "" {
		digest = DigestMD5
	}
	return &Ingestor{
		loader:   loader,
		splitter: splitter,
		digest:   digest,
		logger:   logger.With("component", "document.ingestor"),
	}
}

// Hash returns the content hash for data using the configured digest.
func (i *Ingestor) Hash(data []byte) string {
	return i.digest.Sum(data)
}

// IngestFile reads the file at path and ingests its bytes.
func (i *Ingestor) IngestFile(ctx context.Context, path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, apperrors.Wrap(apperrors.CodeIO, "failed to read document", err)
	}
	doc, err := i.Ingest(ctx, filepath.Base(path), data)
	if err != nil {
		return Document{}, err
	}
	doc.Path = path
	return doc, nil
}

// Ingest hashes, loads and splits an in-memory PDF.
func (i *Ingestor) Ingest(ctx context.Context, name string, data []byte) (Document, error) {
	if len(data) == 0 {
		return Document{}, apperrors.Wrap(apperrors.CodeInvalidInput, "document is empty", nil)
	}
	pages, err := i.loader.Load(ctx, data)
	if err != nil {
		return Document{}, apperrors.Wrap(apperrors.CodeInvalidInput, "failed to extract pdf text", err)
	}
	chunks := i.splitter.Split(pages)
	doc := Document{
		Name:   name,
		Hash:   i.Hash(data),
		Size:   int64(len(data)),
		Pages:  pages,
		Chunks: chunks,
	}
	i.logger.Debug("document ingested", "hash", doc.Hash, "pages", len(pages), "chunks", len(chunks))
	return doc, nil
}
