package summarizer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/yanqian/docsummarizer/internal/domain/document"
	apperrors "github.com/yanqian/docsummarizer/pkg/errors"
	"github.com/yanqian/docsummarizer/pkg/metrics"
	"github.com/yanqian/docsummarizer/pkg/util"
)

// Service exposes the cache-aware summarization capabilities.
type Service interface {
	Summarize(ctx context.Context, doc document.Document, mode string) (Summary, error)
	SummarizeByPage(ctx context.Context, doc document.Document) (PageSummaries, error)
}

type service struct {
	cfg         Config
	model       Model
	cache       Cache
	newStrategy StrategyFactory
	logger      *slog.Logger
}

// NewService is a wire provider for the summarizer domain.
func NewService(cfg Config, model Model, cache Cache, counter TokenCounter, logger *slog.Logger) Service {
	if strings.TrimSpace(cfg.DefaultMode) == "" {
		cfg.DefaultMode = ModeDetailed
	}
	return &service{
		cfg:   cfg,
		model: model,
		cache: cache,
		newStrategy: func(chain ChainType) Strategy {
			return NewStrategy(chain, model, counter, cfg.TokenMax)
		},
		logger: logger.With("component", "summarizer.service"),
	}
}

// Summarize returns the cached summary for (doc, mode) or computes and
// caches it. Any previously cached modes of the document are kept.
func (s *service) Summarize(ctx context.Context, doc document.Document, mode string) (Summary, error) {
	mode = s.resolveMode(mode)
	chain := ChainForMode(mode)
	if doc.Hash == "" {
		return Summary{}, apperrors.Wrap(apperrors.CodeInvalidInput, "document hash is missing", nil)
	}

	record, found, err := s.cache.Get(ctx, doc.Hash)
	if err != nil {
		s.logger.Error("summary cache lookup failed", "hash", doc.Hash, "mode", mode, "error", err)
		return Summary{}, apperrors.Wrap(apperrors.CodeCache, "failed to read summary cache", err)
	}
	if found {
		if cached, ok := record[mode]; ok {
			s.logger.Debug("summary cache hit", "hash", doc.Hash, "mode", mode)
			return Summary{
				DocumentID: doc.Hash,
				Mode:       mode,
				Summary:    cached,
				Strategy:   chain,
				Cached:     true,
			}, nil
		}
	}

	if len(doc.Chunks) == 0 {
		return Summary{}, apperrors.Wrap(apperrors.CodeInvalidInput, "document has no extractable text", nil)
	}

	start := time.Now()
	gen, err := s.newStrategy(chain).Run(ctx, doc.Chunks)
	if err != nil {
		s.logger.Error("summarization failed", "hash", doc.Hash, "mode", mode, "strategy", chain, "error", err)
		return Summary{}, apperrors.Wrap(apperrors.CodeLLM, "summarization failed", err)
	}
	text := strings.TrimSpace(gen.SummaryText)

	if record == nil {
		record = Record{}
	}
	record[mode] = text
	if err := s.cache.Put(ctx, doc.Hash, record); err != nil {
		s.logger.Warn("failed to persist summary cache", "hash", doc.Hash, "mode", mode, "error", err)
	}

	s.logger.Info("document summarized", "hash", doc.Hash, "mode", mode, "strategy", chain, "chunks", len(doc.Chunks))
	return Summary{
		DocumentID: doc.Hash,
		Mode:       mode,
		Summary:    text,
		Strategy:   chain,
		DurationMs: util.MillisSince(start),
		TokenUsage: usagePtr(gen.Usage),
	}, nil
}

// SummarizeByPage summarizes every chunk on its own. A single failure
// discards the whole result.
func (s *service) SummarizeByPage(ctx context.Context, doc document.Document) (PageSummaries, error) {
	if len(doc.Chunks) == 0 {
		return PageSummaries{}, apperrors.Wrap(apperrors.CodeInvalidInput, "document has no extractable text", nil)
	}

	start := time.Now()
	var usage metrics.TokenUsage
	pages := make([]PageSummary, 0, len(doc.Chunks))
	byLabel := make(map[string]string, len(doc.Chunks))
	for i, chunk := range doc.Chunks {
		page := chunk.Page
		if page <= 0 {
			page = i + 1
		}
		gen, err := s.model.Generate(ctx, concisePrompt(chunk.Content))
		if err != nil {
			s.logger.Error("page summarization failed", "hash", doc.Hash, "chunk", i, "page", page, "error", err)
			return PageSummaries{}, apperrors.Wrap(apperrors.CodeLLM, PageErrorMessage, err)
		}
		usage.Add(gen.Usage)
		label := fmt.Sprintf("Page %d", page)
		summary := strings.TrimSpace(gen.SummaryText)
		pages = append(pages, PageSummary{Label: label, Page: page, ChunkIndex: chunk.Index, Summary: summary})
		byLabel[label] = summary
	}

	return PageSummaries{
		DocumentID: doc.Hash,
		Pages:      pages,
		ByLabel:    byLabel,
		DurationMs: util.MillisSince(start),
		TokenUsage: usagePtr(usage),
	}, nil
}

func (s *service) resolveMode(mode string) string {
	mode = strings.TrimSpace(mode)
	if mode == "" {
		return s.cfg.DefaultMode
	}
	return mode
}

func usagePtr(u metrics.TokenUsage) *metrics.TokenUsage {
	if u.IsZero() {
		return nil
	}
	return &u
}
