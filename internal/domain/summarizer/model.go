package summarizer

import (
	"context"

	"github.com/yanqian/docsummarizer/pkg/metrics"
)

const (
	// ModeDetailed selects the map-reduce strategy. Every other mode refines.
	ModeDetailed = "detailed"

	// FallbackSummary is shown to clients when document summarization fails.
	FallbackSummary = "Sorry, summarization failed."
	// PageErrorMessage is shown to clients when per-page summarization fails.
	PageErrorMessage = "Failed to summarize by page."
)

// Config configures the summarizer domain.
type Config struct {
	DefaultMode string
	// TokenMax bounds the combined size of partial summaries before the
	// map-reduce strategy collapses them again.
	TokenMax int
}

// Generation is a single model response.
type Generation struct {
	SummaryText string             `json:"summary_text"`
	Usage       metrics.TokenUsage `json:"usage"`
}

// Model is the text generation boundary.
type Model interface {
	Generate(ctx context.Context, prompt string) (Generation, error)
}

// TokenCounter measures text in model tokens.
type TokenCounter interface {
	Count(text string) int
}

// Record maps a mode name to its cached summary for one document.
type Record map[string]string

// Cache persists summaries keyed by document hash.
type Cache interface {
	Get(ctx context.Context, hash string) (Record, bool, error)
	Put(ctx context.Context, hash string, record Record) error
}

// Summary is returned by Service.Summarize.
type Summary struct {
	DocumentID string              `json:"documentId"`
	Mode       string              `json:"mode"`
	Summary    string              `json:"summary"`
	Strategy   ChainType           `json:"strategy"`
	Cached     bool                `json:"cached"`
	DurationMs int64               `json:"durationMs,omitempty"`
	TokenUsage *metrics.TokenUsage `json:"tokenUsage,omitempty"`
}

// PageSummary is the summary of one chunk labelled by its page.
type PageSummary struct {
	Label      string `json:"label"`
	Page       int    `json:"page"`
	ChunkIndex int    `json:"chunkIndex"`
	Summary    string `json:"summary"`
}

// PageSummaries keeps every chunk summary in order. ByLabel collapses
// entries sharing a label, the last chunk of a page wins.
type PageSummaries struct {
	DocumentID string              `json:"documentId"`
	Pages      []PageSummary       `json:"pages"`
	ByLabel    map[string]string   `json:"summaries"`
	DurationMs int64               `json:"durationMs,omitempty"`
	TokenUsage *metrics.TokenUsage `json:"tokenUsage,omitempty"`
}
