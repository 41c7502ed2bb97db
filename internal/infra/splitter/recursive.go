package splitter

import (
	"strings"
	"unicode/utf8"

	"github.com/yanqian/docsummarizer/internal/domain/document"
)

const (
	defaultChunkSize    = 1000
	defaultChunkOverlap = 200
)

var defaultSeparators = []string{"\n\n", "\n", " ", ""}

// TokenCounter measures chunk content for the TokenCount field.
type TokenCounter interface {
	Count(text string) int
}

// RecursiveSplitter cuts page text into overlapping windows of at most
// ChunkSize characters, preferring paragraph, line and word boundaries.
type RecursiveSplitter struct {
	ChunkSize    int
	ChunkOverlap int
	Separators   []string
	counter      TokenCounter
}

// NewRecursiveSplitter constructs a splitter with defaults.
func NewRecursiveSplitter(chunkSize, chunkOverlap int, counter TokenCounter) *RecursiveSplitter {
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = defaultChunkOverlap
		if chunkOverlap >= chunkSize {
			chunkOverlap = chunkSize / 5
		}
	}
	if counter == nil {
		counter = EstimateCounter{}
	}
	return &RecursiveSplitter{
		ChunkSize:    chunkSize,
		ChunkOverlap: chunkOverlap,
		Separators:   defaultSeparators,
		counter:      counter,
	}
}

// Split chunks every page independently so each chunk keeps its page number.
// Chunk indexes run across the whole document.
func (s *RecursiveSplitter) Split(pages []document.Page) []document.Chunk {
	var out []document.Chunk
	for _, page := range pages {
		for _, text := range s.SplitText(page.Text) {
			out = append(out, document.Chunk{
				Index:      len(out),
				Page:       page.Number,
				Content:    text,
				TokenCount: s.counter.Count(text),
			})
		}
	}
	return out
}

// SplitText splits a single text.
func (s *RecursiveSplitter) SplitText(text string) []string {
	return s.split(text, s.Separators)
}

func (s *RecursiveSplitter) split(text string, separators []string) []string {
	separator := separators[len(separators)-1]
	var rest []string
	for i, sep := range separators {
		if sep == "" {
			separator = sep
			break
		}
		if strings.Contains(text, sep) {
			separator = sep
			rest = separators[i+1:]
			break
		}
	}

	var (
		final []string
		good  []string
	)
	for _, piece := range splitKeepSeparator(text, separator) {
		if length(piece) < s.ChunkSize {
			good = append(good, piece)
			continue
		}
		if len(good) > 0 {
			final = append(final, s.merge(good)...)
			good = nil
		}
		if len(rest) == 0 {
			final = append(final, piece)
			continue
		}
		final = append(final, s.split(piece, rest)...)
	}
	if len(good) > 0 {
		final = append(final, s.merge(good)...)
	}
	return final
}

// merge joins small pieces into windows no longer than ChunkSize, carrying
// up to ChunkOverlap characters of trailing pieces into the next window.
func (s *RecursiveSplitter) merge(pieces []string) []string {
	var (
		docs    []string
		current []string
		total   int
	)
	for _, piece := range pieces {
		size := length(piece)
		if total+size > s.ChunkSize {
			if len(current) > 0 {
				if doc := join(current); doc != "" {
					docs = append(docs, doc)
				}
				for total > s.ChunkOverlap || (total+size > s.ChunkSize && total > 0) {
					total -= length(current[0])
					current = current[1:]
				}
			}
		}
		current = append(current, piece)
		total += size
	}
	if doc := join(current); doc != "" {
		docs = append(docs, doc)
	}
	return docs
}

// splitKeepSeparator splits text on sep and glues each separator to the
// start of the piece that follows it. Empty pieces are dropped.
func splitKeepSeparator(text, sep string) []string {
	if sep == "" {
		out := make([]string, 0, len(text))
		for _, r := range text {
			out = append(out, string(r))
		}
		return out
	}
	parts := strings.Split(text, sep)
	out := make([]string, 0, len(parts))
	for i, part := range parts {
		if i > 0 {
			part = sep + part
		}
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func join(pieces []string) string {
	return strings.TrimSpace(strings.Join(pieces, ""))
}

func length(text string) int {
	return utf8.RuneCountInString(text)
}

var _ document.Splitter = (*RecursiveSplitter)(nil)
