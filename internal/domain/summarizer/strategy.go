package summarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yanqian/docsummarizer/internal/domain/document"
	"github.com/yanqian/docsummarizer/pkg/metrics"
)

// ChainType names a summarization strategy.
type ChainType string

const (
	ChainMapReduce ChainType = "map_reduce"
	ChainRefine    ChainType = "refine"
)

const (
	defaultTokenMax   = 3000
	maxCollapsePasses = 5
)

var errNoChunks = errors.New("no chunks to summarize")

// ChainForMode maps a requested mode onto a strategy.
func ChainForMode(mode string) ChainType {
	if mode == ModeDetailed {
		return ChainMapReduce
	}
	return ChainRefine
}

// Strategy reduces a chunk sequence to one summary.
type Strategy interface {
	Run(ctx context.Context, chunks []document.Chunk) (Generation, error)
}

// StrategyFactory builds the strategy for a chain type.
type StrategyFactory func(chain ChainType) Strategy

// NewStrategy returns the built-in implementation for chain.
func NewStrategy(chain ChainType, model Model, counter TokenCounter, tokenMax int) Strategy {
	if chain == ChainMapReduce {
		return &mapReduceStrategy{model: model, counter: counter, tokenMax: tokenMax}
	}
	return &refineStrategy{model: model}
}

// mapReduceStrategy summarizes every chunk, then combines the partial
// summaries, collapsing them in groups while they exceed tokenMax.
type mapReduceStrategy struct {
	model    Model
	counter  TokenCounter
	tokenMax int
}

func (m *mapReduceStrategy) Run(ctx context.Context, chunks []document.Chunk) (Generation, error) {
	if len(chunks) == 0 {
		return Generation{}, errNoChunks
	}
	var usage metrics.TokenUsage
	partials := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		gen, err := m.model.Generate(ctx, concisePrompt(chunk.Content))
		if err != nil {
			return Generation{}, fmt.Errorf("map chunk %d: %w", chunk.Index, err)
		}
		usage.Add(gen.Usage)
		partials = append(partials, strings.TrimSpace(gen.SummaryText))
	}

	limit := m.tokenMax
	if limit <= 0 {
		limit = defaultTokenMax
	}
	for pass := 0; pass < maxCollapsePasses && len(partials) > 1 && m.count(strings.Join(partials, "\n\n")) > limit; pass++ {
		groups := groupByTokens(partials, m.count, limit)
		collapsed := make([]string, 0, len(groups))
		for _, group := range groups {
			gen, err := m.model.Generate(ctx, concisePrompt(strings.Join(group, "\n\n")))
			if err != nil {
				return Generation{}, fmt.Errorf("collapse pass %d: %w", pass+1, err)
			}
			usage.Add(gen.Usage)
			collapsed = append(collapsed, strings.TrimSpace(gen.SummaryText))
		}
		partials = collapsed
	}

	gen, err := m.model.Generate(ctx, concisePrompt(strings.Join(partials, "\n\n")))
	if err != nil {
		return Generation{}, fmt.Errorf("combine: %w", err)
	}
	usage.Add(gen.Usage)
	return Generation{SummaryText: strings.TrimSpace(gen.SummaryText), Usage: usage}, nil
}

func (m *mapReduceStrategy) count(text string) int {
	if m.counter == nil {
		return len(strings.Fields(text))
	}
	return m.counter.Count(text)
}

// groupByTokens packs consecutive texts into groups whose joined size stays
// within limit. A single oversized text forms its own group.
func groupByTokens(texts []string, count func(string) int, limit int) [][]string {
	var (
		groups  [][]string
		current []string
	)
	for _, text := range texts {
		candidate := append(append([]string(nil), current...), text)
		if len(current) > 0 && count(strings.Join(candidate, "\n\n")) > limit {
			groups = append(groups, current)
			current = []string{text}
			continue
		}
		current = candidate
	}
	if len(current) > 0 {
		groups = append(groups, current)
	}
	return groups
}

// refineStrategy summarizes the first chunk and folds every following chunk
// into the running summary.
type refineStrategy struct {
	model Model
}

func (r *refineStrategy) Run(ctx context.Context, chunks []document.Chunk) (Generation, error) {
	if len(chunks) == 0 {
		return Generation{}, errNoChunks
	}
	var usage metrics.TokenUsage
	gen, err := r.model.Generate(ctx, concisePrompt(chunks[0].Content))
	if err != nil {
		return Generation{}, fmt.Errorf("initial chunk %d: %w", chunks[0].Index, err)
	}
	usage.Add(gen.Usage)
	answer := strings.TrimSpace(gen.SummaryText)

	for _, chunk := range chunks[1:] {
		gen, err := r.model.Generate(ctx, refinePrompt(answer, chunk.Content))
		if err != nil {
			return Generation{}, fmt.Errorf("refine chunk %d: %w", chunk.Index, err)
		}
		usage.Add(gen.Usage)
		if refined := strings.TrimSpace(gen.SummaryText); refined != "" {
			answer = refined
		}
	}
	return Generation{SummaryText: answer, Usage: usage}, nil
}
