package summarizer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/docsummarizer/internal/domain/document"
	apperrors "github.com/yanqian/docsummarizer/pkg/errors"
	"github.com/yanqian/docsummarizer/pkg/metrics"
)

func TestSummarizeCachesPerDocumentAndMode(t *testing.T) {
	cache := newStubCache()
	svc, factory := newServiceUnderTest(&stubModel{}, cache)
	doc := testDocument("alpha", 1, 1, 2)

	first, err := svc.Summarize(context.Background(), doc, ModeDetailed)
	require.NoError(t, err)
	require.False(t, first.Cached)
	require.Equal(t, "map_reduce summary", first.Summary)

	second, err := svc.Summarize(context.Background(), doc, ModeDetailed)
	require.NoError(t, err)
	require.True(t, second.Cached)
	require.Equal(t, first.Summary, second.Summary)
	require.Equal(t, 1, factory.runs)
}

func TestSummarizeKeepsDocumentsApart(t *testing.T) {
	cache := newStubCache()
	svc, factory := newServiceUnderTest(&stubModel{}, cache)
	docA := testDocument("alpha", 1)
	docB := testDocument("beta", 1)
	require.NotEqual(t, docA.Hash, docB.Hash)

	_, err := svc.Summarize(context.Background(), docA, ModeDetailed)
	require.NoError(t, err)
	_, err = svc.Summarize(context.Background(), docB, ModeDetailed)
	require.NoError(t, err)

	require.Equal(t, 2, factory.runs)
	require.Len(t, cache.records, 2)
	require.Contains(t, cache.records, docA.Hash)
	require.Contains(t, cache.records, docB.Hash)
}

func TestSummarizeSelectsStrategyByMode(t *testing.T) {
	tests := []struct {
		mode string
		want ChainType
	}{
		{mode: "detailed", want: ChainMapReduce},
		{mode: "", want: ChainMapReduce},
		{mode: "brief", want: ChainRefine},
		{mode: "Detailed", want: ChainRefine},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.mode, func(t *testing.T) {
			t.Parallel()
			svc, factory := newServiceUnderTest(&stubModel{}, newStubCache())
			resp, err := svc.Summarize(context.Background(), testDocument("doc-"+tt.mode, 1), tt.mode)
			require.NoError(t, err)
			require.Equal(t, []ChainType{tt.want}, factory.built)
			require.Equal(t, tt.want, resp.Strategy)
		})
	}
}

func TestSummarizeMergesModesIntoOneRecord(t *testing.T) {
	cache := newStubCache()
	svc, _ := newServiceUnderTest(&stubModel{}, cache)
	doc := testDocument("alpha", 1)

	_, err := svc.Summarize(context.Background(), doc, "detailed")
	require.NoError(t, err)
	_, err = svc.Summarize(context.Background(), doc, "brief")
	require.NoError(t, err)

	require.Equal(t, Record{"detailed": "map_reduce summary", "brief": "refine summary"}, cache.records[doc.Hash])
}

func TestSummarizeComputesMissingModeForCachedDocument(t *testing.T) {
	cache := newStubCache()
	doc := testDocument("alpha", 1)
	cache.records[doc.Hash] = Record{"brief": "short"}
	svc, factory := newServiceUnderTest(&stubModel{}, cache)

	resp, err := svc.Summarize(context.Background(), doc, "detailed")
	require.NoError(t, err)
	require.False(t, resp.Cached)
	require.Equal(t, 1, factory.runs)
	require.Equal(t, "short", cache.records[doc.Hash]["brief"])
}

func TestSummarizeFailures(t *testing.T) {
	t.Run("strategy failure is an llm error and is not cached", func(t *testing.T) {
		cache := newStubCache()
		svc, factory := newServiceUnderTest(&stubModel{}, cache)
		factory.err = errors.New("model unavailable")

		_, err := svc.Summarize(context.Background(), testDocument("alpha", 1), "brief")
		require.True(t, apperrors.IsCode(err, "llm_error"))
		require.Empty(t, cache.records)
	})

	t.Run("unreadable cache is a cache error", func(t *testing.T) {
		cache := newStubCache()
		cache.getErr = errors.New("invalid character '}'")
		svc, factory := newServiceUnderTest(&stubModel{}, cache)

		_, err := svc.Summarize(context.Background(), testDocument("alpha", 1), "brief")
		require.True(t, apperrors.IsCode(err, "cache_error"))
		require.Zero(t, factory.runs)
	})

	t.Run("write failure still returns the summary", func(t *testing.T) {
		cache := newStubCache()
		cache.putErr = errors.New("read-only file system")
		svc, _ := newServiceUnderTest(&stubModel{}, cache)

		resp, err := svc.Summarize(context.Background(), testDocument("alpha", 1), "brief")
		require.NoError(t, err)
		require.Equal(t, "refine summary", resp.Summary)
	})

	t.Run("document without chunks is invalid input", func(t *testing.T) {
		svc, _ := newServiceUnderTest(&stubModel{}, newStubCache())
		_, err := svc.Summarize(context.Background(), document.Document{Hash: "abc"}, "brief")
		require.True(t, apperrors.IsCode(err, "invalid_input"))
	})

	t.Run("document without hash is invalid input", func(t *testing.T) {
		svc, _ := newServiceUnderTest(&stubModel{}, newStubCache())
		_, err := svc.Summarize(context.Background(), document.Document{}, "brief")
		require.True(t, apperrors.IsCode(err, "invalid_input"))
	})
}

func TestSummarizeByPageLabelsChunks(t *testing.T) {
	model := &stubModel{}
	svc, factory := newServiceUnderTest(model, newStubCache())
	doc := testDocument("alpha", 1, 1, 2)

	resp, err := svc.SummarizeByPage(context.Background(), doc)
	require.NoError(t, err)
	require.Zero(t, factory.runs)

	labels := make([]string, 0, len(resp.Pages))
	for _, p := range resp.Pages {
		labels = append(labels, p.Label)
	}
	require.Equal(t, []string{"Page 1", "Page 1", "Page 2"}, labels)
	require.Equal(t, []int{0, 1, 2}, []int{resp.Pages[0].ChunkIndex, resp.Pages[1].ChunkIndex, resp.Pages[2].ChunkIndex})
	require.Len(t, resp.ByLabel, 2)
	require.Equal(t, "summary of alpha chunk 1", resp.ByLabel["Page 1"])
	require.Equal(t, "summary of alpha chunk 2", resp.ByLabel["Page 2"])
	require.Equal(t, 3, model.calls)
	require.Equal(t, &metrics.TokenUsage{PromptTokens: 3, CompletionTokens: 3, TotalTokens: 6}, resp.TokenUsage)
}

func TestSummarizeByPageFallsBackToPosition(t *testing.T) {
	svc, _ := newServiceUnderTest(&stubModel{}, newStubCache())
	doc := testDocument("alpha", 0, 0)

	resp, err := svc.SummarizeByPage(context.Background(), doc)
	require.NoError(t, err)
	require.Equal(t, "Page 1", resp.Pages[0].Label)
	require.Equal(t, "Page 2", resp.Pages[1].Label)
}

func TestSummarizeByPageDiscardsPartialResults(t *testing.T) {
	model := &stubModel{failOn: "alpha chunk 2"}
	svc, _ := newServiceUnderTest(model, newStubCache())

	resp, err := svc.SummarizeByPage(context.Background(), testDocument("alpha", 1, 1, 2))
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, "llm_error"))
	require.Contains(t, err.Error(), PageErrorMessage)
	require.Empty(t, resp.Pages)
	require.Empty(t, resp.ByLabel)
}

func newServiceUnderTest(model Model, cache Cache) (*service, *stubFactory) {
	factory := &stubFactory{}
	svc := NewService(Config{TokenMax: 100}, model, cache, nil, slog.New(slog.NewTextHandler(io.Discard, nil))).(*service)
	svc.newStrategy = factory.build
	return svc, factory
}

func testDocument(content string, pages ...int) document.Document {
	chunks := make([]document.Chunk, 0, len(pages))
	for i, page := range pages {
		chunks = append(chunks, document.Chunk{Index: i, Page: page, Content: fmt.Sprintf("%s chunk %d", content, i)})
	}
	return document.Document{Name: content + ".pdf", Hash: document.DigestMD5.Sum([]byte(content)), Chunks: chunks}
}

type stubFactory struct {
	built []ChainType
	runs  int
	err   error
}

func (f *stubFactory) build(chain ChainType) Strategy {
	f.built = append(f.built, chain)
	return strategyFunc(func(ctx context.Context, chunks []document.Chunk) (Generation, error) {
		f.runs++
		if f.err != nil {
			return Generation{}, f.err
		}
		return Generation{SummaryText: string(chain) + " summary"}, nil
	})
}

type strategyFunc func(ctx context.Context, chunks []document.Chunk) (Generation, error)

func (f strategyFunc) Run(ctx context.Context, chunks []document.Chunk) (Generation, error) {
	return f(ctx, chunks)
}

type stubModel struct {
	calls   int
	prompts []string
	failOn  string
}

// Generate answers with "summary of <quoted text>" for concise prompts.
func (m *stubModel) Generate(_ context.Context, prompt string) (Generation, error) {
	m.calls++
	m.prompts = append(m.prompts, prompt)
	if m.failOn != "" && strings.Contains(prompt, m.failOn) {
		return Generation{}, errors.New("model exploded")
	}
	text := prompt
	if first := strings.Index(prompt, `"`); first >= 0 {
		if last := strings.LastIndex(prompt, `"`); last > first {
			text = prompt[first+1 : last]
		}
	}
	return Generation{
		SummaryText: " summary of " + text + " ",
		Usage:       metrics.TokenUsage{PromptTokens: 1, CompletionTokens: 1},
	}, nil
}

type stubCache struct {
	records map[string]Record
	getErr  error
	putErr  error
}

func newStubCache() *stubCache {
	return &stubCache{records: make(map[string]Record)}
}

func (c *stubCache) Get(_ context.Context, hash string) (Record, bool, error) {
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	record, ok := c.records[hash]
	if !ok {
		return nil, false, nil
	}
	out := make(Record, len(record))
	for k, v := range record {
		out[k] = v
	}
	return out, true, nil
}

func (c *stubCache) Put(_ context.Context, hash string, record Record) error {
	if c.putErr != nil {
		return c.putErr
	}
	out := make(Record, len(record))
	for k, v := range record {
		out[k] = v
	}
	c.records[hash] = out
	return nil
}
