package splitter

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/docsummarizer/internal/domain/document"
)

func TestSplitTextShortInput(t *testing.T) {
	t.Parallel()
	s := NewRecursiveSplitter(1000, 200, nil)
	require.Equal(t, []string{"hello world"}, s.SplitText("  hello world \n"))
	require.Empty(t, s.SplitText(""))
	require.Empty(t, s.SplitText("   \n\n  "))
}

func TestSplitTextPrefersParagraphs(t *testing.T) {
	t.Parallel()
	s := NewRecursiveSplitter(1000, 200, nil)
	a := strings.Repeat("a", 600)
	b := strings.Repeat("b", 600)

	require.Equal(t, []string{a, b}, s.SplitText(a+"\n\n"+b))
}

func TestSplitTextFallsBackToCharacters(t *testing.T) {
	t.Parallel()
	s := NewRecursiveSplitter(1000, 200, nil)

	chunks := s.SplitText(strings.Repeat("x", 2500))
	require.Len(t, chunks, 3)
	require.Equal(t, 1000, len(chunks[0]))
	require.Equal(t, 1000, len(chunks[1]))
	require.Equal(t, 900, len(chunks[2]))
}

func TestSplitTextBoundsAndOverlap(t *testing.T) {
	t.Parallel()
	s := NewRecursiveSplitter(1000, 200, nil)
	words := make([]string, 0, 300)
	for i := 0; i < 300; i++ {
		words = append(words, fmt.Sprintf("word%04d", i))
	}

	chunks := s.SplitText(strings.Join(words, " "))
	require.Greater(t, len(chunks), 1)
	for i, chunk := range chunks {
		require.LessOrEqual(t, utf8.RuneCountInString(chunk), 1000)
		if i == 0 {
			continue
		}
		first := strings.Fields(chunk)[0]
		require.Contains(t, chunks[i-1], first, "chunk %d should start inside the previous window", i)
	}
}

func TestSplitKeepsPageNumbers(t *testing.T) {
	t.Parallel()
	s := NewRecursiveSplitter(1000, 200, EstimateCounter{})
	pages := []document.Page{
		{Number: 1, Text: strings.Repeat("alpha ", 200)},
		{Number: 2, Text: "short page"},
		{Number: 3, Text: "  "},
	}

	chunks := s.Split(pages)
	require.Len(t, chunks, 3)
	require.Equal(t, []int{1, 1, 2}, []int{chunks[0].Page, chunks[1].Page, chunks[2].Page})
	for i, chunk := range chunks {
		require.Equal(t, i, chunk.Index)
		require.Positive(t, chunk.TokenCount)
	}
	require.Equal(t, "short page", chunks[2].Content)
}

func TestNewRecursiveSplitterDefaults(t *testing.T) {
	t.Parallel()
	s := NewRecursiveSplitter(0, -1, nil)
	require.Equal(t, 1000, s.ChunkSize)
	require.Equal(t, 200, s.ChunkOverlap)

	small := NewRecursiveSplitter(100, 500, nil)
	require.Equal(t, 20, small.ChunkOverlap)
}

func TestEstimateCounter(t *testing.T) {
	t.Parallel()
	tests := []struct {
		text string
		want int
	}{
		{text: "", want: 0},
		{text: "hello world", want: 3},
		{text: "a b c d e f", want: 6},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, EstimateCounter{}.Count(tt.text), tt.text)
	}
}
