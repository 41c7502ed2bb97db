package model

import (
	"context"
	"strings"

	"github.com/yanqian/docsummarizer/internal/domain/summarizer"
)

const (
	defaultLeadSentences = 3
	refineDelimiter      = "------------"
)

// ExtractiveModel is an offline fallback that answers with the leading
// sentences of the text embedded in the prompt. No external calls.
type ExtractiveModel struct {
	sentences int
}

// NewExtractiveModel constructs the fallback.
func NewExtractiveModel(sentences int) *ExtractiveModel {
	if sentences <= 0 {
		sentences = defaultLeadSentences
	}
	return &ExtractiveModel{sentences: sentences}
}

func (m *ExtractiveModel) Generate(_ context.Context, prompt string) (summarizer.Generation, error) {
	return summarizer.Generation{SummaryText: leadSentences(promptBody(prompt), m.sentences)}, nil
}

// promptBody returns the quoted text of a concise prompt or the delimited
// context of a refine prompt, else the whole prompt.
func promptBody(prompt string) string {
	if first := strings.Index(prompt, refineDelimiter); first >= 0 {
		rest := prompt[first+len(refineDelimiter):]
		if end := strings.Index(rest, refineDelimiter); end >= 0 {
			return strings.TrimSpace(rest[:end])
		}
	}
	first := strings.Index(prompt, `"`)
	last := strings.LastIndex(prompt, `"`)
	if first >= 0 && last > first {
		return strings.TrimSpace(prompt[first+1 : last])
	}
	return strings.TrimSpace(prompt)
}

func leadSentences(text string, n int) string {
	words := strings.Fields(text)
	var (
		out   []string
		count int
	)
	for _, word := range words {
		out = append(out, word)
		if strings.HasSuffix(word, ".") || strings.HasSuffix(word, "!") || strings.HasSuffix(word, "?") {
			count++
			if count == n {
				break
			}
		}
	}
	return strings.Join(out, " ")
}

var _ summarizer.Model = (*ExtractiveModel)(nil)
