package splitter

import (
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

const defaultEncoding = "cl100k_base"

// TiktokenCounter counts BPE tokens with a tiktoken encoding.
type TiktokenCounter struct {
	enc *tiktoken.Tiktoken
}

// NewTokenCounter loads the named encoding. When the encoding cannot be
// loaded, for example without network access to fetch its ranks, the
// word based estimator is returned instead.
func NewTokenCounter(encoding string) TokenCounter {
	if strings.TrimSpace(encoding) == "" {
		encoding = defaultEncoding
	}
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return EstimateCounter{}
	}
	return &TiktokenCounter{enc: enc}
}

// Count implements TokenCounter.
func (c *TiktokenCounter) Count(text string) int {
	if text == "" {
		return 0
	}
	return len(c.enc.Encode(text, nil, nil))
}

// EstimateCounter approximates tokens as four characters each, never less
// than the word count.
type EstimateCounter struct{}

// Count implements TokenCounter.
func (EstimateCounter) Count(text string) int {
	if text == "" {
		return 0
	}
	words := len(strings.Fields(text))
	estimate := (len(text) + 3) / 4
	if words > estimate {
		return words
	}
	return estimate
}
