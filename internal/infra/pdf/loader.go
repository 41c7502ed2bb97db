package pdf

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/yanqian/docsummarizer/internal/domain/document"
)

// Loader extracts plain text per page with ledongthuc/pdf.
type Loader struct {
	logger *slog.Logger
}

// NewLoader constructs a loader.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger.With("component", "pdf.loader")}
}

// Load returns one Page per PDF page, numbered from 1. Pages whose text
// cannot be decoded are kept with empty text so numbering stays aligned.
func (l *Loader) Load(ctx context.Context, data []byte) (pages []document.Page, err error) {
	// the reader panics on some malformed cross reference tables
	defer func() {
		if r := recover(); r != nil {
			pages, err = nil, fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	total := reader.NumPage()
	pages = make([]document.Page, 0, total)
	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		fonts := make(map[string]*pdf.Font)
		text, err := page.GetPlainText(fonts)
		if err != nil {
			l.logger.Warn("failed to extract page text", "page", i, "error", err)
			text = ""
		}
		pages = append(pages, document.Page{Number: i, Text: strings.TrimSpace(text)})
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("pdf has no pages")
	}
	return pages, nil
}

var _ document.Loader = (*Loader)(nil)
