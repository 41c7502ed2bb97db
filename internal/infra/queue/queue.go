package queue

import (
	"context"

	"github.com/yanqian/docsummarizer/internal/domain/library"
)

// Handler executes a delivered job.
type Handler func(ctx context.Context, name string, payload map[string]any)

// HandlerQueue supports setting a handler for job delivery.
type HandlerQueue interface {
	library.JobQueue
	SetHandler(handler Handler)
	Close()
}
