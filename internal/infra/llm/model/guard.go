package model

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/yanqian/docsummarizer/internal/domain/summarizer"
	"github.com/yanqian/docsummarizer/internal/infra/llm/chatgpt"
)

// ErrUnavailable is returned while the circuit breaker rejects calls.
var ErrUnavailable = errors.New("model temporarily unavailable")

// GuardConfig tunes rate limiting and the circuit breaker.
type GuardConfig struct {
	Name              string
	RequestsPerMinute int
	// FailureThreshold consecutive failures open the breaker.
	FailureThreshold uint32
	OpenTimeout      time.Duration
}

// Guard throttles calls to a model and stops calling it after repeated
// failures until OpenTimeout elapses.
type Guard struct {
	next    summarizer.Model
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	logger  *slog.Logger
}

// NewGuard wraps next. A zero RequestsPerMinute disables rate limiting.
func NewGuard(next summarizer.Model, cfg GuardConfig, logger *slog.Logger) *Guard {
	if cfg.Name == "" {
		cfg.Name = "llm"
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "llm.guard", "model", cfg.Name)

	g := &Guard{next: next, logger: logger}
	if cfg.RequestsPerMinute > 0 {
		burst := cfg.RequestsPerMinute / 10
		if burst < 1 {
			burst = 1
		}
		g.limiter = rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMinute)/60.0), burst)
	}
	threshold := cfg.FailureThreshold
	g.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled) || isClientError(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "from", from.String(), "to", to.String())
		},
	})
	return g
}

// Generate waits for a rate token then calls the wrapped model through the breaker.
func (g *Guard) Generate(ctx context.Context, prompt string) (summarizer.Generation, error) {
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return summarizer.Generation{}, fmt.Errorf("rate limit wait: %w", err)
		}
	}
	result, err := g.breaker.Execute(func() (interface{}, error) {
		return g.next.Generate(ctx, prompt)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return summarizer.Generation{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err != nil {
		return summarizer.Generation{}, err
	}
	return result.(summarizer.Generation), nil
}

// isClientError reports provider rejections of the request itself. They say
// nothing about provider health and do not count toward opening the breaker.
func isClientError(err error) bool {
	var apiErr *chatgpt.APIError
	if errors.As(err, &apiErr) {
		return !apiErr.Retryable()
	}
	var anthropicErr *anthropic.Error
	if errors.As(err, &anthropicErr) {
		return anthropicErr.StatusCode != http.StatusTooManyRequests && anthropicErr.StatusCode < http.StatusInternalServerError
	}
	return false
}

var _ summarizer.Model = (*Guard)(nil)
