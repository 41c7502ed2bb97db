package model

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/require"

	"github.com/yanqian/docsummarizer/internal/domain/summarizer"
	"github.com/yanqian/docsummarizer/internal/infra/llm/chatgpt"
)

func TestExtractiveModel(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		prompt string
		want   string
	}{
		{
			name:   "concise prompt",
			prompt: "Write a concise summary of the following:\n\n\n\"One. Two! Three? Four.\"\n\n\nCONCISE SUMMARY:",
			want:   "One. Two! Three?",
		},
		{
			name:   "refine prompt",
			prompt: "existing: old\n------------\nNew context here. More.\n------------\nrefine",
			want:   "New context here. More.",
		},
		{name: "bare text", prompt: "no punctuation at all", want: "no punctuation at all"},
	}
	m := NewExtractiveModel(0)
	for _, tt := range tests {
		gen, err := m.Generate(context.Background(), tt.prompt)
		require.NoError(t, err, tt.name)
		require.Equal(t, tt.want, gen.SummaryText, tt.name)
	}
}

func TestGuardOpensAfterConsecutiveFailures(t *testing.T) {
	t.Parallel()
	next := &countingModel{err: errors.New("boom")}
	guard := NewGuard(next, GuardConfig{Name: "test", FailureThreshold: 2, OpenTimeout: time.Minute}, discardLogger())

	for i := 0; i < 2; i++ {
		_, err := guard.Generate(context.Background(), "p")
		require.EqualError(t, err, "boom")
	}
	_, err := guard.Generate(context.Background(), "p")
	require.True(t, errors.Is(err, ErrUnavailable))
	require.Equal(t, 2, next.calls)
	require.Equal(t, gobreaker.StateOpen, guard.breaker.State())
}

func TestGuardPassesThroughSuccess(t *testing.T) {
	t.Parallel()
	next := &countingModel{}
	guard := NewGuard(next, GuardConfig{RequestsPerMinute: 600}, discardLogger())

	gen, err := guard.Generate(context.Background(), "p")
	require.NoError(t, err)
	require.Equal(t, "ok", gen.SummaryText)
	require.Equal(t, gobreaker.StateClosed, guard.breaker.State())
}

func TestGuardIgnoresClientErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		err       error
		wantState gobreaker.State
	}{
		{name: "bad request", err: &chatgpt.APIError{StatusCode: http.StatusBadRequest}, wantState: gobreaker.StateClosed},
		{name: "rate limited", err: &chatgpt.APIError{StatusCode: http.StatusTooManyRequests}, wantState: gobreaker.StateOpen},
		{name: "server error", err: fmt.Errorf("call: %w", &chatgpt.APIError{StatusCode: http.StatusBadGateway}), wantState: gobreaker.StateOpen},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			next := &countingModel{err: tt.err}
			guard := NewGuard(next, GuardConfig{FailureThreshold: 2, OpenTimeout: time.Minute}, discardLogger())
			for i := 0; i < 2; i++ {
				_, err := guard.Generate(context.Background(), "p")
				require.ErrorIs(t, err, tt.err)
			}
			require.Equal(t, tt.wantState, guard.breaker.State())
		})
	}
}

func TestGuardHonoursCancellationWhileThrottled(t *testing.T) {
	t.Parallel()
	next := &countingModel{}
	guard := NewGuard(next, GuardConfig{RequestsPerMinute: 1}, discardLogger())

	_, err := guard.Generate(context.Background(), "p")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = guard.Generate(ctx, "p")
	require.Error(t, err)
	require.Equal(t, 1, next.calls)
}

func TestChatGPTModel(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatgpt.ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 2)
		require.Equal(t, "user", req.Messages[1].Role)
		require.Equal(t, "summarize me", req.Messages[1].Content)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  done  "}}],"usage":{"prompt_tokens":5,"completion_tokens":1,"total_tokens":6}}`))
	}))
	defer srv.Close()

	client, err := chatgpt.NewClient("sk-test", srv.URL)
	require.NoError(t, err)
	gen, err := NewChatGPTModel(client, "gpt-4o-mini", 0.2, 256).Generate(context.Background(), "summarize me")
	require.NoError(t, err)
	require.Equal(t, "done", gen.SummaryText)
	require.Equal(t, 6, gen.Usage.TotalTokens)
}

func TestAnthropicModel(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasSuffix(r.URL.Path, "/messages"))
		require.Equal(t, "sk-ant-test", r.Header.Get("X-Api-Key"))
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.Contains(t, string(body), "summarize me")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"msg_1","type":"message","role":"assistant","model":"claude-haiku-4-5-20251001","content":[{"type":"text","text":"short "},{"type":"text","text":"answer"}],"stop_reason":"end_turn","usage":{"input_tokens":10,"output_tokens":2}}`))
	}))
	defer srv.Close()

	m, err := NewAnthropicModel("sk-ant-test", srv.URL, "", 0, 0)
	require.NoError(t, err)
	gen, err := m.Generate(context.Background(), "summarize me")
	require.NoError(t, err)
	require.Equal(t, "short answer", gen.SummaryText)
	require.Equal(t, 12, gen.Usage.TotalTokens)
}

func TestNewAnthropicModelRequiresKey(t *testing.T) {
	t.Parallel()
	_, err := NewAnthropicModel("", "", "", 0, 0)
	require.Error(t, err)
}

type countingModel struct {
	calls int
	err   error
}

func (m *countingModel) Generate(context.Context, string) (summarizer.Generation, error) {
	m.calls++
	if m.err != nil {
		return summarizer.Generation{}, m.err
	}
	return summarizer.Generation{SummaryText: "ok"}, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
