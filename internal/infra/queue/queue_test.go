package queue

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestImmediateQueueDeliversJobs(t *testing.T) {
	t.Parallel()
	var (
		mu   sync.Mutex
		seen []string
	)
	q := NewImmediateQueue(nil)
	require.NoError(t, q.Enqueue(context.Background(), "dropped", nil))

	q.SetHandler(func(_ context.Context, name string, payload map[string]any) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, name+":"+payload["mode"].(string))
	})

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, q.Enqueue(ctx, "summarize_document", map[string]any{"mode": "brief"}))
	cancel()
	q.Close()

	require.Equal(t, []string{"summarize_document:brief"}, seen)
}

func TestImmediateQueueJobSurvivesCancelledRequest(t *testing.T) {
	t.Parallel()
	errs := make(chan error, 1)
	q := NewImmediateQueue(func(ctx context.Context, _ string, _ map[string]any) {
		errs <- ctx.Err()
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, q.Enqueue(ctx, "job", nil))
	q.Close()

	require.NoError(t, <-errs)
}

func TestDecodeJob(t *testing.T) {
	t.Parallel()
	job, err := decodeJob(`{"name":"summarize_document","payload":{"document_id":"abc","mode":"detailed"}}`)
	require.NoError(t, err)
	require.Equal(t, "summarize_document", job.Name)
	require.Equal(t, "abc", job.Payload["document_id"])

	job, err = decodeJob(`{"name":"bare"}`)
	require.NoError(t, err)
	require.NotNil(t, job.Payload)

	_, err = decodeJob("not json")
	require.Error(t, err)
}
