package summarycache

import (
	"context"
	"sync"

	"github.com/yanqian/docsummarizer/internal/domain/summarizer"
)

// MemoryStore keeps records in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]summarizer.Record
}

// NewMemoryStore constructs an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]summarizer.Record)}
}

func (s *MemoryStore) Get(_ context.Context, hash string) (summarizer.Record, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[hash]
	if !ok {
		return nil, false, nil
	}
	return clone(record), true, nil
}

func (s *MemoryStore) Put(_ context.Context, hash string, record summarizer.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[hash] = clone(record)
	return nil
}

func clone(record summarizer.Record) summarizer.Record {
	out := make(summarizer.Record, len(record))
	for mode, summary := range record {
		out[mode] = summary
	}
	return out
}

var _ summarizer.Cache = (*MemoryStore)(nil)
