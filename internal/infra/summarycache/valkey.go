package summarycache

import (
	"context"
	"fmt"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/docsummarizer/internal/domain/summarizer"
)

// ValkeyStore keeps each record as a Valkey hash with one field per mode.
type ValkeyStore struct {
	client valkey.Client
	prefix string
}

// NewValkeyStore constructs a new store backed by Valkey.
func NewValkeyStore(client valkey.Client, prefix string) *ValkeyStore {
	if prefix == "" {
		prefix = "summary"
	}
	return &ValkeyStore{client: client, prefix: prefix}
}

func (s *ValkeyStore) Get(ctx context.Context, hash string) (summarizer.Record, bool, error) {
	resp := s.client.Do(ctx, s.client.B().Hgetall().Key(s.key(hash)).Build())
	fields, err := resp.AsStrMap()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	if len(fields) == 0 {
		return nil, false, nil
	}
	return summarizer.Record(fields), true, nil
}

// Put writes every mode of record. Fields already stored under other modes
// are left untouched.
func (s *ValkeyStore) Put(ctx context.Context, hash string, record summarizer.Record) error {
	if len(record) == 0 {
		return nil
	}
	fields := s.client.B().Hset().Key(s.key(hash)).FieldValue()
	for mode, summary := range record {
		fields = fields.FieldValue(mode, summary)
	}
	return s.client.Do(ctx, fields.Build()).Error()
}

func (s *ValkeyStore) key(hash string) string {
	return fmt.Sprintf("%s:%s", s.prefix, hash)
}

var _ summarizer.Cache = (*ValkeyStore)(nil)
