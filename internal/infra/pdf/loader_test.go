package pdf

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadRejectsInvalidInput(t *testing.T) {
	t.Parallel()
	loader := NewLoader(slog.New(slog.NewTextHandler(io.Discard, nil)))

	tests := []struct {
		name string
		data []byte
	}{
		{name: "plain text", data: []byte("hello world")},
		{name: "header only", data: []byte("%PDF-1.4\n")},
		{name: "truncated trailer", data: []byte("%PDF-1.4\nxref\n0 1\n0000000000 65535 f \ntrailer\n<<>>\nstartxref\n9\n%%EOF")},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			pages, err := loader.Load(context.Background(), tt.data)
			require.Error(t, err)
			require.Nil(t, pages)
		})
	}
}
