package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNowUTC(t *testing.T) {
	t.Parallel()
	require.Equal(t, time.UTC, NowUTC().Location())
}

func TestMillisSince(t *testing.T) {
	t.Parallel()
	require.GreaterOrEqual(t, MillisSince(time.Now().Add(-1500*time.Millisecond)), int64(1500))
	require.Equal(t, int64(0), MillisSince(time.Now().Add(time.Hour)))
}
