package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupRedis connects to a local Redis, skipping the test when none is
// reachable.
func setupRedis(t *testing.T) *RedisStatus {
	t.Helper()
	url := os.Getenv("REDIS_URL")
	if url == "" {
		url = "redis://localhost:6379"
	}
	rs, err := NewRedisStatus(url)
	if err != nil {
		t.Skipf("skipping: could not connect to redis: %v", err)
	}
	t.Cleanup(func() { rs.Close() })
	return rs
}

func TestStatusRoundTrip(t *testing.T) {
	rs := setupRedis(t)
	ctx := context.Background()
	id := "test-" + time.Now().Format("20060102150405.000")

	in := ArrangementStatus{
		Status:      "processing_parts",
		Message:     "processing 3 parts",
		DisplayName: "Bolero",
		PartsTotal:  3,
		PartsDone:   1,
		PartsFailed: 0,
		UpdatedAt:   time.Now().UTC().Truncate(time.Millisecond),
	}
	require.NoError(t, rs.Set(ctx, id, in))

	out, ok, err := rs.Get(ctx, id)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, in.Status, out.Status)
	assert.Equal(t, in.DisplayName, out.DisplayName)
	assert.Equal(t, in.PartsTotal, out.PartsTotal)
	assert.Equal(t, in.PartsDone, out.PartsDone)
	assert.True(t, in.UpdatedAt.Equal(out.UpdatedAt))
}

func TestStatusMissing(t *testing.T) {
	rs := setupRedis(t)

	_, ok, err := rs.Get(context.Background(), "never-written")
	require.NoError(t, err)
	assert.False(t, ok)
}
