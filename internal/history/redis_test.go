package history

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"frizo/futures_calculator/internal/common"
)

// needs a reachable redis, e.g. FCALC_TEST_REDIS_ADDR=127.0.0.1:6379
func newTestRedisStore(t *testing.T, maxRecords int) *RedisStore {
	t.Helper()
	addr := os.Getenv("FCALC_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("FCALC_TEST_REDIS_ADDR not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	s, err := NewRedisStore(ctx, RedisConfig{
		Addr:      addr,
		KeyPrefix: "fcalc_test:" + common.GenerateUUID("") + ":",
	}, maxRecords)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = s.Clear(context.Background())
		_ = s.Close()
	})
	return s
}

func TestRedisStore_RoundTrip(t *testing.T) {
	s := newTestRedisStore(t, 0)
	s.now = fixedClock()
	ctx := context.Background()

	first, err := s.Save(ctx, record(t, 100))
	require.NoError(t, err)
	second, err := s.Save(ctx, record(t, 200))
	require.NoError(t, err)

	list, err := s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second, list[0].ID)
	assert.Equal(t, first, list[1].ID)
	assert.Equal(t, KindPosition, list[0].Kind)
	assert.JSONEq(t, `{"price":200}`, string(list[0].Params))

	one, err := s.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, one, 1)
}

func TestRedisStore_CapacityDeleteClear(t *testing.T) {
	s := newTestRedisStore(t, 2)
	s.now = fixedClock()
	ctx := context.Background()

	var ids []string
	for i := 0; i < 4; i++ {
		id, err := s.Save(ctx, record(t, float64(i)))
		require.NoError(t, err)
		ids = append(ids, id)
	}

	list, err := s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, ids[3], list[0].ID)

	require.NoError(t, s.Delete(ctx, ids[3]))
	assert.ErrorIs(t, s.Delete(ctx, ids[3]), ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, ids[0]), ErrNotFound)

	require.NoError(t, s.Clear(ctx))
	list, err = s.List(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, list)
}
