package counter

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, redis.UniversalClient) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	cl := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = cl.Close()
		mr.Close()
	})
	return mr, cl
}

func TestRedisCounter(t *testing.T) {
	_, cl := newTestRedis(t)
	exerciseCounter(t, NewRedisCounter(cl, "visits"))
}

func TestRedisCounter_Key(t *testing.T) {
	mr, cl := newTestRedis(t)
	c := NewRedisCounter(cl, "visits")
	assert.Equal(t, "visits:visit_count", c.Key())

	_, err := c.Up(context.Background())
	require.NoError(t, err)

	got, err := mr.Get("visits:visit_count")
	require.NoError(t, err)
	assert.Equal(t, "1", got)
}

func TestRedisCounter_StoreError(t *testing.T) {
	mr, cl := newTestRedis(t)
	c := NewRedisCounter(cl, "visits")
	require.NoError(t, mr.Set(c.Key(), "not-a-number"))

	_, err := c.Up(context.Background())
	require.Error(t, err)

	got, err := mr.Get(c.Key())
	require.NoError(t, err)
	assert.Equal(t, "not-a-number", got)
}
