package counter

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

var _ Counter = (*RedisCounter)(nil)

type RedisCounter struct {
	key    string
	client redis.UniversalClient
}

// NewRedisCounter keeps the count under "<table>:visit_count".
func NewRedisCounter(client redis.UniversalClient, table string) *RedisCounter {
	return &RedisCounter{key: table + ":" + VisitCountID, client: client}
}

func (c *RedisCounter) Key() string {
	return c.key
}

func (c *RedisCounter) Get(ctx context.Context) (int64, error) {
	n, err := c.client.Get(ctx, c.key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

func (c *RedisCounter) Up(ctx context.Context) (int64, error) {
	return c.client.IncrBy(ctx, c.key, 1).Result()
}
