package worker

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Queue is a FIFO of job payloads shared between server replicas.
type Queue interface {
	// Pop blocks up to timeout. ok is false when nothing arrived.
	Pop(ctx context.Context, timeout time.Duration) (payload string, ok bool, err error)
	Push(ctx context.Context, payloads ...string) error
	Len(ctx context.Context) (int64, error)
}

// RedisQueue is a Queue on a redis list (RPUSH / BLPOP).
type RedisQueue struct {
	rdb *redis.Client
	key string
}

func NewRedisQueue(rdb *redis.Client, key string) *RedisQueue {
	return &RedisQueue{rdb: rdb, key: key}
}

func (q *RedisQueue) Pop(ctx context.Context, timeout time.Duration) (string, bool, error) {
	item, err := q.rdb.BLPop(ctx, timeout, q.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	// BLPOP answers [key, value].
	if len(item) < 2 {
		return "", false, nil
	}
	return item[1], true, nil
}

func (q *RedisQueue) Push(ctx context.Context, payloads ...string) error {
	if len(payloads) == 0 {
		return nil
	}
	values := make([]any, len(payloads))
	for i, p := range payloads {
		values[i] = p
	}
	return q.rdb.RPush(ctx, q.key, values...).Err()
}

func (q *RedisQueue) Len(ctx context.Context) (int64, error) {
	return q.rdb.LLen(ctx, q.key).Result()
}
