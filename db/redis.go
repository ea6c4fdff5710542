package db

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

var Redis *redis.Client

const (
	AnalyzeQueueKey = "reporter:queue:analyze"
	DeadLetterKey   = "reporter:queue:failed"
)

// ErrQueueEmpty is returned by PopFromQueue when the wait timed out.
var ErrQueueEmpty = errors.New("queue is empty")

func ConnectRedis(ctx context.Context, redisURL string) error {
	if redisURL == "" {
		return errors.New("REDIS_URL environment variable is not set")
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		opt = &redis.Options{Addr: redisURL}
	}

	Redis = redis.NewClient(opt)

	return Redis.Ping(ctx).Err()
}

func CloseRedis() {
	if Redis != nil {
		Redis.Close()
	}
}

func PushToQueue(ctx context.Context, queueKey string, data string) error {
	return Redis.LPush(ctx, queueKey, data).Err()
}

// PopFromQueue blocks for up to timeout (forever when 0) waiting for an item.
func PopFromQueue(ctx context.Context, queueKey string, timeout time.Duration) (string, error) {
	result, err := Redis.BRPop(ctx, timeout, queueKey).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrQueueEmpty
	}
	if err != nil {
		return "", err
	}
	return result[1], nil
}

func QueueLength(ctx context.Context, queueKey string) (int64, error) {
	return Redis.LLen(ctx, queueKey).Result()
}

// Queue binds the package-level Redis client to one list key.
type Queue struct {
	Key string
}

func (q Queue) Push(ctx context.Context, id string) error {
	return PushToQueue(ctx, q.Key, id)
}

func (q Queue) Pop(ctx context.Context, timeout time.Duration) (string, error) {
	return PopFromQueue(ctx, q.Key, timeout)
}

func (q Queue) Len(ctx context.Context) (int64, error) {
	return QueueLength(ctx, q.Key)
}
