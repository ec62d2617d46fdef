package session

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisStore keeps flash messages in Redis so every server instance sees the
// same session state.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore connects to the Redis server at url. Pending messages expire
// after ttl.
func NewRedisStore(url string, ttl time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisStore{client: client, ttl: ttl}, nil
}

func flashKey(id string) string {
	return fmt.Sprintf("flash:%s", id)
}

func (s *RedisStore) SetFlash(ctx context.Context, id, message string) error {
	if err := s.client.Set(ctx, flashKey(id), message, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// PopFlash uses GETDEL so two concurrent readers never both see a message.
func (s *RedisStore) PopFlash(ctx context.Context, id string) (string, error) {
	msg, err := s.client.GetDel(ctx, flashKey(id)).Result()
	if err == redis.Nil {
		return "", nil
	} else if err != nil {
		return "", fmt.Errorf("redis getdel failed: %w", err)
	}
	return msg, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
