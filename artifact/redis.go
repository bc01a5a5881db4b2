package artifact

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig configures the redis-backed store
type RedisConfig struct {
	Addr     string // e.g. localhost:6379
	Password string
	DB       int
	Prefix   string
	// TTL expires idle sessions; zero keeps artifacts forever
	TTL time.Duration
}

// RedisStore keeps artifacts as plain string keys <prefix>:<session>:<name>
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore connects and verifies the server with PING
func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}

	return &RedisStore{client: client, prefix: cfg.Prefix, ttl: cfg.TTL}, nil
}

func (s *RedisStore) key(session, name string) string {
	return s.prefix + ":" + session + ":" + name
}

// Read returns the artifact content
func (s *RedisStore) Read(ctx context.Context, session, name string) (string, error) {
	if err := checkKey(session, name); err != nil {
		return "", err
	}
	val, err := s.client.Get(ctx, s.key(session, name)).Result()
	if errors.Is(err, redis.Nil) {
		return "", notFound(session, name)
	}
	if err != nil {
		return "", storageErr("redis get", err)
	}
	return val, nil
}

// Write stores the artifact and refreshes the TTL on every write
func (s *RedisStore) Write(ctx context.Context, session, name, content string) error {
	if err := checkKey(session, name); err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key(session, name), content, s.ttl).Err(); err != nil {
		return storageErr("redis set", err)
	}
	return nil
}

// Close closes the underlying Redis client
func (s *RedisStore) Close() error {
	return s.client.Close()
}
