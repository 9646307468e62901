package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/spigell/cv-screener/internal/resume"
)

const defaultRedisPrefix = "cv-screener:resume:"

// RedisConfig describes the redis backend.
type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// RedisStore keeps entries in redis without expiry. SETNX keeps the first write.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisStore(cfg *RedisConfig) (*RedisStore, error) {
	if cfg == nil {
		return nil, errors.New("redis config cannot be nil")
	}
	if strings.TrimSpace(cfg.Address) == "" {
		return nil, errors.New("redis address is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	return NewRedisStoreWithClient(client, cfg.Prefix), nil
}

func NewRedisStoreWithClient(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix = strings.TrimSpace(prefix); prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(digest string) string {
	return s.prefix + digest
}

// Ping checks the connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Get(ctx context.Context, digest string) (*resume.Resume, bool, error) {
	if err := validDigest(digest); err != nil {
		return nil, false, err
	}

	data, err := s.client.Get(ctx, s.key(digest)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}

	r, err := decodeEntry(digest, data)
	if err != nil {
		return nil, false, err
	}

	return r, true, nil
}

func (s *RedisStore) Put(ctx context.Context, digest string, r *resume.Resume) error {
	if err := validDigest(digest); err != nil {
		return err
	}
	if r == nil {
		return errors.New("nothing to cache")
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}

	key := s.key(digest)
	stored, err := s.client.SetNX(ctx, key, data, 0).Result()
	if err != nil {
		return fmt.Errorf("redis setnx: %w", err)
	}
	if stored {
		return nil
	}

	existing, err := s.client.Get(ctx, key).Bytes()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("redis get: %w", err)
	}
	if err == nil {
		if _, err := decodeEntry(digest, existing); err == nil {
			return nil
		}
	}

	if err := s.client.Set(ctx, key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}

	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
