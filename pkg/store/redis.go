package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/redis/go-redis/v9"

	tgerrors "github.com/matzehuels/tilegrid/pkg/errors"
	"github.com/matzehuels/tilegrid/pkg/io"
)

// RedisConfig configures a RedisStore.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	// Prefix namespaces every key. Defaults to "tilegrid:".
	Prefix string `toml:"prefix"`
}

// RedisStore keeps each board as a JSON string under
// "<prefix>board:<id>" and tracks ids in the set "<prefix>boards".
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	if cfg.Addr == "" {
		cfg.Addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, tgerrors.Wrap(tgerrors.ErrCodeStore, err, "connect to redis at %s", cfg.Addr)
	}
	return NewRedisStoreFromClient(client, cfg.Prefix), nil
}

// NewRedisStoreFromClient wraps an existing client. The store takes
// ownership of the client and closes it in Close.
func NewRedisStoreFromClient(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "tilegrid:"
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) boardKey(id string) string { return s.prefix + "board:" + id }
func (s *RedisStore) indexKey() string         { return s.prefix + "boards" }

func (s *RedisStore) Name() string { return BackendRedis }

func (s *RedisStore) Load(ctx context.Context, id string) (*io.Board, error) {
	data, err := s.client.Get(ctx, s.boardKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", id, err)
	}
	var b io.Board
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("parse board %s: %w", id, err)
	}
	return &b, nil
}

func (s *RedisStore) Save(ctx context.Context, id string, b *io.Board) error {
	if err := tgerrors.ValidateBoardID(id); err != nil {
		return err
	}
	data, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("marshal board: %w", err)
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.boardKey(id), data, 0)
		pipe.SAdd(ctx, s.indexKey(), id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis save %s: %w", id, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.boardKey(id))
		pipe.SRem(ctx, s.indexKey(), id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis delete %s: %w", id, err)
	}
	return nil
}

func (s *RedisStore) List(ctx context.Context) ([]string, error) {
	ids, err := s.client.SMembers(ctx, s.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("redis list boards: %w", err)
	}
	slices.Sort(ids)
	return ids, nil
}

func (s *RedisStore) Close() error { return s.client.Close() }

var _ Store = (*RedisStore)(nil)
