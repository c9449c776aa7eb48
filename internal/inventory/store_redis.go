package inventory

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const DefaultRedisKey = "inventory:snapshot"

// RedisStore keeps the snapshot document under a single redis key.
type RedisStore struct {
	client *redis.Client
	key    string
}

func NewRedisStore(client *redis.Client, key string) *RedisStore {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisStore{client: client, key: key}
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return withTimeout(ctx, pingTimeout, func(ctx context.Context) error {
		return s.client.Ping(ctx).Err()
	})
}

func (s *RedisStore) SaveSnapshot(ctx context.Context, ps []Product) error {
	doc, err := encodeDocument(ps)
	if err != nil {
		return err
	}

	err = withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		return s.client.Set(ctx, s.key, doc, 0).Err()
	})
	if err != nil {
		return ioErr("save", err)
	}
	return nil
}

func (s *RedisStore) LoadSnapshot(ctx context.Context) ([]Product, error) {
	var doc []byte

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		var err error
		doc, err = s.client.Get(ctx, s.key).Bytes()
		return err
	})
	if errors.Is(err, redis.Nil) {
		return nil, ioErr("load", fmt.Errorf("key %q not found", s.key))
	}
	if err != nil {
		return nil, ioErr("load", err)
	}

	return decodeDocument(bytes.NewReader(doc))
}
