package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const DefaultKeyPrefix = "remindme:session:"

// RedisStore keeps sessions in Redis so they survive a restart of the bot.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

var _ Store = (*RedisStore)(nil)

func NewRedisStore(client *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}
}

// OpenRedis connects to addr and verifies the connection.
func OpenRedis(ctx context.Context, addr string, ttl time.Duration) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return NewRedisStore(client, DefaultKeyPrefix, ttl), nil
}

func (r *RedisStore) key(owner int64) string {
	return r.prefix + strconv.FormatInt(owner, 10)
}

func (r *RedisStore) Load(ctx context.Context, owner int64) (Session, error) {
	raw, err := r.client.Get(ctx, r.key(owner)).Result()
	if errors.Is(err, redis.Nil) {
		return Session{Owner: owner}, nil
	}
	if err != nil {
		return Session{}, fmt.Errorf("session get: %w", err)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return Session{}, fmt.Errorf("session decode %q: %w", raw, err)
	}
	return Session{Owner: owner, EditTaskID: id}, nil
}

func (r *RedisStore) Save(ctx context.Context, s Session) error {
	if !s.Editing() {
		return r.Clear(ctx, s.Owner)
	}
	if err := r.client.Set(ctx, r.key(s.Owner), strconv.FormatInt(s.EditTaskID, 10), r.ttl).Err(); err != nil {
		return fmt.Errorf("session set: %w", err)
	}
	return nil
}

func (r *RedisStore) Clear(ctx context.Context, owner int64) error {
	if err := r.client.Del(ctx, r.key(owner)).Err(); err != nil {
		return fmt.Errorf("session delete: %w", err)
	}
	return nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
