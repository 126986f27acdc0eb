package kvstore

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis backs the store with a shared Redis instance so tokens and
// pending-change sets are visible to every process.
type Redis struct {
	rdb         redis.UniversalClient
	closeClient bool
}

var _ Store = (*Redis)(nil)

// NewRedis wraps an existing client. Set closeClient only when this store
// exclusively owns the client.
func NewRedis(client redis.UniversalClient, closeClient bool) *Redis {
	return &Redis{rdb: client, closeClient: closeClient}
}

func (s *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil // miss
	}
	if err != nil {
		return "", false, err // transport/server error
	}
	return v, true, nil
}

func (s *Redis) SetEx(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.rdb.SetEx(ctx, key, value, ttl).Err()
}

func (s *Redis) SAdd(ctx context.Context, key string, members ...string) error {
	if len(members) == 0 {
		return nil
	}
	return s.rdb.SAdd(ctx, key, asAny(members)...).Err()
}

func (s *Redis) SRem(ctx context.Context, key string, members ...string) error {
	if len(members) == 0 {
		return nil
	}
	return s.rdb.SRem(ctx, key, asAny(members)...).Err()
}

func (s *Redis) SMembers(ctx context.Context, key string) ([]string, error) {
	return s.rdb.SMembers(ctx, key).Result()
}

func (s *Redis) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return s.rdb.Expire(ctx, key, ttl).Err()
}

func (s *Redis) Del(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}

// Pipeline returns a non-transactional pipeline: batched for round-trip
// amortization, no MULTI/EXEC.
func (s *Redis) Pipeline() Pipeline {
	return &redisPipeline{pipe: s.rdb.Pipeline()}
}

// Close releases the underlying client only when this store owns it.
// Safe to call multiple times.
func (s *Redis) Close(context.Context) error {
	if s.closeClient {
		if err := s.rdb.Close(); err != nil && !errors.Is(err, redis.ErrClosed) {
			return err
		}
	}
	return nil
}

type redisPipeline struct {
	pipe redis.Pipeliner
}

// Queued commands carry a background context; the context supplied to
// Exec governs the actual round trip.
func (p *redisPipeline) SetEx(key, value string, ttl time.Duration) {
	p.pipe.SetEx(context.Background(), key, value, ttl)
}

func (p *redisPipeline) SAdd(key string, members ...string) {
	if len(members) == 0 {
		return
	}
	p.pipe.SAdd(context.Background(), key, asAny(members)...)
}

func (p *redisPipeline) SRem(key string, members ...string) {
	if len(members) == 0 {
		return
	}
	p.pipe.SRem(context.Background(), key, asAny(members)...)
}

func (p *redisPipeline) Expire(key string, ttl time.Duration) {
	p.pipe.Expire(context.Background(), key, ttl)
}

func (p *redisPipeline) Del(key string) {
	p.pipe.Del(context.Background(), key)
}

func (p *redisPipeline) Len() int { return p.pipe.Len() }

func (p *redisPipeline) Exec(ctx context.Context) error {
	_, err := p.pipe.Exec(ctx)
	return err
}

func asAny(members []string) []any {
	out := make([]any, len(members))
	for i, m := range members {
		out[i] = m
	}
	return out
}
