package alkey

import (
	"context"
	"time"

	"github.com/thruflo/alkey/kvstore"
)

// Stamp returns a fresh token value: the UTC wall clock with microsecond
// precision. Any source that yields a different value for a later real
// world write would do; the wall clock keeps keys readable when
// debugging.
func Stamp() string {
	return time.Now().UTC().Format("2006-01-02 15:04:05.000000")
}

// TokenStore reads and writes the version token of a single identifier.
type TokenStore struct {
	store kvstore.Store
	ns    string
	ttl   time.Duration
	stamp func() string
	retry RetryPolicy
	log   Logger
	hooks Hooks
}

// Key returns the store key holding the token for value.
func (s *TokenStore) Key(value any) string {
	return s.ns + ":" + ObjectID(value)
}

// GetOrCreate returns the current token for value, generating and
// persisting a fresh one on miss. A failed read degrades to a fresh,
// unshared stamp so key generation stays available; nothing is persisted
// in that case (the store was unreachable anyway) and no error is
// returned.
//
// Two callers racing on a first read may both generate and store a token.
// That costs at most one extra cache miss, never staleness, so there is
// no lock and no SETNX (SETNX on a volatile key would rewrite the token
// on every read).
func (s *TokenStore) GetOrCreate(ctx context.Context, value any) string {
	key := s.Key(value)
	v, ok, err := s.store.Get(ctx, key)
	if err != nil {
		s.log.Warn("token read failed; returning unshared stamp", Fields{"key": key, "err": err})
		s.hooks.TokenReadFallback(key, err)
		return s.stamp()
	}
	if ok {
		return v
	}
	v = s.stamp()
	_ = s.Set(ctx, value, v)
	return v
}

// Set unconditionally overwrites the token for value, refreshing its
// expiry. The write runs under the store's retry policy; when the policy
// swallows, a repeated failure is logged, reported to hooks and dropped.
func (s *TokenStore) Set(ctx context.Context, value any, token string) error {
	key := s.Key(value)
	err := s.retry.do(ctx, s.log, "token set", func() error {
		return s.store.SetEx(ctx, key, token, s.ttl)
	})
	if err == nil {
		return nil
	}
	if s.retry.Surface {
		return err
	}
	s.hooks.TokenWriteDropped(key, err)
	return nil
}
