// Package kvstore defines the shared key-value store contract the
// invalidation protocol runs against: string values with expiry, sets of
// strings, and a batched pipeline that amortizes round trips.
//
// No compare-and-swap primitive appears in the contract. Every caller
// race in the protocol resolves to one extra token regeneration or one
// extra rotation, so plain commands are enough.
//
// Use Redis for shared deployments, Memory for tests and single-process
// use.
package kvstore

import (
	"context"
	"time"
)

// Store is the minimal store surface alkey needs. Implementations must be
// safe for concurrent use.
type Store interface {
	// Get returns (value, true, nil) on hit; ("", false, nil) on miss.
	// If an IO/remote error happens, return ("", false, err).
	Get(ctx context.Context, key string) (string, bool, error)

	// SetEx stores value at key, refreshing the key's expiry to ttl.
	SetEx(ctx context.Context, key, value string, ttl time.Duration) error

	// SAdd adds members to the set at key, creating it when missing.
	SAdd(ctx context.Context, key string, members ...string) error

	// SRem removes members from the set at key (best-effort).
	SRem(ctx context.Context, key string, members ...string) error

	// SMembers returns all members of the set at key; empty when missing.
	SMembers(ctx context.Context, key string) ([]string, error)

	// Expire refreshes the expiry of key. No-op when key is missing.
	Expire(ctx context.Context, key string, ttl time.Duration) error

	// Del removes key.
	Del(ctx context.Context, key string) error

	// Pipeline returns a fresh buffer of queued commands sent together by
	// one Exec.
	Pipeline() Pipeline

	// Close releases resources.
	Close(ctx context.Context) error
}

// Pipeline queues commands and sends them in one batch on Exec. The batch
// is not atomic: commands from other clients may interleave, which the
// invalidation protocol tolerates by design.
type Pipeline interface {
	SetEx(key, value string, ttl time.Duration)
	SAdd(key string, members ...string)
	SRem(key string, members ...string)
	Expire(key string, ttl time.Duration)
	Del(key string)

	// Len reports the number of queued commands.
	Len() int

	// Exec sends the queued commands and returns the first error.
	Exec(ctx context.Context) error
}
