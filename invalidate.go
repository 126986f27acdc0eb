package alkey

import (
	"context"

	"github.com/thruflo/alkey/kvstore"
)

// Invalidator rotates tokens for everything recorded under a scope.
type Invalidator struct {
	store   kvstore.Store
	tokens  *TokenStore
	tracker *Tracker
	stamp   func() string
	retry   RetryPolicy
	log     Logger
	hooks   Hooks
}

// Invalidate reads the scope's pending-change set and rotates the token
// of every member, every distinct table touched, and the global scope.
// All rotations in one call share one stamp, so two reads after one
// commit against different related keys observe the same version. An
// empty set is a no-op with no further store calls.
//
// The read-then-remove of the pending set is deliberately unguarded: a
// member re-added by a concurrent flush after the read causes one extra
// rotation on the next commit, and a member rotated twice is idempotent,
// so no transaction or watch on the set is needed and concurrent flushes
// are never blocked. The pipeline batches purely to amortize round
// trips, not for atomicity.
//
// A pipeline failure is retried per policy and then surfaced as an
// *InvalidateError: a silently failed invalidation after a successful
// commit would be indistinguishable from data corruption.
func (inv *Invalidator) Invalidate(ctx context.Context, scope string) error {
	changedKey := inv.tracker.Key(scope)
	members, err := inv.store.SMembers(ctx, changedKey)
	if err != nil {
		return &InvalidateError{Scope: scope, Err: err}
	}
	if len(members) == 0 {
		return nil
	}

	value := inv.stamp()

	tables := make(map[string]struct{})
	for _, member := range members {
		table, _, ok := UnpackObjectID(member)
		if !ok {
			inv.log.Warn("skipping malformed changed member", Fields{"scope": scope, "member": member})
			inv.hooks.MalformedMember(scope, member)
			continue
		}
		tables[table] = struct{}{}
	}

	exec := func() error {
		pipe := inv.store.Pipeline()
		for _, member := range members {
			pipe.SetEx(inv.tokens.Key(member), value, inv.tokens.ttl)
			pipe.SRem(changedKey, member)
		}
		for table := range tables {
			pipe.SetEx(inv.tokens.Key(TableID(table)), value, inv.tokens.ttl)
		}
		pipe.SetEx(inv.tokens.Key(GlobalWriteToken), value, inv.tokens.ttl)
		return pipe.Exec(ctx)
	}

	// A retried batch re-sends every command; SETEX of the same stamp and
	// SREM of an already removed member are both idempotent.
	if err := inv.retry.do(ctx, inv.log, "invalidate pipeline", exec); err != nil {
		inv.hooks.InvalidateOutage(scope, len(members), err)
		return &InvalidateError{Scope: scope, Members: len(members), Err: err}
	}
	inv.log.Debug("invalidated scope", Fields{"scope": scope, "members": len(members), "tables": len(tables)})
	return nil
}
