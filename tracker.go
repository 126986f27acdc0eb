package alkey

import (
	"context"
	"time"

	"github.com/thruflo/alkey/kvstore"
)

// Tracker accumulates the identifiers touched inside a transaction scope.
// The pending-change set carries its own bounded expiry so the record of
// an abandoned transaction self-cleans instead of poisoning a future
// invalidation.
type Tracker struct {
	store kvstore.Store
	ns    string
	ttl   time.Duration
	log   Logger
}

// Key returns the store key of the pending-change set for scope.
func (t *Tracker) Key(scope string) string {
	return t.ns + ":" + scope
}

// Record resolves each value to its identifier and unions them into the
// scope's pending-change set, refreshing the set's expiry. Call once per
// flush; repeated calls within one transaction accumulate. The add and
// the expiry refresh share one pipelined round trip.
func (t *Tracker) Record(ctx context.Context, scope string, values ...any) error {
	if len(values) == 0 {
		return nil
	}
	members := make([]string, 0, len(values))
	for _, v := range values {
		members = append(members, ObjectID(v))
	}

	key := t.Key(scope)
	pipe := t.store.Pipeline()
	pipe.SAdd(key, members...)
	pipe.Expire(key, t.ttl)
	if err := pipe.Exec(ctx); err != nil {
		return err
	}
	t.log.Debug("recorded changed identifiers", Fields{"scope": scope, "count": len(members)})
	return nil
}

// Clear discards the scope's pending-change set without rotating any
// tokens. Rollback path: writes that never committed must never
// invalidate.
func (t *Tracker) Clear(ctx context.Context, scope string) error {
	return t.store.Del(ctx, t.Key(scope))
}
