// Package alkey implements key-based cache invalidation over a shared
// key-value store. Instead of deleting cache entries on write, every
// entity (a row, a table, or everything) owns a version token; cache keys
// are built by concatenating the tokens of everything the cached value
// depends on. Rotating a token makes every key built from it
// unreconstructable, so stale entries simply expire.
//
// Components:
//   - kvstore.Store: string values with TTL, sets, and a batched pipeline
//     (Redis for shared deployments, Memory for tests and single-process).
//   - TokenStore: get-or-create and set for per-identifier tokens.
//   - Tracker: accumulates changed identifiers per transaction scope.
//   - Invalidator: rotates entity, table and global tokens at commit.
//   - KeyGenerator: maps an argument list to a cache key string.
//
// Keys in the store:
//
//	alkey.cache.TOKENS:alkey:<table>#<id>  - entity token (24h)
//	alkey.cache.TOKENS:alkey:<table>#*     - table token (24h)
//	alkey.cache.TOKENS:alkey:*#*           - global write token (24h)
//	alkey.handle.CHANGED:<scope>           - pending-change set (1h)
//
// Invalidation pattern:
//
//	a, _ := alkey.New(alkey.Options{Store: store})
//	_ = a.Record(ctx, scope, user)     // at flush
//	_ = a.Invalidate(ctx, scope)       // at commit (or a.Clear on rollback)
//	key := a.Key(ctx, user, "profile") // token-bearing cache key
//
// No locks and no compare-and-swap anywhere: every race resolves to one
// extra token regeneration or one extra rotation, never to a stale token
// being preferred over a fresh one.
package alkey
