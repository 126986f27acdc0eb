package alkey

import (
	"context"
	"time"

	"github.com/thruflo/alkey/kvstore"
)

// Options tune an Alkey instance. Only Store is required; everything else
// has defaults matching the constants in this package.
type Options struct {
	// Required. The shared store tokens and pending-change sets live in.
	Store kvstore.Store

	Logger Logger // nil => NopLogger
	Hooks  Hooks  // nil => NopHooks

	TokenNamespace   string        // "" => TokenNamespace
	ChangedNamespace string        // "" => ChangedNamespace
	MaxCacheDuration time.Duration // 0 => 24h
	ChangedSetExpiry time.Duration // 0 => 1h

	// WriteRetry wraps best-effort token writes (opportunistic
	// initialization on read miss). Default: retry once after 300ms,
	// then log and swallow.
	WriteRetry RetryPolicy
	// InvalidateRetry wraps the invalidation pipeline. Default: retry
	// once after 300ms, then surface the error.
	InvalidateRetry RetryPolicy

	// Stamp generates token values. Default is the UTC wall clock.
	Stamp func() string
}

// Alkey ties the token store, change tracker, invalidation engine and key
// generator together over one shared store. All state lives in the store;
// Alkey itself is safe for concurrent use by any number of goroutines.
type Alkey struct {
	store       kvstore.Store
	tokens      *TokenStore
	tracker     *Tracker
	invalidator *Invalidator
	keygen      *KeyGenerator
}

func New(opts Options) (*Alkey, error) {
	if opts.Store == nil {
		return nil, ErrNilStore
	}

	log := coalesce[Logger](opts.Logger, NopLogger{})
	hooks := coalesce[Hooks](opts.Hooks, NopHooks{})

	stamp := opts.Stamp
	if stamp == nil {
		stamp = Stamp
	}
	writeRetry := opts.WriteRetry
	if writeRetry.Attempts == 0 {
		writeRetry = bestEffortRetry()
	}
	invalidateRetry := opts.InvalidateRetry
	if invalidateRetry.Attempts == 0 {
		invalidateRetry = surfacedRetry()
	}

	tokens := &TokenStore{
		store: opts.Store,
		ns:    coalesce(opts.TokenNamespace, TokenNamespace),
		ttl:   coalesce(opts.MaxCacheDuration, MaxCacheDuration),
		stamp: stamp,
		retry: writeRetry,
		log:   log,
		hooks: hooks,
	}
	tracker := &Tracker{
		store: opts.Store,
		ns:    coalesce(opts.ChangedNamespace, ChangedNamespace),
		ttl:   coalesce(opts.ChangedSetExpiry, ChangedSetExpiry),
		log:   log,
	}
	invalidator := &Invalidator{
		store:   opts.Store,
		tokens:  tokens,
		tracker: tracker,
		stamp:   stamp,
		retry:   invalidateRetry,
		log:     log,
		hooks:   hooks,
	}

	return &Alkey{
		store:       opts.Store,
		tokens:      tokens,
		tracker:     tracker,
		invalidator: invalidator,
		keygen:      &KeyGenerator{tokens: tokens},
	}, nil
}

// Key builds a cache key from args; see KeyGenerator.Key.
func (a *Alkey) Key(ctx context.Context, args ...any) string {
	return a.keygen.Key(ctx, args...)
}

// Token returns the current token for value, creating one on first read.
func (a *Alkey) Token(ctx context.Context, value any) string {
	return a.tokens.GetOrCreate(ctx, value)
}

// SetToken assigns the token for value directly.
func (a *Alkey) SetToken(ctx context.Context, value any, token string) error {
	return a.tokens.Set(ctx, value, token)
}

// Record adds values to scope's pending-change set; call at flush time.
func (a *Alkey) Record(ctx context.Context, scope string, values ...any) error {
	return a.tracker.Record(ctx, scope, values...)
}

// Clear discards scope's pending-change set; call on rollback.
func (a *Alkey) Clear(ctx context.Context, scope string) error {
	return a.tracker.Clear(ctx, scope)
}

// Invalidate rotates tokens for everything recorded under scope; call
// after a successful commit.
func (a *Alkey) Invalidate(ctx context.Context, scope string) error {
	return a.invalidator.Invalidate(ctx, scope)
}

// Tokens exposes the underlying token store.
func (a *Alkey) Tokens() *TokenStore { return a.tokens }

// Store exposes the underlying shared store.
func (a *Alkey) Store() kvstore.Store { return a.store }

// Close releases the underlying store.
func (a *Alkey) Close(ctx context.Context) error {
	return a.store.Close(ctx)
}
