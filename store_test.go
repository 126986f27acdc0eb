package alkey

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/thruflo/alkey/kvstore"
)

var errStoreDown = errors.New("store down")

// failStore wraps a Store and fails selected operations a set number of
// times, counting calls so tests can assert retry behavior.
type failStore struct {
	kvstore.Store

	failGets  int
	failSets  int
	failExecs int

	getCalls  int
	setCalls  int
	execCalls int
	pipelines int
}

func newFailStore() *failStore {
	return &failStore{Store: kvstore.NewMemory()}
}

func (s *failStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.getCalls++
	if s.failGets > 0 {
		s.failGets--
		return "", false, errStoreDown
	}
	return s.Store.Get(ctx, key)
}

func (s *failStore) SetEx(ctx context.Context, key, value string, ttl time.Duration) error {
	s.setCalls++
	if s.failSets > 0 {
		s.failSets--
		return errStoreDown
	}
	return s.Store.SetEx(ctx, key, value, ttl)
}

func (s *failStore) Pipeline() kvstore.Pipeline {
	s.pipelines++
	return &failPipeline{store: s, inner: s.Store.Pipeline()}
}

type failPipeline struct {
	store *failStore
	inner kvstore.Pipeline
}

func (p *failPipeline) SetEx(key, value string, ttl time.Duration) { p.inner.SetEx(key, value, ttl) }
func (p *failPipeline) SAdd(key string, members ...string)         { p.inner.SAdd(key, members...) }
func (p *failPipeline) SRem(key string, members ...string)         { p.inner.SRem(key, members...) }
func (p *failPipeline) Expire(key string, ttl time.Duration)       { p.inner.Expire(key, ttl) }
func (p *failPipeline) Del(key string)                             { p.inner.Del(key) }
func (p *failPipeline) Len() int                                   { return p.inner.Len() }

func (p *failPipeline) Exec(ctx context.Context) error {
	p.store.execCalls++
	if p.store.failExecs > 0 {
		p.store.failExecs--
		return errStoreDown
	}
	return p.inner.Exec(ctx)
}

// row is a minimal Ref for tests.
type row struct {
	table string
	id    int64
	isNew bool
}

func (r row) TableName() string         { return r.table }
func (r row) PrimaryKey() (int64, bool) { return r.id, !r.isNew }

// stampCounter returns a deterministic stamp source: stamp-1, stamp-2, ...
func stampCounter() func() string {
	var n int
	return func() string {
		n++
		return fmt.Sprintf("stamp-%d", n)
	}
}

func newTestAlkey(t *testing.T, store kvstore.Store, optFn func(*Options)) *Alkey {
	t.Helper()
	opts := Options{
		Store:           store,
		Stamp:           stampCounter(),
		WriteRetry:      RetryPolicy{Attempts: 2, sleep: func(time.Duration) {}},
		InvalidateRetry: RetryPolicy{Attempts: 2, Surface: true, sleep: func(time.Duration) {}},
	}
	if optFn != nil {
		optFn(&opts)
	}
	a, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return a
}

// eventHooks records every hook invocation.
type eventHooks struct {
	readFallbacks []string
	writeDrops    []string
	outages       []string
	malformed     []string
}

func (h *eventHooks) TokenReadFallback(key string, _ error) {
	h.readFallbacks = append(h.readFallbacks, key)
}
func (h *eventHooks) TokenWriteDropped(key string, _ error) {
	h.writeDrops = append(h.writeDrops, key)
}
func (h *eventHooks) InvalidateOutage(scope string, _ int, _ error) {
	h.outages = append(h.outages, scope)
}
func (h *eventHooks) MalformedMember(_, member string) {
	h.malformed = append(h.malformed, member)
}
