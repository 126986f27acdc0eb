// usage:
//
// import (
//
//	"log/slog"
//
//	"github.com/thruflo/alkey"
//	asynchook "github.com/thruflo/alkey/hooks/async"
//	"github.com/thruflo/alkey/sloghooks"
//
// )
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{
//	    ReadFallbackEvery: 10, // sample logs: ~every 10th fallback
//	})
//
// hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
// defer hooks.Close()
//
//	a, _ := alkey.New(alkey.Options{
//	    Store: store,
//	    Hooks: hooks, // or `raw` if you don't want async
//	})
package asynchook

import (
	"sync"

	"github.com/thruflo/alkey"
)

type Hooks struct {
	inner alkey.Hooks
	q     chan func()
	wg    sync.WaitGroup
	once  sync.Once
}

var _ alkey.Hooks = (*Hooks)(nil)

func New(inner alkey.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

func (h *Hooks) Close() {
	h.once.Do(func() {
		close(h.q)
		h.wg.Wait()
	})
}

func (h *Hooks) try(f func()) {
	select {
	case h.q <- f:
	default: // drop
	}
}

func (h *Hooks) TokenReadFallback(k string, err error) {
	h.try(func() { h.inner.TokenReadFallback(k, err) })
}

func (h *Hooks) TokenWriteDropped(k string, err error) {
	h.try(func() { h.inner.TokenWriteDropped(k, err) })
}

func (h *Hooks) InvalidateOutage(scope string, members int, err error) {
	h.try(func() { h.inner.InvalidateOutage(scope, members, err) })
}

func (h *Hooks) MalformedMember(scope, member string) {
	h.try(func() { h.inner.MalformedMember(scope, member) })
}
