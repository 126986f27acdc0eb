package kvstore

import (
	"context"
	"sync"
	"time"
)

// Memory is an in-process Store with per-key expiry. It mirrors the
// semantics alkey relies on from Redis closely enough for tests and
// single-process deployments. Expired keys are dropped lazily on access.
type Memory struct {
	mu   sync.Mutex
	vals map[string]memVal
	sets map[string]memSet
	now  func() time.Time
}

type memVal struct {
	val string
	exp time.Time // zero => no expiry
}

type memSet struct {
	members map[string]struct{}
	exp     time.Time
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory {
	return NewMemoryWithClock(time.Now)
}

// NewMemoryWithClock injects the time source; tests use it to step
// through expiry windows.
func NewMemoryWithClock(now func() time.Time) *Memory {
	return &Memory{
		vals: make(map[string]memVal),
		sets: make(map[string]memSet),
		now:  now,
	}
}

func (s *Memory) expired(exp time.Time) bool {
	return !exp.IsZero() && s.now().After(exp)
}

func (s *Memory) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.vals[key]
	if !ok {
		return "", false, nil
	}
	if s.expired(e.exp) {
		delete(s.vals, key)
		return "", false, nil
	}
	return e.val, true, nil
}

func (s *Memory) SetEx(_ context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var exp time.Time
	if ttl > 0 {
		exp = s.now().Add(ttl)
	}
	s.vals[key] = memVal{val: value, exp: exp}
	return nil
}

func (s *Memory) SAdd(_ context.Context, key string, members ...string) error {
	if len(members) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.sets[key]
	if !ok || s.expired(set.exp) {
		set = memSet{members: make(map[string]struct{})}
	}
	for _, m := range members {
		set.members[m] = struct{}{}
	}
	s.sets[key] = set
	return nil
}

func (s *Memory) SRem(_ context.Context, key string, members ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.sets[key]
	if !ok || s.expired(set.exp) {
		delete(s.sets, key)
		return nil
	}
	for _, m := range members {
		delete(set.members, m)
	}
	if len(set.members) == 0 {
		delete(s.sets, key)
	}
	return nil
}

func (s *Memory) SMembers(_ context.Context, key string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.sets[key]
	if !ok {
		return nil, nil
	}
	if s.expired(set.exp) {
		delete(s.sets, key)
		return nil, nil
	}
	out := make([]string, 0, len(set.members))
	for m := range set.members {
		out = append(out, m)
	}
	return out, nil
}

func (s *Memory) Expire(_ context.Context, key string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp := s.now().Add(ttl)
	if e, ok := s.vals[key]; ok && !s.expired(e.exp) {
		e.exp = exp
		s.vals[key] = e
	}
	if set, ok := s.sets[key]; ok && !s.expired(set.exp) {
		set.exp = exp
		s.sets[key] = set
	}
	return nil
}

func (s *Memory) Del(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.vals, key)
	delete(s.sets, key)
	return nil
}

func (s *Memory) Pipeline() Pipeline {
	return &memoryPipeline{store: s}
}

func (s *Memory) Close(context.Context) error { return nil }

// memoryPipeline queues closures and replays them in order on Exec.
// There is no batching to win in-process; this exists so code under test
// follows the same pipelined path it uses against Redis.
type memoryPipeline struct {
	store *Memory
	ops   []func(ctx context.Context) error
}

func (p *memoryPipeline) SetEx(key, value string, ttl time.Duration) {
	p.ops = append(p.ops, func(ctx context.Context) error {
		return p.store.SetEx(ctx, key, value, ttl)
	})
}

func (p *memoryPipeline) SAdd(key string, members ...string) {
	p.ops = append(p.ops, func(ctx context.Context) error {
		return p.store.SAdd(ctx, key, members...)
	})
}

func (p *memoryPipeline) SRem(key string, members ...string) {
	p.ops = append(p.ops, func(ctx context.Context) error {
		return p.store.SRem(ctx, key, members...)
	})
}

func (p *memoryPipeline) Expire(key string, ttl time.Duration) {
	p.ops = append(p.ops, func(ctx context.Context) error {
		return p.store.Expire(ctx, key, ttl)
	})
}

func (p *memoryPipeline) Del(key string) {
	p.ops = append(p.ops, func(ctx context.Context) error {
		return p.store.Del(ctx, key)
	})
}

func (p *memoryPipeline) Len() int { return len(p.ops) }

func (p *memoryPipeline) Exec(ctx context.Context) error {
	ops := p.ops
	p.ops = nil
	for _, op := range ops {
		if err := op(ctx); err != nil {
			return err
		}
	}
	return nil
}
