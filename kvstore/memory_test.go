package kvstore

import (
	"context"
	"sort"
	"testing"
	"time"
)

func TestMemoryGetSetEx(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	s := NewMemoryWithClock(func() time.Time { return now })

	if _, ok, err := s.Get(ctx, "k"); ok || err != nil {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}
	if err := s.SetEx(ctx, "k", "v", time.Minute); err != nil {
		t.Fatal(err)
	}
	if v, ok, _ := s.Get(ctx, "k"); !ok || v != "v" {
		t.Fatalf("Get = (%q, %v)", v, ok)
	}

	now = now.Add(2 * time.Minute)
	if _, ok, _ := s.Get(ctx, "k"); ok {
		t.Fatal("expired key still readable")
	}
}

func TestMemorySetExRefreshesExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	s := NewMemoryWithClock(func() time.Time { return now })

	if err := s.SetEx(ctx, "k", "v1", time.Minute); err != nil {
		t.Fatal(err)
	}
	now = now.Add(50 * time.Second)
	if err := s.SetEx(ctx, "k", "v2", time.Minute); err != nil {
		t.Fatal(err)
	}
	now = now.Add(50 * time.Second)
	if v, ok, _ := s.Get(ctx, "k"); !ok || v != "v2" {
		t.Fatalf("refreshed key: (%q, %v)", v, ok)
	}
}

func TestMemorySets(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	if err := s.SAdd(ctx, "set", "a", "b"); err != nil {
		t.Fatal(err)
	}
	if err := s.SAdd(ctx, "set", "b", "c"); err != nil {
		t.Fatal(err)
	}
	got, err := s.SMembers(ctx, "set")
	if err != nil {
		t.Fatal(err)
	}
	sort.Strings(got)
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Fatalf("SMembers = %v", got)
	}

	if err := s.SRem(ctx, "set", "a", "c"); err != nil {
		t.Fatal(err)
	}
	got, _ = s.SMembers(ctx, "set")
	if len(got) != 1 || got[0] != "b" {
		t.Fatalf("SMembers after SRem = %v", got)
	}
}

func TestMemorySetExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	s := NewMemoryWithClock(func() time.Time { return now })

	if err := s.SAdd(ctx, "set", "a"); err != nil {
		t.Fatal(err)
	}
	if err := s.Expire(ctx, "set", time.Hour); err != nil {
		t.Fatal(err)
	}
	now = now.Add(2 * time.Hour)
	if got, _ := s.SMembers(ctx, "set"); len(got) != 0 {
		t.Fatalf("expired set still has members: %v", got)
	}
}

func TestMemoryDel(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	_ = s.SetEx(ctx, "k", "v", 0)
	_ = s.SAdd(ctx, "k", "a")
	if err := s.Del(ctx, "k"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := s.Get(ctx, "k"); ok {
		t.Fatal("deleted value readable")
	}
	if got, _ := s.SMembers(ctx, "k"); len(got) != 0 {
		t.Fatal("deleted set readable")
	}
}

func TestMemoryPipelineRunsInOrder(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	pipe := s.Pipeline()
	pipe.SetEx("k", "v", time.Minute)
	pipe.SAdd("set", "a", "b")
	pipe.SRem("set", "a")
	if pipe.Len() != 3 {
		t.Fatalf("Len = %d", pipe.Len())
	}
	if err := pipe.Exec(ctx); err != nil {
		t.Fatal(err)
	}

	if v, ok, _ := s.Get(ctx, "k"); !ok || v != "v" {
		t.Fatalf("Get = (%q, %v)", v, ok)
	}
	got, _ := s.SMembers(ctx, "set")
	if len(got) != 1 || got[0] != "b" {
		t.Fatalf("SMembers = %v", got)
	}

	// Exec drains the queue.
	if pipe.Len() != 0 {
		t.Fatalf("Len after Exec = %d", pipe.Len())
	}
}

func TestMemoryConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			_ = s.SAdd(ctx, "set", "x")
			_, _ = s.SMembers(ctx, "set")
		}
	}()
	for i := 0; i < 100; i++ {
		_ = s.SetEx(ctx, "k", "v", time.Minute)
		_, _, _ = s.Get(ctx, "k")
	}
	<-done
}
