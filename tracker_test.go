package alkey

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/thruflo/alkey/kvstore"
)

func members(t *testing.T, store kvstore.Store, key string) []string {
	t.Helper()
	out, err := store.SMembers(context.Background(), key)
	if err != nil {
		t.Fatalf("SMembers: %v", err)
	}
	sort.Strings(out)
	return out
}

func TestRecordAccumulatesAcrossFlushes(t *testing.T) {
	ctx := context.Background()
	st := newFailStore()
	a := newTestAlkey(t, st, nil)

	if err := a.Record(ctx, "s1", row{table: "users", id: 1}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := a.Record(ctx, "s1", row{table: "users", id: 2}, row{table: "orders", id: 9}); err != nil {
		t.Fatalf("Record: %v", err)
	}

	got := members(t, st, ChangedNamespace+":s1")
	want := []string{"alkey:orders#9", "alkey:users#1", "alkey:users#2"}
	if len(got) != len(want) {
		t.Fatalf("members = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("members = %v, want %v", got, want)
		}
	}
}

func TestRecordNothingIsNoop(t *testing.T) {
	st := newFailStore()
	a := newTestAlkey(t, st, nil)
	if err := a.Record(context.Background(), "s1"); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if st.pipelines != 0 {
		t.Fatalf("empty record made %d store pipelines", st.pipelines)
	}
}

func TestRecordedSetSelfExpires(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	clock := func() time.Time { return now }
	st := kvstore.NewMemoryWithClock(func() time.Time { return clock() })
	a := newTestAlkey(t, st, func(o *Options) { o.ChangedSetExpiry = time.Hour })

	if err := a.Record(ctx, "abandoned", row{table: "users", id: 1}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if got := members(t, st, ChangedNamespace+":abandoned"); len(got) != 1 {
		t.Fatalf("members = %v", got)
	}

	// An hour and change later the orphaned record is gone.
	now = now.Add(61 * time.Minute)
	if got := members(t, st, ChangedNamespace+":abandoned"); len(got) != 0 {
		t.Fatalf("expired set still has members: %v", got)
	}
}

func TestRecordRefreshesExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	st := kvstore.NewMemoryWithClock(func() time.Time { return now })
	a := newTestAlkey(t, st, func(o *Options) { o.ChangedSetExpiry = time.Hour })

	if err := a.Record(ctx, "s1", row{table: "users", id: 1}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	now = now.Add(50 * time.Minute)
	if err := a.Record(ctx, "s1", row{table: "users", id: 2}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	// 50 + 40 minutes after the first flush, but only 40 after the last.
	now = now.Add(40 * time.Minute)
	if got := members(t, st, ChangedNamespace+":s1"); len(got) != 2 {
		t.Fatalf("refreshed set lost members: %v", got)
	}
}

func TestClearDropsPendingSet(t *testing.T) {
	ctx := context.Background()
	st := newFailStore()
	a := newTestAlkey(t, st, nil)

	if err := a.Record(ctx, "s1", row{table: "users", id: 1}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := a.Clear(ctx, "s1"); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if got := members(t, st, ChangedNamespace+":s1"); len(got) != 0 {
		t.Fatalf("cleared set still has members: %v", got)
	}
}
