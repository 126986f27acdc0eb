package alkey

import (
	"context"
	"time"
)

// RetryPolicy controls how a store write behaves under transient failure:
// the call is attempted, then retried up to Attempts-1 more times after
// Delay. Surface selects whether the component owning the policy returns
// the final error to its caller or logs and swallows it.
//
// The defaults mirror the two built-in uses: best-effort token
// initialization swallows, the invalidation pipeline surfaces.
type RetryPolicy struct {
	Attempts int
	Delay    time.Duration
	Surface  bool

	sleep func(time.Duration) // test seam
}

func bestEffortRetry() RetryPolicy {
	return RetryPolicy{Attempts: 2, Delay: 300 * time.Millisecond}
}

func surfacedRetry() RetryPolicy {
	return RetryPolicy{Attempts: 2, Delay: 300 * time.Millisecond, Surface: true}
}

// do invokes fn until it succeeds or attempts run out, waiting Delay
// between attempts, and returns the last error. Surfacing versus
// swallowing is the caller's decision.
func (p RetryPolicy) do(ctx context.Context, log Logger, op string, fn func() error) error {
	attempts := p.Attempts
	if attempts <= 0 {
		attempts = 1
	}
	sleep := p.sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	var err error
	for i := 1; i <= attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		log.Warn("store call failed", Fields{"op": op, "attempt": i, "err": err})
		if i < attempts {
			if ctx.Err() != nil {
				return err
			}
			sleep(p.Delay)
		}
	}
	return err
}
