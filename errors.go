package alkey

import (
	"errors"
	"fmt"
)

// ErrNilStore is returned by New when Options.Store is missing.
var ErrNilStore = errors.New("alkey: store is required")

// InvalidateError reports a failed invalidation batch. The pending-change
// set may be partially consumed and some tokens left stale; callers must
// treat this as a correctness problem, not a cache miss.
type InvalidateError struct {
	Scope   string
	Members int
	Err     error
}

func (e *InvalidateError) Error() string {
	return fmt.Sprintf("alkey: invalidate scope %q (%d members): %v", e.Scope, e.Members, e.Err)
}

func (e *InvalidateError) Unwrap() error { return e.Err }
