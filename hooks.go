package alkey

// Hooks are lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking - they run on hot paths.
type Hooks interface {
	// The store was unreachable on a token read; a fresh, unshared stamp
	// was returned to the caller instead.
	TokenReadFallback(storageKey string, err error)

	// A best-effort token write failed after retry and was swallowed.
	TokenWriteDropped(storageKey string, err error)

	// The invalidation pipeline failed after retry. Tokens for this
	// scope's identifiers may now be stale.
	InvalidateOutage(scope string, members int, err error)

	// A pending-change member without the table#id shape was skipped when
	// collecting tables for class-token rotation.
	MalformedMember(scope, member string)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) TokenReadFallback(string, error)     {}
func (NopHooks) TokenWriteDropped(string, error)     {}
func (NopHooks) InvalidateOutage(string, int, error) {}
func (NopHooks) MalformedMember(string, string)      {}
