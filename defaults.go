package alkey

import "time"

const (
	// TokenNamespace prefixes every token key in the store.
	TokenNamespace = "alkey.cache.TOKENS"

	// ChangedNamespace prefixes every pending-change set key.
	ChangedNamespace = "alkey.handle.CHANGED"

	// GlobalWriteToken is the identifier of the token rotated whenever any
	// entity is invalidated, whatever its table.
	GlobalWriteToken = "alkey:*#*"

	// MaxCacheDuration bounds every token's lifetime. Nothing cached under
	// a token may outlive it.
	MaxCacheDuration = 24 * time.Hour

	// ChangedSetExpiry bounds how long the pending-change set of an
	// abandoned transaction survives before self-cleaning.
	ChangedSetExpiry = time.Hour

	// KeySeparator joins cache key segments.
	KeySeparator = "/"
)

// coalesce returns def when v is the zero value of T - otherwise v.
func coalesce[T comparable](v, def T) T {
	var zero T
	if v == zero {
		return def
	}
	return v
}
