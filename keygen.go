package alkey

import (
	"context"
	"strings"
)

// KeyGenerator builds cache keys from argument lists. Arguments that
// resolve to an entity, table or global identifier contribute their
// current token as a key segment; everything else contributes its text
// form. Segments keep argument order and join with "/".
type KeyGenerator struct {
	tokens *TokenStore
}

// Key returns the cache key for args. Deterministic for a given store
// state and argument sequence; no argument is ever dropped. Token reads
// that fail degrade to a fresh stamp for that one segment (an always-miss
// key), never to an error.
func (g *KeyGenerator) Key(ctx context.Context, args ...any) string {
	segments := make([]string, 0, len(args))
	for _, arg := range args {
		oid := ObjectID(arg)
		if IsObjectID(oid) || IsWriteToken(oid) {
			segments = append(segments, g.tokens.GetOrCreate(ctx, oid))
			continue
		}
		segments = append(segments, oid)
	}
	return strings.Join(segments, KeySeparator)
}
