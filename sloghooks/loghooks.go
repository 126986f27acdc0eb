package sloghooks

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"

	"github.com/thruflo/alkey"
)

type Options struct {
	// Sampling to avoid floods under a store outage; 0/1 = log all.
	ReadFallbackEvery uint64
	WriteDroppedEvery uint64
	// Optional key redactor. Defaults to SHA-256 prefix.
	Redact func(string) string
}

// Hooks logs alkey's high-signal events through slog, with sampling on
// the events that fire per-request during an outage.
type Hooks struct {
	l    *slog.Logger
	opts Options

	readFallbackCtr atomic.Uint64
	writeDroppedCtr atomic.Uint64
}

var _ alkey.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(k string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(k)
	}
	sum := sha256.Sum256([]byte(k))
	return hex.EncodeToString(sum[:8])
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) TokenReadFallback(storageKey string, err error) {
	if h.l == nil || !sample(h.opts.ReadFallbackEvery, &h.readFallbackCtr) {
		return
	}
	h.l.Warn("alkey.token_read_fallback",
		"key", h.redact(storageKey),
		"err", err)
}

func (h *Hooks) TokenWriteDropped(storageKey string, err error) {
	if h.l == nil || !sample(h.opts.WriteDroppedEvery, &h.writeDroppedCtr) {
		return
	}
	h.l.Warn("alkey.token_write_dropped",
		"key", h.redact(storageKey),
		"err", err)
}

func (h *Hooks) InvalidateOutage(scope string, members int, err error) {
	if h.l == nil {
		return
	}
	h.l.Error("alkey.invalidate_outage",
		"scope", scope,
		"members", members,
		"err", err)
}

func (h *Hooks) MalformedMember(scope, member string) {
	if h.l == nil {
		return
	}
	h.l.Warn("alkey.malformed_member",
		"scope", scope,
		"member", h.redact(member))
}
