// Package otelstore decorates a kvstore.Store so every store operation is
// recorded as an OpenTelemetry client span. It is optional middleware
// around the store, outside the core invalidation contract; wrap only
// when the host application runs a tracer.
package otelstore

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/thruflo/alkey/kvstore"
)

const tracerName = "github.com/thruflo/alkey/kvstore/otelstore"

type Store struct {
	inner  kvstore.Store
	tracer trace.Tracer
}

var _ kvstore.Store = (*Store)(nil)

// Wrap decorates inner with tracing from the global tracer provider.
func Wrap(inner kvstore.Store) *Store {
	return &Store{inner: inner, tracer: otel.Tracer(tracerName)}
}

// WrapWithTracerProvider decorates inner with tracing from tp.
func WrapWithTracerProvider(inner kvstore.Store, tp trace.TracerProvider) *Store {
	return &Store{inner: inner, tracer: tp.Tracer(tracerName)}
}

func (s *Store) start(ctx context.Context, op, key string) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "alkey.store."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.operation", op),
			attribute.String("alkey.key", key),
		))
}

func end(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	ctx, span := s.start(ctx, "get", key)
	v, ok, err := s.inner.Get(ctx, key)
	span.SetAttributes(attribute.Bool("alkey.hit", ok))
	end(span, err)
	return v, ok, err
}

func (s *Store) SetEx(ctx context.Context, key, value string, ttl time.Duration) error {
	ctx, span := s.start(ctx, "setex", key)
	err := s.inner.SetEx(ctx, key, value, ttl)
	end(span, err)
	return err
}

func (s *Store) SAdd(ctx context.Context, key string, members ...string) error {
	ctx, span := s.start(ctx, "sadd", key)
	span.SetAttributes(attribute.Int("alkey.members", len(members)))
	err := s.inner.SAdd(ctx, key, members...)
	end(span, err)
	return err
}

func (s *Store) SRem(ctx context.Context, key string, members ...string) error {
	ctx, span := s.start(ctx, "srem", key)
	span.SetAttributes(attribute.Int("alkey.members", len(members)))
	err := s.inner.SRem(ctx, key, members...)
	end(span, err)
	return err
}

func (s *Store) SMembers(ctx context.Context, key string) ([]string, error) {
	ctx, span := s.start(ctx, "smembers", key)
	out, err := s.inner.SMembers(ctx, key)
	end(span, err)
	return out, err
}

func (s *Store) Expire(ctx context.Context, key string, ttl time.Duration) error {
	ctx, span := s.start(ctx, "expire", key)
	err := s.inner.Expire(ctx, key, ttl)
	end(span, err)
	return err
}

func (s *Store) Del(ctx context.Context, key string) error {
	ctx, span := s.start(ctx, "del", key)
	err := s.inner.Del(ctx, key)
	end(span, err)
	return err
}

// Pipeline traces the Exec round trip as one span; queueing is free.
func (s *Store) Pipeline() kvstore.Pipeline {
	return &pipeline{inner: s.inner.Pipeline(), tracer: s.tracer}
}

func (s *Store) Close(ctx context.Context) error {
	return s.inner.Close(ctx)
}

type pipeline struct {
	inner  kvstore.Pipeline
	tracer trace.Tracer
}

func (p *pipeline) SetEx(key, value string, ttl time.Duration) { p.inner.SetEx(key, value, ttl) }
func (p *pipeline) SAdd(key string, members ...string)         { p.inner.SAdd(key, members...) }
func (p *pipeline) SRem(key string, members ...string)         { p.inner.SRem(key, members...) }
func (p *pipeline) Expire(key string, ttl time.Duration)       { p.inner.Expire(key, ttl) }
func (p *pipeline) Del(key string)                             { p.inner.Del(key) }
func (p *pipeline) Len() int                                   { return p.inner.Len() }

func (p *pipeline) Exec(ctx context.Context) error {
	ctx, span := p.tracer.Start(ctx, "alkey.store.pipeline",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.Int("alkey.commands", p.inner.Len())))
	err := p.inner.Exec(ctx)
	end(span, err)
	return err
}
