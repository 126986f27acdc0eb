// Package gormhooks binds alkey's change tracking to GORM's write
// callbacks so cache invalidation follows the ORM transaction lifecycle:
// rows touched by create/update/delete are recorded against the
// transaction's scope, committing rotates their tokens, rolling back
// clears the pending record instead.
package gormhooks

import (
	"context"
	"fmt"
	"reflect"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"github.com/thruflo/alkey"
)

type scopeKey struct{}

// WithScope returns a context carrying an explicit invalidation scope.
// The scope travels in the context, never in ambient state, so any number
// of concurrent sessions stay isolated.
func WithScope(ctx context.Context, scope string) context.Context {
	return context.WithValue(ctx, scopeKey{}, scope)
}

// ScopeFromContext returns the invalidation scope carried by ctx.
func ScopeFromContext(ctx context.Context) (string, bool) {
	s, ok := ctx.Value(scopeKey{}).(string)
	return s, ok && s != ""
}

// NewScope returns a fresh scope identifier.
func NewScope() string { return uuid.NewString() }

// Register installs after-write callbacks on db. Rows written inside a
// Transaction-managed scope are recorded for commit-time invalidation;
// rows written outside one are invalidated immediately (autocommit
// semantics).
func Register(db *gorm.DB, a *alkey.Alkey) error {
	h := &hooks{alkey: a}
	if err := db.Callback().Create().After("gorm:create").Register("alkey:after_create", h.afterWrite); err != nil {
		return fmt.Errorf("gormhooks: register create callback: %w", err)
	}
	if err := db.Callback().Update().After("gorm:update").Register("alkey:after_update", h.afterWrite); err != nil {
		return fmt.Errorf("gormhooks: register update callback: %w", err)
	}
	if err := db.Callback().Delete().After("gorm:delete").Register("alkey:after_delete", h.afterWrite); err != nil {
		return fmt.Errorf("gormhooks: register delete callback: %w", err)
	}
	return nil
}

// Transaction runs fn inside a database transaction and one invalidation
// scope. Committing invalidates everything recorded under the scope with
// one batch; an error from fn rolls the database back and clears the
// pending record so rolled-back writes never rotate tokens. Nested
// Transaction calls inside fn become savepoints and do not clear the
// outer scope.
func Transaction(ctx context.Context, db *gorm.DB, a *alkey.Alkey, fn func(tx *gorm.DB) error) error {
	scope := NewScope()
	ctx = WithScope(ctx, scope)

	if err := db.WithContext(ctx).Transaction(fn); err != nil {
		if cerr := a.Clear(ctx, scope); cerr != nil {
			return fmt.Errorf("clear scope %s after rollback: %w (rollback cause: %w)", scope, cerr, err)
		}
		return err
	}
	return a.Invalidate(ctx, scope)
}

type hooks struct {
	alkey *alkey.Alkey
}

func (h *hooks) afterWrite(tx *gorm.DB) {
	if tx.Error != nil || tx.Statement == nil {
		return
	}
	refs := touchedRefs(tx.Statement)
	if len(refs) == 0 {
		return
	}

	ctx := tx.Statement.Context
	if scope, ok := ScopeFromContext(ctx); ok {
		if err := h.alkey.Record(ctx, scope, refs...); err != nil {
			_ = tx.AddError(fmt.Errorf("gormhooks: record changed rows: %w", err))
		}
		return
	}

	// No managed scope: this statement is its own transaction.
	scope := NewScope()
	if err := h.alkey.Record(ctx, scope, refs...); err != nil {
		_ = tx.AddError(fmt.Errorf("gormhooks: record changed rows: %w", err))
		return
	}
	if err := h.alkey.Invalidate(ctx, scope); err != nil {
		_ = tx.AddError(fmt.Errorf("gormhooks: invalidate: %w", err))
	}
}

// rowRef adapts one written row to alkey's entity capability.
type rowRef struct {
	table string
	id    int64
	hasID bool
}

func (r rowRef) TableName() string         { return r.table }
func (r rowRef) PrimaryKey() (int64, bool) { return r.id, r.hasID }

// touchedRefs resolves the statement's destination value(s) to entity
// references. Statements without a resolvable row id (map updates,
// batch conditions, non-integer keys) degrade to a class-scope reference,
// which invalidates the whole table - coarse but never stale.
func touchedRefs(stmt *gorm.Statement) []any {
	if stmt.Table == "" {
		return nil
	}
	if stmt.Schema == nil {
		return []any{rowRef{table: stmt.Table}}
	}
	pk := stmt.Schema.PrioritizedPrimaryField
	if pk == nil {
		return []any{rowRef{table: stmt.Table}}
	}

	rv := stmt.ReflectValue
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		refs := make([]any, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			refs = append(refs, rowRefFor(stmt.Context, stmt.Table, pk, rv.Index(i)))
		}
		return refs
	case reflect.Struct, reflect.Ptr:
		return []any{rowRefFor(stmt.Context, stmt.Table, pk, rv)}
	default:
		return []any{rowRef{table: stmt.Table}}
	}
}

func rowRefFor(ctx context.Context, table string, pk *schema.Field, rv reflect.Value) any {
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return rowRef{table: table}
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return rowRef{table: table}
	}
	v, isZero := pk.ValueOf(ctx, rv)
	if isZero {
		return rowRef{table: table}
	}
	id, ok := toInt64(v)
	if !ok {
		return rowRef{table: table}
	}
	return rowRef{table: table, id: id, hasID: true}
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int16:
		return int64(n), true
	case int8:
		return int64(n), true
	case uint:
		return int64(n), true
	case uint64:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint8:
		return int64(n), true
	default:
		return 0, false
	}
}
