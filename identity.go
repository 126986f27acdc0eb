package alkey

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Ref is the capability a value implements to be treated as an entity
// reference. TableName returns the lowercase-with-underscores table name
// (compatible with GORM's Tabler convention). PrimaryKey returns ok=false
// when the value has no concrete row id yet - an unflushed instance or a
// class-level reference - in which case the value resolves to the
// table-scope identifier.
//
// The core depends only on this capability; adapters implement it for
// whatever ORM or record shape the host uses.
type Ref interface {
	TableName() string
	PrimaryKey() (int64, bool)
}

const oidPrefix = "alkey:"

var (
	objectIDPattern   = regexp.MustCompile(`^alkey:[a-z_]+#[0-9]+$`)
	writeTokenPattern = regexp.MustCompile(`^alkey:([a-z_]+|\*)#\*$`)
)

// ObjectID derives the identifier used to key tokens and pending-change
// members for value. A Ref with a concrete id resolves to
// "alkey:<table>#<id>", a Ref without one to "alkey:<table>#*". Anything
// else passes through as its text form and is never looked up in the
// token store. Byte slices and strings of the same content resolve
// identically.
func ObjectID(value any) string {
	switch v := value.(type) {
	case Ref:
		if id, ok := v.PrimaryKey(); ok && id >= 0 {
			return fmt.Sprintf("%s%s#%d", oidPrefix, v.TableName(), id)
		}
		return TableID(v.TableName())
	case string:
		return v
	case []byte:
		return string(v)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// TableID returns the class-scope identifier covering all rows of table.
func TableID(table string) string {
	return oidPrefix + table + "#*"
}

// UnpackObjectID is the inverse of ObjectID for identifiers it produced.
// The id is nil when the id segment is the wildcard marker (class and
// global identifiers). ok reports whether oid has the table#id shape at
// all; well-formed identifiers never fail.
func UnpackObjectID(oid string) (table string, id *int64, ok bool) {
	s := strings.TrimPrefix(oid, oidPrefix)
	table, rest, found := strings.Cut(s, "#")
	if !found {
		return "", nil, false
	}
	if n, err := strconv.ParseInt(rest, 10, 64); err == nil {
		return table, &n, true
	}
	return table, nil, true
}

// IsObjectID reports whether s identifies a concrete entity.
func IsObjectID(s string) bool { return objectIDPattern.MatchString(s) }

// IsWriteToken reports whether s identifies a table-scope or global-scope
// token.
func IsWriteToken(s string) bool { return writeTokenPattern.MatchString(s) }
