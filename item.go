package sieve

import (
	"fmt"
	"strings"
	"time"
)

// Item is a single record in the collection being filtered. The engine
// never mutates an item; it only reads the keys the registered field
// accessors ask for. Items are typically produced by the transport layer
// from the fields a predicate requires.
type Item map[string]any

// rawField returns an accessor reading the key directly from the item map.
// The built-in field table is defined in terms of it.
func rawField(key string) func(Item) any {
	return func(it Item) any { return it[key] }
}

// asString coerces a field value to a string. Missing values become "".
func asString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case fmt.Stringer:
		return s.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// asNumber coerces a field value to a float64. Missing values become 0.
func asNumber(v any) float64 {
	switch n := v.(type) {
	case nil:
		return 0
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case uint:
		return float64(n)
	case uint32:
		return float64(n)
	case uint64:
		return float64(n)
	case bool:
		if n {
			return 1
		}
		return 0
	default:
		return 0
	}
}

// asTime coerces a field value to a timestamp. Numeric values are UNIX epoch
// seconds, which is how torrent clients report event times. Missing values
// become the epoch.
func asTime(v any) time.Time {
	switch t := v.(type) {
	case nil:
		return time.Unix(0, 0)
	case time.Time:
		return t
	case int:
		return time.Unix(int64(t), 0)
	case int64:
		return time.Unix(t, 0)
	case uint64:
		return time.Unix(int64(t), 0)
	case float64:
		return time.Unix(int64(t), 0)
	default:
		return time.Unix(0, 0)
	}
}

// asList coerces a field value to a tag set. A plain string is split on
// whitespace. Missing values become the empty set.
func asList(v any) []string {
	switch l := v.(type) {
	case nil:
		return nil
	case []string:
		return l
	case string:
		return strings.Fields(l)
	case []any:
		out := make([]string, 0, len(l))
		for _, e := range l {
			out = append(out, asString(e))
		}
		return out
	default:
		return nil
	}
}

// asBool coerces a field value to a bool. Missing values become false.
func asBool(v any) bool {
	switch b := v.(type) {
	case nil:
		return false
	case bool:
		return b
	case int:
		return b != 0
	case int64:
		return b != 0
	case float64:
		return b != 0
	case string:
		return b == "1" || strings.EqualFold(b, "yes") || strings.EqualFold(b, "true")
	default:
		return false
	}
}
