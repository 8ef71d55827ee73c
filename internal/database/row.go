package database

import "strconv"

// Result values arrive in the server's textual form (the adapter converts
// raw bytes to strings). These helpers coerce the common cases the schema
// checks interpret.

// asString renders a single column value as a string.
func asString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	case nil:
		return ""
	default:
		return ""
	}
}

// asInt64 coerces a column value to an integer, returning ok=false when
// the value is absent or not numeric.
func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case uint64:
		return int64(n), true
	case string:
		i, err := strconv.ParseInt(n, 10, 64)
		return i, err == nil
	case []byte:
		i, err := strconv.ParseInt(string(n), 10, 64)
		return i, err == nil
	default:
		return 0, false
	}
}

// rowCount interprets the single value of a COUNT(*) row. A nil row (no
// result) counts as zero.
func rowCount(row []any) int64 {
	if len(row) == 0 {
		return 0
	}
	n, _ := asInt64(row[0])
	return n
}
