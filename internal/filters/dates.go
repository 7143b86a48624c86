package filters

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// dateLayouts are tried in order when a date arrives as text.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05 -0700 MST",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseDate converts a date-like value into a time.Time.
//
// Accepted inputs are time.Time, *time.Time, strings in one of dateLayouts,
// integer or float Unix-millisecond timestamps, and fmt.Stringer values whose
// text parses. The zero time is not a date. ok is false for anything else.
func ParseDate(v any) (t time.Time, ok bool) {
	switch d := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		return d, !d.IsZero()
	case *time.Time:
		if d == nil {
			return time.Time{}, false
		}
		return *d, !d.IsZero()
	case string:
		return parseDateString(d)
	case []byte:
		return parseDateString(string(d))
	case fmt.Stringer:
		return parseDateString(d.String())
	}
	ms, isNum := numberValue(v)
	if !isNum || math.IsNaN(ms) || math.Abs(ms) > maxTimestampMillis {
		return time.Time{}, false
	}
	return time.UnixMilli(int64(ms)).UTC(), true
}

// maxTimestampMillis bounds numeric timestamps the same way the host's date type does.
const maxTimestampMillis = 8.64e15

// numberValue widens any Go numeric kind to float64. Every in-range
// timestamp is below 2^53 and so converts exactly.
func numberValue(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

func parseDateString(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// isEmptyValue reports the values the ISO filter treats as "no date".
func isEmptyValue(v any) bool {
	switch d := v.(type) {
	case nil:
		return true
	case string:
		return d == ""
	case []byte:
		return len(d) == 0
	case bool:
		return !d
	case time.Time:
		return d.IsZero()
	case *time.Time:
		return d == nil || d.IsZero()
	}
	if n, isNum := numberValue(v); isNum {
		return n == 0 || math.IsNaN(n)
	}
	return false
}
