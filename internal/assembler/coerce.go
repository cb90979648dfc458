package assembler

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"02/01/2006",
	"2006/01/02",
}

// String returns the trimmed string form of m[key].
func String(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// Int reads an integer amount. Strings may group thousands with spaces,
// dots, commas or underscores ("1 000 000", "1.000.000"). A separator that
// does not split exact three-digit groups is an error, so "500000.50" and
// "1,5" are rejected rather than read as 50000050 and 15. Missing values
// return ok=false.
func Int(m map[string]any, key string) (int64, bool, error) {
	switch v := m[key].(type) {
	case nil:
		return 0, false, nil
	case int:
		return int64(v), true, nil
	case int64:
		return v, true, nil
	case int32:
		return int64(v), true, nil
	case float64:
		if v != math.Trunc(v) {
			return 0, true, fmt.Errorf("%s: %v is not a whole number", key, v)
		}
		return int64(v), true, nil
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, true, fmt.Errorf("%s: %w", key, err)
		}
		return n, true, nil
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0, false, nil
		}
		n, err := parseGrouped(s)
		if err != nil {
			return 0, true, fmt.Errorf("%s: %q is not a whole number", key, v)
		}
		return n, true, nil
	default:
		return 0, true, fmt.Errorf("%s: unsupported value %T", key, v)
	}
}

func isGroupSeparator(r rune) bool {
	switch r {
	case ' ', '\u00a0', '\u202f', '.', ',', '_':
		return true
	}
	return false
}

// parseGrouped parses an optionally signed integer whose digits may be split
// into thousands by a single kind of separator.
func parseGrouped(s string) (int64, error) {
	sign := ""
	if strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
		sign, s = s[:1], s[1:]
	}
	var sep rune
	for _, r := range s {
		if !isGroupSeparator(r) {
			continue
		}
		if sep != 0 && r != sep {
			return 0, fmt.Errorf("mixed separators in %q", s)
		}
		sep = r
	}
	if sep == 0 {
		return strconv.ParseInt(sign+s, 10, 64)
	}
	groups := strings.Split(s, string(sep))
	for i, g := range groups {
		if i == 0 && (len(g) < 1 || len(g) > 3) {
			return 0, fmt.Errorf("bad leading group %q", g)
		}
		if i > 0 && len(g) != 3 {
			return 0, fmt.Errorf("bad group %q", g)
		}
	}
	return strconv.ParseInt(sign+strings.Join(groups, ""), 10, 64)
}

// Bool reads a flag. Strings "true", "1", "yes", "oui" are true.
func Bool(m map[string]any, key string) bool {
	switch v := m[key].(type) {
	case bool:
		return v
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "1", "yes", "oui", "y":
			return true
		}
	case float64:
		return v != 0
	case int:
		return v != 0
	}
	return false
}

// Date reads a calendar date. The zero time with ok=false means absent.
func Date(m map[string]any, key string) (time.Time, bool, error) {
	switch v := m[key].(type) {
	case nil:
		return time.Time{}, false, nil
	case time.Time:
		return v, !v.IsZero(), nil
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return time.Time{}, false, nil
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true, nil
			}
		}
		return time.Time{}, true, fmt.Errorf("%s: %q is not a date", key, v)
	default:
		return time.Time{}, true, fmt.Errorf("%s: unsupported value %T", key, v)
	}
}

// Map returns m[key] when it is a nested object.
func Map(m map[string]any, key string) map[string]any {
	if v, ok := m[key].(map[string]any); ok {
		return v
	}
	return nil
}

// Maps returns m[key] when it is a list of objects. Non-object entries are
// skipped.
func Maps(m map[string]any, key string) []map[string]any {
	list, ok := m[key].([]any)
	if !ok {
		if typed, ok := m[key].([]map[string]any); ok {
			return typed
		}
		return nil
	}
	out := make([]map[string]any, 0, len(list))
	for _, item := range list {
		if obj, ok := item.(map[string]any); ok {
			out = append(out, obj)
		}
	}
	return out
}
