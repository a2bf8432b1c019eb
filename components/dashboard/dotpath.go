package dashboard

import (
	"fmt"
	"strconv"
	"strings"
)

// ResolvePath walks a decoded JSON value ("data.items.0.name") and returns the
// node at the path. Segments address object keys or numeric array indexes; the
// segment "length" is valid only on arrays and yields the element count.
func ResolvePath(root any, path string) (any, bool) {
	if strings.TrimSpace(path) == "" {
		return root, true
	}
	current := root
	for _, segment := range strings.Split(path, ".") {
		if segment == "" {
			return nil, false
		}
		switch node := current.(type) {
		case map[string]any:
			next, ok := node[segment]
			if !ok {
				return nil, false
			}
			current = next
		case []any:
			if segment == "length" {
				current = float64(len(node))
				continue
			}
			idx, err := strconv.Atoi(segment)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, false
			}
			current = node[idx]
		default:
			return nil, false
		}
	}
	return current, true
}

// pathNumber coerces a resolved node into a numeric value.
func pathNumber(v any) (float64, bool) {
	switch value := v.(type) {
	case float64:
		return value, true
	case int:
		return float64(value), true
	case int64:
		return float64(value), true
	case bool:
		if value {
			return 1, true
		}
		return 0, true
	case string:
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return parsed, true
		}
		return 0, false
	default:
		return 0, false
	}
}

// pathString renders a resolved node as a display label.
func pathString(v any) string {
	switch value := v.(type) {
	case string:
		return value
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(value)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", value)
	}
}
