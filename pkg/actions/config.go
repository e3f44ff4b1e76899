package actions

import "strconv"

// stringValue returns the first non-empty string found under keys.
func stringValue(config map[string]any, keys ...string) string {
	for _, key := range keys {
		if s, ok := config[key].(string); ok && s != "" {
			return s
		}
	}

	return ""
}

// stringListValue reads a key that may hold an array of strings or a single
// string. Older rule configs stored scalars.
func stringListValue(config map[string]any, key string) []string {
	switch v := config[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))

		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}

		return out
	case string:
		if v == "" {
			return nil
		}

		return []string{v}
	default:
		return nil
	}
}

// intValue reads a key that may hold a JSON number or a numeric string.
func intValue(config map[string]any, key string) (int, bool) {
	switch v := config[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, false
		}

		return n, true
	default:
		return 0, false
	}
}
