// Package attrs reads values out of slog-style key/value lists
// ([key1, value1, key2, value2, ...]).
package attrs

// ExtractString returns the string value paired with key, or "" when the key
// is absent or its value is not a string.
func ExtractString(list []any, key string) string {
	for i := 0; i+1 < len(list); i += 2 {
		if k, ok := list[i].(string); ok && k == key {
			if v, ok := list[i+1].(string); ok {
				return v
			}
		}
	}
	return ""
}

// FirstString returns the first non-empty string value among keys, in the
// order the keys are given.
func FirstString(list []any, keys ...string) string {
	for _, key := range keys {
		if v := ExtractString(list, key); v != "" {
			return v
		}
	}
	return ""
}
