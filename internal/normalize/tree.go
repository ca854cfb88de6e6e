// Package normalize turns raw upstream payloads into domain.Candidate values.
//
// Every function here is pure: the same payload always yields the same
// candidate, and missing optional fields never produce an error.
package normalize

import "unicode/utf8"

// field walks nested JSON objects along path and returns the value found,
// or nil as soon as a step is not an object.
func field(v any, path ...string) any {
	for _, key := range path {
		m, ok := v.(map[string]any)
		if !ok {
			return nil
		}
		v = m[key]
	}
	return v
}

// str returns v if it is a string, otherwise "".
func str(v any) string {
	s, _ := v.(string)
	return s
}

// firstObject returns the first value that is a JSON object.
func firstObject(values ...any) map[string]any {
	for _, v := range values {
		if m, ok := v.(map[string]any); ok {
			return m
		}
	}
	return nil
}

// objects returns the JSON objects contained in v when v is an array.
func objects(v any) []map[string]any {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(list))
	for _, item := range list {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

// firstString returns the first non-empty string among m's keys.
func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := str(m[k]); s != "" {
			return s
		}
	}
	return ""
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
