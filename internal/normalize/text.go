package normalize

import (
	"reflect"
	"sort"
	"strings"
)

const (
	deepSearchNodeBudget = 4000
	deepSearchMaxDepth   = 8
)

// textPaths lists the known text fields, long-form note text first.
var textPaths = [][]string{
	{"note_tweet", "text"},
	{"note_tweet", "note_tweet_results", "result", "text"},
	{"noteTweet", "text"},
	{"noteTweet", "noteTweetResults", "result", "text"},
	{"extended_tweet", "full_text"},
	{"retweeted_status", "extended_tweet", "full_text"},
	{"legacy", "full_text"},
	{"full_text"},
	{"text"},
}

// ExtractText returns the longest text found in the known fields of tweet.
// Ties go to the field listed first. When no field has text, or the winner
// looks truncated, the payload is deep-searched as well.
func ExtractText(tweet map[string]any) string {
	var best string
	for _, path := range textPaths {
		s := strings.TrimSpace(str(field(tweet, path...)))
		if runeLen(s) > runeLen(best) {
			best = s
		}
	}

	if best == "" {
		return DeepSearchText(tweet)
	}
	if looksTruncated(best) {
		if deep := DeepSearchText(tweet); runeLen(deep) > runeLen(best) {
			return deep
		}
	}
	return best
}

func looksTruncated(s string) bool {
	// "â€¦" is "…" decoded with the wrong charset somewhere upstream.
	return strings.HasSuffix(s, "…") || strings.HasSuffix(s, "â€¦")
}

type searchFrame struct {
	key   string
	value any
	depth int
}

type nodeID struct {
	ptr uintptr
	n   int
}

// DeepSearchText walks root looking for the longest string stored under a
// key containing "text" that is neither a URL nor HTML. The walk stops after
// a fixed node budget and does not descend past a fixed depth. Objects and
// arrays are visited once each, so self-referencing trees terminate.
func DeepSearchText(root any) string {
	var best string
	visited := make(map[nodeID]struct{})
	stack := []searchFrame{{value: root}}

	for nodes := 0; len(stack) > 0 && nodes < deepSearchNodeBudget; nodes++ {
		frame := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch v := frame.value.(type) {
		case string:
			if isPostText(frame.key, v) && runeLen(strings.TrimSpace(v)) > runeLen(best) {
				best = strings.TrimSpace(v)
			}
		case map[string]any:
			if frame.depth >= deepSearchMaxDepth || !markVisited(visited, v, 0) {
				continue
			}
			keys := make([]string, 0, len(v))
			for k := range v {
				keys = append(keys, k)
			}
			// Reverse order so the alphabetically first key is popped first.
			sort.Sort(sort.Reverse(sort.StringSlice(keys)))
			for _, k := range keys {
				stack = append(stack, searchFrame{key: k, value: v[k], depth: frame.depth + 1})
			}
		case []any:
			if len(v) == 0 || frame.depth >= deepSearchMaxDepth || !markVisited(visited, v, len(v)) {
				continue
			}
			for i := len(v) - 1; i >= 0; i-- {
				stack = append(stack, searchFrame{key: frame.key, value: v[i], depth: frame.depth + 1})
			}
		}
	}
	return best
}

// markVisited records the identity of a map or slice and reports whether it
// was new.
func markVisited(visited map[nodeID]struct{}, v any, n int) bool {
	id := nodeID{ptr: reflect.ValueOf(v).Pointer(), n: n}
	if _, seen := visited[id]; seen {
		return false
	}
	visited[id] = struct{}{}
	return true
}

func isPostText(key, value string) bool {
	k := strings.ToLower(key)
	if !strings.Contains(k, "text") {
		return false
	}
	if strings.Contains(k, "display_url") || strings.Contains(k, "expanded_url") {
		return false
	}

	v := strings.TrimSpace(value)
	if v == "" {
		return false
	}
	lower := strings.ToLower(v)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return false
	}
	for _, marker := range []string{"<blockquote", "<p", "</"} {
		if strings.Contains(lower, marker) {
			return false
		}
	}
	return true
}
