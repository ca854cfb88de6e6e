package transporters

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"postcard/pkg/log"
)

// Text writes human-readable lines, used by the CLI on stderr:
//
//	15:04:05 WARN  source failed outcome=timeout source=embed
type Text struct {
	w io.Writer
}

// NewText writes text lines to w.
func NewText(w io.Writer) *Text {
	return &Text{w: w}
}

func (t *Text) Name() string { return "text" }

func (t *Text) Write(entry log.Entry) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %-5s %s", entry.Timestamp.Format("15:04:05"), entry.Level, entry.Message)

	keys := make([]string, 0, len(entry.Fields))
	for k := range entry.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, entry.Fields[k])
	}
	if entry.RequestID != "" {
		fmt.Fprintf(&b, " request_id=%s", entry.RequestID)
	}
	b.WriteByte('\n')

	_, err := io.WriteString(t.w, b.String())
	return err
}

func (t *Text) Close() error { return nil }
