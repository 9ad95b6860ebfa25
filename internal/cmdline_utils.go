// Command line flag usage formatting, shared by the demo runner.

package cosched_internal

import (
	"bytes"
	"strings"
)

const DEFAULT_FLAG_USAGE_WIDTH = 58

// FormatFlagUsageWidth wraps usage at width columns, discarding original
// line breaks and indentation, so multi-line flag help strings in source
// can be written readably and still render sanely with -h.
func FormatFlagUsageWidth(usage string, width int) string {
	buf := &bytes.Buffer{}
	lineLen := 0
	for i, word := range strings.Fields(strings.TrimSpace(usage)) {
		if i > 0 {
			if lineLen+len(word)+1 > width {
				buf.WriteByte('\n')
				lineLen = 0
			} else {
				buf.WriteByte(' ')
				lineLen++
			}
		}
		n, _ := buf.WriteString(word)
		lineLen += n
	}
	return buf.String()
}

// FormatFlagUsage wraps usage at the default width.
func FormatFlagUsage(usage string) string {
	return FormatFlagUsageWidth(usage, DEFAULT_FLAG_USAGE_WIDTH)
}
