package preview

import (
	"encoding/hex"
	"strings"
)

// Printable maps an artifact's bytes to a terminal-safe string: printable
// ASCII passes through, everything else becomes '.'.
func Printable(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b))
	for _, c := range b {
		if c >= 32 && c <= 126 {
			sb.WriteByte(c)
		} else {
			sb.WriteByte('.')
		}
	}
	return sb.String()
}

// HexDump renders at most max bytes as a canonical hex+ASCII dump. A
// truncation marker is appended when the artifact is longer.
func HexDump(b []byte, max int) string {
	truncated := false
	if max > 0 && len(b) > max {
		b = b[:max]
		truncated = true
	}
	var sb strings.Builder
	d := hex.Dumper(&sb)
	_, _ = d.Write(b)
	_ = d.Close()
	if truncated {
		sb.WriteString("...\n")
	}
	return sb.String()
}

// Clip shortens s to n runes for table cells.
func Clip(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
