package preview

import (
	"strings"
	"testing"
)

func TestPrintable(t *testing.T) {
	got := Printable([]byte{'f', 'l', 'a', 'g', 0x00, 0x7f, '!'})
	if got != "flag..!" {
		t.Fatalf("unexpected: %q", got)
	}
}

func TestHexDumpTruncation(t *testing.T) {
	out := HexDump(make([]byte, 64), 16)
	if !strings.HasSuffix(out, "...\n") {
		t.Fatalf("expected truncation marker: %q", out)
	}
	if strings.Count(out, "\n") != 2 {
		t.Fatalf("expected one dump line plus marker: %q", out)
	}
}

func TestClip(t *testing.T) {
	if got := Clip("short", 10); got != "short" {
		t.Fatalf("unexpected: %q", got)
	}
	if got := Clip("abcdefghij", 5); got != "abcd…" {
		t.Fatalf("unexpected: %q", got)
	}
}
