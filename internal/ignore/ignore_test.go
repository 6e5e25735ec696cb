package ignore

import (
	"os"
	"path/filepath"
	"testing"
)

func TestIgnoreMatch(t *testing.T) {
	dir := t.TempDir()
	ig := filepath.Join(dir, ".stegsiftignore")
	content := "out/\n*.bin\n# comment\n\nnotes.png\n"
	if err := os.WriteFile(ig, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	m, err := Load(ig)
	if err != nil {
		t.Fatal(err)
	}
	cases := map[string]bool{
		"out/extracted/tail.png": true,
		"lsb/R_bit0_msb.bin":     true,
		"notes.png":              true,
		"samples/clue.png":       false,
	}
	for p, want := range cases {
		if got := m.Match(p); got != want {
			t.Fatalf("Match(%q)=%v want %v", p, got, want)
		}
	}
}

func TestIgnoreMissingFile(t *testing.T) {
	m, err := Load(filepath.Join(t.TempDir(), ".stegsiftignore"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if m.Match("anything.png") {
		t.Fatal("empty matcher must match nothing")
	}
}
