package ignore

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// Matcher answers whether a relative path is excluded by a .stegsiftignore
// file. Supported pattern forms: directory prefixes ("out/"), basename
// globs ("*.bin"), and exact relative paths. Comments and blank lines are
// skipped.
type Matcher struct {
	dirs  []string
	globs []string
	exact map[string]bool
}

// Load reads the ignore file at path. A missing file yields an empty
// matcher and no error the caller needs to act on.
func Load(path string) (Matcher, error) {
	m := Matcher{exact: map[string]bool{}}
	f, err := os.Open(path)
	if err != nil {
		return m, err
	}
	defer f.Close()
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		switch {
		case strings.HasSuffix(line, "/"):
			m.dirs = append(m.dirs, strings.TrimSuffix(line, "/"))
		case strings.ContainsAny(line, "*?["):
			m.globs = append(m.globs, line)
		default:
			m.exact[line] = true
		}
	}
	return m, sc.Err()
}

// Match reports whether rel is ignored.
func (m Matcher) Match(rel string) bool {
	rel = filepath.ToSlash(rel)
	if m.exact[rel] {
		return true
	}
	for _, d := range m.dirs {
		if rel == d || strings.HasPrefix(rel, d+"/") {
			return true
		}
	}
	base := filepath.Base(rel)
	for _, g := range m.globs {
		if ok, _ := filepath.Match(g, base); ok {
			return true
		}
		if ok, _ := filepath.Match(g, rel); ok {
			return true
		}
	}
	return false
}
