package patterns

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/stegsift/stegsift/internal/types"
)

// Pattern is one compiled flag-format matcher. Matching is always
// case-insensitive and byte-oriented so the same pattern works on chunk
// text, packed bitplane streams, and carved payloads.
type Pattern struct {
	ID string
	re *regexp.Regexp
}

// Set is the collection of patterns used for one analysis run. It is passed
// explicitly through the engine config; concurrent runs with different sets
// do not interfere.
type Set []Pattern

// Compile builds a Pattern from a user-supplied regex. The expression is
// forced case-insensitive unless the caller already set a flag group.
func Compile(id, expr string) (Pattern, error) {
	if !strings.HasPrefix(expr, "(?") {
		expr = "(?i)" + expr
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return Pattern{}, fmt.Errorf("pattern %s: %w", id, err)
	}
	return Pattern{ID: id, re: re}, nil
}

// MustCompile is Compile for builtin patterns; it panics on a bad expression.
func MustCompile(id, expr string) Pattern {
	p, err := Compile(id, expr)
	if err != nil {
		panic(err)
	}
	return p
}

// Scan matches every pattern in the set against data and returns all
// non-overlapping matches tagged with the given source locator. Pure:
// identical data and set always produce identical hits.
func (s Set) Scan(source string, data []byte) []types.FlagHit {
	var out []types.FlagHit
	for _, p := range s {
		for _, loc := range p.re.FindAllIndex(data, -1) {
			out = append(out, types.FlagHit{
				Source:  source,
				Pattern: p.ID,
				Match:   string(data[loc[0]:loc[1]]),
				Offset:  loc[0],
			})
		}
	}
	return out
}

// ScanText is Scan for already-decoded chunk text.
func (s Set) ScanText(source, text string) []types.FlagHit {
	return s.Scan(source, []byte(text))
}

// IDs lists the pattern IDs in set order.
func (s Set) IDs() []string {
	ids := make([]string, len(s))
	for i, p := range s {
		ids[i] = p.ID
	}
	return ids
}
