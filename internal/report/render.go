package report

import (
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/stegsift/stegsift/internal/engine"
	"github.com/stegsift/stegsift/internal/preview"
	"github.com/stegsift/stegsift/internal/types"
	"golang.org/x/term"
)

type PrintOptions struct {
	NoColor      bool
	Duration     time.Duration
	FilesScanned int
	FilesSkipped int
}

const matchWidth = 48

// matchBudget widens the match column on wide terminals; non-terminal
// writers get the fixed default so piped output stays stable.
func matchBudget(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return matchWidth
	}
	cols, _, err := term.GetSize(int(f.Fd()))
	if err != nil || cols < 100 {
		return matchWidth
	}
	return cols - 52
}

// row is one flag hit flattened with the file it came from.
type row struct {
	path string
	hit  types.FlagHit
}

func flatten(results []*engine.Result) []row {
	var rows []row
	for _, r := range results {
		for _, f := range r.Flags {
			rows = append(rows, row{path: r.Path, hit: f})
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].path != rows[j].path {
			return rows[i].path < rows[j].path
		}
		if rows[i].hit.Source != rows[j].hit.Source {
			return rows[i].hit.Source < rows[j].hit.Source
		}
		return rows[i].hit.Offset < rows[j].hit.Offset
	})
	return rows
}

func PrintText(w io.Writer, results []*engine.Result, opts PrintOptions) {
	rows := flatten(results)
	budget := matchBudget(w)
	if len(rows) == 0 {
		fmt.Fprintln(w, "No flags found")
	} else {
		// Column widths
		maxSrc := 6
		for _, r := range rows {
			if l := len(r.hit.Source); l > maxSrc {
				maxSrc = l
			}
		}
		fmt.Fprintf(w, "Flags: %d\n", len(rows))
		for _, r := range rows {
			pat := r.hit.Pattern
			if !opts.NoColor {
				pat = "\x1b[36m" + pat + "\x1b[0m" // cyan
			}
			match := preview.Clip(preview.Printable([]byte(r.hit.Match)), budget)
			fmt.Fprintf(w, "%-12s %-*s %s@%d  %s\n", pat, maxSrc, r.hit.Source, r.path, r.hit.Offset, match)
		}
	}
	footer(w, len(rows), opts)
}

func PrintTable(w io.Writer, results []*engine.Result, opts PrintOptions) {
	rows := flatten(results)
	if len(rows) == 0 {
		fmt.Fprintln(w, "No flags found")
		footer(w, 0, opts)
		return
	}
	tw := tablewriter.NewWriter(w)
	tw.Header("PATTERN", "SOURCE", "FILE", "OFFSET", "MATCH")
	for _, r := range rows {
		match := preview.Clip(preview.Printable([]byte(r.hit.Match)), matchWidth)
		tw.Append(r.hit.Pattern, r.hit.Source, r.path, fmt.Sprintf("%d", r.hit.Offset), match)
	}
	tw.Render()
	footer(w, len(rows), opts)
}

func footer(w io.Writer, flags int, opts PrintOptions) {
	if opts.Duration <= 0 && opts.FilesScanned <= 0 && opts.FilesSkipped <= 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Flags: %d\n", flags)
	if opts.Duration > 0 {
		fmt.Fprintf(w, "Scan duration: %.2fs\n", opts.Duration.Seconds())
	}
	if opts.FilesScanned > 0 {
		fmt.Fprintf(w, "Files scanned: %d\n", opts.FilesScanned)
	}
	if opts.FilesSkipped > 0 {
		fmt.Fprintf(w, "Files skipped: %d (cached)\n", opts.FilesSkipped)
	}
}
