package engine

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	doublestar "github.com/bmatcuk/doublestar/v4"
	xxhash "github.com/cespare/xxhash/v2"
	"github.com/stegsift/stegsift/internal/cache"
	"github.com/stegsift/stegsift/internal/ignore"
	"github.com/stegsift/stegsift/internal/types"
)

// BatchResult aggregates per-file results for a directory scan.
type BatchResult struct {
	Results      []*Result
	FilesScanned int
	FilesSkipped int
	Duration     time.Duration
}

// ScanDir walks cfg.Root and analyzes every eligible image file. Files
// whose content hash matches the cache are skipped; every analyzed file
// updates the cache unless caching is disabled.
func ScanDir(cfg Config) (*BatchResult, error) {
	cfg = cfg.defaults()
	started := time.Now()

	// Invalid user patterns are a run-level configuration error, not a
	// property of any one file: fail before walking anything.
	if _, err := compileSet(cfg); err != nil {
		return nil, err
	}

	var db cache.DB
	if !cfg.NoCache {
		db, _ = cache.Load(cfg.Root)
	} else {
		db.Entries = map[string]string{}
	}
	updated := map[string]string{}

	ign, _ := ignore.Load(filepath.Join(cfg.Root, ".stegsiftignore"))

	out := &BatchResult{}
	err := walk(cfg, ign, func(rel string, data []byte) {
		h := fastHash(data)
		if !cfg.NoCache && db.Entries[rel] == h {
			out.FilesSkipped++
			if cfg.Progress != nil {
				cfg.Progress()
			}
			return
		}
		res, aerr := AnalyzeBytes(cfg, rel, data)
		if aerr != nil {
			// oversized file; walk already filters on declared size,
			// so this only catches files that grew since stat
			out.FilesSkipped++
			return
		}
		out.Results = append(out.Results, res)
		out.FilesScanned++
		if !cfg.NoCache {
			updated[rel] = h
		}
	})
	if err != nil {
		return nil, err
	}

	out.Duration = time.Since(started)
	if !cfg.NoCache && len(updated) > 0 {
		if db.Entries == nil {
			db.Entries = map[string]string{}
		}
		for k, v := range updated {
			db.Entries[k] = v
		}
		_ = cache.Save(cfg.Root, db)
	}
	if !cfg.NoCache {
		var flags []types.FlagHit
		for _, r := range out.Results {
			flags = append(flags, r.Flags...)
		}
		_ = cache.SaveResults(cfg.Root, flags)
	}
	return out, nil
}

func walk(cfg Config, ign ignore.Matcher, handle func(rel string, data []byte)) error {
	return filepath.WalkDir(cfg.Root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			return nil
		}
		rel, _ := filepath.Rel(cfg.Root, p)
		if !allowedByGlobs(rel, cfg) {
			return nil
		}
		if ign.Match(rel) {
			return nil
		}
		if !isImagePath(rel) {
			return nil
		}
		info, _ := d.Info()
		if info != nil && cfg.MaxBytes > 0 && info.Size() > cfg.MaxBytes {
			return nil
		}
		b, rerr := os.ReadFile(p)
		if rerr != nil {
			return nil
		}
		handle(rel, b)
		return nil
	})
}

// isImagePath gates batch mode to the container formats the pipeline
// understands. Single-file analysis has no such gate.
func isImagePath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".jpg", ".jpeg", ".bmp", ".gif", ".webp":
		return true
	}
	return false
}

// allowedByGlobs applies comma-separated include globs as a positive filter
// and exclude globs last, with forward-slash semantics.
func allowedByGlobs(relPath string, cfg Config) bool {
	rp := strings.ReplaceAll(relPath, "\\", "/")
	includes := parseGlobsList(cfg.IncludeGlobs)
	excludes := parseGlobsList(cfg.ExcludeGlobs)
	if len(includes) > 0 && !matchAnyGlob(rp, includes) {
		return false
	}
	if len(excludes) > 0 && matchAnyGlob(rp, excludes) {
		return false
	}
	return true
}

func parseGlobsList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p, trimGlobPrefix(p))
		}
	}
	return out
}

func matchAnyGlob(pathToMatch string, globs []string) bool {
	for _, g := range globs {
		if ok, _ := doublestar.Match(g, pathToMatch); ok {
			return true
		}
		if ok, _ := doublestar.Match(g, filepath.Base(pathToMatch)); ok {
			return true
		}
	}
	return false
}

func trimGlobPrefix(g string) string {
	s := strings.TrimPrefix(g, "./")
	for strings.HasPrefix(s, "**/") {
		s = strings.TrimPrefix(s, "**/")
	}
	return s
}

func fastHash(b []byte) string {
	if len(b) == 0 {
		return "0000000000000000"
	}
	sum := xxhash.Sum64(b)
	var buf [16]byte
	const hex = "0123456789abcdef"
	for i := 15; i >= 0; i-- {
		buf[i] = hex[sum&0xF]
		sum >>= 4
	}
	return string(buf[:])
}
