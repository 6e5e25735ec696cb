package core

import (
	"github.com/stegsift/stegsift/internal/engine"
	"github.com/stegsift/stegsift/internal/patterns"
	"github.com/stegsift/stegsift/internal/types"
)

// Re-export selected internal types as a stable public API surface.
// These are type aliases so external consumers can depend on a stable path.
// We can replace these with decoupled structs later without breaking callers.
type Config = engine.Config
type Result = engine.Result
type BatchResult = engine.BatchResult
type FlagHit = types.FlagHit

// Analyze is the stable single-file entrypoint for other programs.
func Analyze(cfg Config) (*Result, error) {
	return engine.Analyze(cfg)
}

// AnalyzeBytes analyzes an in-memory buffer without touching the filesystem.
func AnalyzeBytes(cfg Config, name string, data []byte) (*Result, error) {
	return engine.AnalyzeBytes(cfg, name, data)
}

// ScanDir walks a directory tree and analyzes every image file in it.
func ScanDir(cfg Config) (*BatchResult, error) {
	return engine.ScanDir(cfg)
}

// PatternIDs returns the builtin flag pattern IDs.
// This is exposed for convenience to avoid importing internals directly.
func PatternIDs() []string { return patterns.Default().IDs() }
