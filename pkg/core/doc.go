// Package core provides a small, stable facade over stegsift's internal engine
// for external integrations. It deliberately re-exports a narrow API surface
// so other tools can depend on a stable import path without exposing internal
// implementation packages.
//
// Example:
//
//	cfg := core.Config{Root: "challenge.png"}
//	res, err := core.Analyze(cfg)
//	if err != nil { /* handle */ }
//	_ = core.MarshalFlags(os.Stdout, res.Flags)
package core
