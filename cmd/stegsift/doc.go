// Package stegsift provides the command-line interface for the stegsift tool.
// It configures subcommands (analyze, patterns, version, completion), parses
// flags, and executes the selected command.
//
// Typical usage from a main package:
//
//	package main
//	import "github.com/stegsift/stegsift/cmd/stegsift"
//	func main() { stegsift.Execute() }
package stegsift
