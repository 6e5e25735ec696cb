// Package engine orchestrates a steganographic analysis run: it loads an
// image buffer, runs the signature scan and PNG chunk walk side by side,
// fans bitplane extraction out over a bounded worker pool, carves appended
// payloads, and hands every derived artifact to the run's flag-pattern set.
package engine
