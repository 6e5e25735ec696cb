package pngchunk

import (
	"encoding/binary"

	"github.com/stegsift/stegsift/internal/types"
)

// pngMagic is the fixed 8-byte container identifier.
var pngMagic = []byte("\x89PNG\r\n\x1a\n")

// ParseResult is the structural decode of a PNG buffer. Truncated is set
// when a declared chunk length overran the buffer and the walk stopped
// early; the chunks parsed before that point are still present. EndOffset
// is the offset just past the IEND record, or -1 when no IEND was seen.
type ParseResult struct {
	Chunks    []types.ChunkRecord
	Truncated bool
	EndOffset int
}

// IsPNG reports whether data starts with the PNG container identifier.
func IsPNG(data []byte) bool {
	return len(data) >= len(pngMagic) && string(data[:len(pngMagic)]) == string(pngMagic)
}

// Parse walks the chunk sequence of a PNG buffer. A buffer that is not a
// PNG yields an empty result, not an error. CTF images routinely carry
// corrupted or truncated trailing chunks, so an overrunning length stops
// the walk and returns everything parsed so far.
func Parse(data []byte) ParseResult {
	res := ParseResult{EndOffset: -1}
	if !IsPNG(data) {
		return res
	}
	pos := len(pngMagic)
	for pos+8 <= len(data) {
		length := int(binary.BigEndian.Uint32(data[pos : pos+4]))
		// 12 covers length, type, and the trailing CRC. The CRC itself is
		// not verified.
		if length < 0 || pos+12+length > len(data) {
			res.Truncated = true
			break
		}
		ctype := string(data[pos+4 : pos+8])
		rec := types.ChunkRecord{
			Type:    ctype,
			Payload: data[pos+8 : pos+8+length],
			Offset:  pos,
			Span:    12 + length,
		}
		res.Chunks = append(res.Chunks, rec)
		pos += rec.Span
		if ctype == "IEND" {
			res.EndOffset = pos
			break
		}
	}
	return res
}
