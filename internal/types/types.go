package types

// SignatureHit records one occurrence of a known file-format magic number
// inside the analyzed buffer. Offsets are byte positions from the start.
type SignatureHit struct {
	Name   string `json:"name"`
	Magic  []byte `json:"-"`
	Offset int    `json:"offset"`
}

// ChunkRecord is one structural record of the PNG container: 4-byte length,
// 4-byte type tag, payload, 4-byte CRC (not verified). Span is the full
// on-disk footprint, 12 + len(Payload).
type ChunkRecord struct {
	Type    string `json:"type"`
	Payload []byte `json:"-"`
	Offset  int    `json:"offset"`
	Span    int    `json:"span"`
}

// TextKind identifies which PNG text chunk variant a TextChunkRecord came from.
type TextKind string

const (
	TextPlain         TextKind = "tEXt"
	TextCompressed    TextKind = "zTXt"
	TextInternational TextKind = "iTXt"
)

// TextChunkRecord is the decoded form of a tEXt/zTXt/iTXt chunk. When the
// payload could not be decoded, Err carries the per-chunk diagnostic and
// Text is empty; a bad chunk never aborts the rest of the parse.
type TextChunkRecord struct {
	Kind    TextKind `json:"kind"`
	Keyword string   `json:"keyword"`
	Text    string   `json:"text,omitempty"`
	Err     string   `json:"error,omitempty"`
}

// FlagHit describes a flag-format match found in one derived artifact.
// Source is a free-form locator: a chunk kind, "R/bit0/msb", "carved", etc.
type FlagHit struct {
	Source  string `json:"source"`
	Pattern string `json:"pattern"`
	Match   string `json:"match"`
	Offset  int    `json:"offset"`
}

// ArchiveEntry is one file unpacked from an archive found inside a carved
// payload.
type ArchiveEntry struct {
	Name string `json:"name"`
	Size int    `json:"size"`
	Data []byte `json:"-"`
}

// CarvedPayload holds bytes recovered from after the container's end marker
// or from an embedded signature offset. ArchiveErr records a failed archive
// unpack attempt; the raw bytes are still the result.
type CarvedPayload struct {
	Origin     string         `json:"origin"`
	Offset     int            `json:"offset"`
	Data       []byte         `json:"-"`
	Size       int            `json:"size"`
	ArchiveErr string         `json:"archive_error,omitempty"`
	Entries    []ArchiveEntry `json:"entries,omitempty"`
}
