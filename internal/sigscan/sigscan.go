package sigscan

import (
	"bytes"
	"errors"
	"sort"

	"github.com/stegsift/stegsift/internal/types"
)

// ErrNoSignatures is returned when Scan is called with an empty table.
// An empty table is a configuration error, not a property of the data.
var ErrNoSignatures = errors.New("sigscan: empty signature table")

// Signature pairs a format name with its magic byte sequence.
type Signature struct {
	Name  string
	Magic []byte
}

// DefaultTable covers the container and archive formats that commonly show
// up embedded in CTF images.
func DefaultTable() []Signature {
	return []Signature{
		{"PNG", []byte("\x89PNG\r\n\x1a\n")},
		{"JPEG", []byte{0xFF, 0xD8, 0xFF}},
		{"ZIP", []byte("PK\x03\x04")},
		{"PDF", []byte("%PDF")},
		{"GZIP", []byte{0x1F, 0x8B, 0x08}},
		{"RAR", []byte("Rar!\x1a\x07\x00")},
		{"7-Zip", []byte("7z\xBC\xAF\x27\x1C")},
		{"BZIP2", []byte("BZh")},
		{"MP3/ID3", []byte("ID3")},
	}
}

// Scan reports every occurrence of every table magic in data, sorted by
// ascending offset. Ties keep the table's discovery order, which the sort
// below preserves because it is stable over the per-signature append order.
func Scan(data []byte, table []Signature) ([]types.SignatureHit, error) {
	if len(table) == 0 {
		return nil, ErrNoSignatures
	}
	var hits []types.SignatureHit
	for _, sig := range table {
		if len(sig.Magic) == 0 {
			continue
		}
		off := 0
		for {
			idx := bytes.Index(data[off:], sig.Magic)
			if idx == -1 {
				break
			}
			hits = append(hits, types.SignatureHit{Name: sig.Name, Magic: sig.Magic, Offset: off + idx})
			off += idx + len(sig.Magic)
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Offset < hits[j].Offset })
	return hits, nil
}
