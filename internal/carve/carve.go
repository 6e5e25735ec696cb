package carve

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"

	"github.com/stegsift/stegsift/internal/pngchunk"
	"github.com/stegsift/stegsift/internal/types"
)

// Limits bounds in-memory archive unpacking so a zip bomb inside a carved
// payload cannot exhaust memory.
type Limits struct {
	MaxArchiveBytes int64
	MaxEntries      int
}

// DefaultLimits matches the analyze command's defaults.
func DefaultLimits() Limits {
	return Limits{MaxArchiveBytes: 32 << 20, MaxEntries: 1000}
}

// Carve extracts at most one secondary payload from the buffer. For a PNG
// with an IEND record it takes the trailing bytes (unless they are a single
// repeated filler byte); otherwise it slices from the first signature hit
// past offset zero. A failed archive unpack is recorded on the payload but
// does not fail the carve.
func Carve(data []byte, parse pngchunk.ParseResult, hits []types.SignatureHit, lim Limits) *types.CarvedPayload {
	if parse.EndOffset >= 0 && parse.EndOffset < len(data) {
		tail := data[parse.EndOffset:]
		if !uniformFiller(tail) {
			p := &types.CarvedPayload{
				Origin: "after-iend",
				Offset: parse.EndOffset,
				Data:   tail,
				Size:   len(tail),
			}
			unpackEmbeddedZip(p, hits, parse.EndOffset, lim)
			return p
		}
	}

	// Signature-based fallback: the first hit past offset zero marks an
	// embedded file; offset-zero hits describe the outer format itself.
	for _, h := range hits {
		if h.Offset <= 0 {
			continue
		}
		p := &types.CarvedPayload{
			Origin: fmt.Sprintf("signature:%s", h.Name),
			Offset: h.Offset,
			Data:   data[h.Offset:],
			Size:   len(data) - h.Offset,
		}
		if h.Name == "ZIP" {
			unpackZip(p, p.Data, lim)
		}
		return p
	}
	return nil
}

// unpackEmbeddedZip looks for a ZIP signature anywhere inside the carved
// tail and unpacks from there.
func unpackEmbeddedZip(p *types.CarvedPayload, hits []types.SignatureHit, base int, lim Limits) {
	for _, h := range hits {
		if h.Name != "ZIP" || h.Offset < base {
			continue
		}
		unpackZip(p, p.Data[h.Offset-base:], lim)
		return
	}
}

func unpackZip(p *types.CarvedPayload, blob []byte, lim Limits) {
	zr, err := zip.NewReader(bytes.NewReader(blob), int64(len(blob)))
	if err != nil {
		p.ArchiveErr = fmt.Sprintf("zip: %v", err)
		return
	}
	var decompressed int64
	for _, f := range zr.File {
		if lim.MaxEntries > 0 && len(p.Entries) >= lim.MaxEntries {
			return
		}
		if f.FileInfo().IsDir() {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			p.ArchiveErr = fmt.Sprintf("zip entry %s: %v", f.Name, err)
			continue
		}
		b, err := readBounded(rc, lim, &decompressed)
		_ = rc.Close()
		if err != nil {
			p.ArchiveErr = fmt.Sprintf("zip entry %s: %v", f.Name, err)
			return
		}
		p.Entries = append(p.Entries, types.ArchiveEntry{Name: f.Name, Size: len(b), Data: b})
	}
}

func readBounded(r io.Reader, lim Limits, decompressed *int64) ([]byte, error) {
	remain := int64(1 << 62)
	if lim.MaxArchiveBytes > 0 {
		remain = lim.MaxArchiveBytes - *decompressed
		if remain <= 0 {
			return nil, fmt.Errorf("byte budget exceeded")
		}
	}
	var buf bytes.Buffer
	n, err := io.CopyN(&buf, r, remain)
	*decompressed += n
	if err != nil && err != io.EOF {
		return nil, err
	}
	if err == nil {
		// hit the budget with data still unread
		return nil, fmt.Errorf("byte budget exceeded")
	}
	return buf.Bytes(), nil
}

// uniformFiller reports whether every byte of tail repeats the first one,
// which makes it padding rather than a payload.
func uniformFiller(tail []byte) bool {
	if len(tail) == 0 {
		return true
	}
	first := tail[0]
	for _, b := range tail[1:] {
		if b != first {
			return false
		}
	}
	return true
}
