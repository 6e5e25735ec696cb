package pngchunk

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/klauspost/compress/zlib"
	"github.com/stegsift/stegsift/internal/types"
)

// zlibMethod is the only compression method PNG defines for text chunks.
const zlibMethod = 0

// DecodeText decodes every text-carrying chunk in the sequence. Each chunk
// yields exactly one record: either decoded keyword/text or a diagnostic in
// Err. One malformed chunk never stops the others from decoding.
func DecodeText(chunks []types.ChunkRecord) []types.TextChunkRecord {
	var out []types.TextChunkRecord
	for _, c := range chunks {
		switch c.Type {
		case "tEXt":
			out = append(out, decodePlain(c.Payload))
		case "zTXt":
			out = append(out, decodeCompressed(c.Payload))
		case "iTXt":
			out = append(out, decodeInternational(c.Payload))
		}
	}
	return out
}

// decodePlain splits "keyword\0text"; both halves are Latin-1 and decode
// permissively. A payload without a NUL becomes a keyword-only record.
func decodePlain(payload []byte) types.TextChunkRecord {
	rec := types.TextChunkRecord{Kind: types.TextPlain}
	keyword, text, found := bytes.Cut(payload, []byte{0})
	rec.Keyword = latin1(keyword)
	if found {
		rec.Text = latin1(text)
	}
	return rec
}

// decodeCompressed splits "keyword\0method\0-less deflate stream".
func decodeCompressed(payload []byte) types.TextChunkRecord {
	rec := types.TextChunkRecord{Kind: types.TextCompressed}
	keyword, rest, found := bytes.Cut(payload, []byte{0})
	rec.Keyword = latin1(keyword)
	if !found || len(rest) < 1 {
		rec.Err = "missing compression method"
		return rec
	}
	method := rest[0]
	comp := rest[1:]
	if method != zlibMethod {
		rec.Err = fmt.Sprintf("unknown compression method %d (%d bytes)", method, len(comp))
		return rec
	}
	text, err := inflate(comp)
	if err != nil {
		rec.Err = fmt.Sprintf("decompress: %v", err)
		return rec
	}
	rec.Text = validUTF8(text)
	return rec
}

// decodeInternational splits the six NUL-separated iTXt fields: keyword,
// compression flag, compression method, language tag, translated keyword,
// text.
func decodeInternational(payload []byte) types.TextChunkRecord {
	rec := types.TextChunkRecord{Kind: types.TextInternational}
	parts := bytes.SplitN(payload, []byte{0}, 6)
	if len(parts) < 6 {
		rec.Err = "malformed: fewer than six fields"
		return rec
	}
	rec.Keyword = validUTF8(parts[0])
	compFlag := byte(0)
	if len(parts[1]) > 0 {
		compFlag = parts[1][0]
	}
	raw := parts[5]
	if compFlag == 1 {
		text, err := inflate(raw)
		if err != nil {
			rec.Err = fmt.Sprintf("decompress: %v", err)
			return rec
		}
		rec.Text = validUTF8(text)
		return rec
	}
	rec.Text = validUTF8(raw)
	return rec
}

func inflate(comp []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(comp))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}

// latin1 decodes bytes as ISO 8859-1; every byte maps to a rune, so this
// never fails.
func latin1(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b))
	for _, c := range b {
		sb.WriteRune(rune(c))
	}
	return sb.String()
}

// validUTF8 replaces undecodable bytes instead of failing.
func validUTF8(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	return strings.ToValidUTF8(string(b), "�")
}
