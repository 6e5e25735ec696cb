package carve

import (
	"archive/zip"
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"testing"

	"github.com/stegsift/stegsift/internal/pngchunk"
	"github.com/stegsift/stegsift/internal/sigscan"
	"github.com/stegsift/stegsift/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chunk(ctype string, payload []byte) []byte {
	var buf bytes.Buffer
	var lenb [4]byte
	binary.BigEndian.PutUint32(lenb[:], uint32(len(payload)))
	buf.Write(lenb[:])
	buf.WriteString(ctype)
	buf.Write(payload)
	crc := crc32.NewIEEE()
	crc.Write([]byte(ctype))
	crc.Write(payload)
	var crcb [4]byte
	binary.BigEndian.PutUint32(crcb[:], crc.Sum32())
	buf.Write(crcb[:])
	return buf.Bytes()
}

func minimalPNG() []byte {
	out := []byte("\x89PNG\r\n\x1a\n")
	out = append(out, chunk("IHDR", make([]byte, 13))...)
	out = append(out, chunk("IEND", nil)...)
	return out
}

func zipWith(t *testing.T, name, content string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	// Store keeps entry bytes verbatim so fixtures cannot accidentally
	// contain another format's magic.
	w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Store})
	require.NoError(t, err)
	_, err = w.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func carve(t *testing.T, data []byte) *types.CarvedPayload {
	t.Helper()
	hits, err := sigscan.Scan(data, sigscan.DefaultTable())
	require.NoError(t, err)
	return Carve(data, pngchunk.Parse(data), hits, DefaultLimits())
}

func TestTrailingBytesCarved(t *testing.T) {
	tail := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	data := append(minimalPNG(), tail...)
	p := carve(t, data)
	require.NotNil(t, p)
	assert.Equal(t, "after-iend", p.Origin)
	assert.Equal(t, tail, p.Data)
	assert.Equal(t, len(data)-10, p.Offset)
}

func TestZeroFillerIgnored(t *testing.T) {
	data := append(minimalPNG(), make([]byte, 10)...)
	assert.Nil(t, carve(t, data))
}

func TestUniformFillerIgnored(t *testing.T) {
	data := append(minimalPNG(), bytes.Repeat([]byte{0xFF}, 10)...)
	assert.Nil(t, carve(t, data))
}

func TestCleanPNGNoPayload(t *testing.T) {
	assert.Nil(t, carve(t, minimalPNG()))
}

func TestZipAfterIENDUnpacked(t *testing.T) {
	zb := zipWith(t, "flag.txt", "flag{zipped}")
	data := append(minimalPNG(), zb...)
	p := carve(t, data)
	require.NotNil(t, p)
	assert.Empty(t, p.ArchiveErr)
	require.Len(t, p.Entries, 1)
	assert.Equal(t, "flag.txt", p.Entries[0].Name)
	assert.Equal(t, []byte("flag{zipped}"), p.Entries[0].Data)
}

func TestZipAtInteriorOffsetOfTail(t *testing.T) {
	// junk, then a zip, all appended after IEND
	tail := append([]byte("....junk...."), zipWith(t, "a.txt", "hi")...)
	data := append(minimalPNG(), tail...)
	p := carve(t, data)
	require.NotNil(t, p)
	assert.Equal(t, tail, p.Data)
	require.Len(t, p.Entries, 1)
	assert.Equal(t, "a.txt", p.Entries[0].Name)
}

func TestCorruptZipReported(t *testing.T) {
	tail := append([]byte("PK\x03\x04"), []byte("garbage that is not a zip")...)
	data := append(minimalPNG(), tail...)
	p := carve(t, data)
	require.NotNil(t, p)
	assert.NotEmpty(t, p.ArchiveErr)
	// raw bytes still carved
	assert.Equal(t, tail, p.Data)
}

func TestSignatureFallback(t *testing.T) {
	// Not a PNG: JPEG-ish leader with a zip embedded at a later offset.
	data := append([]byte{0xFF, 0xD8, 0xFF, 0xE0}, bytes.Repeat([]byte{'x'}, 46)...)
	zb := zipWith(t, "hidden.txt", "flag{embedded}")
	data = append(data, zb...)
	p := carve(t, data)
	require.NotNil(t, p)
	assert.Equal(t, "signature:ZIP", p.Origin)
	assert.Equal(t, 50, p.Offset)
	require.Len(t, p.Entries, 1)
	assert.Equal(t, []byte("flag{embedded}"), p.Entries[0].Data)
}

func TestOffsetZeroHitSkipped(t *testing.T) {
	zb := zipWith(t, "a.txt", "primary format, not embedded")
	assert.Nil(t, carve(t, zb))
}

func TestEntryCapHonored(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range []string{"a", "b", "c"} {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte("x"))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())

	data := append(minimalPNG(), buf.Bytes()...)
	hits, err := sigscan.Scan(data, sigscan.DefaultTable())
	require.NoError(t, err)
	p := Carve(data, pngchunk.Parse(data), hits, Limits{MaxEntries: 2})
	require.NotNil(t, p)
	assert.Len(t, p.Entries, 2)
}
