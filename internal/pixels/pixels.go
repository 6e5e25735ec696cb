package pixels

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"os"

	_ "image/jpeg"
	_ "image/png"
)

// ErrTooLarge is the one fatal admission-control condition: the input file
// exceeds the configured byte cap. Nothing is parsed past this point.
var ErrTooLarge = errors.New("input exceeds size cap")

// Load reads the whole file after checking its size against maxBytes.
// The cap is enforced before the read so an oversized file never occupies
// memory.
func Load(path string, maxBytes int64) ([]byte, error) {
	st, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if maxBytes > 0 && st.Size() > maxBytes {
		return nil, fmt.Errorf("%w: %d bytes (cap %d)", ErrTooLarge, st.Size(), maxBytes)
	}
	return os.ReadFile(path)
}

// Channel is one logical sample plane in row-major scan order.
type Channel struct {
	Name    string
	Samples []byte
}

// Image is the decoded per-channel view the extraction engine works on:
// R, G, B and, when the source carries one, A. Each channel holds
// Width*Height 8-bit samples.
type Image struct {
	Width    int
	Height   int
	Channels []Channel
}

// ChannelNames returns the channel names in extraction order.
func (im *Image) ChannelNames() []string {
	names := make([]string, len(im.Channels))
	for i, c := range im.Channels {
		names[i] = c.Name
	}
	return names
}

// Decode turns raw image bytes into per-channel samples using the stdlib
// PNG and JPEG decoders. Alpha is included only when the source format
// carries it; everything else is flattened to RGB.
func Decode(data []byte) (*Image, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return fromImage(src), nil
}

func fromImage(src image.Image) *Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	withAlpha := hasAlpha(src)

	names := []string{"R", "G", "B"}
	if withAlpha {
		names = append(names, "A")
	}
	out := &Image{Width: w, Height: h}
	for _, n := range names {
		out.Channels = append(out.Channels, Channel{Name: n, Samples: make([]byte, 0, w*h)})
	}

	// Fast path for the common PNG memory layout.
	if n, ok := src.(*image.NRGBA); ok {
		for y := 0; y < h; y++ {
			row := n.Pix[y*n.Stride : y*n.Stride+w*4]
			for x := 0; x < w; x++ {
				px := row[x*4 : x*4+4]
				for ci := range out.Channels {
					out.Channels[ci].Samples = append(out.Channels[ci].Samples, px[ci])
				}
			}
		}
		return out
	}

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, a := src.At(x, y).RGBA()
			// un-premultiplied 8-bit view
			vals := []uint32{r >> 8, g >> 8, bl >> 8}
			if withAlpha {
				vals = append(vals, a>>8)
			}
			for ci, v := range vals {
				out.Channels[ci].Samples = append(out.Channels[ci].Samples, byte(v))
			}
		}
	}
	return out
}

func hasAlpha(src image.Image) bool {
	switch src.(type) {
	case *image.NRGBA, *image.NRGBA64, *image.RGBA, *image.RGBA64:
		return true
	}
	return false
}
