package bitplane

import "fmt"

// Order is the bit-to-byte packing convention for a stream.
type Order string

const (
	// OrderMSB packs the first extracted bit into the most-significant
	// position of each output byte.
	OrderMSB Order = "msb"
	// OrderLSB packs the first extracted bit into the least-significant
	// position, later bits shifting one position higher.
	OrderLSB Order = "lsb"
)

// Orders lists both packing conventions in the order streams are produced.
var Orders = []Order{OrderMSB, OrderLSB}

// PlaneKey identifies one extracted stream: a channel name, a bit position
// in [0,7], and a packing order.
type PlaneKey struct {
	Channel string `json:"channel"`
	Bit     int    `json:"bit"`
	Order   Order  `json:"order"`
}

// Locator renders the key in the "<channel>/bit<b>/<order>" form used as a
// flag-hit source.
func (k PlaneKey) Locator() string {
	return fmt.Sprintf("%s/bit%d/%s", k.Channel, k.Bit, k.Order)
}

// Stream is the packed byte output for one (channel, bit, order) triple.
// Built once and never rebuilt; trailing bits that do not complete a byte
// are discarded.
type Stream struct {
	Key  PlaneKey
	Data []byte
}

// Keys enumerates every (channel, bit, order) triple for the given channel
// names and number of probed low bit positions.
func Keys(channels []string, bits int) []PlaneKey {
	var keys []PlaneKey
	for _, ch := range channels {
		for b := 0; b < bits; b++ {
			for _, o := range Orders {
				keys = append(keys, PlaneKey{Channel: ch, Bit: b, Order: o})
			}
		}
	}
	return keys
}
