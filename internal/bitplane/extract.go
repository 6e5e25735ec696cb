package bitplane

// Extractor derives a packed byte stream from one channel's samples. The
// two implementations must produce byte-identical output; only their
// per-call cost differs.
type Extractor interface {
	// Extract reads bit position bit of every sample in scan order, packs
	// groups of 8 bits under the given order, and stops once maxBytes
	// output bytes exist (0 means no cap).
	Extract(samples []byte, bit int, order Order, maxBytes int) []byte
}

// New selects the extraction strategy. The batched variant is the default;
// the scalar one remains selectable for verification and for callers that
// prefer the simplest code path.
func New(batched bool) Extractor {
	if batched {
		return batchedExtractor{}
	}
	return scalarExtractor{}
}

// scalarExtractor walks sample by sample, carrying a partial byte.
type scalarExtractor struct{}

func (scalarExtractor) Extract(samples []byte, bit int, order Order, maxBytes int) []byte {
	out := make([]byte, 0, outputCap(len(samples), maxBytes))
	var cur byte
	cnt := 0
	for _, s := range samples {
		b := (s >> uint(bit)) & 1
		if order == OrderMSB {
			cur = cur<<1 | b
		} else {
			cur |= b << uint(cnt)
		}
		cnt++
		if cnt == 8 {
			out = append(out, cur)
			cur, cnt = 0, 0
			if maxBytes > 0 && len(out) >= maxBytes {
				break
			}
		}
	}
	return out
}

// batchedExtractor consumes full groups of 8 samples per output byte with
// the shifts unrolled, skipping the per-bit counter bookkeeping.
type batchedExtractor struct{}

func (batchedExtractor) Extract(samples []byte, bit int, order Order, maxBytes int) []byte {
	groups := len(samples) / 8
	if maxBytes > 0 && groups > maxBytes {
		groups = maxBytes
	}
	out := make([]byte, groups)
	sh := uint(bit)
	if order == OrderMSB {
		for i := 0; i < groups; i++ {
			s := samples[i*8 : i*8+8]
			out[i] = (s[0]>>sh&1)<<7 | (s[1]>>sh&1)<<6 | (s[2]>>sh&1)<<5 | (s[3]>>sh&1)<<4 |
				(s[4]>>sh&1)<<3 | (s[5]>>sh&1)<<2 | (s[6]>>sh&1)<<1 | (s[7] >> sh & 1)
		}
		return out
	}
	for i := 0; i < groups; i++ {
		s := samples[i*8 : i*8+8]
		out[i] = (s[0] >> sh & 1) | (s[1]>>sh&1)<<1 | (s[2]>>sh&1)<<2 | (s[3]>>sh&1)<<3 |
			(s[4]>>sh&1)<<4 | (s[5]>>sh&1)<<5 | (s[6]>>sh&1)<<6 | (s[7]>>sh&1)<<7
	}
	return out
}

func outputCap(samples, maxBytes int) int {
	n := samples / 8
	if maxBytes > 0 && n > maxBytes {
		n = maxBytes
	}
	return n
}
