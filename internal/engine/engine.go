package engine

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/stegsift/stegsift/internal/bitplane"
	"github.com/stegsift/stegsift/internal/carve"
	"github.com/stegsift/stegsift/internal/patterns"
	"github.com/stegsift/stegsift/internal/pixels"
	"github.com/stegsift/stegsift/internal/pngchunk"
	"github.com/stegsift/stegsift/internal/sigscan"
	"github.com/stegsift/stegsift/internal/types"
)

// Config controls one analysis run: scope, extraction depth, and limits.
type Config struct {
	Root         string
	IncludeGlobs string
	ExcludeGlobs string
	MaxBytes     int64
	Threads      int

	// Extraction
	Bits      int  // probed low bit positions per channel
	StreamCap int  // max output bytes per bitplane stream (0 = uncapped)
	Scalar    bool // use the scalar extractor instead of the batched one

	// Pattern set additions (regex source, compiled case-insensitive)
	ExtraPatterns []string

	// Carving limits
	MaxArchiveBytes int64
	MaxEntries      int

	NoCache  bool
	Progress func()
}

// Result is the structured output for one analyzed file. Every diagnostic
// short of the size cap lives inside it; only admission failures surface
// as errors.
type Result struct {
	Path       string                             `json:"path"`
	Size       int                                `json:"size"`
	Signatures []types.SignatureHit               `json:"signatures,omitempty"`
	Chunks     []types.ChunkRecord                `json:"chunks,omitempty"`
	Truncated  bool                               `json:"truncated,omitempty"`
	TextChunks []types.TextChunkRecord            `json:"text_chunks,omitempty"`
	Streams    map[bitplane.PlaneKey]*bitplane.Stream `json:"-"`
	Payload    *types.CarvedPayload               `json:"payload,omitempty"`
	Flags      []types.FlagHit                    `json:"flags,omitempty"`
	ImageErr   string                             `json:"image_error,omitempty"`
	Duration   time.Duration                      `json:"duration"`
}

func (c Config) defaults() Config {
	if c.MaxBytes == 0 {
		c.MaxBytes = 20 << 20
	}
	if c.Threads <= 0 {
		c.Threads = runtime.GOMAXPROCS(0)
	}
	if c.Bits <= 0 {
		c.Bits = 4
	}
	if c.StreamCap == 0 {
		c.StreamCap = 2 << 20
	}
	if c.MaxArchiveBytes == 0 {
		c.MaxArchiveBytes = 32 << 20
	}
	if c.MaxEntries == 0 {
		c.MaxEntries = 1000
	}
	return c
}

// compileSet builds the run's pattern set: builtins plus user regexes.
func compileSet(cfg Config) (patterns.Set, error) {
	set := patterns.Default()
	for i, expr := range cfg.ExtraPatterns {
		p, err := patterns.Compile(fmt.Sprintf("user_%d", i+1), expr)
		if err != nil {
			return nil, err
		}
		set = append(set, p)
	}
	return set, nil
}

// Analyze loads and analyzes the single file at cfg.Root.
func Analyze(cfg Config) (*Result, error) {
	cfg = cfg.defaults()
	data, err := pixels.Load(cfg.Root, cfg.MaxBytes)
	if err != nil {
		return nil, err
	}
	return AnalyzeBytes(cfg, cfg.Root, data)
}

// AnalyzeBytes runs the full pipeline over one in-memory buffer. The buffer
// is treated as immutable; structural scans run concurrently on it and
// every derived artifact is handed to the pattern set.
func AnalyzeBytes(cfg Config, path string, data []byte) (*Result, error) {
	cfg = cfg.defaults()
	if int64(len(data)) > cfg.MaxBytes {
		return nil, fmt.Errorf("%w: %d bytes (cap %d)", pixels.ErrTooLarge, len(data), cfg.MaxBytes)
	}
	set, err := compileSet(cfg)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	res := &Result{Path: path, Size: len(data)}

	// Signature scan and the chunk walk only read the buffer; run them
	// side by side.
	var parse pngchunk.ParseResult
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		res.Signatures, _ = sigscan.Scan(data, sigscan.DefaultTable())
	}()
	go func() {
		defer wg.Done()
		parse = pngchunk.Parse(data)
	}()
	wg.Wait()

	res.Chunks = parse.Chunks
	res.Truncated = parse.Truncated
	res.TextChunks = pngchunk.DecodeText(parse.Chunks)
	for _, tc := range res.TextChunks {
		if tc.Err != "" {
			continue
		}
		res.Flags = append(res.Flags, set.ScanText(string(tc.Kind), tc.Keyword)...)
		res.Flags = append(res.Flags, set.ScanText(string(tc.Kind), tc.Text)...)
	}

	if img, derr := pixels.Decode(data); derr != nil {
		res.ImageErr = derr.Error()
	} else {
		extractPlanes(cfg, set, img, res)
	}

	res.Payload = carve.Carve(data, parse, res.Signatures, carve.Limits{
		MaxArchiveBytes: cfg.MaxArchiveBytes,
		MaxEntries:      cfg.MaxEntries,
	})
	if res.Payload != nil {
		res.Flags = append(res.Flags, set.Scan("carved:"+res.Payload.Origin, res.Payload.Data)...)
		for _, e := range res.Payload.Entries {
			res.Flags = append(res.Flags, set.Scan("carved:"+e.Name, e.Data)...)
		}
	}

	res.Duration = time.Since(started)
	if cfg.Progress != nil {
		cfg.Progress()
	}
	return res, nil
}

// extractPlanes fans the (channel, bit, order) triples out over a bounded
// worker pool. Workers write only their own slot; the coordinator merges
// flag hits in key order after the pool drains, so no shared append is
// ever unsynchronized.
func extractPlanes(cfg Config, set patterns.Set, img *pixels.Image, res *Result) {
	samplesFor := make(map[string][]byte, len(img.Channels))
	for _, ch := range img.Channels {
		samplesFor[ch.Name] = ch.Samples
	}
	keys := bitplane.Keys(img.ChannelNames(), cfg.Bits)
	ex := bitplane.New(!cfg.Scalar)

	type planeOut struct {
		stream *bitplane.Stream
		hits   []types.FlagHit
	}
	outs := make([]planeOut, len(keys))

	jobs := make(chan int)
	var wg sync.WaitGroup
	workers := cfg.Threads
	if workers > len(keys) {
		workers = len(keys)
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				k := keys[i]
				data := ex.Extract(samplesFor[k.Channel], k.Bit, k.Order, cfg.StreamCap)
				st := &bitplane.Stream{Key: k, Data: data}
				outs[i] = planeOut{stream: st, hits: set.Scan(k.Locator(), data)}
			}
		}()
	}
	for i := range keys {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	res.Streams = make(map[bitplane.PlaneKey]*bitplane.Stream, len(keys))
	for _, o := range outs {
		res.Streams[o.stream.Key] = o.stream
		res.Flags = append(res.Flags, o.hits...)
	}
}
