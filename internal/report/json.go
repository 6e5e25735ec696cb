package report

import (
	"encoding/json"
	"io"
	"sort"

	"github.com/stegsift/stegsift/internal/engine"
)

type streamInfo struct {
	Locator string `json:"locator"`
	Bytes   int    `json:"bytes"`
}

type jsonResult struct {
	*engine.Result
	Streams []streamInfo `json:"streams,omitempty"`
}

// WriteJSON emits the full per-file results as indented JSON. Stream
// payload bytes are summarized, not inlined.
func WriteJSON(w io.Writer, results []*engine.Result) error {
	out := make([]jsonResult, 0, len(results))
	for _, r := range results {
		jr := jsonResult{Result: r}
		for k, st := range r.Streams {
			jr.Streams = append(jr.Streams, streamInfo{Locator: k.Locator(), Bytes: len(st.Data)})
		}
		sort.Slice(jr.Streams, func(i, j int) bool { return jr.Streams[i].Locator < jr.Streams[j].Locator })
		out = append(out, jr)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
