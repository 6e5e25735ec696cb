package core

import (
	"encoding/json"
	"io"
)

// MarshalFlags pretty-prints flag hits as JSON for humans or pipelines.
func MarshalFlags(w io.Writer, flags []FlagHit) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(flags)
}

// UnmarshalFlags decodes flag hit JSON, useful for ingestion tests.
func UnmarshalFlags(r io.Reader) ([]FlagHit, error) {
	var fs []FlagHit
	if err := json.NewDecoder(r).Decode(&fs); err != nil {
		return nil, err
	}
	return fs, nil
}
