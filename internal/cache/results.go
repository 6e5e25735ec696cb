package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/stegsift/stegsift/internal/types"
)

// ScanResults stores the flag hits and metadata from the last analysis run
type ScanResults struct {
	Flags     []types.FlagHit `json:"flags"`
	Timestamp time.Time       `json:"timestamp"`
	Root      string          `json:"root"`
	Count     int             `json:"count"`
}

func resultsPath(root string) string {
	gitDir := filepath.Join(root, ".git")
	if st, err := os.Stat(gitDir); err == nil && st.IsDir() {
		return filepath.Join(gitDir, "stegsift_last_scan.json")
	}
	return filepath.Join(root, ".stegsift_last_scan.json")
}

// SaveResults saves the run's flag hits to cache
func SaveResults(root string, flags []types.FlagHit) error {
	p := resultsPath(root)
	results := ScanResults{
		Flags:     flags,
		Timestamp: time.Now(),
		Root:      root,
		Count:     len(flags),
	}
	b, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p, b, 0644)
}

// LoadResults loads the last run's flag hits from cache
func LoadResults(root string) (ScanResults, error) {
	var results ScanResults
	p := resultsPath(root)
	f, err := os.ReadFile(p)
	if err != nil {
		return results, err
	}
	if err := json.Unmarshal(f, &results); err != nil {
		return results, err
	}
	return results, nil
}
