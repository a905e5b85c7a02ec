package crawler

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/campusqa/campusqa/internal/fetcher"
)

// WriteSnapshot persists the flat URL to extracted-text map as JSON. The
// snapshot is an opaque artifact for inspection and reprocessing; the vector
// store remains the serving copy.
func WriteSnapshot(path string, pages map[string]fetcher.Page) error {
	flat := make(map[string]string, len(pages))
	for url, page := range pages {
		flat[url] = page.Text
	}
	payload, err := json.MarshalIndent(flat, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	if err := os.WriteFile(path, payload, 0o600); err != nil {
		return fmt.Errorf("write snapshot %s: %w", path, err)
	}
	return nil
}
