package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/Charan170903/expense-tracker/internal/core"
)

// AnchorFile persists the memory-anchor list as a single JSON document.
// Writes go through a temp file and rename, so readers never observe a
// truncated list.
type AnchorFile struct {
	mu   sync.Mutex
	path string
}

func NewAnchorFile(path string) *AnchorFile {
	return &AnchorFile{path: path}
}

func (f *AnchorFile) Load(ctx context.Context) ([]core.MemoryAnchor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read anchor file: %w", err)
	}

	var anchors []core.MemoryAnchor
	if err := json.Unmarshal(data, &anchors); err != nil {
		// A corrupt file loses its history rather than blocking archival.
		slog.WarnContext(ctx, "Malformed anchor file, treating as empty", "path", f.path, "error", err)
		return nil, nil
	}
	return anchors, nil
}

func (f *AnchorFile) Save(_ context.Context, anchors []core.MemoryAnchor) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		return fmt.Errorf("create anchor directory: %w", err)
	}

	data, err := json.MarshalIndent(anchors, "", "  ")
	if err != nil {
		return fmt.Errorf("encode anchors: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write anchor temp file: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace anchor file: %w", err)
	}
	return nil
}
