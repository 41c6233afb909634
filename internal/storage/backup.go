package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// WriteBackup dumps a full snapshot to a timestamped JSON file under dir
// and returns the file path. The file holds the same Document layout the
// API serves, so a backup doubles as an export.
func (s *Store) WriteBackup(ctx context.Context, dir string) (string, error) {
	doc, err := s.Snapshot(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to snapshot store: %w", err)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	name := fmt.Sprintf("backup-%s.json", time.Now().UTC().Format("2006-01-02T15-04-05"))
	path := filepath.Join(dir, name)

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal backup: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write backup file: %w", err)
	}
	return path, nil
}
