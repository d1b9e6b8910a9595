package filestore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Local stages files on the local filesystem; used when running without
// Google Cloud.
type Local struct {
	dir string
}

var _ Store = (*Local)(nil)

func NewLocal(dir string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("NewLocal: creating %s: %w", dir, err)
	}
	return &Local{dir: dir}, nil
}

func (l *Local) Stage(ctx context.Context, objectName string, data []byte) (string, error) {
	full := filepath.Join(l.dir, filepath.FromSlash(objectName))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("Stage: creating directory: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("Stage: writing %s: %w", full, err)
	}
	return "file://" + full, nil
}

func (l *Local) Fetch(ctx context.Context, uri string) ([]byte, error) {
	path := strings.TrimPrefix(uri, "file://")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("Fetch: reading %s: %w", path, err)
	}
	return data, nil
}
