package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Local stores payloads on the local filesystem under a single root
// directory and serves them under a URL prefix (e.g. /media/).
type Local struct {
	root   string
	prefix string
}

// NewLocal creates the root directory if needed.
func NewLocal(root, prefix string) (*Local, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &Local{root: root, prefix: prefix}, nil
}

// Root returns the directory files are written to, for static serving.
func (l *Local) Root() string {
	return l.root
}

func (l *Local) Save(_ context.Context, filename string, data []byte) (string, error) {
	name := SafeName(filename)
	if err := os.WriteFile(filepath.Join(l.root, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write media file: %w", err)
	}
	return l.prefix + name, nil
}

func (l *Local) Delete(_ context.Context, url string) error {
	name, ok := strings.CutPrefix(url, l.prefix)
	if !ok {
		return fmt.Errorf("url %q is not under this store", url)
	}
	// Never follow path segments out of the root.
	name = filepath.Base(name)
	if err := os.Remove(filepath.Join(l.root, name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove media file: %w", err)
	}
	return nil
}
