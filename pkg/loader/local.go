package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LocalLoader reads documents from a base directory on the local
// filesystem. Keys are interpreted relative to the base directory and
// may not escape it.
type LocalLoader struct {
	baseDir string
}

// NewLocalLoader creates a loader rooted at baseDir.
func NewLocalLoader(baseDir string) *LocalLoader {
	return &LocalLoader{baseDir: baseDir}
}

// LoadDocument reads the document at key relative to the base directory.
func (l *LocalLoader) LoadDocument(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := filepath.Join(l.baseDir, filepath.Clean("/"+key))
	if !strings.HasPrefix(path, filepath.Clean(l.baseDir)+string(os.PathSeparator)) && path != filepath.Clean(l.baseDir) {
		return nil, fmt.Errorf("document key escapes base directory: %s", key)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return data, nil
}
