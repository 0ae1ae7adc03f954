package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

type LocalSource struct {
	Path   string
	Subdir string
}

var _ Source = &LocalSource{}

func (l *LocalSource) Resolve(ctx context.Context) (*Resolved, error) {
	absPath, err := filepath.Abs(l.Path)
	if err != nil {
		return nil, fmt.Errorf("resolving absolute path for %q: %w", l.Path, err)
	}

	dir := filepath.Join(absPath, l.Subdir)

	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("local source path does not exist: %s", dir)
		}
		return nil, fmt.Errorf("checking local source path %s: %w", dir, err)
	}

	if !info.IsDir() {
		return nil, fmt.Errorf("local source path is not a directory: %s", dir)
	}

	return &Resolved{Dir: dir, URL: l.Path, Reused: true}, nil
}
