package source

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/agentsync/agentsync/pkg/cache"
)

type Source interface {
	// Resolve materializes the asset source on local disk and returns the
	// resolved asset directory (a named subfolder of the checkout, not the
	// checkout root).
	Resolve(ctx context.Context) (*Resolved, error)
}

type Resolved struct {
	Dir    string // path to asset content on disk
	URL    string // original source identifier
	Reused bool   // an existing local checkout was used, no network I/O
}

// New picks the concrete source for a raw identifier. Local filesystem
// paths (starting with ./ or ../, or absolute) resolve directly; everything
// else is treated as a git URL cached under c. checkout, if non-empty, is a
// local directory that may already be a clone of the same URL and is tried
// first to avoid network calls.
func New(raw, subdir, checkout string, c *cache.Cache) Source {
	if isLocalPath(raw) {
		return &LocalSource{Path: raw, Subdir: subdir}
	}
	return &GitSource{URL: raw, Subdir: subdir, Checkout: checkout, Cache: c}
}

// isLocalPath reports whether raw looks like a local filesystem path.
func isLocalPath(raw string) bool {
	return strings.HasPrefix(raw, "./") || strings.HasPrefix(raw, "../") || filepath.IsAbs(raw)
}
