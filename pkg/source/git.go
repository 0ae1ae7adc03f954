package source

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/agentsync/agentsync/pkg/cache"
)

type GitSource struct {
	URL      string
	Subdir   string
	Checkout string // candidate local clone to reuse, may be empty
	Cache    *cache.Cache
}

var _ Source = &GitSource{}

func (g *GitSource) Resolve(ctx context.Context) (*Resolved, error) {
	// Fast path: an existing local checkout whose origin matches the
	// requested URL is used directly, skipping the network entirely.
	if g.Checkout != "" {
		if dir, ok := g.reuseCheckout(ctx); ok {
			return &Resolved{Dir: dir, URL: g.URL, Reused: true}, nil
		}
	}

	key := cache.Key(g.URL)
	dest := g.Cache.Dir(key)

	cached, err := g.Cache.Exists(key)
	if err != nil {
		return nil, fmt.Errorf("checking cache: %w", err)
	}

	if cached {
		// An outdated cache is never served silently: a failed update
		// is fatal rather than falling back to stale content.
		if err := g.pull(ctx, dest); err != nil {
			return nil, fmt.Errorf("updating cached checkout %s: %w", dest, err)
		}
	} else {
		if err := g.Cache.EnsureRoot(); err != nil {
			return nil, fmt.Errorf("creating cache root: %w", err)
		}
		if err := g.clone(ctx, dest); err != nil {
			g.Cache.Remove(key)
			return nil, fmt.Errorf("cloning %s: %w", g.URL, err)
		}
	}

	return g.assetDir(dest)
}

// assetDir verifies that the asset subdirectory exists inside the checkout
// and returns the resolved source pointing at it.
func (g *GitSource) assetDir(checkout string) (*Resolved, error) {
	dir := filepath.Join(checkout, g.Subdir)
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("asset directory %q not found in checkout of %s", g.Subdir, g.URL)
	}
	return &Resolved{Dir: dir, URL: g.URL}, nil
}

// reuseCheckout reports whether g.Checkout is a git working tree whose
// origin remote matches g.URL, returning the asset subdirectory when it is.
func (g *GitSource) reuseCheckout(ctx context.Context) (string, bool) {
	if _, err := os.Stat(filepath.Join(g.Checkout, ".git")); err != nil {
		return "", false
	}

	cmd := exec.CommandContext(ctx, "git", "-C", g.Checkout, "remote", "get-url", "origin")
	out, err := cmd.Output()
	if err != nil {
		return "", false
	}

	if normalizeGitURL(strings.TrimSpace(string(out))) != normalizeGitURL(g.URL) {
		return "", false
	}

	dir := filepath.Join(g.Checkout, g.Subdir)
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return "", false
	}
	return dir, true
}

func (g *GitSource) clone(ctx context.Context, dest string) error {
	cmd := exec.CommandContext(ctx, "git", "clone", "--depth", "1", g.URL, dest)
	if _, err := cmd.Output(); err != nil {
		return execError(err)
	}
	return nil
}

func (g *GitSource) pull(ctx context.Context, dir string) error {
	cmd := exec.CommandContext(ctx, "git", "-C", dir, "pull", "--ff-only")
	if _, err := cmd.Output(); err != nil {
		return execError(err)
	}
	return nil
}

// normalizeGitURL strips the pieces that vary between spellings of the same
// remote: a trailing slash and a trailing ".git".
func normalizeGitURL(url string) string {
	url = strings.TrimSuffix(url, "/")
	url = strings.TrimSuffix(url, ".git")
	return url
}

func execError(err error) error {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
		return fmt.Errorf("%w: %s", err, strings.TrimSpace(string(exitErr.Stderr)))
	}
	return err
}
