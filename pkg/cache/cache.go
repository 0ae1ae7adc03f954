package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

const (
	dirPerm    = 0o755
	hashPrefix = "sha256:"

	// dirPrefix names cache checkouts under the root so stale ones are
	// recognizable (and removable) by hand.
	dirPrefix = "agentsync-"
)

// Key derives a stable cache key from a source URL: the first 8 hex
// characters of its SHA-256. Identical URLs always map to the same
// cache directory.
func Key(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:])[:8]
}

// Cache manages per-source checkout directories under a single root,
// typically the system temp directory.
type Cache struct {
	root string
}

func New(root string) *Cache {
	return &Cache{root: root}
}

// Default returns a cache rooted at the system temp directory.
func Default() *Cache {
	return New(os.TempDir())
}

// Dir returns the checkout directory for a cache key. Does not create
// or verify the path; use this as a clone target for external tools.
func (c *Cache) Dir(key string) string {
	return filepath.Join(c.root, dirPrefix+key)
}

// Exists reports whether the checkout directory for key exists.
func (c *Cache) Exists(key string) (bool, error) {
	_, err := os.Stat(c.Dir(key))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// EnsureRoot creates the cache root, including parents.
func (c *Cache) EnsureRoot() error {
	return os.MkdirAll(c.root, dirPerm)
}

// Remove deletes the entire checkout tree for key.
func (c *Cache) Remove(key string) {
	os.RemoveAll(c.Dir(key))
}

// HashDir computes a "sha256:<hex>" integrity hash over all file contents
// in dir, walking recursively in sorted order for determinism.
func HashDir(dir string) (string, error) {
	h := sha256.New()

	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			rel, err := filepath.Rel(dir, path)
			if err != nil {
				return err
			}
			files = append(files, rel)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	sort.Strings(files)

	for _, f := range files {
		data, err := os.ReadFile(filepath.Join(dir, f))
		if err != nil {
			return "", err
		}
		h.Write([]byte(f))
		h.Write(data)
	}

	return hashPrefix + hex.EncodeToString(h.Sum(nil)), nil
}
