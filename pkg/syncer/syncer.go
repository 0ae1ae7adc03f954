// Package syncer copies selected catalog entries into a flat destination
// directory.
package syncer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/agentsync/agentsync/pkg/cache"
	"github.com/agentsync/agentsync/pkg/catalog"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

type Outcome int

const (
	Copied Outcome = iota
	NotFound
	IOError
)

// Result is the outcome of copying a single selected asset.
type Result struct {
	Entry   catalog.Entry
	Outcome Outcome
	Err     error
}

// Summary aggregates a full sync batch.
type Summary struct {
	Copied      int
	Failed      int
	Destination string
	Integrity   string // "sha256:<hex>" over the destination contents
}

// Sync copies each selected entry from srcDir into dest, creating dest if
// needed. Subdirectory structure is intentionally discarded: only the base
// name is used at the destination, and a later entry with the same base
// name overwrites an earlier one. Each copy is independent; a missing or
// unreadable source file is counted and the batch continues.
func Sync(srcDir string, entries []catalog.Entry, dest string) (Summary, []Result, error) {
	if err := os.MkdirAll(dest, dirPerm); err != nil {
		return Summary{}, nil, fmt.Errorf("creating destination %s: %w", dest, err)
	}

	sum := Summary{Destination: dest}
	results := make([]Result, 0, len(entries))

	for _, e := range entries {
		res := Result{Entry: e}
		res.Outcome, res.Err = copyEntry(srcDir, e, dest)
		if res.Outcome == Copied {
			sum.Copied++
		} else {
			sum.Failed++
		}
		results = append(results, res)
	}

	integrity, err := cache.HashDir(dest)
	if err != nil {
		return sum, results, fmt.Errorf("hashing destination %s: %w", dest, err)
	}
	sum.Integrity = integrity

	return sum, results, nil
}

func copyEntry(srcDir string, e catalog.Entry, dest string) (Outcome, error) {
	srcPath := filepath.Join(srcDir, filepath.FromSlash(e.RelPath))
	destPath := filepath.Join(dest, filepath.Base(filepath.FromSlash(e.RelPath)))

	src, err := os.Open(srcPath)
	if err != nil {
		if os.IsNotExist(err) {
			return NotFound, err
		}
		return IOError, err
	}
	defer src.Close()

	dst, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, filePerm)
	if err != nil {
		return IOError, err
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return IOError, err
	}

	if err := dst.Close(); err != nil {
		return IOError, err
	}

	return Copied, nil
}
