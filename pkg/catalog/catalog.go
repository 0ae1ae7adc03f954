package catalog

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"sigs.k8s.io/yaml"
)

// SummaryFallback is shown for assets whose header carries no usable
// description.
const SummaryFallback = "(no description)"

// ErrEmptyCatalog is returned by Scan when the source directory contains
// no matching assets. Nothing can be selected from an empty catalog, so
// callers treat it as terminal.
var ErrEmptyCatalog = errors.New("no assets found")

var frontMatterDelim = []byte{'-', '-', '-'}

// Entry is one discoverable asset. Indices are 1-based, assigned in sorted
// relative-path order, and only valid for the lifetime of one catalog
// snapshot.
type Entry struct {
	Index       int
	RelPath     string // slash-separated path under the source root
	DisplayName string
	Summary     string
}

// Scan enumerates assets under dir: markdown files either directly in dir
// or, when recursive is set, anywhere in its tree. Discovery order is
// sorted by relative path so re-running over unchanged input yields
// identical numbering. Files that cannot be read are skipped with a
// warning on warn rather than failing the pass.
func Scan(dir string, recursive bool, warn io.Writer) ([]Entry, error) {
	if warn == nil {
		warn = io.Discard
	}

	pattern := "*.md"
	if recursive {
		pattern = "**/*.md"
	}

	matches, err := doublestar.Glob(os.DirFS(dir), pattern)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}
	sort.Strings(matches)

	var entries []Entry
	for _, rel := range matches {
		summary, err := readSummary(filepath.Join(dir, filepath.FromSlash(rel)))
		if err != nil {
			fmt.Fprintf(warn, "Warning: skipping unreadable asset %s: %v\n", rel, err)
			continue
		}
		entries = append(entries, Entry{
			Index:       len(entries) + 1,
			RelPath:     rel,
			DisplayName: rel,
			Summary:     summary,
		})
	}

	if len(entries) == 0 {
		return nil, ErrEmptyCatalog
	}
	return entries, nil
}

// header holds the presentation fields of an asset's YAML front matter.
type header struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// readSummary extracts a one-line summary from the front matter block at
// the top of the file: the description field, falling back to the name
// field, falling back to SummaryFallback. A missing or unparsable header
// is not an error; only failing to read the file is.
func readSummary(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	reader := bufio.NewReader(f)
	inFrontMatter := false
	yamlBuffer := bytes.Buffer{}

	for {
		line, err := reader.ReadBytes('\n')
		if err != nil {
			if err == io.EOF {
				break
			}
			return "", err
		}

		if bytes.HasPrefix(line, frontMatterDelim) {
			if inFrontMatter {
				break
			}
			inFrontMatter = true
			continue
		}

		if !inFrontMatter {
			// Content before any delimiter means there is no header block.
			return SummaryFallback, nil
		}
		yamlBuffer.Write(line)
	}

	if yamlBuffer.Len() == 0 {
		return SummaryFallback, nil
	}

	h := &header{}
	if err := yaml.Unmarshal(yamlBuffer.Bytes(), h); err != nil {
		return SummaryFallback, nil
	}

	switch {
	case h.Description != "":
		return h.Description, nil
	case h.Name != "":
		return h.Name, nil
	default:
		return SummaryFallback, nil
	}
}
