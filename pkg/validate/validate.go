// Package validate checks asset files against a fixed structural rule set:
// a YAML front matter block with required fields, followed by substantial
// body content, in clean UTF-8 with unix line endings.
package validate

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

type Outcome int

const (
	Pass Outcome = iota
	Warn
	Fail
)

func (o Outcome) String() string {
	switch o {
	case Pass:
		return "PASS"
	case Warn:
		return "WARN"
	case Fail:
		return "FAIL"
	default:
		return "UNKNOWN"
	}
}

// RuleResult is one rule's verdict on one file.
type RuleResult struct {
	Rule    string
	Outcome Outcome
	Detail  string
}

// Report collects every rule outcome for a single file.
type Report struct {
	File    string
	Results []RuleResult
}

// Summary accumulates rule outcomes across all checked files. It is
// threaded explicitly through the engine and returned, never kept in
// package state.
type Summary struct {
	Passed   int
	Failed   int
	Warnings int
}

// OK reports the overall exit status: success iff no rule failed,
// regardless of warnings.
func (s Summary) OK() bool {
	return s.Failed == 0
}

func (s *Summary) add(r RuleResult) {
	switch r.Outcome {
	case Pass:
		s.Passed++
	case Warn:
		s.Warnings++
	case Fail:
		s.Failed++
	}
}

// CheckDir validates every markdown file directly under dir (non-recursive)
// and aggregates the scoreboard. Reports come back in sorted file order.
func CheckDir(dir string) (Summary, []Report, error) {
	// A typoed path must surface as an error, not as a clean run over
	// zero files.
	info, err := os.Stat(dir)
	if err != nil {
		return Summary{}, nil, fmt.Errorf("reading asset directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return Summary{}, nil, fmt.Errorf("%s is not a directory", dir)
	}

	matches, err := doublestar.Glob(os.DirFS(dir), "*.md")
	if err != nil {
		return Summary{}, nil, fmt.Errorf("scanning %s: %w", dir, err)
	}
	sort.Strings(matches)

	var sum Summary
	reports := make([]Report, 0, len(matches))

	for _, name := range matches {
		rep, err := CheckFile(filepath.Join(dir, name))
		if err != nil {
			return Summary{}, nil, err
		}
		for _, r := range rep.Results {
			sum.add(r)
		}
		reports = append(reports, rep)
	}

	return sum, reports, nil
}

// CheckFile runs the full rule set against one file. Rules do not
// short-circuit: every rule runs and reports even when earlier ones fail.
// The only exception is an empty file, where content-dependent rules have
// nothing to say.
func CheckFile(path string) (Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Report{}, fmt.Errorf("reading %s: %w", path, err)
	}

	rep := Report{File: path}

	if len(data) == 0 {
		rep.Results = append(rep.Results, RuleResult{
			Rule:    "non-empty",
			Outcome: Fail,
			Detail:  "file is empty",
		})
		return rep, nil
	}
	rep.Results = append(rep.Results, RuleResult{Rule: "non-empty", Outcome: Pass})

	doc := parseDocument(data)
	for _, r := range rules {
		rep.Results = append(rep.Results, r.run(doc))
	}

	return rep, nil
}
