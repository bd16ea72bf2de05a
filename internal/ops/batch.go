package ops

import (
	"os"
)

// FileState is where a file ended up after a batch step. Reading and
// transforming happen inside one Operator call, so only the end states are
// recorded.
type FileState int

const (
	// Unmodified files were skipped before any attribute was touched.
	Unmodified FileState = iota
	// Written files were processed to completion.
	Written
	// Failed files hit an error part way; earlier writes may have landed.
	Failed
)

func (s FileState) String() string {
	switch s {
	case Written:
		return "written"
	case Failed:
		return "failed"
	default:
		return "unmodified"
	}
}

// FileResult is the outcome of one file in a batch.
type FileResult struct {
	Path  string
	State FileState
	Err   error
}

// Batch runs a per-file function over many files. Problems with one file
// are reported and never stop the rest.
type Batch struct {
	Reporter Reporter
	// Exists checks a path before processing. Defaults to os.Stat.
	Exists func(path string) bool
	// Role names the files in not-found reports, e.g. "destination".
	Role string
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Run calls fn for each existing file in order.
func (b Batch) Run(files []string, fn func(path string) error) []FileResult {
	exists := b.Exists
	if exists == nil {
		exists = fileExists
	}

	results := make([]FileResult, 0, len(files))
	for _, path := range files {
		if !exists(path) {
			err := &PathNotFoundError{Path: path, Role: b.Role}
			b.report(err)
			results = append(results, FileResult{Path: path, State: Unmodified, Err: err})
			continue
		}
		if err := fn(path); err != nil {
			b.report(err)
			results = append(results, FileResult{Path: path, State: Failed, Err: err})
			continue
		}
		results = append(results, FileResult{Path: path, State: Written})
	}
	return results
}

// Existing filters files down to those that exist, reporting the rest.
func (b Batch) Existing(files []string) []string {
	exists := b.Exists
	if exists == nil {
		exists = fileExists
	}
	var out []string
	for _, path := range files {
		if exists(path) {
			out = append(out, path)
			continue
		}
		b.report(&PathNotFoundError{Path: path, Role: b.Role})
	}
	return out
}

func (b Batch) report(err error) {
	if b.Reporter != nil {
		b.Reporter.Report(err)
	}
}

// Failures counts results that did not complete.
func Failures(results []FileResult) int {
	n := 0
	for _, r := range results {
		if r.State != Written {
			n++
		}
	}
	return n
}
