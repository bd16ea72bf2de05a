package cli

import (
	"errors"
	"fmt"

	"github.com/ohspite/xatag/internal/ops"
	"github.com/ohspite/xatag/internal/paths"
	"github.com/ohspite/xatag/internal/printer"
	"github.com/ohspite/xatag/internal/registry"
	"github.com/ohspite/xatag/internal/tags"
)

// fileTags is one file in --json output.
type fileTags struct {
	Path  string              `json:"path"`
	Tags  map[string][]string `json:"tags"`
	Error string              `json:"error,omitempty"`
}

func newFileTags(path string, d tags.Dict) fileTags {
	out := fileTags{Path: path, Tags: make(map[string][]string, len(d))}
	for k, vs := range d.Sorted() {
		out.Tags[tags.DisplayKey(k)] = vs
	}
	return out
}

// mutation describes a command that changes tags file by file.
type mutation struct {
	// name is recorded in the audit log.
	name string
	// tags are the tags named on the command line, used by --terse.
	tags []tags.Tag
	// apply changes one file.
	apply func(path string) error
	// silent skips printing, as delete-all does.
	silent bool
	// role names the files in "path does not exist" warnings.
	role string
}

// runMutation applies m to files in order, printing each file's tags
// afterwards. Failures are reported and the batch carries on. Changed files
// are mirrored into index.db and handed to Recoll.
func (s *session) runMutation(m mutation, files []string) []fileTags {
	view := printer.View{Tags: m.tags, Terse: tagging.terse}
	opts := tagging.printOptions(s.cfg)
	longest := printer.Longest(files)
	fsep := tagging.fileSeparator(s.cfg)

	var out []fileTags
	batch := ops.Batch{Reporter: ops.ReporterFunc(s.report), Exists: pathExists, Role: m.role}
	results := batch.Run(files, func(path string) error {
		var before tags.Dict
		if s.audit.Enabled() {
			before, _ = s.op.Read(path)
		}

		if err := m.apply(path); err != nil {
			if logErr := s.audit.LogFailure(m.name, path, err); logErr != nil {
				s.log.Debugf("audit: %v", logErr)
			}
			out = append(out, fileTags{Path: path, Error: err.Error()})
			return err
		}

		after, err := s.op.Read(path)
		if err != nil {
			out = append(out, fileTags{Path: path, Error: err.Error()})
			return err
		}
		s.indexFile(path, after)
		if err := s.audit.LogChange(m.name, path, before, after); err != nil {
			s.log.Debugf("audit: %v", err)
		}
		out = append(out, newFileTags(path, after))

		if !m.silent && !tagging.quiet && !jsonOutput {
			opts.Prefix = printer.FilePrefix(path, longest, fsep)
			if err := printer.Render(outWriter, view.Apply(after), opts); err != nil {
				return err
			}
		}
		return nil
	})

	var written []string
	for _, r := range results {
		if r.State == ops.Written {
			written = append(written, r.Path)
		}
	}
	s.reindex(written)
	return out
}

// finishMutation writes the --json envelope for a mutation.
func (s *session) finishMutation(results []fileTags) error {
	if !jsonOutput {
		return nil
	}
	failed := 0
	for _, r := range results {
		if r.Error != "" {
			failed++
		}
	}
	outputSuccessWithWarnings(map[string]any{"files": results}, s.warnings, &Meta{Count: len(results), Failed: failed})
	return nil
}

// indexFile mirrors d into index.db when indexing is on.
func (s *session) indexFile(path string, d tags.Dict) {
	if tagging.noIndex {
		return
	}
	db := s.index()
	if db == nil {
		return
	}
	if err := db.Put(paths.Canonical(path), d); err != nil {
		s.warn(WarnIndexUpdateFailed, path, "cannot update tag index: "+err.Error())
		return
	}
	s.log.Debugf("indexed %s", path)
}

// reindex asks Recoll to pick up changed files. Failures only warn.
func (s *session) reindex(files []string) {
	if tagging.noIndex || !s.cfg.RecollEnabled() || len(files) == 0 {
		return
	}
	if err := triggerReindex(s.indexer, files); err != nil {
		s.log.Debugf("reindex: %v", err)
		s.warn(WarnReindexFailed, "", "There was a problem updating the Recoll index.")
	}
}

// checkKnownTags warns about tags missing from known_tags, adding them
// with --warn-once.
func (s *session) checkKnownTags(ts []tags.Tag) {
	if !tagging.checkWarnings() {
		return
	}
	rep, err := s.registry.CheckNew(ts, tagging.warnOnce)
	if errors.Is(err, registry.ErrMissing) {
		s.warn(WarnKnownTagsMissing, "", "xatag known_tags file is missing.")
		return
	}
	if err != nil {
		s.warn(WarnGeneric, "", fmt.Sprintf("xatag known_tags file cannot be read: %v", err))
		return
	}
	if rep.Empty() {
		return
	}
	for _, line := range rep.Lines() {
		s.warn(WarnUnknownTags, "", line)
	}
	if rep.Added {
		s.regenerateFields(false)
	}
}
