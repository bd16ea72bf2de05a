package registry

import (
	"strings"

	"github.com/ohspite/xatag/internal/tags"
)

// Report lists what a set of tags adds to the registry.
type Report struct {
	// Keys are non-default keys the registry has never seen.
	Keys []string
	// Tags are the values the registry has never seen, by key.
	Tags tags.Dict
	// Added is set when the new tags were appended to known_tags.
	Added bool
}

// Empty reports whether nothing is new.
func (r Report) Empty() bool {
	return len(r.Keys) == 0 && len(r.Tags) == 0
}

// Lines renders the report as warning lines:
//
//	unknown keys: key9
//	unknown tags: tags:     tag8; tag9
//
// "unknown" becomes "adding new" when the tags were added.
func (r Report) Lines() []string {
	lead := "unknown"
	if r.Added {
		lead = "adding new"
	}

	var out []string
	if len(r.Keys) > 0 {
		out = append(out, lead+" keys: "+strings.Join(r.Keys, ", "))
	}
	for _, line := range strings.Split(strings.TrimSuffix(FormatLines(r.Tags), "\n"), "\n") {
		if line != "" {
			out = append(out, lead+" tags: "+line)
		}
	}
	return out
}

// Diff compares ts against known. Wildcard values are not tags and are
// never reported. A wildcard in known accepts every value of its key.
func Diff(ts []tags.Tag, known tags.Dict) Report {
	given := make(tags.Dict)
	for _, t := range ts {
		if t.Value != "" {
			given.Add(t.Key, t.Value)
		}
	}

	var rep Report
	for _, k := range given.Keys() {
		if k == tags.DefaultKey {
			continue
		}
		if _, ok := known[k]; !ok {
			rep.Keys = append(rep.Keys, k)
		}
	}
	rep.Tags = tags.Subtract(given, known, true)
	return rep
}

// CheckNew reports the tags in ts that the registry does not know. With
// add set they are appended to known_tags.
func (r *Registry) CheckNew(ts []tags.Tag, add bool) (Report, error) {
	known, err := r.Load()
	if err != nil {
		return Report{}, err
	}

	rep := Diff(ts, known)
	if !add || rep.Empty() {
		return rep, nil
	}
	if err := r.Append(rep.Tags); err != nil {
		return rep, err
	}
	rep.Added = true
	return rep, nil
}
