package printer

import (
	"github.com/ohspite/xatag/internal/tags"
)

// View picks which part of a file's tags gets printed.
type View struct {
	// Tags are the tags named on the command line.
	Tags []tags.Tag
	// Subset prints only Tags (or everything but Tags with Complement).
	// This is what list does.
	Subset bool
	// Complement inverts Subset.
	Complement bool
	// Terse prints only the keys mentioned in Tags.
	Terse bool
}

// Apply returns the part of d this view shows.
func (v View) Apply(d tags.Dict) tags.Dict {
	if len(v.Tags) == 0 {
		return d
	}
	sel := tags.FromTags(v.Tags)

	if v.Subset {
		if v.Complement {
			return tags.Subtract(d, sel, true)
		}
		return tags.Select(d, sel)
	}

	if v.Terse {
		keys := make(tags.Dict, len(sel))
		for k := range sel {
			keys.Add(k, "")
		}
		return tags.Select(d, keys)
	}
	return d
}
