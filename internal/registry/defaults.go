package registry

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/ohspite/xatag/internal/atomicfile"
)

// DefaultKnownTags is the known_tags file written by new-config.
const DefaultKnownTags = `## xatag known_tags
##
## Tags listed here are not reported as unknown when "xatag add" or
## "xatag set" writes them. "xatag use TAG..." appends to this file, and
## "--warn-once" appends every unknown tag it reports.
##
## Lines starting with # are comments.
##
## Start a line with a key and a colon, then list values separated by
## semicolons. A line without a colon lists values of the default key.
##
## A key that disappears from this file is dropped from the Recoll fields
## file the next time it is regenerated. A new key is added to it.
##################################################################
## These three lines mean the same thing:
# favorite; TODO; organize; summer vacation
# : favorite; TODO; organize; summer vacation
# tags: favorite; TODO; organize; summer vacation
#
## Values for one key may be spread over several lines:
# taxes: 2013; 2012; 2011
# taxes: personal; business
#
## A key with no values accepts any value for that key:
# genre:
`

// DefaultIgnoredKeys is the ignored_keys file written by new-config.
const DefaultIgnoredKeys = `## xatag ignored_keys
##
## Keys listed here are left out of the Recoll fields file, so Recoll does
## not index them.
##
## Lines starting with # are comments. Write one key per line without the
## trailing colon.
##################################################################
## Ignoring the default key is rarely what you want:
# tags
## A key only meant for sorting might be:
# publication-date
`

// WriteDefaults creates the registry files that do not exist yet.
func (r *Registry) WriteDefaults() error {
	files := []struct {
		path    string
		content string
	}{
		{r.KnownTagsPath, DefaultKnownTags},
		{r.IgnoredKeysPath, DefaultIgnoredKeys},
	}
	for _, f := range files {
		if _, err := os.Stat(f.path); !errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := atomicfile.WriteFile(f.path, []byte(f.content), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", f.path, err)
		}
	}
	return nil
}
