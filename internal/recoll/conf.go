package recoll

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ohspite/xatag/internal/atomicfile"
)

// DefaultConf is the recoll.conf written into a new config dir.
const DefaultConf = `# Recoll settings for xatag
#
# Point RECOLL_CONFTOP or RECOLL_CONFMID at the directory holding this file
# to make Recoll read it. With RECOLL_CONFMID these settings override the
# global Recoll options. With RECOLL_CONFTOP they also override your own
# profile, usually ~/.recoll.
#
# The metadatacmds line below asks Recoll for xatag tags on every file it
# indexes. To limit that to part of your file system, uncomment the section
# header above it and edit the path.
#
# [~/docs]
metadatacmds = ; rclmultixatag = xatag recoll-tags %f
`

// WriteDefaults creates dir with a default recoll.conf and a generated
// fields file for keys. Existing files are left alone.
func WriteDefaults(dir string, keys []string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create recoll config dir: %w", err)
	}

	confPath := filepath.Join(dir, ConfFileName)
	if _, err := os.Stat(confPath); errors.Is(err, fs.ErrNotExist) {
		if err := atomicfile.WriteFile(confPath, []byte(DefaultConf), 0o644); err != nil {
			return fmt.Errorf("write recoll.conf: %w", err)
		}
	}

	fieldsPath := filepath.Join(dir, FieldsFileName)
	if _, err := os.Stat(fieldsPath); errors.Is(err, fs.ErrNotExist) {
		if _, err := UpdateFields(fieldsPath, keys); err != nil {
			return err
		}
	}
	return nil
}
