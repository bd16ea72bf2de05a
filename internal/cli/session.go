package cli

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/ohspite/xatag/internal/audit"
	"github.com/ohspite/xatag/internal/config"
	"github.com/ohspite/xatag/internal/index"
	"github.com/ohspite/xatag/internal/logging"
	"github.com/ohspite/xatag/internal/ops"
	"github.com/ohspite/xatag/internal/recoll"
	"github.com/ohspite/xatag/internal/registry"
	"github.com/ohspite/xatag/internal/ui"
	"github.com/ohspite/xatag/internal/xattr"
)

// Seams replaced by tests.
var (
	newStore   = func() xattr.Store { return xattr.NewOSStore() }
	pathExists = func(path string) bool {
		_, err := os.Stat(path)
		return err == nil
	}
	readEnv        = config.EnvFromOS
	triggerReindex = func(ix *recoll.Indexer, files []string) error { return ix.Trigger(files) }
)

// session is everything one invocation needs, built before the command
// runs and closed after it.
type session struct {
	env      config.Env
	dir      config.Dir
	cfg      *config.Config
	log      *logging.Logger
	store    xattr.Store
	op       *ops.Operator
	registry *registry.Registry
	audit    *audit.Logger
	indexer  *recoll.Indexer

	db       *index.Database
	dbFailed bool

	warnings []Warning
}

var current *session

func openSession(cmd *cobra.Command) error {
	env := readEnv()
	dir := config.ResolveDir(configDirFlag, env)
	log := newLogger(cmd)

	cfg, err := config.Load(dir)
	if err != nil {
		return handleError(ErrConfigInvalid, err, "Fix or remove "+dir.ConfigFile())
	}
	ui.ConfigureTheme(cfg.UI.Accent)
	ui.ConfigureMarkdownCodeTheme(cfg.UI.CodeTheme)

	s := &session{
		env:      env,
		dir:      dir,
		cfg:      cfg,
		log:      log,
		store:    newStore(),
		registry: registry.New(dir.Path),
		audit:    audit.New(dir.AuditLog(), cfg.Audit.Enabled),
		indexer: &recoll.Indexer{
			BaseDir: cfg.RecollBaseDir(env),
			Command: cfg.Recoll.Command,
			Logger:  log,
		},
	}
	s.op = ops.New(s.store, cfg.Codec(), ops.ReporterFunc(s.report))
	log.Debugf("config dir %s", dir.Path)
	current = s
	return nil
}

func closeSession() {
	if current == nil {
		return
	}
	if current.db != nil {
		current.db.Close()
	}
	current = nil
}

// index opens index.db on first use. It returns nil when the index is
// disabled or cannot be opened; the failure is reported once.
func (s *session) index() *index.Database {
	if s.db != nil || s.dbFailed || !s.cfg.IndexEnabled() {
		return s.db
	}
	if !s.dir.Exists() {
		s.dbFailed = true
		return nil
	}
	db, err := index.Open(s.dir.IndexDB())
	if err != nil {
		s.dbFailed = true
		s.warn(WarnIndexUpdateFailed, "", "cannot open tag index: "+err.Error())
		return nil
	}
	s.db = db
	return db
}

// report routes an ops problem to the user.
func (s *session) report(err error) {
	code := WarnGeneric
	path := ""

	var (
		notFound  *ops.PathNotFoundError
		ioErr     *ops.AttributeIOError
		missing   *ops.ValueMissingError
		unchanged *ops.KeyUnchangedWarning
		removed   *ops.EmptyKeyRemovedWarning
	)
	switch {
	case errors.As(err, &notFound):
		code, path = WarnPathNotFound, notFound.Path
	case errors.As(err, &ioErr):
		code, path = WarnAttributeIO, ioErr.Path
		s.log.Debugf("%s: %v", ioErr.Path, ioErr.Err)
	case errors.As(err, &missing):
		code = WarnValueMissing
	case errors.As(err, &unchanged):
		code, path = WarnKeyUnchanged, unchanged.Path
	case errors.As(err, &removed):
		code, path = WarnEmptyKeyRemoved, removed.Path
	}
	s.warn(code, path, err.Error())
}

// warn logs msg, or keeps it for the JSON envelope.
func (s *session) warn(code, path, msg string) {
	if jsonOutput {
		s.warnings = append(s.warnings, Warning{Code: code, Message: msg, Path: path})
		return
	}
	s.log.Warn().Msg(msg)
}
