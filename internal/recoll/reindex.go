package recoll

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/ohspite/xatag/internal/logging"
	"github.com/ohspite/xatag/internal/shellquote"
)

// DefaultIndexCommand is the indexer started for changed files.
const DefaultIndexCommand = "recollindex"

// Indexer asks Recoll to reindex files after their tags change.
type Indexer struct {
	// BaseDir is the Recoll configuration directory, usually ~/.recoll.
	// The monitor flag is only touched when it exists.
	BaseDir string
	// Command is the indexer executable. Defaults to DefaultIndexCommand.
	Command string
	Logger  *logging.Logger

	// start launches cmd without waiting for it. Replaced in tests.
	start func(cmd *exec.Cmd) error
}

// Trigger touches the monitor flag and starts "recollindex -i FILES..." in
// the background. It does not wait for the indexer to finish.
func (ix *Indexer) Trigger(files []string) error {
	if len(files) == 0 {
		return nil
	}

	if err := ix.touchMonitorFlag(); err != nil {
		return err
	}

	command := ix.Command
	if command == "" {
		command = DefaultIndexCommand
	}
	args := []string{"-i"}
	for _, f := range files {
		if abs, err := filepath.Abs(f); err == nil {
			f = abs
		}
		args = append(args, f)
	}

	cmd := exec.Command(command, args...)
	ix.logger().Debugf("starting %s", shellquote.Join(cmd.Args))

	start := ix.start
	if start == nil {
		start = startDetached
	}
	if err := start(cmd); err != nil {
		return fmt.Errorf("start %s: %w", command, err)
	}
	return nil
}

func (ix *Indexer) touchMonitorFlag() error {
	if ix.BaseDir == "" {
		return nil
	}
	st, err := os.Stat(ix.BaseDir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("stat recoll dir: %w", err)
	}
	if !st.IsDir() {
		return nil
	}

	flag := filepath.Join(ix.BaseDir, MonitorFlagName)
	if err := os.WriteFile(flag, nil, 0o644); err != nil {
		return fmt.Errorf("touch %s: %w", MonitorFlagName, err)
	}
	ix.logger().Debugf("touched %s", flag)
	return nil
}

func (ix *Indexer) logger() *logging.Logger {
	if ix.Logger == nil {
		return logging.Nop()
	}
	return ix.Logger
}

// startDetached starts cmd with its output discarded and lets it outlive us.
func startDetached(cmd *exec.Cmd) error {
	if err := cmd.Start(); err != nil {
		return err
	}
	return cmd.Process.Release()
}
