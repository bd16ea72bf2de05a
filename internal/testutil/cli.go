package testutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

var (
	binaryPath string
	buildMu    sync.Mutex
	buildErr   error
)

// CLIResult is the parsed --json envelope of one xatag run.
type CLIResult struct {
	OK       bool
	Data     map[string]any
	Error    *CLIError
	Warnings []CLIWarning
	Meta     *CLIMeta
	Raw      string
	Stderr   string
	ExitCode int
}

// CLIError is the error member of the envelope.
type CLIError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
}

// CLIWarning is one entry of the warnings member.
type CLIWarning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Path    string `json:"path,omitempty"`
}

// CLIMeta is the meta member.
type CLIMeta struct {
	Count  int `json:"count"`
	Failed int `json:"failed,omitempty"`
}

// BuildCLI builds ./cmd/xatag once per test binary and returns its path.
func BuildCLI(t *testing.T) string {
	t.Helper()
	buildMu.Lock()
	defer buildMu.Unlock()

	if binaryPath != "" {
		if _, err := os.Stat(binaryPath); err == nil {
			return binaryPath
		}
		binaryPath, buildErr = "", nil
	}

	root, err := findProjectRoot()
	if err != nil {
		buildErr = err
	} else if tmp, err := os.MkdirTemp("", "xatag-cli-bin-*"); err != nil {
		buildErr = err
	} else {
		binaryPath = filepath.Join(tmp, "xatag")
		cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/xatag")
		cmd.Dir = root
		if out, err := cmd.CombinedOutput(); err != nil {
			buildErr = &BuildError{Output: string(out), Err: err}
			binaryPath = ""
		}
	}

	if buildErr != nil {
		t.Fatalf("failed to build CLI: %v", buildErr)
	}
	return binaryPath
}

// BuildError is a failed go build.
type BuildError struct {
	Output string
	Err    error
}

func (e *BuildError) Error() string {
	return e.Err.Error() + "\n" + e.Output
}

func findProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", os.ErrNotExist
		}
		dir = parent
	}
}

// RunCLI runs xatag in Root with --json against the workspace config dir.
func (w *Workspace) RunCLI(args ...string) *CLIResult {
	w.t.Helper()
	return w.run(append([]string{"--json"}, args...))
}

// RunText runs xatag without --json and returns stdout.
func (w *Workspace) RunText(args ...string) *CLIResult {
	w.t.Helper()
	return w.run(args)
}

func (w *Workspace) run(args []string) *CLIResult {
	w.t.Helper()
	binary := BuildCLI(w.t)

	cmd := exec.Command(binary, append([]string{"--config-dir", w.ConfigDir}, args...)...)
	cmd.Dir = w.Root
	cmd.Env = append(os.Environ(), "HOME="+w.Root, "XATAG_DIR=", "NO_COLOR=1")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()

	result := &CLIResult{Raw: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		} else {
			result.ExitCode = -1
		}
	}

	if len(args) == 0 || args[0] != "--json" {
		result.OK = result.ExitCode == 0
		return result
	}

	var resp struct {
		OK       bool           `json:"ok"`
		Data     map[string]any `json:"data,omitempty"`
		Error    *CLIError      `json:"error,omitempty"`
		Warnings []CLIWarning   `json:"warnings,omitempty"`
		Meta     *CLIMeta       `json:"meta,omitempty"`
	}
	if err := json.Unmarshal(stdout.Bytes(), &resp); err != nil {
		result.Error = &CLIError{Code: "PARSE_ERROR", Message: "failed to parse JSON output: " + err.Error()}
		return result
	}
	result.OK = resp.OK
	result.Data = resp.Data
	result.Error = resp.Error
	result.Warnings = resp.Warnings
	result.Meta = resp.Meta
	return result
}

// MustSucceed fails the test unless the command succeeded.
func (r *CLIResult) MustSucceed(t *testing.T) *CLIResult {
	t.Helper()
	if !r.OK {
		msg := "exit code " + strings.TrimSpace(r.Stderr)
		if r.Error != nil {
			msg = r.Error.Code + ": " + r.Error.Message
		}
		t.Fatalf("expected command to succeed, got %s\nstdout: %s", msg, r.Raw)
	}
	return r
}

// MustFail fails the test unless the command failed with code.
func (r *CLIResult) MustFail(t *testing.T, code string) *CLIResult {
	t.Helper()
	if r.OK {
		t.Fatalf("expected command to fail with %s, but it succeeded\nstdout: %s", code, r.Raw)
	}
	if r.Error == nil || r.Error.Code != code {
		t.Fatalf("expected error code %s, got %+v\nstdout: %s", code, r.Error, r.Raw)
	}
	return r
}

// HasWarning reports whether a warning with code was returned.
func (r *CLIResult) HasWarning(code string) bool {
	for _, w := range r.Warnings {
		if w.Code == code {
			return true
		}
	}
	return false
}

// DataList extracts a list from Data.
func (r *CLIResult) DataList(key string) []any {
	if list, ok := r.Data[key].([]any); ok {
		return list
	}
	return nil
}

// DataString extracts a string from Data.
func (r *CLIResult) DataString(key string) string {
	s, _ := r.Data[key].(string)
	return s
}
