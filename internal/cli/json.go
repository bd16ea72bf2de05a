package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

var (
	jsonOutput bool

	// outWriter receives command output. Set from the running command so
	// tests can capture it.
	outWriter io.Writer = os.Stdout
)

// Response is the JSON envelope written by every command under --json.
type Response struct {
	OK       bool       `json:"ok"`
	Data     any        `json:"data,omitempty"`
	Error    *ErrorInfo `json:"error,omitempty"`
	Warnings []Warning  `json:"warnings,omitempty"`
	Meta     *Meta      `json:"meta,omitempty"`
}

// ErrorInfo describes a failed command.
type ErrorInfo struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    any    `json:"details,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

// Warning is a non-fatal problem, such as a missing file in a batch.
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Path    string `json:"path,omitempty"`
}

// Meta carries counts about the response.
type Meta struct {
	Count  int `json:"count"`
	Failed int `json:"failed,omitempty"`
}

func outputJSON(resp Response) {
	enc := json.NewEncoder(outWriter)
	enc.SetIndent("", "  ")
	_ = enc.Encode(resp)
}

func outputSuccess(data any, meta *Meta) {
	outputSuccessWithWarnings(data, nil, meta)
}

func outputSuccessWithWarnings(data any, warnings []Warning, meta *Meta) {
	outputJSON(Response{
		OK:       true,
		Data:     data,
		Warnings: warnings,
		Meta:     meta,
	})
}

func outputError(code, message string, details any, suggestion string) {
	outputJSON(Response{
		OK: false,
		Error: &ErrorInfo{
			Code:       code,
			Message:    message,
			Details:    details,
			Suggestion: suggestion,
		},
	})
}

func isJSONOutput() bool {
	return jsonOutput
}

// silentError makes the process exit non-zero after the JSON error envelope
// has already been written.
type silentError struct{ err error }

func (e silentError) Error() string { return e.err.Error() }

// handleError reports err. In JSON mode it writes the error envelope and
// returns a silent error; otherwise it returns err for cobra to print,
// with the suggestion on its own line.
func handleError(code string, err error, suggestion string) error {
	if jsonOutput {
		outputError(code, err.Error(), nil, suggestion)
		return silentError{err}
	}
	if suggestion != "" {
		return fmt.Errorf("%w\n\n%s", err, suggestion)
	}
	return err
}

func handleErrorMsg(code, message, suggestion string) error {
	return handleError(code, fmt.Errorf("%s", message), suggestion)
}
