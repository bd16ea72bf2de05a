package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWarningsArePlain(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, Options{})

	l.Warn().Msg("path does not exist: nope.txt")
	l.Debug().Msg("hidden")

	assert.Equal(t, "path does not exist: nope.txt\n", buf.String())
}

func TestVerboseShowsDebug(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, Options{Verbose: true})

	l.Debugf("set %s", "user.org.xatag.tags")
	assert.Equal(t, "DEBUG: set user.org.xatag.tags\n", buf.String())
}

func TestQuietDropsWarnings(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, Options{Quiet: true})

	l.Warnf("unknown keys: %s", "genre")
	l.Error().Msg("boom")
	assert.Equal(t, "ERROR: boom\n", buf.String())
}

func TestNop(t *testing.T) {
	l := Nop()
	l.Warn().Msg("nothing")
}
