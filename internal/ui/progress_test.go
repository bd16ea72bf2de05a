package ui

import (
	"bytes"
	"strings"
	"testing"
)

func TestProgressSilentWithoutTerminal(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(&buf, false, "Indexing", 3)
	p.Increment()
	p.Done()
	if buf.Len() != 0 {
		t.Fatalf("expected no output, got %q", buf.String())
	}
}

func TestProgressRendersOnTerminal(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(&buf, true, "Indexing", 2)
	p.Increment()
	p.Increment()
	p.Done()
	if !strings.Contains(buf.String(), "Indexing") {
		t.Fatalf("expected description in output, got %q", buf.String())
	}
}
