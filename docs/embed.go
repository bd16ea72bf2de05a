// Package docs bundles the xatag guide into the binary.
package docs

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	goslug "github.com/gosimple/slug"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// FS contains the guide topics as Markdown.
//
//go:embed guide
var FS embed.FS

const guideDir = "guide"

// Topic is one guide page.
type Topic struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Path  string `json:"path"`
}

// Match is a line of a topic containing a search query.
type Match struct {
	Topic   string `json:"topic"`
	Title   string `json:"title"`
	Line    int    `json:"line"`
	Snippet string `json:"snippet"`
}

// Topics lists the guide pages in fsys sorted by ID. Files starting with
// "_" or "." are skipped.
func Topics(fsys fs.FS) ([]Topic, error) {
	entries, err := fs.ReadDir(fsys, guideDir)
	if err != nil {
		return nil, fmt.Errorf("read docs: %w", err)
	}
	var out []Topic
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".md") || strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".") {
			continue
		}
		p := path.Join(guideDir, name)
		content, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}
		id := TopicID(strings.TrimSuffix(name, ".md"))
		title := Title(content)
		if title == "" {
			title = id
		}
		out = append(out, Topic{ID: id, Title: title, Path: p})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Find returns the topic whose ID matches raw after normalization.
func Find(topics []Topic, raw string) (Topic, bool) {
	id := TopicID(raw)
	for _, t := range topics {
		if t.ID == id {
			return t, true
		}
	}
	return Topic{}, false
}

// TopicID normalizes a topic name: "Known Tags", "known_tags" and
// "known-tags" are all "known-tags".
func TopicID(raw string) string {
	return goslug.Make(strings.ReplaceAll(raw, "_", "-"))
}

// Title returns the text of the first level one heading in content.
func Title(content []byte) string {
	doc := goldmark.New().Parser().Parse(text.NewReader(content))
	var title string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		h, ok := n.(*ast.Heading)
		if !entering || !ok || h.Level != 1 {
			return ast.WalkContinue, nil
		}
		var b bytes.Buffer
		for c := h.FirstChild(); c != nil; c = c.NextSibling() {
			if t, ok := c.(*ast.Text); ok {
				b.Write(t.Segment.Value(content))
			} else if cs, ok := c.(*ast.CodeSpan); ok {
				for cc := cs.FirstChild(); cc != nil; cc = cc.NextSibling() {
					if t, ok := cc.(*ast.Text); ok {
						b.Write(t.Segment.Value(content))
					}
				}
			}
		}
		title = strings.TrimSpace(b.String())
		return ast.WalkStop, nil
	})
	return title
}

// Search finds up to limit lines containing query, case-insensitively.
func Search(fsys fs.FS, query string, limit int) ([]Match, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil, fmt.Errorf("empty query")
	}
	topics, err := Topics(fsys)
	if err != nil {
		return nil, err
	}

	var matches []Match
	for _, t := range topics {
		content, err := fs.ReadFile(fsys, t.Path)
		if err != nil {
			return nil, err
		}
		for i, line := range strings.Split(string(content), "\n") {
			if !strings.Contains(strings.ToLower(line), query) {
				continue
			}
			matches = append(matches, Match{Topic: t.ID, Title: t.Title, Line: i + 1, Snippet: snippet(line, query)})
			if limit > 0 && len(matches) >= limit {
				return matches, nil
			}
		}
	}
	return matches, nil
}

func snippet(line, query string) string {
	const maxLen = 120
	s := strings.TrimSpace(line)
	if len(s) <= maxLen {
		return s
	}
	start := strings.Index(strings.ToLower(s), query) - 40
	if start < 0 {
		start = 0
	}
	end := min(start+maxLen, len(s))
	out := s[start:end]
	if start > 0 {
		out = "..." + out
	}
	if end < len(s) {
		out += "..."
	}
	return out
}
