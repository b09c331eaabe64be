package sections

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"doc-windows/internal/chunker"
)

const (
	// DefaultMinBytes merges sections with shorter bodies into their predecessor.
	DefaultMinBytes = 4000
	maxTitleInput   = 2500
	maxTitleLen     = 100
)

// sectionNamespace scopes the name-based UUIDs used as section ids.
var sectionNamespace = uuid.MustParse("6f1c1d0e-5d0b-4c59-9a3e-2f5f1f0a9d41")

// Titler produces a short title for a section.
type Titler interface {
	SectionTitle(ctx context.Context, heading, body string) (string, error)
}

// Options controls sectioning.
type Options struct {
	MinBytes int
	Titler   Titler
	Log      *slog.Logger
}

type rawSection struct {
	path []string
	body string
}

// Split cuts markdown into heading-delimited sections ready for windowing.
// Text before the first heading (or a document without headings) becomes a
// section named after sourceURI.
func Split(ctx context.Context, markdown []byte, sourceURI string, opts Options) []chunker.Section {
	preamble, raw := parse(markdown)
	if preamble != "" {
		raw = append([]rawSection{{path: []string{titleFromSource(sourceURI)}, body: preamble}}, raw...)
	}
	if len(raw) == 0 {
		return nil
	}
	raw = merge(raw, opts.MinBytes)

	out := make([]chunker.Section, 0, len(raw))
	for i, r := range raw {
		heading := r.path[len(r.path)-1]
		out = append(out, chunker.Section{
			SectionID:    SectionID(sourceURI, i+1, r.path, r.body),
			SectionPath:  r.path,
			SectionIndex: i + 1,
			SourceURI:    sourceURI,
			Title:        title(ctx, opts, heading, r.body),
			Body:         r.body,
		})
	}
	return out
}

// SectionID is derived from the section's position and content so
// re-ingesting a document reproduces it.
func SectionID(sourceURI string, index int, path []string, body string) string {
	name := fmt.Sprintf("%s\x1f%d\x1f%s\x1f%s", sourceURI, index, strings.Join(path, "\x1f"), body)
	return uuid.NewSHA1(sectionNamespace, []byte(name)).String()
}

func parse(md []byte) (string, []rawSection) {
	type heading struct {
		start   int
		lineEnd int
		level   int
		title   string
	}
	var heads []heading

	root := goldmark.DefaultParser().Parse(text.NewReader(md))
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok || h.Lines().Len() == 0 {
			return ast.WalkContinue, nil
		}
		seg := h.Lines().At(0)
		start := seg.Start
		// The segment begins after the "#" markers; back up to the line start.
		for start > 0 && md[start-1] != '\n' {
			start--
		}
		lineEnd := nextLine(md, h.Lines().At(h.Lines().Len()-1).Stop)
		if !isATX(md[start:]) && isUnderline(md[lineEnd:]) {
			// Setext headings are underlined on the following line.
			lineEnd = nextLine(md, lineEnd+1)
		}
		heads = append(heads, heading{
			start:   start,
			lineEnd: lineEnd,
			level:   h.Level,
			title:   strings.TrimSpace(string(h.Lines().Value(md))),
		})
		return ast.WalkSkipChildren, nil
	})

	if len(heads) == 0 {
		return strings.TrimSpace(string(md)), nil
	}
	preamble := strings.TrimSpace(string(md[:heads[0].start]))

	var out []rawSection
	var trail []string
	for i, h := range heads {
		if len(trail) >= h.level {
			trail = trail[:h.level-1]
		}
		trail = append(trail, h.title)

		end := len(md)
		if i+1 < len(heads) {
			end = heads[i+1].start
		}
		body := ""
		if h.lineEnd < end {
			body = strings.TrimSpace(string(md[h.lineEnd:end]))
		}
		out = append(out, rawSection{path: slices.Clone(trail), body: body})
	}
	return preamble, out
}

// nextLine returns the start of the first non-blank line after the line
// holding md[i-1]. Closing "#" sequences and trailing blanks are skipped.
func nextLine(md []byte, i int) int {
	if i > len(md) {
		return len(md)
	}
	if i == 0 || md[i-1] != '\n' {
		for i < len(md) && md[i] != '\n' {
			i++
		}
	}
	for i < len(md) && (md[i] == '\n' || md[i] == '\r') {
		i++
	}
	return i
}

func isATX(line []byte) bool {
	return bytes.HasPrefix(bytes.TrimLeft(line, " \t"), []byte("#"))
}

func isUnderline(rest []byte) bool {
	line, _, _ := bytes.Cut(rest, []byte("\n"))
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return false
	}
	return len(bytes.Trim(line, "=")) == 0 || len(bytes.Trim(line, "-")) == 0
}

func merge(in []rawSection, minBytes int) []rawSection {
	if minBytes <= 0 {
		return in
	}
	var out []rawSection
	for _, s := range in {
		if len(s.body) < minBytes && len(out) > 0 {
			prev := &out[len(out)-1]
			prev.body += "\n\n" + s.body
			prev.path = distinct(append(prev.path, s.path...))
			continue
		}
		out = append(out, s)
	}
	return out
}

func distinct(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := items[:0]
	for _, it := range items {
		if seen[it] {
			continue
		}
		seen[it] = true
		out = append(out, it)
	}
	return out
}

func title(ctx context.Context, opts Options, heading, body string) string {
	if opts.Titler == nil {
		return heading
	}
	input := body
	if len(input) > maxTitleInput {
		cut := maxTitleInput
		for cut > 0 && !utf8.RuneStart(input[cut]) {
			cut--
		}
		input = input[:cut]
	}
	t, err := opts.Titler.SectionTitle(ctx, heading, input)
	t = strings.TrimSpace(t)
	if err != nil || t == "" || len(t) > maxTitleLen {
		if opts.Log != nil {
			opts.Log.Warn("section title generation failed, using heading", "heading", heading, "err", err)
		}
		return heading
	}
	return t
}

func titleFromSource(sourceURI string) string {
	name := path.Base(sourceURI)
	if ext := path.Ext(name); ext != "" {
		name = strings.TrimSuffix(name, ext)
	}
	if name == "" || name == "." || name == "/" {
		return "Document"
	}
	return name
}
