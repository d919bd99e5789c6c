package format

import (
	"bytes"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/net/html"
)

var skippedElements = map[string]bool{
	"head": true, "title": true, "script": true, "style": true, "noscript": true, "template": true,
}

var paragraphElements = map[string]bool{
	"p": true, "blockquote": true, "pre": true, "table": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

var lineElements = map[string]bool{
	"div": true, "section": true, "article": true, "header": true, "footer": true, "main": true,
	"ul": true, "ol": true, "dl": true, "dt": true, "dd": true, "tr": true, "address": true,
	"center": true, "form": true, "fieldset": true, "figure": true,
}

// HTML2Text renders an HTML email body as plain text. Paragraphs are separated
// by a blank line, rows and blocks start a new line, list items are bulleted
// and table cells are joined with " | ". Single-column layout tables therefore
// flatten to one line per row.
func (c Converter) HTML2Text(raw []byte) (string, error) {
	doc, err := html.Parse(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("html.Parse failed: %w", err)
	}

	w := &textWriter{}
	w.walk(doc)

	return tidyLines(w.b.String()), nil
}

type textWriter struct {
	b        strings.Builder
	started  bool
	newlines int
	pre      int
}

func (w *textWriter) walk(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		if w.pre > 0 {
			w.write(n.Data)
		} else {
			w.write(collapseSpace(n.Data))
		}
		return
	case html.DocumentNode:
		w.children(n)
		return
	case html.ElementNode:
	default:
		return
	}

	tag := n.Data
	switch {
	case skippedElements[tag]:

	case tag == "br":
		w.lineBreak()

	case tag == "hr":
		w.breakLine(2)

	case tag == "li":
		w.breakLine(1)
		w.write("- ")
		w.children(n)
		w.breakLine(1)

	case tag == "td" || tag == "th":
		if previousCell(n) {
			w.write(" | ")
		}
		w.children(n)

	case paragraphElements[tag]:
		if tag == "pre" {
			w.pre++
			defer func() { w.pre-- }()
		}
		w.breakLine(2)
		w.children(n)
		w.breakLine(2)

	case lineElements[tag]:
		w.breakLine(1)
		w.children(n)
		w.breakLine(1)

	default:
		w.children(n)
	}
}

func (w *textWriter) children(n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c)
	}
}

func (w *textWriter) write(s string) {
	if w.newlines > 0 || !w.started {
		s = strings.TrimLeft(s, " ")
	}
	if s == "" {
		return
	}

	w.b.WriteString(s)
	w.started = true
	w.newlines = len(s) - len(strings.TrimRight(s, "\n"))
}

// breakLine ends the current line so that at least n newlines separate it
// from what follows. It is a no-op before any text was written.
func (w *textWriter) breakLine(n int) {
	if !w.started {
		return
	}
	for w.newlines < n {
		w.b.WriteByte('\n')
		w.newlines++
	}
}

func (w *textWriter) lineBreak() {
	if !w.started {
		return
	}
	w.b.WriteByte('\n')
	w.newlines++
}

func previousCell(n *html.Node) bool {
	for s := n.PrevSibling; s != nil; s = s.PrevSibling {
		if s.Type == html.ElementNode && (s.Data == "td" || s.Data == "th") {
			return true
		}
	}
	return false
}

// collapseSpace replaces whitespace runs with one space, keeping a single
// space at either edge when the input had one.
func collapseSpace(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		if s == "" {
			return ""
		}
		return " "
	}

	out := strings.Join(fields, " ")
	if r, _ := utf8.DecodeRuneInString(s); unicode.IsSpace(r) {
		out = " " + out
	}
	if r, _ := utf8.DecodeLastRuneInString(s); unicode.IsSpace(r) {
		out += " "
	}
	return out
}

// tidyLines trims trailing spaces, squeezes blank-line runs into one blank
// line and trims the result.
func tidyLines(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.TrimRightFunc(line, unicode.IsSpace)
		if line == "" {
			if blank {
				continue
			}
			blank = true
		} else {
			blank = false
		}
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
