// Package format renders HTML email content as plain text.
package format

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var blockElements = map[string]bool{
	"address": true, "article": true, "blockquote": true, "div": true,
	"footer": true, "h1": true, "h2": true, "h3": true, "h4": true,
	"h5": true, "h6": true, "header": true, "hr": true, "ol": true,
	"p": true, "pre": true, "section": true, "table": true, "ul": true,
}

var skippedElements = map[string]bool{
	"head": true, "script": true, "style": true, "title": true,
}

// PlainText converts an HTML fragment (or an entity-escaped snippet) to text.
// Block elements and table rows become lines; table cells are joined with " | ".
func PlainText(content string) string {
	if !strings.ContainsAny(content, "<&") {
		return collapse(content)
	}

	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(content), body)
	if err != nil {
		return collapse(content)
	}

	w := &textWriter{}
	for _, n := range nodes {
		w.walk(n)
	}
	w.flush()

	return strings.Join(w.lines, "\n")
}

type textWriter struct {
	lines []string
	cur   strings.Builder
}

func (w *textWriter) walk(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		w.cur.WriteString(n.Data)
		return
	case html.ElementNode, html.DocumentNode:
	default:
		return
	}

	if skippedElements[n.Data] {
		return
	}

	switch {
	case n.Data == "br":
		w.flush()
		return
	case n.Data == "tr":
		w.flush()
		first := true
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			if !first {
				w.cur.WriteString(" | ")
			}
			first = false
			w.walk(c)
		}
		w.flush()
		return
	case n.Data == "li":
		w.flush()
		w.cur.WriteString("- ")
		w.children(n)
		w.flush()
		return
	case blockElements[n.Data]:
		w.flush()
		w.children(n)
		w.flush()
		return
	}

	w.children(n)
}

func (w *textWriter) children(n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c)
	}
}

func (w *textWriter) flush() {
	if line := collapse(w.cur.String()); line != "" {
		w.lines = append(w.lines, line)
	}
	w.cur.Reset()
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
