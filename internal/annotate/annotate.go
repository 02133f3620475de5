// Package annotate walks parsed HTML trees and wraps every dataset name it
// finds in a clickable highlight marker.
package annotate

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/Hice-Bot/linkmark/internal/match"
)

// DefaultMarkerClass is the class carried by every highlight marker. It
// doubles as the already-processed flag: text inside an element with this
// class is never scanned again.
const DefaultMarkerClass = "linkmark-ref"

// HrefAttr holds the resolved reference URL on a marker. The injected click
// script reads it back; see assets.go.
const HrefAttr = "data-linkmark-href"

// defaultExcluded lists container tags whose text is never highlighted,
// descendants included: script/style, code, form controls, embedded
// documents, and vector graphics.
var defaultExcluded = []string{
	"script", "style", "noscript", "code",
	"textarea", "input", "select", "option", "button",
	"iframe", "frame", "object", "embed",
	"svg", "head", "title",
}

// Match records one resolved highlight for reporting.
type Match struct {
	Literal string // text as found in the document, original casing/spacing
	Anchor  string
	URL     string
}

// Annotator applies one compiled match.Table to HTML subtrees. Not safe for
// concurrent use; all scanning is synchronous.
type Annotator struct {
	// MarkerClass identifies produced markers. Change it before the first
	// scan or not at all.
	MarkerClass string

	table    *match.Table
	excluded map[string]struct{}
	report   []Match
}

// New returns an annotator over the given table with the default exclusion
// set.
func New(table *match.Table) *Annotator {
	a := &Annotator{
		MarkerClass: DefaultMarkerClass,
		table:       table,
		excluded:    make(map[string]struct{}, len(defaultExcluded)),
	}
	for _, tag := range defaultExcluded {
		a.excluded[tag] = struct{}{}
	}
	return a
}

// Exclude adds container tags to the exclusion set.
func (a *Annotator) Exclude(tags ...string) {
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag != "" {
			a.excluded[tag] = struct{}{}
		}
	}
}

// Report returns every match resolved since the last Reset, in document
// order.
func (a *Annotator) Report() []Match { return a.report }

// Reset clears the match report.
func (a *Annotator) Reset() { a.report = nil }

// Scan visits every eligible text node under root (inclusive) and replaces
// matched ones with plain-text and marker segments. It returns the number
// of markers produced. Scanning an excluded element or an existing marker
// is a no-op, which is also what keeps re-applied notifications from
// wrapping markers inside markers.
func (a *Annotator) Scan(root *html.Node) int {
	if root == nil || a.table == nil || a.table.Empty() {
		return 0
	}
	if root.Type == html.ElementNode {
		if a.isExcluded(root.Data) || a.isMarker(root) {
			return 0
		}
	}
	if root.Type == html.TextNode && root.Parent != nil &&
		root.Parent.Type == html.ElementNode && a.isExcluded(root.Parent.Data) {
		return 0
	}
	if a.insideMarker(root) {
		return 0
	}

	// Collect first, mutate second: replacing nodes mid-traversal would
	// invalidate the walk.
	var targets []*html.Node
	a.collect(root, &targets)

	count := 0
	for _, n := range targets {
		count += a.highlightNode(n)
	}
	return count
}

func (a *Annotator) collect(n *html.Node, out *[]*html.Node) {
	switch n.Type {
	case html.ElementNode:
		if a.isExcluded(n.Data) || a.isMarker(n) {
			return
		}
	case html.TextNode:
		if strings.TrimSpace(n.Data) != "" {
			*out = append(*out, n)
		}
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		a.collect(c, out)
	}
}

// highlightNode rewrites one text node in place. The replacement is atomic:
// either the full matched/unmatched decomposition goes in, or the node is
// left untouched.
func (a *Annotator) highlightNode(n *html.Node) int {
	if n.Parent == nil {
		// Detached between collection and processing; nothing to do.
		return 0
	}
	segs, matches := a.splitText(n.Data)
	if len(matches) == 0 {
		return 0
	}
	for _, seg := range segs {
		n.Parent.InsertBefore(seg, n)
	}
	n.Parent.RemoveChild(n)
	a.report = append(a.report, matches...)
	return len(matches)
}

// splitText decomposes one text segment. The case-insensitive partition is
// tried first; the case-sensitive one only when it produced no resolved
// match, so a segment is never split twice and primary names keep anchor
// precedence.
func (a *Annotator) splitText(text string) ([]*html.Node, []Match) {
	segs, matches := a.splitWith(text, a.table.Primary)
	if len(matches) == 0 {
		segs, matches = a.splitWith(text, a.table.Exact)
	}
	return segs, matches
}

func (a *Annotator) splitWith(text string, p *match.Partition) ([]*html.Node, []Match) {
	if p == nil {
		return nil, nil
	}
	var segs []*html.Node
	var matches []Match
	plain := 0 // start of pending unmatched text
	pos := 0
	for pos < len(text) {
		lo, hi, ok := p.Matcher.Find(text, pos)
		if !ok {
			break
		}
		literal := text[lo:hi]
		anchor, ok := p.Resolve(literal)
		if !ok {
			// Lookup miss: treat the match as if it had not occurred and
			// scan on past it.
			pos = hi
			continue
		}
		if lo > plain {
			segs = append(segs, textNode(text[plain:lo]))
		}
		url := a.table.URL(anchor)
		segs = append(segs, a.marker(literal, url))
		matches = append(matches, Match{Literal: literal, Anchor: anchor, URL: url})
		plain = hi
		pos = hi
	}
	if len(matches) == 0 {
		return nil, nil
	}
	if plain < len(text) {
		segs = append(segs, textNode(text[plain:]))
	}
	return segs, matches
}

func (a *Annotator) marker(literal, url string) *html.Node {
	span := &html.Node{
		Type:     html.ElementNode,
		Data:     "span",
		DataAtom: atom.Span,
		Attr: []html.Attribute{
			{Key: "class", Val: a.MarkerClass},
			{Key: HrefAttr, Val: url},
			{Key: "role", Val: "link"},
			{Key: "tabindex", Val: "0"},
			{Key: "title", Val: "Open reference entry for " + literal},
		},
	}
	span.AppendChild(textNode(literal))
	return span
}

func textNode(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

func (a *Annotator) isExcluded(tag string) bool {
	_, ok := a.excluded[strings.ToLower(tag)]
	return ok
}

// isMarker reports whether the element carries the marker class.
func (a *Annotator) isMarker(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	for _, attr := range n.Attr {
		if attr.Key == "class" {
			for _, c := range strings.Fields(attr.Val) {
				if c == a.MarkerClass {
					return true
				}
			}
		}
	}
	return false
}

// insideMarker walks the ancestor chain looking for an existing marker.
func (a *Annotator) insideMarker(n *html.Node) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if a.isMarker(p) {
			return true
		}
	}
	return false
}
